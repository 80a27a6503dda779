package handlers

import (
	"ImageRecognitionSkill/internal/models"
	"ImageRecognitionSkill/internal/services"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
)

// maxWebhookBody 事件內容只需要來源與建立者，超過即拒絕
const maxWebhookBody = 1 << 20

// SkillProcessor 由 SkillService 實作
type SkillProcessor interface {
	Process(ctx context.Context, event models.WebhookEvent) (*services.ProcessResult, error)
}

// WebhookResponse 與觸發端約定的回應格式
type WebhookResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       any    `json:"body"`
	Error      string `json:"error,omitempty"`
}

// WebhookHandler 接收檔案事件並同步執行標註與 metadata 寫入
type WebhookHandler struct {
	processor SkillProcessor
}

// NewWebhookHandler 建立一個 WebhookHandler 實例
func NewWebhookHandler(p SkillProcessor) *WebhookHandler {
	if p == nil {
		log.Panicln("WebhookHandler：SkillProcessor 不得為空")
	}
	return &WebhookHandler{processor: p}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("資訊：[WebhookHandler] 收到請求: %s %s 來自 %s\n", r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodPost {
		log.Printf("警告：[WebhookHandler] 收到非 POST 請求 (%s)，已拒絕。\n", r.Method)
		http.Error(w, "僅支援 POST 方法", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, WebhookResponse{StatusCode: http.StatusBadRequest, Error: "無法讀取請求內容"})
		return
	}
	if len(body) > maxWebhookBody {
		writeJSON(w, http.StatusRequestEntityTooLarge, WebhookResponse{StatusCode: http.StatusRequestEntityTooLarge, Error: "請求內容過大"})
		return
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("警告：[WebhookHandler] 事件不是有效的 JSON: %v\n", err)
		writeJSON(w, http.StatusBadRequest, WebhookResponse{StatusCode: http.StatusBadRequest, Error: "事件不是有效的 JSON"})
		return
	}

	result, err := h.processor.Process(r.Context(), event)
	switch {
	case errors.Is(err, services.ErrMissingFileID):
		log.Println("警告：[WebhookHandler] 事件缺少 source.id，已拒絕。")
		writeJSON(w, http.StatusBadRequest, WebhookResponse{StatusCode: http.StatusBadRequest, Error: err.Error()})
	case err != nil:
		log.Printf("錯誤：[WebhookHandler] 處理檔案 %s 失敗: %v\n", event.FileID(), err)
		writeJSON(w, http.StatusBadGateway, WebhookResponse{StatusCode: http.StatusBadGateway, Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, WebhookResponse{StatusCode: http.StatusOK, Body: result})
	}
}
