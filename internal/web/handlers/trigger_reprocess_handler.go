package handlers

import (
	"ImageRecognitionSkill/internal/services"
	"errors"
	"log"
	"net/http"
	"sync"
)

// ReprocessRunner 由 SkillService 實作
type ReprocessRunner interface {
	Run() error
}

// TriggerReprocessHandler 手動觸發失敗任務重跑
type TriggerReprocessHandler struct {
	runner       ReprocessRunner
	mu           sync.Mutex
	isProcessing bool
}

// NewTriggerReprocessHandler 建立一個 TriggerReprocessHandler 實例
func NewTriggerReprocessHandler(r ReprocessRunner) *TriggerReprocessHandler {
	if r == nil {
		log.Panicln("TriggerReprocessHandler：ReprocessRunner 不得為空")
	}
	return &TriggerReprocessHandler{runner: r}
}

func (h *TriggerReprocessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("資訊：[TriggerReprocessHandler] 收到請求: %s %s 來自 %s\n", r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodPost {
		log.Printf("警告：[TriggerReprocessHandler] 收到非 POST 請求 (%s)，已拒絕。\n", r.Method)
		http.Error(w, "僅支援 POST 方法", http.StatusMethodNotAllowed)
		return
	}

	h.mu.Lock()
	if h.isProcessing {
		h.mu.Unlock()
		log.Println("警告：[TriggerReprocessHandler] 手動重跑已在進行中，拒絕新的觸發。")
		writeJSON(w, http.StatusConflict, map[string]string{"error": "重跑任務已在進行中，請稍候。"})
		return
	}
	h.isProcessing = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			h.isProcessing = false
			h.mu.Unlock()
			log.Println("資訊：[TriggerReprocessHandler] 手動觸發的重跑 goroutine 已結束。")
		}()

		log.Println("資訊：[TriggerReprocessHandler] 開始執行手動觸發的重跑任務...")
		err := h.runner.Run()
		switch {
		case errors.Is(err, services.ErrReprocessRunning):
			log.Println("警告：[TriggerReprocessHandler] 排程器正在重跑，本次手動觸發略過。")
		case err != nil:
			log.Printf("錯誤：[TriggerReprocessHandler] 手動觸發的重跑任務執行失敗: %v", err)
		default:
			log.Println("資訊：[TriggerReprocessHandler] 手動觸發的重跑任務執行成功。")
		}
	}()

	writeJSON(w, http.StatusOK, map[string]string{"message": "失敗任務重跑已觸發，正在背景執行。"})
}
