package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// exportLimit 單次匯出的最大任務數
const exportLimit = 1000

// ExportHandler 負責處理匯出請求
type ExportHandler struct {
	db DBStore
}

// NewExportHandler 建立一個 ExportHandler 實例
func NewExportHandler(db DBStore) *ExportHandler {
	if db == nil {
		log.Panicln("ExportHandler：DBStore 不得為空")
	}
	return &ExportHandler{
		db: db,
	}
}

// ServeHTTP 以 CSV 匯出標註任務紀錄
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("資訊：[ExportHandler] 收到請求: %s %s 來自 %s\n", r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodGet {
		log.Printf("警告：[ExportHandler] 收到非 GET 請求 (%s)，已拒絕。\n", r.Method)
		http.Error(w, "僅支援 GET 方法", http.StatusMethodNotAllowed)
		return
	}

	limit := exportLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit 必須是正整數", http.StatusBadRequest)
			return
		}
		limit = min(n, exportLimit)
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "offset 必須是非負整數", http.StatusBadRequest)
			return
		}
		offset = n
	}

	jobs, err := h.db.ListJobs(r.Context(), limit, offset)
	if err != nil {
		log.Printf("錯誤：[ExportHandler] 從資料庫獲取任務數據失敗: %v", err)
		http.Error(w, "無法獲取匯出數據", http.StatusInternalServerError)
		return
	}
	log.Printf("資訊：[ExportHandler] 獲取到 %d 筆任務", len(jobs))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=skill_jobs_%s.csv", time.Now().Format("2006-01-02")))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	headers := []string{"任務ID", "檔案ID", "建立者", "觸發", "狀態", "嘗試次數", "分類", "錯誤訊息", "建立時間", "更新時間"}
	if err := writer.Write(headers); err != nil {
		log.Printf("錯誤：[ExportHandler] 寫入 CSV 標題失敗: %v", err)
		return
	}

	for _, job := range jobs {
		row := []string{
			job.ID,
			job.FileID,
			job.ActorID,
			job.Trigger,
			string(job.Status),
			strconv.Itoa(job.Attempts),
			strings.Join(job.Categories, "; "),
			job.ErrorMessage.String,
			job.CreatedAt.Format("2006-01-02 15:04:05"),
			job.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			log.Printf("錯誤：[ExportHandler] 寫入 CSV 資料列失敗: %v", err)
			return
		}
	}
}
