package handlers

import (
	"ImageRecognitionSkill/internal/models"
	"context"
	"encoding/json"
	"log"
	"net/http"
)

// DBStore 介面定義了 handlers 需要的唯讀查詢
type DBStore interface {
	GetMetadata(ctx context.Context, fileID string) ([]models.MetadataRecord, error)
	ListJobs(ctx context.Context, limit int, offset int) ([]models.SkillJob, error)
}

// writeJSON 以 JSON 回應
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Printf("錯誤：寫入 JSON 回應失敗: %v", err)
	}
}
