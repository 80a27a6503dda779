package handlers

import (
	"log"
	"net/http"
)

// MetadataHandler 查詢檔案已寫入的範本實例
type MetadataHandler struct {
	db DBStore
}

// NewMetadataHandler 建立一個 MetadataHandler 實例
func NewMetadataHandler(db DBStore) *MetadataHandler {
	if db == nil {
		log.Panicln("MetadataHandler：DBStore 不得為空")
	}
	return &MetadataHandler{db: db}
}

func (h *MetadataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "僅支援 GET 方法", http.StatusMethodNotAllowed)
		return
	}
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "缺少 fileId 參數"})
		return
	}

	records, err := h.db.GetMetadata(r.Context(), fileID)
	if err != nil {
		log.Printf("錯誤：[MetadataHandler] 查詢檔案 %s 的 metadata 失敗: %v", fileID, err)
		http.Error(w, "無法取得 metadata", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"file_id": fileID, "templates": records})
}
