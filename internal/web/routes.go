package web

import (
	"ImageRecognitionSkill/internal/web/handlers"
	"log"
	"net/http"
)

// SkillService 是路由需要的服務能力：處理事件與重跑失敗任務
type SkillService interface {
	handlers.SkillProcessor
	handlers.ReprocessRunner
}

// SetupRouter 設定所有 HTTP 路由
func SetupRouter(db handlers.DBStore, skillService SkillService) http.Handler {
	if db == nil {
		log.Panicln("SetupRouter：DBStore 不得為空")
	}
	if skillService == nil {
		log.Panicln("SetupRouter：SkillService 不得為空")
	}
	mux := http.NewServeMux()

	mux.Handle("/webhook", handlers.NewWebhookHandler(skillService))
	mux.Handle("/manual-reprocess", handlers.NewTriggerReprocessHandler(skillService))
	mux.Handle("/metadata", handlers.NewMetadataHandler(db))
	mux.Handle("/export", handlers.NewExportHandler(db))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("警告：未匹配的路由: %s", r.URL.Path)
		http.NotFound(w, r)
	})

	log.Println("資訊：HTTP 路由設定完成。")
	return mux
}
