package scheduler

import (
	"ImageRecognitionSkill/internal/services"
	"errors"
	"log"
)

// Runner 由 SkillService 實作
type Runner interface {
	Run() error
}

// ReprocessJob 是一個排程任務，用於重跑失敗的標註任務
type ReprocessJob struct {
	runner Runner
}

// NewReprocessJob 建立一個 ReprocessJob
func NewReprocessJob(r Runner) *ReprocessJob {
	return &ReprocessJob{runner: r}
}

// Run 實現 cron.Job 介面 (github.com/robfig/cron/v3)
func (j *ReprocessJob) Run() {
	log.Println("資訊：執行排程任務 - 重跑失敗的標註任務...")
	err := j.runner.Run()
	switch {
	case errors.Is(err, services.ErrReprocessRunning):
		log.Println("警告：重跑任務已在進行中（可能是手動觸發），本次排程略過。")
	case err != nil:
		log.Printf("錯誤：重跑排程任務執行失敗: %v", err)
	default:
		log.Println("資訊：重跑排程任務執行完成。")
	}
}
