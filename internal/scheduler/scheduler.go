package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler 以 cron 定期重跑失敗的標註任務
type Scheduler struct {
	cron         *cron.Cron
	reprocessJob *ReprocessJob
}

// NewScheduler 接收重跑任務的 Cron 表達式（含秒欄位）；空字串表示不排程
func NewScheduler(runner Runner, reprocessCronSpec string) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("Scheduler：Runner 不得為空")
	}
	c := cron.New(cron.WithSeconds())
	reprocessJob := NewReprocessJob(runner)

	if reprocessCronSpec != "" {
		if _, err := c.AddJob(reprocessCronSpec, reprocessJob); err != nil {
			return nil, fmt.Errorf("無法新增失敗任務重跑排程 (spec: %s): %w", reprocessCronSpec, err)
		}
		log.Printf("資訊：失敗任務重跑已註冊，排程：%s\n", reprocessCronSpec)
	} else {
		log.Println("警告：未提供重跑任務的 Cron 表達式，該任務將不會被排程。")
	}

	return &Scheduler{
		cron:         c,
		reprocessJob: reprocessJob,
	}, nil
}

// Entries 回傳已註冊的排程數量
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start() // 非阻塞啟動
	log.Println("資訊：排程器已非阻塞啟動。")
}

func (s *Scheduler) Stop() {
	log.Println("資訊：正在停止排程器...")
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		log.Println("資訊：排程器已優雅停止，所有運行中任務已完成。")
	case <-time.After(10 * time.Second):
		log.Println("警告：排程器停止超時，可能仍有任務在執行。")
	}
}
