package models

import (
	"time"
)

// JobStatus 定義標註任務狀態
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"    // 已收到事件，尚未開始
	JobStatusAnnotating JobStatus = "annotating" // 正在讀取影像並呼叫標註服務
	JobStatusCompleted  JobStatus = "completed"  // 所有範本已寫入
	JobStatusFailed     JobStatus = "failed"     // 任一步驟失敗，可由排程重跑
)

// SkillJob 對應 skill_jobs 資料表，一個檔案事件一筆
type SkillJob struct {
	ID           string          `json:"id"`
	FileID       string          `json:"file_id"`
	ActorID      string          `json:"actor_id,omitempty"`
	Trigger      string          `json:"trigger,omitempty"`
	Status       JobStatus       `json:"status"`
	Attempts     int             `json:"attempts"`
	Categories   StringList      `json:"categories,omitempty"` // 標註結果中存在的分類名稱
	ErrorMessage JsonNullString  `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MetadataRecord 對應 file_metadata 資料表：一個檔案在某 scope 下的一個範本實例
type MetadataRecord struct {
	FileID      string            `json:"file_id"`
	Scope       string            `json:"scope"`
	TemplateKey string            `json:"template_key"`
	Value       map[string]string `json:"value"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
