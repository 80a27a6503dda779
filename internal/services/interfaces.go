package services

import (
	"ImageRecognitionSkill/internal/annotation"
	"ImageRecognitionSkill/internal/models"
	"context"
)

// Annotator 介面定義了影像標註服務（Vision API 或 Gemini）
type Annotator interface {
	Annotate(ctx context.Context, image []byte, features []string) (annotation.Result, error)
}

// ImageSource 介面定義了影像來源（NAS）
type ImageSource interface {
	ReadImage(fileID string, actorID string) ([]byte, error)
}

// SkillStore 介面定義了 metadata 寫入與任務紀錄
type SkillStore interface {
	WriteMetadata(ctx context.Context, fileID, scope, templateKey string, value map[string]string) error
	CreateJob(ctx context.Context, job *models.SkillJob) error
	UpdateJobStatus(ctx context.Context, id string, status models.JobStatus, categories []string, errMsg string) error
	GetJobsByStatus(ctx context.Context, status models.JobStatus, maxAttempts int, limit int) ([]models.SkillJob, error)
}
