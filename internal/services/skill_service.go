package services

import (
	"ImageRecognitionSkill/internal/annotation"
	"ImageRecognitionSkill/internal/config"
	"ImageRecognitionSkill/internal/models"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrMissingFileID 事件中沒有檔案 ID
	ErrMissingFileID = errors.New("事件缺少 source.id")
	// ErrReprocessRunning 已有重跑批次在執行
	ErrReprocessRunning = errors.New("重跑任務已在進行中")
)

// ProcessResult 描述一次處理寫入了哪些範本
type ProcessResult struct {
	JobID      string   `json:"job_id"`
	FileID     string   `json:"file_id"`
	Categories []string `json:"categories"`
	Templates  []string `json:"templates"`
}

// Output 是一個待寫入的範本實例
type Output struct {
	TemplateKey string
	Value       map[string]string
	Structured  bool // skills_data 文件，寫入前需通過 schema 驗證
}

// SkillService 結構：讀取影像、呼叫標註服務、寫入 metadata
type SkillService struct {
	cfg       *config.Config
	store     SkillStore
	images    ImageSource
	annotator Annotator
	schema    *jsonschema.Schema

	reprocessMu sync.Mutex
}

// NewSkillService 建立 SkillService 實例
func NewSkillService(cfg *config.Config, store SkillStore, images ImageSource, annotator Annotator) (*SkillService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("SkillService：設定不得為空")
	}
	if store == nil {
		return nil, fmt.Errorf("SkillService：SkillStore 不得為空")
	}
	if images == nil {
		return nil, fmt.Errorf("SkillService：ImageSource 不得為空")
	}
	if annotator == nil {
		return nil, fmt.Errorf("SkillService：Annotator 不得為空")
	}
	schema, err := compileSkillsDataSchema()
	if err != nil {
		return nil, fmt.Errorf("SkillService：%w", err)
	}
	log.Println("資訊：SkillService 初始化完成。")
	return &SkillService{
		cfg:       cfg,
		store:     store,
		images:    images,
		annotator: annotator,
		schema:    schema,
	}, nil
}

// Process 處理一個檔案事件：建立任務並執行
func (s *SkillService) Process(ctx context.Context, event models.WebhookEvent) (*ProcessResult, error) {
	fileID := event.FileID()
	if fileID == "" {
		return nil, ErrMissingFileID
	}
	job := &models.SkillJob{
		FileID:  fileID,
		ActorID: event.ActorID(),
		Trigger: event.Trigger,
		Status:  models.JobStatusPending,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("[SkillService] 無法建立檔案 %s 的任務: %w", fileID, err)
	}
	log.Printf("資訊：[SkillService] 收到檔案 %s 的事件 (trigger: %s)，任務 ID: %s\n", fileID, job.Trigger, job.ID)
	return s.runJob(ctx, job)
}

// runJob 執行任務並更新其狀態；失敗時保留錯誤訊息以便排程重跑
func (s *SkillService) runJob(ctx context.Context, job *models.SkillJob) (*ProcessResult, error) {
	if err := s.store.UpdateJobStatus(ctx, job.ID, models.JobStatusAnnotating, nil, ""); err != nil {
		return nil, fmt.Errorf("[SkillService] 無法更新任務 %s 狀態: %w", job.ID, err)
	}

	result, err := s.annotateAndWrite(ctx, job)
	if err != nil {
		log.Printf("錯誤：[SkillService] 檔案 %s (任務 %s) 處理失敗: %v\n", job.FileID, job.ID, err)
		var categories []string
		if result != nil {
			categories = result.Categories
		}
		// 原始 ctx 可能已取消，狀態仍要寫回
		statusCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if updateErr := s.store.UpdateJobStatus(statusCtx, job.ID, models.JobStatusFailed, categories, err.Error()); updateErr != nil {
			log.Printf("錯誤：[SkillService] 無法將任務 %s 標記為失敗: %v\n", job.ID, updateErr)
		}
		return nil, err
	}

	if err := s.store.UpdateJobStatus(ctx, job.ID, models.JobStatusCompleted, result.Categories, ""); err != nil {
		return nil, fmt.Errorf("[SkillService] 無法將任務 %s 標記為完成: %w", job.ID, err)
	}
	log.Printf("資訊：[SkillService] 檔案 %s 處理完成，已寫入範本: %v\n", job.FileID, result.Templates)
	return result, nil
}

func (s *SkillService) annotateAndWrite(ctx context.Context, job *models.SkillJob) (*ProcessResult, error) {
	image, err := s.images.ReadImage(job.FileID, job.ActorID)
	if err != nil {
		return nil, fmt.Errorf("讀取檔案 %s 的影像失敗: %w", job.FileID, err)
	}

	annotateCtx := ctx
	if secs := s.cfg.Annotator.TimeoutSeconds; secs > 0 {
		var cancel context.CancelFunc
		annotateCtx, cancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
		defer cancel()
	}
	annotations, err := s.annotator.Annotate(annotateCtx, image, s.cfg.Vision.Features)
	if err != nil {
		return nil, fmt.Errorf("檔案 %s 影像標註失敗: %w", job.FileID, err)
	}

	result := &ProcessResult{JobID: job.ID, FileID: job.FileID, Categories: annotations.Names()}
	outputs, err := BuildOutputs(s.cfg.Metadata, annotations)
	if err != nil {
		return result, err
	}
	for _, o := range outputs {
		if o.Structured {
			if err := validateSkillsDocument(s.schema, o.Value[o.TemplateKey]); err != nil {
				return result, fmt.Errorf("範本 %s: %w", o.TemplateKey, err)
			}
		}
		result.Templates = append(result.Templates, o.TemplateKey)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, o := range outputs {
		o := o
		g.Go(func() error {
			if err := s.store.WriteMetadata(gctx, job.FileID, s.cfg.Metadata.Scope, o.TemplateKey, o.Value); err != nil {
				return fmt.Errorf("寫入檔案 %s 的範本 %s 失敗: %w", job.FileID, o.TemplateKey, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

// LegacyCategories 回傳舊版純文字範本使用的分類；未設定時使用預設清單
func LegacyCategories(legacy config.LegacyTemplateConfig) []string {
	if len(legacy.Categories) == 0 {
		return annotation.FlatTextCategories
	}
	return legacy.Categories
}

// BuildOutputs 依設定產生所有範本實例：舊版純文字範本（若啟用）與每個 skills 範本
func BuildOutputs(meta config.MetadataConfig, result annotation.Result) ([]Output, error) {
	var outputs []Output

	if legacy := meta.Legacy; legacy.Enabled {
		text := annotation.RenderFlatText(annotation.Select(result, LegacyCategories(legacy)))
		outputs = append(outputs, Output{TemplateKey: legacy.TemplateKey, Value: map[string]string{legacy.Field: text}})
	}

	for _, tmpl := range meta.Templates {
		class, err := annotation.ParseSkillsDataType(tmpl.Class)
		if err != nil {
			return nil, fmt.Errorf("範本 %s: %w", tmpl.TemplateKey, err)
		}
		value, err := annotation.RenderStructured(annotation.Select(result, tmpl.Categories), class, tmpl.Title, tmpl.TemplateKey)
		if err != nil {
			return nil, fmt.Errorf("範本 %s 產生失敗: %w", tmpl.TemplateKey, err)
		}
		outputs = append(outputs, Output{TemplateKey: tmpl.TemplateKey, Value: value, Structured: true})
	}
	return outputs, nil
}

// defaultMaxAttempts 設定未提供 scheduler.maxAttempts 時的重跑上限
const defaultMaxAttempts = 5

// ReprocessFailed 重跑最多 batchSize 個尚未達嘗試上限的失敗任務，回傳成功數量
func (s *SkillService) ReprocessFailed(ctx context.Context) (int, error) {
	if !s.reprocessMu.TryLock() {
		return 0, ErrReprocessRunning
	}
	defer s.reprocessMu.Unlock()

	maxAttempts := s.cfg.Scheduler.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	jobs, err := s.store.GetJobsByStatus(ctx, models.JobStatusFailed, maxAttempts, s.cfg.Scheduler.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("[SkillService] 查詢失敗任務時發生錯誤: %w", err)
	}
	if len(jobs) == 0 {
		log.Println("資訊：[SkillService] 沒有需要重跑的失敗任務。")
		return 0, nil
	}

	log.Printf("資訊：[SkillService] 開始重跑 %d 個失敗任務...\n", len(jobs))
	succeeded := 0
	var errs []error
	for i := range jobs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.runJob(ctx, &jobs[i]); err != nil {
			errs = append(errs, fmt.Errorf("任務 %s: %w", jobs[i].ID, err))
			continue
		}
		succeeded++
	}
	log.Printf("資訊：[SkillService] 重跑完成：成功 %d / %d\n", succeeded, len(jobs))
	return succeeded, errors.Join(errs...)
}

// Run 供排程器與手動觸發呼叫
func (s *SkillService) Run() error {
	_, err := s.ReprocessFailed(context.Background())
	return err
}
