package mysql

import (
	"ImageRecognitionSkill/internal/config"
	"ImageRecognitionSkill/internal/models"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

// ErrJobNotFound 查無指定的標註任務
var ErrJobNotFound = errors.New("找不到指定的標註任務")

// MySQLStore 保存檔案 metadata 範本實例與標註任務紀錄
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore 開啟並驗證資料庫連線
func NewMySQLStore(dbCfg config.DatabaseConfig) (*MySQLStore, error) {
	if dbCfg.Driver != "mysql" {
		return nil, fmt.Errorf("不支援的資料庫驅動程式: %s", dbCfg.Driver)
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true", dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.DBName)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("開啟資料庫連線失敗: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("無法連線到資料庫 (ping 失敗): %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	log.Println("資訊：成功連線到 MySQL 資料庫。")
	return &MySQLStore{db: db}, nil
}

// NewMySQLStoreWithDB 使用已開啟的連線（測試用）
func NewMySQLStoreWithDB(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) Close() error {
	if s.db != nil {
		log.Println("資訊：正在關閉 MySQL 資料庫連線...")
		return s.db.Close()
	}
	return nil
}

// WriteMetadata 寫入（或覆寫）一個檔案在 scope 下的範本實例
func (s *MySQLStore) WriteMetadata(ctx context.Context, fileID, scope, templateKey string, value map[string]string) error {
	if fileID == "" || templateKey == "" {
		return fmt.Errorf("寫入 metadata 需要 fileID 與 templateKey (fileID: '%s', templateKey: '%s')", fileID, templateKey)
	}
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化 metadata 失敗 (檔案 %s, 範本 %s): %w", fileID, templateKey, err)
	}
	query := `
		INSERT INTO file_metadata (file_id, scope, template_key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			value = VALUES(value),
			updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, query, fileID, scope, templateKey, valueJSON); err != nil {
		return fmt.Errorf("寫入 metadata 失敗 (檔案 %s, scope %s, 範本 %s): %w", fileID, scope, templateKey, err)
	}
	log.Printf("資訊：[MySQLStore] 已寫入檔案 %s 的範本 %s/%s\n", fileID, scope, templateKey)
	return nil
}

// GetMetadata 依範本鍵排序列出檔案的所有範本實例
func (s *MySQLStore) GetMetadata(ctx context.Context, fileID string) ([]models.MetadataRecord, error) {
	query := `
		SELECT file_id, scope, template_key, value, updated_at
		FROM file_metadata
		WHERE file_id = ?
		ORDER BY scope, template_key`
	rows, err := s.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("查詢檔案 %s 的 metadata 失敗: %w", fileID, err)
	}
	defer rows.Close()

	records := []models.MetadataRecord{}
	for rows.Next() {
		var rec models.MetadataRecord
		var raw []byte
		if err := rows.Scan(&rec.FileID, &rec.Scope, &rec.TemplateKey, &raw, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("掃描 metadata 資料列失敗: %w", err)
		}
		if err := json.Unmarshal(raw, &rec.Value); err != nil {
			log.Printf("警告：[MySQLStore] 檔案 %s 範本 %s 的 value 不是有效的 JSON: %v\n", rec.FileID, rec.TemplateKey, err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("讀取 metadata 資料列時發生錯誤: %w", err)
	}
	return records, nil
}

// CreateJob 建立一筆 pending 任務；ID 為空時自動產生
func (s *MySQLStore) CreateJob(ctx context.Context, job *models.SkillJob) error {
	if job == nil || job.FileID == "" {
		return fmt.Errorf("建立任務需要 fileID")
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	now := time.Now()
	job.CreatedAt, job.UpdatedAt = now, now

	query := `
		INSERT INTO skill_jobs (id, file_id, actor_id, trigger_name, status, attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, job.ID, job.FileID, job.ActorID, job.Trigger, job.Status, job.Attempts, job.CreatedAt, job.UpdatedAt); err != nil {
		return fmt.Errorf("建立檔案 %s 的任務失敗: %w", job.FileID, err)
	}
	return nil
}

// UpdateJobStatus 更新任務狀態；進入 annotating 時累加嘗試次數
func (s *MySQLStore) UpdateJobStatus(ctx context.Context, id string, status models.JobStatus, categories []string, errMsg string) error {
	increment := 0
	if status == models.JobStatusAnnotating {
		increment = 1
	}

	query := `
		UPDATE skill_jobs
		SET status = ?, attempts = attempts + ?, categories = COALESCE(?, categories), error_message = ?, updated_at = NOW()
		WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, status, increment, models.StringList(categories), models.NewJsonNullString(errMsg).NullString, id)
	if err != nil {
		return fmt.Errorf("更新任務 %s 狀態為 %s 失敗: %w", id, status, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("更新任務 %s: %w", id, ErrJobNotFound)
	}
	return nil
}

const jobColumns = `id, file_id, actor_id, trigger_name, status, attempts, categories, error_message, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (models.SkillJob, error) {
	var job models.SkillJob
	var actorID, trigger sql.NullString
	err := row.Scan(&job.ID, &job.FileID, &actorID, &trigger, &job.Status, &job.Attempts, &job.Categories, &job.ErrorMessage.NullString, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return job, err
	}
	job.ActorID, job.Trigger = actorID.String, trigger.String
	return job, nil
}

// GetJob 依 ID 取得任務
func (s *MySQLStore) GetJob(ctx context.Context, id string) (*models.SkillJob, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM skill_jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("任務 %s: %w", id, ErrJobNotFound)
		}
		return nil, fmt.Errorf("查詢任務 %s 失敗: %w", id, err)
	}
	return &job, nil
}

// GetJobsByStatus 取得指定狀態且嘗試次數未達 maxAttempts 的任務。
// 依 updated_at 排序，重跑過的任務會排到後面，新失敗的任務才輪得到。
func (s *MySQLStore) GetJobsByStatus(ctx context.Context, status models.JobStatus, maxAttempts int, limit int) ([]models.SkillJob, error) {
	query := "SELECT " + jobColumns + " FROM skill_jobs WHERE status = ? AND attempts < ? ORDER BY updated_at ASC, created_at ASC LIMIT ?"
	return s.queryJobs(ctx, query, status, maxAttempts, limit)
}

// ListJobs 依建立時間由新到舊分頁列出任務
func (s *MySQLStore) ListJobs(ctx context.Context, limit int, offset int) ([]models.SkillJob, error) {
	query := "SELECT " + jobColumns + " FROM skill_jobs ORDER BY created_at DESC LIMIT ? OFFSET ?"
	return s.queryJobs(ctx, query, limit, offset)
}

func (s *MySQLStore) queryJobs(ctx context.Context, query string, args ...any) ([]models.SkillJob, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查詢任務列表失敗: %w", err)
	}
	defer rows.Close()

	jobs := []models.SkillJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("掃描任務資料列失敗: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("讀取任務資料列時發生錯誤: %w", err)
	}
	return jobs, nil
}
