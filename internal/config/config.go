package config

import (
	"ImageRecognitionSkill/internal/annotation"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// SkillTemplateConfig 描述一張 skills 卡片：從哪些分類取值、寫入哪個範本
type SkillTemplateConfig struct {
	TemplateKey string   `mapstructure:"templateKey"`
	Class       string   `mapstructure:"class"`
	Title       string   `mapstructure:"title"`
	Categories  []string `mapstructure:"categories"`
}

// LegacyTemplateConfig 舊版純文字元數據：寫入 templateKey 範本的 field 欄位
type LegacyTemplateConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	TemplateKey string   `mapstructure:"templateKey"`
	Field       string   `mapstructure:"field"`
	Categories  []string `mapstructure:"categories"`
}

type MetadataConfig struct {
	Scope     string                `mapstructure:"scope"`
	Legacy    LegacyTemplateConfig  `mapstructure:"legacy"`
	Templates []SkillTemplateConfig `mapstructure:"templates"`
}

type SchedulerConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	ReprocessCronSpec string `mapstructure:"reprocessCronSpec"`
	BatchSize         int    `mapstructure:"batchSize"`
	MaxAttempts       int    `mapstructure:"maxAttempts"` // 嘗試次數達上限的失敗任務不再重跑
}

type Config struct {
	AppName      string             `mapstructure:"appName"`
	Server       ServerConfig       `mapstructure:"server"`
	Annotator    AnnotatorConfig    `mapstructure:"annotator"`
	Vision       VisionConfig       `mapstructure:"vision"`
	GeminiClient GeminiClientConfig `mapstructure:"geminiClient"`
	Database     DatabaseConfig     `mapstructure:"database"`
	NAS          NASConfig          `mapstructure:"nas"`
	Metadata     MetadataConfig     `mapstructure:"metadata"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// AnnotatorConfig 選擇影像標註的後端：vision 或 gemini
type AnnotatorConfig struct {
	Backend        string `mapstructure:"backend"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

type VisionConfig struct {
	APIKey          string   `mapstructure:"apiKey"`
	CredentialsFile string   `mapstructure:"credentialsFile"`
	Endpoint        string   `mapstructure:"endpoint"`
	Features        []string `mapstructure:"features"`
	MaxResults      int64    `mapstructure:"maxResults"`
}
type GeminiClientConfig struct {
	APIKey string `mapstructure:"apiKey"`
	Model  string `mapstructure:"model"`
}
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbName"`
}
type NASConfig struct {
	ImagePath string `mapstructure:"imagePath"`
}

const (
	BackendVision = "vision"
	BackendGemini = "gemini"
)

// Load 讀取 YAML 設定檔並以環境變數覆寫（例如 VISION_APIKEY）
func Load(configPath string, configName string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("警告：找不到設定檔，將使用預設值和環境變數。")
		} else {
			return nil, fmt.Errorf("讀取設定檔時發生錯誤: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("無法解析設定檔到結構: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Annotator.Backend == BackendVision && cfg.Vision.APIKey == "" && cfg.Vision.CredentialsFile == "" {
		fmt.Println("警告：Vision API Key 與憑證檔皆未設定！")
	}
	if cfg.Annotator.Backend == BackendGemini && cfg.GeminiClient.APIKey == "" {
		fmt.Println("警告：Gemini API Key 未設定！")
	}

	fmt.Println("資訊：設定載入成功。")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("appName", "ImageRecognitionSkill")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("annotator.backend", BackendVision)
	v.SetDefault("annotator.timeoutSeconds", 60)
	v.SetDefault("vision.features", []string{
		"LANDMARK_DETECTION",
		"LOGO_DETECTION",
		"LABEL_DETECTION",
		"TEXT_DETECTION",
		"DOCUMENT_TEXT_DETECTION",
		"IMAGE_PROPERTIES",
	})
	v.SetDefault("vision.maxResults", 10)
	v.SetDefault("geminiClient.model", "gemini-1.5-flash-latest")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("nas.imagePath", "./data/images")
	v.SetDefault("metadata.scope", "global")
	v.SetDefault("metadata.legacy.enabled", false)
	v.SetDefault("metadata.legacy.templateKey", "imageContent")
	v.SetDefault("metadata.legacy.field", "keywords")
	v.SetDefault("metadata.legacy.categories", []string{
		"landmarkAnnotations",
		"logoAnnotations",
		"labelAnnotations",
		"textAnnotations",
		"fullTextAnnotation",
		"imagePropertiesAnnotation",
	})
	v.SetDefault("metadata.templates", []map[string]interface{}{
		{
			"templateKey": "keywords",
			"class":       "keyword",
			"title":       "Topics",
			"categories":  []string{"logoAnnotations", "labelAnnotations"},
		},
		{
			"templateKey": "transcripts",
			"class":       "transcript",
			"title":       "OCR",
			"categories":  []string{"fullTextAnnotation"},
		},
	})
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.reprocessCronSpec", "0 */15 * * * *")
	v.SetDefault("scheduler.batchSize", 10)
	v.SetDefault("scheduler.maxAttempts", 5)
}

// Validate 檢查設定是否能產生有效的元數據輸出
func (c *Config) Validate() error {
	switch c.Annotator.Backend {
	case BackendVision, BackendGemini:
	default:
		return fmt.Errorf("不支援的 annotator.backend: %q", c.Annotator.Backend)
	}
	if c.Metadata.Scope == "" {
		return fmt.Errorf("metadata.scope 不得為空")
	}
	if c.Metadata.Legacy.Enabled && (c.Metadata.Legacy.TemplateKey == "" || c.Metadata.Legacy.Field == "") {
		return fmt.Errorf("metadata.legacy 啟用時 templateKey 與 field 不得為空")
	}
	seen := make(map[string]bool)
	for i, t := range c.Metadata.Templates {
		if t.TemplateKey == "" {
			return fmt.Errorf("metadata.templates[%d].templateKey 不得為空", i)
		}
		if seen[t.TemplateKey] {
			return fmt.Errorf("metadata.templates 中的 templateKey %q 重複", t.TemplateKey)
		}
		seen[t.TemplateKey] = true
		if _, err := annotation.ParseSkillsDataType(t.Class); err != nil {
			return fmt.Errorf("metadata.templates[%d].class: %w", i, err)
		}
		if len(t.Categories) == 0 {
			return fmt.Errorf("metadata.templates[%d].categories 不得為空", i)
		}
	}
	if c.Metadata.Legacy.Enabled && seen[c.Metadata.Legacy.TemplateKey] {
		return fmt.Errorf("metadata.legacy.templateKey %q 與 skills 範本重複", c.Metadata.Legacy.TemplateKey)
	}
	if c.Scheduler.Enabled && c.Scheduler.BatchSize <= 0 {
		return fmt.Errorf("scheduler.batchSize 必須大於 0")
	}
	if c.Scheduler.Enabled && c.Scheduler.MaxAttempts <= 0 {
		return fmt.Errorf("scheduler.maxAttempts 必須大於 0")
	}
	return nil
}
