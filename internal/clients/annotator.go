// Package clients 依設定選擇影像標註後端。
package clients

import (
	"ImageRecognitionSkill/internal/clients/gemini"
	"ImageRecognitionSkill/internal/clients/vision"
	"ImageRecognitionSkill/internal/config"
	"ImageRecognitionSkill/internal/services"
	"context"
	"fmt"
	"log"
)

// NewAnnotator 依 annotator.backend 建立標註客戶端，並回傳對應的關閉函式
func NewAnnotator(ctx context.Context, cfg *config.Config) (services.Annotator, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Annotator.Backend {
	case config.BackendVision, "":
		c, err := vision.NewClient(ctx, cfg.Vision)
		if err != nil {
			return nil, noop, fmt.Errorf("初始化 Vision 客戶端失敗: %w", err)
		}
		log.Println("資訊：影像標註後端：Cloud Vision API")
		return c, noop, nil
	case config.BackendGemini:
		c, err := gemini.NewClient(ctx, cfg.GeminiClient.APIKey, cfg.GeminiClient.Model)
		if err != nil {
			return nil, noop, fmt.Errorf("初始化 Gemini 客戶端失敗: %w", err)
		}
		log.Println("資訊：影像標註後端：Gemini")
		return c, c.Close, nil
	default:
		return nil, noop, fmt.Errorf("不支援的影像標註後端: %s", cfg.Annotator.Backend)
	}
}
