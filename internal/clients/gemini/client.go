package gemini

import (
	"ImageRecognitionSkill/internal/annotation"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client 使用 Gemini 多模態模型產生與 Vision API 相同形狀的標註結果
type Client struct {
	sdk   *genai.Client
	model *genai.GenerativeModel
}

// featureCategories 對應 Vision 功能名稱與回應欄位
var featureCategories = map[string]string{
	"LANDMARK_DETECTION":      annotation.LandmarkAnnotations,
	"LOGO_DETECTION":          annotation.LogoAnnotations,
	"LABEL_DETECTION":         annotation.LabelAnnotations,
	"TEXT_DETECTION":          annotation.TextAnnotations,
	"DOCUMENT_TEXT_DETECTION": annotation.FullTextAnnotation,
	"IMAGE_PROPERTIES":        annotation.ImagePropertiesAnnotation,
}

// NewClient 建立一個 Gemini 客戶端實例
func NewClient(ctx context.Context, apiKey string, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API Key 不得為空")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash-latest"
		log.Printf("警告：[Gemini Client] 未提供模型名稱，使用預設值: %s\n", modelName)
	}

	sdk, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("無法建立 Gemini GenAI SDK 客戶端: %w", err)
	}
	model := sdk.GenerativeModel(modelName)
	model.GenerationConfig = genai.GenerationConfig{ResponseMIMEType: "application/json"}
	log.Printf("資訊：[Gemini Client] 影像標註模型 '%s' 初始化成功。\n", modelName)
	return &Client{sdk: sdk, model: model}, nil
}

// Close 關閉底層連線
func (c *Client) Close() error {
	if c.sdk != nil {
		return c.sdk.Close()
	}
	return nil
}

// Annotate 請模型以 Vision API AnnotateImageResponse 的 JSON 形狀描述影像
func (c *Client) Annotate(ctx context.Context, image []byte, features []string) (annotation.Result, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("要標註的影像內容不得為空")
	}
	prompt, err := buildPrompt(features)
	if err != nil {
		return nil, err
	}
	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		log.Printf("警告：[Gemini Client] 無法判斷影像 MIME 類型 (%s)，改用 image/jpeg\n", mimeType)
		mimeType = "image/jpeg"
	}

	log.Printf("資訊：[Gemini Client] Annotate - 正在向 Gemini API 發送請求 (影像大小: %d bytes, MIME: %s)\n", len(image), mimeType)
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt), genai.Blob{MIMEType: mimeType, Data: image})
	if err != nil {
		return nil, fmt.Errorf("Gemini API 影像標註 GenerateContent 失敗: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("Gemini API 影像標註回應無效或為空 (nil response or no candidates)")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("Gemini API 影像標註回應無內容 (FinishReason: %s)", candidate.FinishReason.String())
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		} else {
			log.Printf("警告：[Gemini Client] Annotate - 收到非預期的 Part 類型: %T\n", part)
		}
	}

	cleaned := cleanJSONString(sb.String())
	if !json.Valid([]byte(cleaned)) {
		log.Printf("錯誤：[Gemini Client] Annotate - 清理後的字串仍然不是有效的 JSON:\n%s\n", cleaned)
		return nil, fmt.Errorf("清理後的字串不是有效的 JSON (影像標註)")
	}
	result, err := annotation.ParseResult([]byte(cleaned))
	if err != nil {
		return nil, fmt.Errorf("無法解析 Gemini 影像標註結果: %w", err)
	}
	log.Printf("資訊：[Gemini Client] Annotate - 完成，取得分類: %s\n", strings.Join(result.Names(), ","))
	return result, nil
}

// buildPrompt 只要求呼叫端指定的分類
func buildPrompt(features []string) (string, error) {
	var fields []string
	for _, f := range features {
		if name, ok := featureCategories[strings.ToUpper(strings.TrimSpace(f))]; ok {
			fields = append(fields, name)
		}
	}
	if len(fields) == 0 {
		return "", fmt.Errorf("沒有 Gemini 可處理的標註功能: %v", features)
	}

	var sb strings.Builder
	sb.WriteString("Analyze the image and answer with a single JSON object shaped like a Google Cloud Vision AnnotateImageResponse. ")
	sb.WriteString("Include only these fields: ")
	sb.WriteString(strings.Join(fields, ", "))
	sb.WriteString(". ")
	sb.WriteString("Entity fields are arrays of {\"description\": string, \"score\": number between 0 and 1} ordered by confidence, highest first. ")
	sb.WriteString("fullTextAnnotation is {\"text\": string} holding all readable text. ")
	sb.WriteString("imagePropertiesAnnotation is {\"dominantColors\": {\"colors\": [{\"color\": {\"red\": 0-255, \"green\": 0-255, \"blue\": 0-255}, \"score\": number, \"pixelFraction\": number}]}} ordered by dominance. ")
	sb.WriteString("Omit a field when nothing applies. Do not add commentary.")
	return sb.String(), nil
}

// cleanJSONString 清理從 LLM 收到的可能包含雜質的 JSON 字串
func cleanJSONString(rawResponse string) string {
	cleaned := strings.TrimSpace(rawResponse)

	// 移除可能的 markdown 代碼塊標記
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	cleaned = strings.TrimSpace(cleaned)

	// 只取最外層的物件
	firstBrace := strings.Index(cleaned, "{")
	lastBrace := strings.LastIndex(cleaned, "}")
	if firstBrace != -1 && lastBrace > firstBrace {
		cleaned = cleaned[firstBrace : lastBrace+1]
	}

	if !utf8.ValidString(cleaned) {
		log.Println("警告：[Gemini Client Clean] 回應包含無效的 UTF-8 字元，嘗試替換...")
		cleaned = strings.ToValidUTF8(cleaned, "")
	}
	cleaned = strings.TrimPrefix(cleaned, "\uFEFF")

	// 移除控制字元（保留 \t \n \r）
	return strings.Map(func(r rune) rune {
		if (r >= 0 && r < 9) || r == 11 || r == 12 || (r > 13 && r < 32) || r == 127 {
			return -1
		}
		return r
	}, cleaned)
}
