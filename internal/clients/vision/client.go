package vision

import (
	"ImageRecognitionSkill/internal/annotation"
	"ImageRecognitionSkill/internal/config"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// Client 結構用於與 Cloud Vision API 互動
type Client struct {
	svc        *vision.Service
	maxResults int64
}

// NewClient 建立 Vision 客戶端；API Key 與服務帳號憑證擇一使用
func NewClient(ctx context.Context, cfg config.VisionConfig, extraOpts ...option.ClientOption) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		log.Println("警告：[Vision Client] 未設定 API Key 或憑證檔，將使用應用程式預設憑證。")
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	opts = append(opts, extraOpts...)

	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("無法建立 Vision API 服務: %w", err)
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	log.Println("資訊：[Vision Client] 初始化成功。")
	return &Client{svc: svc, maxResults: maxResults}, nil
}

// Annotate 送出單張影像的標註請求，並轉換為 annotation.Result。
// 傳輸或配額錯誤原樣包裝後回傳，不重試。
func (c *Client) Annotate(ctx context.Context, image []byte, features []string) (annotation.Result, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("要標註的影像內容不得為空")
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("至少需要一個標註功能")
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: c.buildFeatures(features),
		}},
	}
	log.Printf("資訊：[Vision Client] Annotate - 正在送出請求 (影像大小: %d bytes, 功能: %s)\n", len(image), strings.Join(features, ","))
	resp, err := c.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("Vision API images:annotate 失敗: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return nil, fmt.Errorf("Vision API 回應無效或為空")
	}
	first := resp.Responses[0]
	if first.Error != nil && first.Error.Code != 0 {
		return nil, fmt.Errorf("Vision API 回報錯誤 (code %d): %s", first.Error.Code, first.Error.Message)
	}

	result := FromResponse(first)
	log.Printf("資訊：[Vision Client] Annotate - 完成，取得分類: %s\n", strings.Join(result.Names(), ","))
	return result, nil
}

func (c *Client) buildFeatures(features []string) []*vision.Feature {
	out := make([]*vision.Feature, 0, len(features))
	for _, f := range features {
		out = append(out, &vision.Feature{Type: strings.ToUpper(strings.TrimSpace(f)), MaxResults: c.maxResults})
	}
	return out
}

// FromResponse 將 Vision API 的回應轉換為標註結果；空的分類不放入結果
func FromResponse(resp *vision.AnnotateImageResponse) annotation.Result {
	result := annotation.Result{}
	if resp == nil {
		return result
	}
	putEntities(result, annotation.LandmarkAnnotations, resp.LandmarkAnnotations)
	putEntities(result, annotation.LogoAnnotations, resp.LogoAnnotations)
	putEntities(result, annotation.LabelAnnotations, resp.LabelAnnotations)
	putEntities(result, annotation.TextAnnotations, resp.TextAnnotations)

	if resp.FullTextAnnotation != nil && resp.FullTextAnnotation.Text != "" {
		result[annotation.FullTextAnnotation] = annotation.FullText{Text: resp.FullTextAnnotation.Text}
	}

	if p := resp.ImagePropertiesAnnotation; p != nil && p.DominantColors != nil {
		var colors []annotation.ColorInfo
		for _, ci := range p.DominantColors.Colors {
			if ci == nil || ci.Color == nil {
				continue
			}
			colors = append(colors, annotation.ColorInfo{
				Red:           annotation.ColorComponent(ci.Color.Red),
				Green:         annotation.ColorComponent(ci.Color.Green),
				Blue:          annotation.ColorComponent(ci.Color.Blue),
				Score:         ci.Score,
				PixelFraction: ci.PixelFraction,
			})
		}
		if len(colors) > 0 {
			result[annotation.ImagePropertiesAnnotation] = annotation.ImageProperties{DominantColors: colors}
		}
	}

	if len(resp.FaceAnnotations) > 0 {
		result[annotation.FaceAnnotations] = annotation.Unsupported{Name: annotation.FaceAnnotations}
	}
	if resp.CropHintsAnnotation != nil {
		result[annotation.CropHintsAnnotation] = annotation.Unsupported{Name: annotation.CropHintsAnnotation}
	}
	if resp.SafeSearchAnnotation != nil {
		result[annotation.SafeSearchAnnotation] = annotation.Unsupported{Name: annotation.SafeSearchAnnotation}
	}
	if resp.WebDetection != nil {
		result[annotation.WebDetection] = annotation.Unsupported{Name: annotation.WebDetection}
	}
	return result
}

func putEntities(result annotation.Result, name string, items []*vision.EntityAnnotation) {
	var entities annotation.Entities
	for _, item := range items {
		if item == nil {
			continue
		}
		entities = append(entities, annotation.Entity{Mid: item.Mid, Description: item.Description, Score: item.Score})
	}
	if len(entities) > 0 {
		result[name] = entities
	}
}
