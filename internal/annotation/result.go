package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

var entityCategoryNames = map[string]bool{
	LandmarkAnnotations: true,
	LogoAnnotations:     true,
	LabelAnnotations:    true,
	TextAnnotations:     true,
}

var unsupportedCategoryNames = map[string]bool{
	FaceAnnotations:      true,
	CropHintsAnnotation:  true,
	SafeSearchAnnotation: true,
	WebDetection:         true,
}

type wireEntity struct {
	Mid         string  `json:"mid"`
	Description *string `json:"description"`
	Score       float64 `json:"score"`
}

type wireFullText struct {
	Text *string `json:"text"`
}

type wireImageProperties struct {
	DominantColors *struct {
		Colors []struct {
			Color *struct {
				Red   float64 `json:"red"`
				Green float64 `json:"green"`
				Blue  float64 `json:"blue"`
			} `json:"color"`
			Score         float64 `json:"score"`
			PixelFraction float64 `json:"pixelFraction"`
		} `json:"colors"`
	} `json:"dominantColors"`
}

// ParseResult 解析 Vision API AnnotateImageResponse 形狀的 JSON。
// 只有整份 JSON 無效時才回傳錯誤；個別分類格式不符時視為不存在。
func ParseResult(raw []byte) (Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("無法解析標註結果 JSON: %w", err)
	}

	result := make(Result, len(fields))
	for name, payload := range fields {
		if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
			continue
		}
		switch {
		case entityCategoryNames[name]:
			var items []wireEntity
			if err := json.Unmarshal(payload, &items); err != nil {
				continue
			}
			if entities := toEntities(items); len(entities) > 0 {
				result[name] = entities
			}
		case name == FullTextAnnotation:
			var ft wireFullText
			if err := json.Unmarshal(payload, &ft); err != nil || ft.Text == nil || *ft.Text == "" {
				continue
			}
			result[name] = FullText{Text: *ft.Text}
		case name == ImagePropertiesAnnotation:
			var ip wireImageProperties
			if err := json.Unmarshal(payload, &ip); err != nil || ip.DominantColors == nil {
				continue
			}
			props := ImageProperties{}
			for _, c := range ip.DominantColors.Colors {
				if c.Color == nil {
					continue
				}
				props.DominantColors = append(props.DominantColors, ColorInfo{
					Red:           ColorComponent(c.Color.Red),
					Green:         ColorComponent(c.Color.Green),
					Blue:          ColorComponent(c.Color.Blue),
					Score:         c.Score,
					PixelFraction: c.PixelFraction,
				})
			}
			if len(props.DominantColors) > 0 {
				result[name] = props
			}
		case unsupportedCategoryNames[name]:
			result[name] = Unsupported{Name: name}
		}
	}
	return result, nil
}

// toEntities 略過沒有 description 的項目
func toEntities(items []wireEntity) Entities {
	var entities Entities
	for _, item := range items {
		if item.Description == nil {
			continue
		}
		entities = append(entities, Entity{Mid: item.Mid, Description: *item.Description, Score: item.Score})
	}
	return entities
}

// ColorComponent 將 API 回傳的浮點色值四捨五入並限制在 0-255
func ColorComponent(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return int(math.Round(v))
}

// Names 回傳結果中存在的分類名稱（排序後）
func (r Result) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
