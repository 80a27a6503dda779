// Package annotation 將影像辨識服務回傳的多重標註結果，轉換成可寫回文件管理系統的元數據。
// 這個套件不做任何 I/O，所有函式都可以被並行呼叫。
package annotation

// 標註分類名稱，與 Vision API AnnotateImageResponse 的 JSON 欄位一致
const (
	LandmarkAnnotations       = "landmarkAnnotations"
	LogoAnnotations           = "logoAnnotations"
	LabelAnnotations          = "labelAnnotations"
	TextAnnotations           = "textAnnotations"
	FullTextAnnotation        = "fullTextAnnotation"
	ImagePropertiesAnnotation = "imagePropertiesAnnotation"
	FaceAnnotations           = "faceAnnotations"
	CropHintsAnnotation       = "cropHintsAnnotation"
	SafeSearchAnnotation      = "safeSearchAnnotation"
	WebDetection              = "webDetection"
)

// 各輸出模式預設的分類優先順序
var (
	// FlatTextCategories 舊版純文字元數據使用的順序
	FlatTextCategories = []string{
		LandmarkAnnotations,
		LogoAnnotations,
		LabelAnnotations,
		TextAnnotations,
		FullTextAnnotation,
		ImagePropertiesAnnotation,
	}
	// KeywordCategories 關鍵字 skills 卡片：logo 在 label 之前
	KeywordCategories = []string{LogoAnnotations, LabelAnnotations}
	// TranscriptCategories OCR 逐字稿 skills 卡片
	TranscriptCategories = []string{FullTextAnnotation}
)

// Category 是單一標註分類的內容。實作只有 Entities、FullText、ImageProperties 與 Unsupported。
type Category interface {
	isEmpty() bool
}

// Entity 是 landmark / logo / label / text 等實體標註中的一筆
type Entity struct {
	Mid         string
	Description string
	Score       float64
}

// Entities 依服務給定的信心順序排列，永遠不重新排序
type Entities []Entity

func (e Entities) isEmpty() bool { return len(e) == 0 }

// FullText 是文件 OCR 的整段文字
type FullText struct {
	Text string
}

func (f FullText) isEmpty() bool { return f.Text == "" }

// ColorInfo 是主色調中的一個顏色，RGB 為 0-255
type ColorInfo struct {
	Red           int
	Green         int
	Blue          int
	Score         float64
	PixelFraction float64
}

// ImageProperties 依主色程度排序的顏色
type ImageProperties struct {
	DominantColors []ColorInfo
}

func (p ImageProperties) isEmpty() bool { return len(p.DominantColors) == 0 }

// Unsupported 保留給 face / crop hints / safe search / web detection，目前不格式化
type Unsupported struct {
	Name string
}

func (Unsupported) isEmpty() bool { return true }

// Result 是分類名稱到內容的對應。缺少的分類等同於空內容。
type Result map[string]Category
