package annotation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SkillsDataType 是 skills 卡片的類別
type SkillsDataType string

const (
	SkillsDataKeyword    SkillsDataType = "keyword"
	SkillsDataTranscript SkillsDataType = "transcript"
)

// ErrUnsupportedClass 表示呼叫端傳入了未定義的 skills_data_type
var ErrUnsupportedClass = errors.New("不支援的 skills_data_type")

// ParseSkillsDataType 驗證字串是否為已定義的類別
func ParseSkillsDataType(s string) (SkillsDataType, error) {
	switch SkillsDataType(s) {
	case SkillsDataKeyword, SkillsDataTranscript:
		return SkillsDataType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedClass, s)
}

// Entry 是卡片中的一筆文字
type Entry struct {
	Text string `json:"text"`
}

// SkillsData 欄位順序即序列化順序
type SkillsData struct {
	Type           string         `json:"type"`
	SkillsDataType SkillsDataType `json:"skills_data_type"`
	Skill          struct{}       `json:"skill"`
	Invocation     struct{}       `json:"invocation"`
	Title          string         `json:"title"`
	Entries        []Entry        `json:"entries"`
}

// SkillsDocument 是寫入元數據範本的完整文件
type SkillsDocument struct {
	SkillsData []SkillsData `json:"skills_data"`
}

// MetadataValue 是元數據儲存端接收的值：{templateKey: 文件字串}
type MetadataValue map[string]string

// BuildSkillsDocument 每次呼叫都建立新的文件，不共用任何範本物件
func BuildSkillsDocument(selected []Selection, class SkillsDataType, title string) (SkillsDocument, error) {
	if _, err := ParseSkillsDataType(string(class)); err != nil {
		return SkillsDocument{}, err
	}
	entries := []Entry{}
	for _, s := range selected {
		switch c := s.Category.(type) {
		case Entities:
			for _, e := range c {
				entries = append(entries, Entry{Text: e.Description})
			}
		case FullText:
			if c.Text != "" {
				entries = append(entries, Entry{Text: c.Text})
			}
		}
	}
	return SkillsDocument{
		SkillsData: []SkillsData{{
			Type:           "skills_data",
			SkillsDataType: class,
			Title:          title,
			Entries:        entries,
		}},
	}, nil
}

// RenderStructured 產生單一範本的 skills 文件，並包在 templateKey 之下
func RenderStructured(selected []Selection, class SkillsDataType, title string, templateKey string) (MetadataValue, error) {
	if templateKey == "" {
		return nil, fmt.Errorf("templateKey 不得為空")
	}
	doc, err := BuildSkillsDocument(selected, class, title)
	if err != nil {
		return nil, err
	}
	serialized, err := marshalDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("序列化 skills 文件失敗 (template: %s): %w", templateKey, err)
	}
	return MetadataValue{templateKey: serialized}, nil
}

// marshalDocument 不轉義 HTML 字元，讓 OCR 文字中的 <、&、> 保持原樣
func marshalDocument(doc SkillsDocument) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
