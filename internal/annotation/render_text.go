package annotation

import (
	"strconv"
	"strings"
)

const (
	entrySeparator   = ", "
	sectionSeparator = "\n\n"
)

// RenderFlatText 將選出的分類組成舊版的單一文字元數據：
// 每個段落為 "<分類>: <內容>"，以兩個換行結束；沒有任何內容時回傳空字串。
func RenderFlatText(selected []Selection) string {
	var sb strings.Builder
	for _, s := range selected {
		switch c := s.Category.(type) {
		case Entities:
			if len(c) == 0 {
				continue
			}
			descriptions := make([]string, 0, len(c))
			for _, e := range c {
				descriptions = append(descriptions, e.Description)
			}
			writeSection(&sb, s.Name, strings.Join(descriptions, entrySeparator))
		case FullText:
			if c.Text == "" {
				continue
			}
			writeSection(&sb, s.Name, c.Text)
		case ImageProperties:
			if len(c.DominantColors) == 0 {
				continue
			}
			colors := make([]string, 0, len(c.DominantColors))
			for _, info := range c.DominantColors {
				colors = append(colors, NameColor(info.Red, info.Green, info.Blue)+" ("+FormatScore(info.Score)+")")
			}
			writeSection(&sb, s.Name, strings.Join(colors, entrySeparator))
		}
	}
	return sb.String()
}

func writeSection(sb *strings.Builder, name, body string) {
	sb.WriteString(name)
	sb.WriteString(": ")
	sb.WriteString(body)
	sb.WriteString(sectionSeparator)
}

// FormatScore 輸出最短且可還原的十進位表示，例如 0.9
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
