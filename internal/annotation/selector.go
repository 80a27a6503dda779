package annotation

// Selection 是被選出的一個分類
type Selection struct {
	Name     string
	Category Category
}

// Select 依 categories 給定的順序挑出存在且非空的分類。
// 不認得的名稱與保留分類（face 等）直接略過，不產生任何佔位。
func Select(result Result, categories []string) []Selection {
	var selected []Selection
	for _, name := range categories {
		c, ok := result[name]
		if !ok || c == nil || c.isEmpty() {
			continue
		}
		selected = append(selected, Selection{Name: name, Category: c})
	}
	return selected
}
