package annotation

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

type namedColor struct {
	name  string
	color colorful.Color
}

// palette 的順序同時是距離相同時的優先順序
var palette = []namedColor{
	{"red", rgb(0xFF, 0x00, 0x00)},
	{"orange", rgb(0xFF, 0xA5, 0x00)},
	{"yellow", rgb(0xFF, 0xFF, 0x00)},
	{"green", rgb(0x00, 0x80, 0x00)},
	{"blue", rgb(0x00, 0x00, 0xFF)},
	{"indigo", rgb(0x4B, 0x00, 0x82)},
	{"violet", rgb(0xEE, 0x82, 0xEE)},
	{"black", rgb(0x00, 0x00, 0x00)},
	{"gray", rgb(0x80, 0x80, 0x80)},
	{"white", rgb(0xFF, 0xFF, 0xFF)},
}

func rgb(r, g, b int) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// NameColor 回傳調色盤中與 (r,g,b) 在 CIELAB 空間距離最近的顏色名稱。
// 超出 0-255 的值會先被限制在範圍內。
func NameColor(r, g, b int) string {
	target := rgb(clampChannel(r), clampChannel(g), clampChannel(b))
	best := palette[0]
	bestDistance := target.DistanceLab(best.color)
	for _, candidate := range palette[1:] {
		if d := target.DistanceLab(candidate.color); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best.name
}
