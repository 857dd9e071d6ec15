package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell 是一个离散的格子坐标。
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key 返回线上格式的坐标键，例如 "10,20"。
func (c Cell) Key() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
}

// ParseCellKey 解析 "x,y" 格式的坐标键。
func ParseCellKey(key string) (Cell, error) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return Cell{}, fmt.Errorf("invalid cell key %q: missing comma", key)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Cell{}, fmt.Errorf("invalid cell key %q: %w", key, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Cell{}, fmt.Errorf("invalid cell key %q: %w", key, err)
	}
	return Cell{X: x, Y: y}, nil
}

// PixelMap 是已着色格子的稀疏映射，同一坐标后写覆盖先写。
type PixelMap map[Cell]string

// PixelMapFromWire 把 {"x,y": color} 转换为 PixelMap。
// 无法解析的键会被跳过，并通过 skipped 返回数量。
func PixelMapFromWire(raw map[string]string) (pixels PixelMap, skipped int) {
	pixels = make(PixelMap, len(raw))
	for key, color := range raw {
		cell, err := ParseCellKey(key)
		if err != nil {
			skipped++
			continue
		}
		pixels[cell] = color
	}
	return pixels, skipped
}

// Set 设置格子颜色。
func (p PixelMap) Set(x, y int, color string) {
	p[Cell{X: x, Y: y}] = color
}

// Get 返回格子颜色，未着色时 ok 为 false。
func (p PixelMap) Get(x, y int) (color string, ok bool) {
	color, ok = p[Cell{X: x, Y: y}]
	return color, ok
}

// Wire 返回线上格式的副本。
func (p PixelMap) Wire() map[string]string {
	out := make(map[string]string, len(p))
	for cell, color := range p {
		out[cell.Key()] = color
	}
	return out
}
