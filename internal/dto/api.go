package dto

import "encoding/json"

// 画布服务 REST 接口的响应结构

// ColorsResponse 对应 GET /api/colors
type ColorsResponse struct {
	Colors []string `json:"colors"`
}

// CanvasResponse 对应 GET /api/canvas。像素的键为 "x,y"
type CanvasResponse struct {
	Width  int               `json:"width,omitempty"`
	Height int               `json:"height,omitempty"`
	Pixels map[string]string `json:"pixels"`
}

// PlaceResponse 对应 POST /api/place-pixel 的成功响应
type PlaceResponse struct {
	Success       bool   `json:"success"`
	CooldownUntil string `json:"cooldown_until"`
}

// CooldownResponse 对应 GET /api/cooldown
type CooldownResponse struct {
	CanPlace         bool    `json:"can_place"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// ErrorResponse 是非 2xx 响应的结构。detail 通常是字符串，参数校验失败时可能是数组
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}
