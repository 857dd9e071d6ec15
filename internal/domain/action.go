package domain

import "time"

// MessageTypePixelUpdate 是推送通道上像素变化消息的类型。
const MessageTypePixelUpdate = "pixel_update"

// PixelUpdate 是一次像素变化。X/Y 用指针区分 "缺失" 与 0。
type PixelUpdate struct {
	X     *int   `json:"x"`
	Y     *int   `json:"y"`
	Color string `json:"color"`
}

// NewPixelUpdate 根据坐标和颜色构造 PixelUpdate。
func NewPixelUpdate(x, y int, color string) PixelUpdate {
	return PixelUpdate{X: &x, Y: &y, Color: color}
}

// Valid 判断坐标和颜色是否都存在。
func (u PixelUpdate) Valid() bool {
	return u.X != nil && u.Y != nil && u.Color != ""
}

// Cell 返回更新对应的格子，调用前应先检查 Valid。
func (u PixelUpdate) Cell() Cell {
	return Cell{X: *u.X, Y: *u.Y}
}

// PushMessage 是推送通道的入站信封：{type, data}。
// 注意出站消息不带信封，直接发送 PixelUpdate。
type PushMessage struct {
	Type string      `json:"type"`
	Data PixelUpdate `json:"data"`
}

// CanvasState 是初始画布状态。
type CanvasState struct {
	Width  int
	Height int
	Pixels PixelMap
}

// PlacementReceipt 是放置成功后的响应。
type PlacementReceipt struct {
	CooldownUntil time.Time
}

// CooldownStatus 是冷却查询结果。
type CooldownStatus struct {
	CanPlace         bool
	RemainingSeconds int
}
