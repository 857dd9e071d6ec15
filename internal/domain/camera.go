package domain

import "math"

// 缩放限制以及视图相关常量。
const (
	MinScale = 0.1
	MaxScale = 10.0

	// FitPadding 是适配视图时保留的留白比例。
	FitPadding = 0.9
	// FitBorderAllowance 为画布外的黑色边框预留的屏幕像素。
	FitBorderAllowance = 20.0
)

// Camera 维护平移偏移和缩放：屏幕坐标 = 世界坐标 × Scale + Offset。
type Camera struct {
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Scale   float64 `json:"scale"`
}

// NewCamera 返回单位变换的相机。
func NewCamera() Camera {
	return Camera{Scale: 1}
}

// ClampScale 把缩放值限制在 [MinScale, MaxScale]。
func ClampScale(scale float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, scale))
}

// WorldToScreen 把世界坐标变换为屏幕坐标。
func (c Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	return wx*c.Scale + c.OffsetX, wy*c.Scale + c.OffsetY
}

// ScreenToWorld 是 WorldToScreen 的逆变换。
func (c Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	return (sx - c.OffsetX) / c.Scale, (sy - c.OffsetY) / c.Scale
}

// ScreenToWorldCell 返回屏幕坐标下方的格子。不做边界裁剪，由调用方校验。
func (c Camera) ScreenToWorldCell(sx, sy float64) Cell {
	wx, wy := c.ScreenToWorld(sx, sy)
	return Cell{
		X: int(math.Floor(wx / CellSize)),
		Y: int(math.Floor(wy / CellSize)),
	}
}

// FitToView 让整个画布居中显示在视口内。
func (c *Camera) FitToView(viewportW, viewportH float64, grid Grid) {
	availableW := viewportW - FitBorderAllowance
	availableH := viewportH - FitBorderAllowance
	scale := math.Min(availableW/grid.WorldWidth(), availableH/grid.WorldHeight()) * FitPadding
	// 视口过小时 scale 可能为负或为零
	c.Scale = ClampScale(scale)
	c.OffsetX = (viewportW - grid.WorldWidth()*c.Scale) / 2
	c.OffsetY = (viewportH - grid.WorldHeight()*c.Scale) / 2
}

// ZoomAt 以屏幕上的锚点为中心缩放，锚点下的世界坐标保持不动。
func (c *Camera) ZoomAt(anchorX, anchorY, factor float64) {
	wx, wy := c.ScreenToWorld(anchorX, anchorY)
	c.Scale = ClampScale(c.Scale * factor)
	c.OffsetX = anchorX - wx*c.Scale
	c.OffsetY = anchorY - wy*c.Scale
}

// PanBy 平移偏移，不做限制。
func (c *Camera) PanBy(dx, dy float64) {
	c.OffsetX += dx
	c.OffsetY += dy
}
