// Package render 以立即模式绘制画布：每次状态变化都完整重绘一帧。
package render

import (
	"kis-canvas/internal/domain"
)

// 绘制样式常量
const (
	backgroundColor = "#FFFFFF"
	borderColor     = "#000000"
	borderWidth     = 2.0

	gridColorZoomed = "#CCCCCC"
	gridWidthZoomed = 0.2
	gridColorNormal = "#F0F0F0"
	gridWidthNormal = 0.1

	// 相邻格子之间留 0.1 的重叠，避免抗锯齿产生的缝隙
	cellOverdraw = 0.1

	hoverAlphaSuffix = "80"
	hoverOutline     = "#FFFFFF"
	hoverOutlineW    = 0.5
)

// Surface 是渲染器需要的最小 2D 绘图接口，*gg.Context 满足它。
type Surface interface {
	Clear()
	Push()
	Pop()
	Translate(x, y float64)
	Scale(x, y float64)
	SetHexColor(hex string)
	SetLineWidth(width float64)
	MoveTo(x, y float64)
	LineTo(x, y float64)
	DrawRectangle(x, y, w, h float64)
	Fill() error
	Stroke() error
}

// Scene 是绘制一帧所需的全部状态。Pixels 只读。
type Scene struct {
	Grid          domain.Grid
	Pixels        domain.PixelMap
	SelectedColor string
	Camera        domain.Camera
	Hover         *domain.Cell
	ShowGrid      bool
}

// Draw 把 Scene 绘制到 Surface 上，除绘制外没有副作用。
// 绘制顺序：清屏、相机变换、白色背景、网格线、像素、边框、悬停高亮。
func Draw(s Surface, scene Scene) error {
	s.Clear()

	s.Push()
	defer s.Pop()
	s.Translate(scene.Camera.OffsetX, scene.Camera.OffsetY)
	s.Scale(scene.Camera.Scale, scene.Camera.Scale)

	worldW := scene.Grid.WorldWidth()
	worldH := scene.Grid.WorldHeight()

	s.SetHexColor(backgroundColor)
	s.DrawRectangle(0, 0, worldW, worldH)
	if err := s.Fill(); err != nil {
		return err
	}

	if scene.ShowGrid {
		if err := drawGridLines(s, scene); err != nil {
			return err
		}
	}

	for cell, color := range scene.Pixels {
		s.SetHexColor(color)
		s.DrawRectangle(
			float64(cell.X*domain.CellSize), float64(cell.Y*domain.CellSize),
			domain.CellSize+cellOverdraw, domain.CellSize+cellOverdraw)
		if err := s.Fill(); err != nil {
			return err
		}
	}

	// 边框画在画布外侧
	s.SetHexColor(borderColor)
	s.SetLineWidth(borderWidth)
	s.DrawRectangle(-1, -1, worldW+2, worldH+2)
	if err := s.Stroke(); err != nil {
		return err
	}

	if h := scene.Hover; h != nil && scene.Grid.Contains(h.X, h.Y) {
		x := float64(h.X * domain.CellSize)
		y := float64(h.Y * domain.CellSize)
		s.SetHexColor(scene.SelectedColor + hoverAlphaSuffix)
		s.DrawRectangle(x, y, domain.CellSize, domain.CellSize)
		if err := s.Fill(); err != nil {
			return err
		}
		s.SetHexColor(hoverOutline)
		s.SetLineWidth(hoverOutlineW)
		s.DrawRectangle(x, y, domain.CellSize, domain.CellSize)
		if err := s.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// drawGridLines 在每个格子边界画细线，放大到 1 倍以上时加粗加深。
func drawGridLines(s Surface, scene Scene) error {
	if scene.Camera.Scale > 1 {
		s.SetHexColor(gridColorZoomed)
		s.SetLineWidth(gridWidthZoomed)
	} else {
		s.SetHexColor(gridColorNormal)
		s.SetLineWidth(gridWidthNormal)
	}

	worldW := scene.Grid.WorldWidth()
	worldH := scene.Grid.WorldHeight()
	for col := 0; col <= scene.Grid.Width; col++ {
		x := float64(col * domain.CellSize)
		s.MoveTo(x, 0)
		s.LineTo(x, worldH)
	}
	for row := 0; row <= scene.Grid.Height; row++ {
		y := float64(row * domain.CellSize)
		s.MoveTo(0, y)
		s.LineTo(worldW, y)
	}
	return s.Stroke()
}
