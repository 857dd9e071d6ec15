package service

import (
	"fmt"

	"kis-canvas/internal/domain"
)

// 交互常量
const (
	buttonZoomIn    = 1.2
	buttonZoomOut   = 0.8
	wheelZoomIn     = 1.1
	wheelZoomOut    = 0.9
	trackpadPanRate = 0.5
	arrowPanStep    = 50.0
)

// inputHandler 处理一种输入。changed 为 true 时事件循环会重绘。
type inputHandler func(ev domain.InputEvent) (result domain.InputResult, changed bool, err error)

func (c *Controller) dispatchTable() map[domain.InputKind]inputHandler {
	return map[domain.InputKind]inputHandler{
		domain.InputClick:        c.onClick,
		domain.InputPointerDown:  c.onPointerDown,
		domain.InputPointerMove:  c.onPointerMove,
		domain.InputPointerUp:    c.onPointerUp,
		domain.InputPointerLeave: c.onPointerLeave,
		domain.InputWheel:        c.onWheel,
		domain.InputKey:          c.onKey,
		domain.InputToggleGrid:   c.onToggleGrid,
		domain.InputZoomIn:       func(domain.InputEvent) (domain.InputResult, bool, error) { return c.zoomCenter(buttonZoomIn) },
		domain.InputZoomOut:      func(domain.InputEvent) (domain.InputResult, bool, error) { return c.zoomCenter(buttonZoomOut) },
		domain.InputResetZoom:    func(domain.InputEvent) (domain.InputResult, bool, error) { return c.resetZoom() },
		domain.InputSelectColor:  c.onSelectColor,
		domain.InputResize:       c.onResize,
	}
}

var handled = domain.InputResult{Handled: true}

func (c *Controller) onClick(ev domain.InputEvent) (domain.InputResult, bool, error) {
	// Shift+左键和其他按键用于拖拽，不放置像素
	if ev.Button != domain.ButtonPrimary || ev.Shift {
		return domain.InputResult{}, false, nil
	}
	cell := c.camera.ScreenToWorldCell(ev.X, ev.Y)
	if !c.grid.Contains(cell.X, cell.Y) {
		return domain.InputResult{}, false, nil
	}
	// 颜色在点击时确定
	c.placePixel(cell, c.palette.Selected)
	return handled, false, nil
}

func (c *Controller) onPointerDown(ev domain.InputEvent) (domain.InputResult, bool, error) {
	startsDrag := ev.Button == domain.ButtonMiddle || ev.Button == domain.ButtonSecondary ||
		(ev.Button == domain.ButtonPrimary && ev.Shift)
	if !startsDrag {
		return domain.InputResult{}, false, nil
	}
	c.dragging = true
	c.lastDragX, c.lastDragY = ev.X, ev.Y
	return domain.InputResult{Handled: true, PreventDefault: true}, false, nil
}

func (c *Controller) onPointerMove(ev domain.InputEvent) (domain.InputResult, bool, error) {
	changed := false
	result := handled
	if c.dragging {
		c.camera.PanBy(ev.X-c.lastDragX, ev.Y-c.lastDragY)
		c.lastDragX, c.lastDragY = ev.X, ev.Y
		changed = true
		result.PreventDefault = true
	}

	cell := c.camera.ScreenToWorldCell(ev.X, ev.Y)
	c.coordinates = fmt.Sprintf("x: %d, y: %d", cell.X, cell.Y)
	if c.hover == nil || *c.hover != cell {
		c.hover = &cell
		changed = true
	}
	return result, changed, nil
}

func (c *Controller) onPointerUp(domain.InputEvent) (domain.InputResult, bool, error) {
	if !c.dragging {
		return domain.InputResult{}, false, nil
	}
	c.dragging = false
	return handled, false, nil
}

func (c *Controller) onPointerLeave(domain.InputEvent) (domain.InputResult, bool, error) {
	c.hover = nil
	return handled, true, nil
}

func (c *Controller) onWheel(ev domain.InputEvent) (domain.InputResult, bool, error) {
	result := domain.InputResult{Handled: true, PreventDefault: true}
	if c.inputMode == domain.InputModeTrackpad && !ev.Ctrl {
		// 双指滑动平移
		c.camera.PanBy(-ev.DeltaX*trackpadPanRate, -ev.DeltaY*trackpadPanRate)
		return result, true, nil
	}
	factor := wheelZoomOut
	if ev.DeltaY < 0 {
		factor = wheelZoomIn
	}
	c.camera.ZoomAt(ev.X, ev.Y, factor)
	return result, true, nil
}

func (c *Controller) onKey(ev domain.InputEvent) (domain.InputResult, bool, error) {
	result := domain.InputResult{Handled: true, PreventDefault: true}
	switch ev.Key {
	case "+", "=":
		c.zoomCenter(buttonZoomIn)
	case "-":
		c.zoomCenter(buttonZoomOut)
	case "0":
		c.resetZoom()
	case domain.KeyArrowUp:
		c.camera.PanBy(0, arrowPanStep)
	case domain.KeyArrowDown:
		c.camera.PanBy(0, -arrowPanStep)
	case domain.KeyArrowLeft:
		c.camera.PanBy(arrowPanStep, 0)
	case domain.KeyArrowRight:
		c.camera.PanBy(-arrowPanStep, 0)
	default:
		return domain.InputResult{}, false, nil
	}
	return result, true, nil
}

func (c *Controller) onToggleGrid(domain.InputEvent) (domain.InputResult, bool, error) {
	c.showGrid = !c.showGrid
	return handled, true, nil
}

func (c *Controller) zoomCenter(factor float64) (domain.InputResult, bool, error) {
	c.camera.ZoomAt(float64(c.viewportWidth)/2, float64(c.viewportHeight)/2, factor)
	return handled, true, nil
}

func (c *Controller) resetZoom() (domain.InputResult, bool, error) {
	c.camera.FitToView(float64(c.viewportWidth), float64(c.viewportHeight), c.grid)
	return handled, true, nil
}

func (c *Controller) onSelectColor(ev domain.InputEvent) (domain.InputResult, bool, error) {
	if ev.Color == "" {
		return domain.InputResult{}, false, fmt.Errorf("%w: color is required", ErrInvalidInput)
	}
	if !c.palette.Select(ev.Color) {
		return handled, false, nil
	}
	c.log.WithField("color", ev.Color).Debug("Selected color changed")
	return handled, true, nil
}

func (c *Controller) onResize(ev domain.InputEvent) (domain.InputResult, bool, error) {
	if ev.Width <= 0 || ev.Height <= 0 {
		return domain.InputResult{}, false, fmt.Errorf("%w: viewport must be positive, got %dx%d", ErrInvalidInput, ev.Width, ev.Height)
	}
	if ev.Width == c.viewportWidth && ev.Height == c.viewportHeight {
		return handled, false, nil
	}
	c.viewportWidth, c.viewportHeight = ev.Width, ev.Height
	c.view.Resize(ev.Width, ev.Height)
	return handled, true, nil
}
