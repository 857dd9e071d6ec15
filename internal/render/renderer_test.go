package render_test

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"kis-canvas/internal/domain"
	"kis-canvas/internal/render"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSurface 记录所有绘图调用，用于验证绘制顺序
type recordingSurface struct {
	ops []string
}

func (r *recordingSurface) add(format string, args ...interface{}) {
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}

func (r *recordingSurface) Clear()                     { r.add("clear") }
func (r *recordingSurface) Push()                      { r.add("push") }
func (r *recordingSurface) Pop()                       { r.add("pop") }
func (r *recordingSurface) Translate(x, y float64)     { r.add("translate %g %g", x, y) }
func (r *recordingSurface) Scale(x, y float64)         { r.add("scale %g %g", x, y) }
func (r *recordingSurface) SetHexColor(hex string)     { r.add("color %s", hex) }
func (r *recordingSurface) SetLineWidth(w float64)     { r.add("width %g", w) }
func (r *recordingSurface) MoveTo(x, y float64)        { r.add("move") }
func (r *recordingSurface) LineTo(x, y float64)        { r.add("line") }
func (r *recordingSurface) Fill() error                { r.add("fill"); return nil }
func (r *recordingSurface) Stroke() error              { r.add("stroke"); return nil }
func (r *recordingSurface) DrawRectangle(x, y, w, h float64) {
	r.add("rect %g %g %g %g", x, y, w, h)
}

// withoutGridPath 去掉网格线的 move/line，便于比较顺序
func (r *recordingSurface) withoutGridPath() []string {
	out := make([]string, 0, len(r.ops))
	for _, op := range r.ops {
		if op == "move" || op == "line" {
			continue
		}
		out = append(out, op)
	}
	return out
}

func testScene() render.Scene {
	pixels := make(domain.PixelMap)
	pixels.Set(3, 4, "#E50000")
	return render.Scene{
		Grid:          domain.NewGrid(20, 10),
		Pixels:        pixels,
		SelectedColor: "#0000EA",
		Camera:        domain.Camera{OffsetX: 15, OffsetY: 25, Scale: 2},
		Hover:         &domain.Cell{X: 1, Y: 2},
		ShowGrid:      true,
	}
}

func TestDraw_Order(t *testing.T) {
	s := &recordingSurface{}

	require.NoError(t, render.Draw(s, testScene()))

	expected := []string{
		"clear",
		"push",
		"translate 15 25",
		"scale 2 2",
		"color #FFFFFF", "rect 0 0 200 100", "fill",
		"color #CCCCCC", "width 0.2", "stroke", // scale > 1 时加粗加深
		"color #E50000", "rect 30 40 10.1 10.1", "fill",
		"color #000000", "width 2", "rect -1 -1 202 102", "stroke",
		"color #0000EA80", "rect 10 20 10 10", "fill",
		"color #FFFFFF", "width 0.5", "rect 10 20 10 10", "stroke",
		"pop",
	}
	assert.Equal(t, expected, s.withoutGridPath())
}

func TestDraw_GridLinesPerCellBoundary(t *testing.T) {
	s := &recordingSurface{}
	scene := testScene()

	require.NoError(t, render.Draw(s, scene))

	moves := 0
	for _, op := range s.ops {
		if op == "move" {
			moves++
		}
	}
	// 20 列 + 1 条竖线，10 行 + 1 条横线
	assert.Equal(t, 21+11, moves)
}

func TestDraw_GridHiddenAndThinLinesWhenZoomedOut(t *testing.T) {
	scene := testScene()
	scene.ShowGrid = false
	s := &recordingSurface{}
	require.NoError(t, render.Draw(s, scene))
	assert.NotContains(t, s.ops, "move")

	scene.ShowGrid = true
	scene.Camera.Scale = 0.5
	s = &recordingSurface{}
	require.NoError(t, render.Draw(s, scene))
	assert.Contains(t, s.ops, "color #F0F0F0")
	assert.Contains(t, s.ops, "width 0.1")
}

func TestDraw_HoverOutsideGridNotDrawn(t *testing.T) {
	for _, hover := range []*domain.Cell{nil, {X: -1, Y: 0}, {X: 20, Y: 0}, {X: 0, Y: 10}} {
		scene := testScene()
		scene.Hover = hover
		s := &recordingSurface{}

		require.NoError(t, render.Draw(s, scene))

		for _, op := range s.ops {
			assert.False(t, strings.HasSuffix(op, "80"), "hover %v should not be highlighted", hover)
		}
	}
}

func TestFrameBuffer_RendersPixels(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	fb := render.NewFrameBuffer(120, 80, logger)
	t.Cleanup(func() { _ = fb.Close() })

	pixels := make(domain.PixelMap)
	pixels.Set(0, 0, "#E50000")
	fb.Render(render.Scene{
		Grid:          domain.NewGrid(10, 6),
		Pixels:        pixels,
		SelectedColor: "#FFFFFF",
		Camera:        domain.Camera{OffsetX: 10, OffsetY: 10, Scale: 1},
		ShowGrid:      true,
	})

	img := fb.Image()
	require.NotNil(t, img)
	assert.Equal(t, uint64(1), fb.Frames())

	// 像素 (0,0) 覆盖屏幕 [10,20)×[10,20)
	red := color.RGBAModel.Convert(img.At(15, 15)).(color.RGBA)
	assert.Greater(t, red.R, uint8(200))
	assert.Less(t, red.G, uint8(40))
	assert.Less(t, red.B, uint8(40))

	// 未着色的格子中心是白色背景
	white := color.RGBAModel.Convert(img.At(45, 45)).(color.RGBA)
	assert.Greater(t, white.R, uint8(230))
	assert.Greater(t, white.G, uint8(230))
	assert.Greater(t, white.B, uint8(230))

	var buf bytes.Buffer
	require.NoError(t, fb.WritePNG(&buf))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 120, decoded.Bounds().Dx())
}

func TestFrameBuffer_WritePNGBeforeRender(t *testing.T) {
	fb := render.NewFrameBuffer(10, 10, nil)
	t.Cleanup(func() { _ = fb.Close() })

	var buf bytes.Buffer
	assert.Error(t, fb.WritePNG(&buf))
}
