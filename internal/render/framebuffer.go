package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"

	"github.com/gogpu/gg"
	"github.com/sirupsen/logrus"
)

// FrameBuffer 用 gg 软件光栅化绘制帧，并保存最近一帧供视图服务读取。
// Render/Resize 只应在控制器的事件循环中调用；Image/WritePNG 可并发调用。
type FrameBuffer struct {
	dc *gg.Context

	mu     sync.RWMutex
	latest image.Image
	frames uint64

	log *logrus.Entry
}

// NewFrameBuffer 创建指定视口尺寸的 FrameBuffer。
func NewFrameBuffer(width, height int, logger *logrus.Logger) *FrameBuffer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FrameBuffer{
		dc:  gg.NewContext(width, height),
		log: logger.WithField("component", "framebuffer"),
	}
}

// Render 完整重绘一帧。
func (f *FrameBuffer) Render(scene Scene) {
	if err := Draw(f.dc, scene); err != nil {
		f.log.WithError(err).Error("Failed to draw frame")
		return
	}
	img := f.dc.Image()

	f.mu.Lock()
	f.latest = img
	f.frames++
	f.mu.Unlock()
}

// Resize 按新的视口尺寸重建绘图上下文，下一次 Render 生效。
func (f *FrameBuffer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if f.dc.Width() == width && f.dc.Height() == height {
		return
	}
	old := f.dc
	f.dc = gg.NewContext(width, height)
	if err := old.Close(); err != nil {
		f.log.WithError(err).Warn("Failed to release previous drawing context")
	}
	f.log.WithFields(logrus.Fields{"width": width, "height": height}).Debug("Frame buffer resized")
}

// Image 返回最近一帧，尚未绘制时为 nil。
func (f *FrameBuffer) Image() image.Image {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.latest
}

// Frames 返回已绘制的帧数。
func (f *FrameBuffer) Frames() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.frames
}

// WritePNG 把最近一帧编码为 PNG。
func (f *FrameBuffer) WritePNG(w io.Writer) error {
	img := f.Image()
	if img == nil {
		return fmt.Errorf("render: no frame rendered yet")
	}
	return png.Encode(w, img)
}

// Close 释放绘图上下文。
func (f *FrameBuffer) Close() error {
	return f.dc.Close()
}
