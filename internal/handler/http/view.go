package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"kis-canvas/internal/domain"
	"kis-canvas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 等待控制器响应的最长时间
const controllerWait = 5 * time.Second

// CanvasController 是视图需要的控制器操作，*service.Controller 实现了它。
type CanvasController interface {
	HandleInput(ctx context.Context, ev domain.InputEvent) (domain.InputResult, error)
	Panel(ctx context.Context) (service.Panel, error)
}

// FrameSource 提供最近一帧的 PNG 编码。
type FrameSource interface {
	WritePNG(w io.Writer) error
	Frames() uint64
}

// ViewHandler 把画布控制器暴露为本地 HTTP 视图：帧图片、读数和输入。
type ViewHandler struct {
	controller CanvasController
	frames     FrameSource
}

// NewViewHandler 创建 ViewHandler 实例
func NewViewHandler(controller CanvasController, frames FrameSource) *ViewHandler {
	return &ViewHandler{controller: controller, frames: frames}
}

// RegisterRoutes 在路由上注册视图接口
func (h *ViewHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/frame.png", h.Frame)
	r.GET("/state", h.State)
	r.POST("/input", h.Input)
	r.POST("/color", h.SelectColor)
	controls := r.Group("/controls")
	{
		controls.POST("/zoom-in", h.control(domain.InputZoomIn))
		controls.POST("/zoom-out", h.control(domain.InputZoomOut))
		controls.POST("/reset", h.control(domain.InputResetZoom))
		controls.POST("/toggle-grid", h.control(domain.InputToggleGrid))
	}
}

// Frame 返回最近一帧的 PNG 图片
func (h *ViewHandler) Frame(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.frames.WritePNG(&buf); err != nil {
		logrus.WithError(err).Debug("Handler.Frame: No frame available")
		ErrorResponse(c, http.StatusServiceUnavailable, "No frame rendered yet")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("X-Frame-Number", strconv.FormatUint(h.frames.Frames(), 10))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// State 返回调色板、坐标、冷却、网格等读数
func (h *ViewHandler) State(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), controllerWait)
	defer cancel()

	panel, err := h.controller.Panel(ctx)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, panel)
}

// Input 处理一次输入事件
func (h *ViewHandler) Input(c *gin.Context) {
	var ev domain.InputEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input event: "+err.Error())
		return
	}
	h.dispatch(c, ev)
}

// SelectColorRequest 定义选择颜色请求的结构体
type SelectColorRequest struct {
	Color string `json:"color" binding:"required"`
}

// SelectColor 修改当前选中的颜色
func (h *ViewHandler) SelectColor(c *gin.Context) {
	var req SelectColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	h.dispatch(c, domain.InputEvent{Kind: domain.InputSelectColor, Color: req.Color})
}

func (h *ViewHandler) control(kind domain.InputKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.dispatch(c, domain.InputEvent{Kind: kind})
	}
}

func (h *ViewHandler) dispatch(c *gin.Context, ev domain.InputEvent) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), controllerWait)
	defer cancel()

	result, err := h.controller.HandleInput(ctx, ev)
	if err != nil {
		logrus.WithError(err).WithField("kind", ev.Kind).Warn("Handler.Input: Controller rejected input")
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, result)
}
