package service

import (
	"context"
	"fmt"
	"time"

	"kis-canvas/internal/domain"
	"kis-canvas/internal/render"
	"kis-canvas/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	defaultRequestTimeout = 10 * time.Second
	messageBufferSize     = 512
)

// 控制器内部消息类型
const (
	msgInput     = "input"
	msgRemote    = "remote_pixel"
	msgPlacement = "placement_result"
	msgCooldown  = "cooldown_result"
	msgPanel     = "panel"
)

// Renderer 是控制器输出帧的目标，render.FrameBuffer 实现了它。
type Renderer interface {
	Render(scene render.Scene)
	Resize(width, height int)
}

// Config 是控制器的初始视图配置。
type Config struct {
	ViewportWidth  int
	ViewportHeight int
	Grid           domain.Grid
	SelectedColor  string
	InputMode      domain.InputMode
	RequestTimeout time.Duration
}

// Panel 是界面上除画布之外的所有读数。
type Panel struct {
	Colors        []string         `json:"colors"`
	SelectedColor string           `json:"selected_color"`
	Coordinates   string           `json:"coordinates"`
	CooldownLabel string           `json:"cooldown_label"`
	OnCooldown    bool             `json:"on_cooldown"`
	GridLabel     string           `json:"grid_label"`
	ShowGrid      bool             `json:"show_grid"`
	Camera        domain.Camera    `json:"camera"`
	Grid          domain.Grid      `json:"grid"`
	InputMode     domain.InputMode `json:"input_mode"`
	Alert         string           `json:"alert,omitempty"`
	PixelCount    int              `json:"pixel_count"`
}

// Message 是投递到控制器事件循环的消息
type Message struct {
	Type      string
	Input     domain.InputEvent
	Update    domain.PixelUpdate
	Placement *placementResult
	Cooldown  *cooldownResult

	inputReply chan inputReply
	panelReply chan Panel
}

type inputReply struct {
	result domain.InputResult
	err    error
}

// Controller 拥有全部视图状态。所有状态只在 Run 所在的 goroutine 中修改，
// 网络请求在短生命周期的 goroutine 中执行，结果通过 messages 送回。
type Controller struct {
	repo   repository.CanvasRepository
	pusher repository.PushPublisher
	view   Renderer
	clock  Clock

	messages chan Message
	stopped  chan struct{}
	// spawn 执行异步请求，测试中可替换为同步执行
	spawn func(func())
	// Run 的 context，供异步请求派生超时
	runCtx context.Context

	requestTimeout time.Duration
	handlers       map[domain.InputKind]inputHandler

	// 以下字段只在事件循环中访问
	grid           domain.Grid
	pixels         domain.PixelMap
	palette        domain.Palette
	camera         domain.Camera
	hover          *domain.Cell
	coordinates    string
	showGrid       bool
	inputMode      domain.InputMode
	viewportWidth  int
	viewportHeight int
	dragging       bool
	lastDragX      float64
	lastDragY      float64
	cooldown       *CooldownTimer
	alert          string

	log *logrus.Entry
}

// NewController 创建控制器。repo、pusher 和 view 不能为 nil。
func NewController(cfg Config, repo repository.CanvasRepository, pusher repository.PushPublisher, view Renderer, clock Clock, logger *logrus.Logger) *Controller {
	// 启动时检查依赖注入是否有效
	if repo == nil {
		panic("CanvasRepository cannot be nil for Controller")
	}
	if pusher == nil {
		panic("PushPublisher cannot be nil for Controller")
	}
	if view == nil {
		panic("Renderer cannot be nil for Controller")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if clock == nil {
		clock = realClock{}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.InputMode == "" || cfg.InputMode == domain.InputModeAuto {
		cfg.InputMode = domain.InputModeWheel
	}

	c := &Controller{
		repo:           repo,
		pusher:         pusher,
		view:           view,
		clock:          clock,
		messages:       make(chan Message, messageBufferSize),
		stopped:        make(chan struct{}),
		spawn:          func(f func()) { go f() },
		runCtx:         context.Background(),
		requestTimeout: cfg.RequestTimeout,
		grid:           domain.NewGrid(cfg.Grid.Width, cfg.Grid.Height),
		pixels:         make(domain.PixelMap),
		palette:        domain.NewPalette(cfg.SelectedColor),
		camera:         domain.NewCamera(),
		showGrid:       true,
		inputMode:      cfg.InputMode,
		viewportWidth:  cfg.ViewportWidth,
		viewportHeight: cfg.ViewportHeight,
		cooldown:       NewCooldownTimer(clock),
		log:            logger.WithField("component", "controller"),
	}
	c.handlers = c.dispatchTable()
	c.camera.FitToView(float64(c.viewportWidth), float64(c.viewportHeight), c.grid)
	return c
}

// Run 启动控制器的主事件循环，阻塞直到 ctx 结束。
// 启动顺序：加载颜色和画布、首次渲染、查询冷却状态，然后处理消息。
func (c *Controller) Run(ctx context.Context) error {
	c.runCtx = ctx
	c.log.Info("Canvas controller is running...")

	c.loadInitialState(ctx)
	c.renderFrame()
	c.checkCooldown()

	defer func() {
		c.cooldown.Stop()
		close(c.stopped)
		c.log.Info("Canvas controller is shutting down...")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-c.messages:
			c.handleMessage(msg)
		case <-c.cooldown.C():
			if c.cooldown.Tick() {
				c.log.Info("Cooldown finished, ready to place")
			}
		}
	}
}

func (c *Controller) handleMessage(msg Message) {
	switch msg.Type {
	case msgInput:
		result, err := c.dispatch(msg.Input)
		if msg.inputReply != nil {
			msg.inputReply <- inputReply{result: result, err: err}
		}
	case msgRemote:
		c.applyRemoteUpdate(msg.Update)
	case msgPlacement:
		c.handlePlacementResult(msg.Placement)
	case msgCooldown:
		c.handleCooldownResult(msg.Cooldown)
	case msgPanel:
		if msg.panelReply != nil {
			msg.panelReply <- c.panel()
		}
	default:
		c.log.Warnf("Received unknown message type: %s", msg.Type)
	}
}

// post 把消息投递到事件循环。控制器已停止时丢弃。
func (c *Controller) post(msg Message) bool {
	select {
	case c.messages <- msg:
		return true
	case <-c.stopped:
		return false
	}
}

// HandleInput 把一次输入交给事件循环处理并等待结果。
func (c *Controller) HandleInput(ctx context.Context, ev domain.InputEvent) (domain.InputResult, error) {
	reply := make(chan inputReply, 1)
	if err := c.send(ctx, Message{Type: msgInput, Input: ev, inputReply: reply}); err != nil {
		return domain.InputResult{}, err
	}
	select {
	case r := <-reply:
		return r.result, r.err
	case <-ctx.Done():
		return domain.InputResult{}, ctx.Err()
	case <-c.stopped:
		return domain.InputResult{}, ErrControllerStopped
	}
}

// Panel 返回当前读数的快照。
func (c *Controller) Panel(ctx context.Context) (Panel, error) {
	reply := make(chan Panel, 1)
	if err := c.send(ctx, Message{Type: msgPanel, panelReply: reply}); err != nil {
		return Panel{}, err
	}
	select {
	case p := <-reply:
		return p, nil
	case <-ctx.Done():
		return Panel{}, ctx.Err()
	case <-c.stopped:
		return Panel{}, ErrControllerStopped
	}
}

// ApplyRemoteUpdate 投递推送通道收到的像素更新，可在任意 goroutine 调用。
func (c *Controller) ApplyRemoteUpdate(update domain.PixelUpdate) {
	if !c.post(Message{Type: msgRemote, Update: update}) {
		c.log.Debug("Controller stopped, dropping remote pixel update")
	}
}

func (c *Controller) send(ctx context.Context, msg Message) error {
	select {
	case c.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopped:
		return ErrControllerStopped
	}
}

func (c *Controller) dispatch(ev domain.InputEvent) (domain.InputResult, error) {
	handler, ok := c.handlers[ev.Kind]
	if !ok {
		return domain.InputResult{}, fmt.Errorf("%w: %q", ErrUnknownInput, ev.Kind)
	}
	result, changed, err := handler(ev)
	if err != nil {
		return result, err
	}
	if changed {
		c.renderFrame()
	}
	return result, nil
}

func (c *Controller) scene() render.Scene {
	return render.Scene{
		Grid:          c.grid,
		Pixels:        c.pixels,
		SelectedColor: c.palette.Selected,
		Camera:        c.camera,
		Hover:         c.hover,
		ShowGrid:      c.showGrid,
	}
}

func (c *Controller) renderFrame() {
	c.view.Render(c.scene())
}

func (c *Controller) panel() Panel {
	gridLabel := "Grid: Off"
	if c.showGrid {
		gridLabel = "Grid: On"
	}
	colors := make([]string, len(c.palette.Colors))
	copy(colors, c.palette.Colors)
	return Panel{
		Colors:        colors,
		SelectedColor: c.palette.Selected,
		Coordinates:   c.coordinates,
		CooldownLabel: c.cooldown.Label(),
		OnCooldown:    !c.cooldown.Ready(),
		GridLabel:     gridLabel,
		ShowGrid:      c.showGrid,
		Camera:        c.camera,
		Grid:          c.grid,
		InputMode:     c.inputMode,
		Alert:         c.alert,
		PixelCount:    len(c.pixels),
	}
}

// requestContext 为一次异步请求派生带超时的 context。
func (c *Controller) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.runCtx, c.requestTimeout)
}
