package service

import (
	"sync"
	"testing"
	"time"

	"kis-canvas/internal/render"
	"kis-canvas/internal/repository/mocks"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// fakeClock 固定当前时间，并记录创建过的全部 ticker
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) NewTicker(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time, 1)}
	f.tickers = append(f.tickers, t)
	return t
}

// active 返回尚未停止的 ticker 数量
func (f *fakeClock) active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

type fakeTicker struct {
	mu      sync.Mutex
	ch      chan time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// recordingView 记录每一次渲染
type recordingView struct {
	mu      sync.Mutex
	scenes  []render.Scene
	resizes [][2]int
}

func (v *recordingView) Render(scene render.Scene) {
	v.mu.Lock()
	v.scenes = append(v.scenes, scene)
	v.mu.Unlock()
}

func (v *recordingView) Resize(width, height int) {
	v.mu.Lock()
	v.resizes = append(v.resizes, [2]int{width, height})
	v.mu.Unlock()
}

func (v *recordingView) renders() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.scenes)
}

func (v *recordingView) last() render.Scene {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scenes[len(v.scenes)-1]
}

type testHarness struct {
	ctrl   *Controller
	repo   *mocks.CanvasRepository
	pusher *mocks.PushPublisher
	view   *recordingView
	clock  *fakeClock
}

func defaultTestConfig() Config {
	return Config{
		ViewportWidth:  1200,
		ViewportHeight: 800,
		InputMode:      "wheel",
	}
}

// newHarness 创建异步请求同步执行的控制器，测试直接驱动事件处理
func newHarness(t *testing.T, cfg Config) *testHarness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	h := &testHarness{
		repo:   new(mocks.CanvasRepository),
		pusher: new(mocks.PushPublisher),
		view:   &recordingView{},
		clock:  newFakeClock(),
	}
	h.ctrl = NewController(cfg, h.repo, h.pusher, h.view, h.clock, logger)
	h.ctrl.spawn = func(f func()) { f() }
	return h
}

// drain 处理所有已投递的消息，模拟事件循环
func (h *testHarness) drain() {
	for {
		select {
		case msg := <-h.ctrl.messages:
			h.ctrl.handleMessage(msg)
		default:
			return
		}
	}
}

// screenOf 返回格子中心对应的屏幕坐标
func (h *testHarness) screenOf(x, y int) (float64, float64) {
	return h.ctrl.camera.WorldToScreen(float64(x)*10+5, float64(y)*10+5)
}
