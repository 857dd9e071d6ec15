package service

import (
	"time"

	"kis-canvas/internal/domain"
)

// Clock 抽象时间来源，便于测试中控制定时器。
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker 是 time.Ticker 的最小接口。
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// CooldownTimer 把冷却状态机和唯一的秒级定时器组合在一起。
// 任何时刻最多只有一个活动定时器；重新开始会先停止旧的定时器。
type CooldownTimer struct {
	countdown domain.Countdown
	clock     Clock
	ticker    Ticker
}

// NewCooldownTimer 创建处于 Ready 状态的 CooldownTimer。
func NewCooldownTimer(clock Clock) *CooldownTimer {
	if clock == nil {
		clock = realClock{}
	}
	return &CooldownTimer{clock: clock}
}

// StartUntil 以绝对恢复时间开始倒计时，开始时换算成剩余秒数。
func (t *CooldownTimer) StartUntil(until time.Time) bool {
	return t.Start(domain.RemainingUntil(until, t.clock.Now()))
}

// Start 以剩余秒数开始倒计时。seconds <= 0 时直接回到 Ready。
func (t *CooldownTimer) Start(seconds int) bool {
	t.Stop()
	if !t.countdown.Start(seconds) {
		return false
	}
	t.ticker = t.clock.NewTicker(time.Second)
	return true
}

// Tick 在定时器触发时调用。返回 true 表示倒计时结束并已清理定时器。
func (t *CooldownTimer) Tick() bool {
	if !t.countdown.Tick() {
		return false
	}
	t.stopTicker()
	return true
}

// Stop 清理定时器并回到 Ready。
func (t *CooldownTimer) Stop() {
	t.stopTicker()
	t.countdown.Reset()
}

func (t *CooldownTimer) stopTicker() {
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
}

// C 返回当前定时器的通道；Ready 时为 nil（在 select 中永远不会就绪）。
func (t *CooldownTimer) C() <-chan time.Time {
	if t.ticker == nil {
		return nil
	}
	return t.ticker.C()
}

// Active 表示是否有活动的定时器。
func (t *CooldownTimer) Active() bool { return t.ticker != nil }

// Ready 表示是否可以放置。
func (t *CooldownTimer) Ready() bool { return t.countdown.Ready() }

// Remaining 返回剩余秒数。
func (t *CooldownTimer) Remaining() int { return t.countdown.Remaining() }

// Label 返回显示文本，"m:ss" 或 "Ready to place"。
func (t *CooldownTimer) Label() string { return t.countdown.Label() }
