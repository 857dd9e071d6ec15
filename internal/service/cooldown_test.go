package service

import (
	"fmt"
	"testing"
	"time"

	"kis-canvas/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownTimer_CountsDownToReady(t *testing.T) {
	clock := newFakeClock()
	timer := NewCooldownTimer(clock)

	require.True(t, timer.StartUntil(clock.Now().Add(90*time.Second)))
	assert.Equal(t, "1:30", timer.Label())
	assert.NotNil(t, timer.C())

	for remaining := 89; remaining > 0; remaining-- {
		assert.False(t, timer.Tick())
		assert.Equal(t, domain.FormatRemaining(remaining), timer.Label(), fmt.Sprintf("剩余 %d 秒", remaining))
	}
	assert.Equal(t, "0:01", timer.Label())

	assert.True(t, timer.Tick(), "最后一次 tick 应切换到 Ready")
	assert.Equal(t, domain.ReadyLabel, timer.Label())
	assert.False(t, timer.Active())
	assert.Nil(t, timer.C())
	assert.Equal(t, 0, clock.active(), "Ready 后定时器应已停止")
}

func TestCooldownTimer_FractionalSecondsFloor(t *testing.T) {
	clock := newFakeClock()
	timer := NewCooldownTimer(clock)

	timer.StartUntil(clock.Now().Add(59*time.Second + 900*time.Millisecond))

	assert.Equal(t, 59, timer.Remaining())
}

func TestCooldownTimer_NonPositiveIsReady(t *testing.T) {
	clock := newFakeClock()
	timer := NewCooldownTimer(clock)

	assert.False(t, timer.Start(0))
	assert.False(t, timer.StartUntil(clock.Now().Add(-5*time.Second)))
	assert.True(t, timer.Ready())
	assert.Empty(t, clock.tickers, "不应创建定时器")
}

func TestCooldownTimer_SingleActiveTicker(t *testing.T) {
	clock := newFakeClock()
	timer := NewCooldownTimer(clock)

	timer.Start(30)
	timer.Start(10)

	require.Len(t, clock.tickers, 2)
	assert.True(t, clock.tickers[0].isStopped())
	assert.False(t, clock.tickers[1].isStopped())
	assert.Equal(t, "0:10", timer.Label())

	// 新倒计时为 0 时旧定时器也必须停止
	timer.Start(0)
	assert.Equal(t, 0, clock.active())
	assert.True(t, timer.Ready())
}
