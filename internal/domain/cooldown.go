package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ReadyLabel 是冷却结束时显示的文本。
const ReadyLabel = "Ready to place"

// 服务端可能返回不带时区的 ISO-8601 时间（按 UTC 解释）。
var naiveTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
}

// Countdown 是冷却状态机：Ready 或 CountingDown(remaining)。
// 它本身不持有定时器，由调用方每秒调用一次 Tick。
type Countdown struct {
	remaining int
}

// Start 进入倒计时。seconds <= 0 时直接回到 Ready，返回值表示是否在倒计时。
func (c *Countdown) Start(seconds int) bool {
	if seconds <= 0 {
		c.remaining = 0
		return false
	}
	c.remaining = seconds
	return true
}

// Tick 递减一秒。返回 true 表示本次从倒计时切换到了 Ready。
func (c *Countdown) Tick() bool {
	if c.remaining <= 0 {
		return false
	}
	c.remaining--
	return c.remaining == 0
}

// Reset 立即回到 Ready。
func (c *Countdown) Reset() { c.remaining = 0 }

// Ready 表示当前可以放置像素。
func (c Countdown) Ready() bool { return c.remaining <= 0 }

// Remaining 返回剩余秒数，Ready 时为 0。
func (c Countdown) Remaining() int { return c.remaining }

// Label 返回用于显示的文本。
func (c Countdown) Label() string {
	if c.Ready() {
		return ReadyLabel
	}
	return FormatRemaining(c.remaining)
}

// FormatRemaining 格式化为 "分:秒"，秒补零到两位。
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// RemainingUntil 把绝对恢复时间换算成剩余秒数（向下取整，可能为负）。
func RemainingUntil(until, now time.Time) int {
	return int(math.Floor(until.Sub(now).Seconds()))
}

// ParseCooldownUntil 解析 cooldown_until，支持 RFC3339 以及无时区的 ISO-8601。
func ParseCooldownUntil(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty cooldown timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	for _, layout := range naiveTimestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized cooldown timestamp %q", raw)
}
