package domain

import "strings"

// InputKind 标识输入事件的类型，是分发表的键。
type InputKind string

const (
	InputClick        InputKind = "click"
	InputPointerDown  InputKind = "pointer_down"
	InputPointerMove  InputKind = "pointer_move"
	InputPointerUp    InputKind = "pointer_up"
	InputPointerLeave InputKind = "pointer_leave"
	InputWheel        InputKind = "wheel"
	InputKey          InputKind = "key"
	InputToggleGrid   InputKind = "toggle_grid"
	InputZoomIn       InputKind = "zoom_in"
	InputZoomOut      InputKind = "zoom_out"
	InputResetZoom    InputKind = "reset_zoom"
	InputSelectColor  InputKind = "select_color"
	InputResize       InputKind = "resize"
)

// 指针按键编号，与浏览器 MouseEvent.button 保持一致。
const (
	ButtonPrimary   = 0
	ButtonMiddle    = 1
	ButtonSecondary = 2
)

// 键盘按键名。
const (
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// InputEvent 是视图收到的一次输入。X/Y 为相对画布左上角的屏幕坐标。
type InputEvent struct {
	Kind   InputKind `json:"kind" binding:"required"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Button int       `json:"button"`
	Shift  bool      `json:"shift"`
	Ctrl   bool      `json:"ctrl"`
	DeltaX float64   `json:"delta_x"`
	DeltaY float64   `json:"delta_y"`
	Key    string    `json:"key,omitempty"`
	Color  string    `json:"color,omitempty"`
	Width  int       `json:"width,omitempty"`
	Height int       `json:"height,omitempty"`
}

// InputResult 告诉输入来源事件是否被处理以及是否应阻止默认行为（如页面滚动）。
type InputResult struct {
	Handled        bool `json:"handled"`
	PreventDefault bool `json:"prevent_default"`
}

// InputMode 区分触控板和鼠标滚轮的滚动语义。
type InputMode string

const (
	InputModeAuto     InputMode = "auto"
	InputModeTrackpad InputMode = "trackpad"
	InputModeWheel    InputMode = "wheel"
)

// DetectInputMode 根据平台和触控能力猜测输入设备。
// 这是尽力而为的启发式：macOS 或支持触控时视为触控板。
func DetectInputMode(platform string, touchCapable bool) InputMode {
	if isMacPlatform(platform) || touchCapable {
		return InputModeTrackpad
	}
	return InputModeWheel
}

func isMacPlatform(platform string) bool {
	p := strings.ToLower(platform)
	return p == "darwin" || strings.Contains(p, "mac")
}
