package domain

// CellSize 是每个格子在世界坐标中的边长（逻辑单位）。
const CellSize = 10

// 默认画布尺寸（格子数），与服务端默认配置一致。
const (
	DefaultGridWidth  = 200
	DefaultGridHeight = 150
)

// Grid 描述画布的逻辑尺寸，会话期间不可变。
type Grid struct {
	Width  int `json:"width"`  // 列数
	Height int `json:"height"` // 行数
}

// NewGrid 创建 Grid，非正数的尺寸回退到默认值。
func NewGrid(width, height int) Grid {
	if width <= 0 {
		width = DefaultGridWidth
	}
	if height <= 0 {
		height = DefaultGridHeight
	}
	return Grid{Width: width, Height: height}
}

// Contains 判断格子坐标是否落在 [0,W)×[0,H) 内。
func (g Grid) Contains(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// WorldWidth 返回画布在世界坐标中的宽度。
func (g Grid) WorldWidth() float64 { return float64(g.Width * CellSize) }

// WorldHeight 返回画布在世界坐标中的高度。
func (g Grid) WorldHeight() float64 { return float64(g.Height * CellSize) }
