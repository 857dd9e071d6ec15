package domain

// DefaultSelectedColor 是启动时默认选中的颜色。
const DefaultSelectedColor = "#FFFFFF"

// Palette 保存可选颜色（有序）以及当前选中的颜色。
type Palette struct {
	Colors   []string
	Selected string
}

// NewPalette 创建只有选中颜色的空调色板，颜色列表稍后加载。
func NewPalette(selected string) Palette {
	if selected == "" {
		selected = DefaultSelectedColor
	}
	return Palette{Selected: selected}
}

// Select 修改选中颜色。选中色不要求出现在列表中，由服务端校验。
func (p *Palette) Select(color string) bool {
	if color == "" || color == p.Selected {
		return false
	}
	p.Selected = color
	return true
}

// Contains 判断颜色是否在列表中。
func (p Palette) Contains(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}
