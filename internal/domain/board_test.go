package domain_test

import (
	"testing"

	"kis-canvas/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellKey(t *testing.T) {
	cell, err := domain.ParseCellKey("12,34")
	require.NoError(t, err)
	assert.Equal(t, domain.Cell{X: 12, Y: 34}, cell)
	assert.Equal(t, "12,34", cell.Key())

	for _, bad := range []string{"", "12", "a,1", "1,b", "1:2"} {
		_, err := domain.ParseCellKey(bad)
		assert.Error(t, err, "key %q should be rejected", bad)
	}
}

func TestPixelMapFromWire_SkipsBadKeys(t *testing.T) {
	pixels, skipped := domain.PixelMapFromWire(map[string]string{
		"0,0":   "#E50000",
		"199,4": "#0000EA",
		"oops":  "#FFFFFF",
	})

	assert.Equal(t, 1, skipped)
	assert.Len(t, pixels, 2)
	color, ok := pixels.Get(199, 4)
	assert.True(t, ok)
	assert.Equal(t, "#0000EA", color)
}

func TestPixelMap_LastWriteWins(t *testing.T) {
	pixels := make(domain.PixelMap)
	pixels.Set(5, 5, "#112233")
	pixels.Set(5, 5, "#445566")

	color, ok := pixels.Get(5, 5)
	assert.True(t, ok)
	assert.Equal(t, "#445566", color)
	assert.Equal(t, map[string]string{"5,5": "#445566"}, pixels.Wire())
}

func TestGrid_Contains(t *testing.T) {
	grid := domain.NewGrid(0, 0) // 回退到默认尺寸
	assert.Equal(t, domain.DefaultGridWidth, grid.Width)
	assert.True(t, grid.Contains(0, 0))
	assert.True(t, grid.Contains(199, 149))
	assert.False(t, grid.Contains(200, 0))
	assert.False(t, grid.Contains(0, 150))
	assert.False(t, grid.Contains(-1, 3))
}

func TestPixelUpdate_Valid(t *testing.T) {
	assert.True(t, domain.NewPixelUpdate(0, 0, "#000000").Valid())
	x := 3
	assert.False(t, domain.PixelUpdate{X: &x, Color: "#000000"}.Valid())
	assert.False(t, domain.NewPixelUpdate(1, 1, "").Valid())
}

func TestDetectInputMode(t *testing.T) {
	assert.Equal(t, domain.InputModeTrackpad, domain.DetectInputMode("darwin", false))
	assert.Equal(t, domain.InputModeTrackpad, domain.DetectInputMode("MacIntel", false))
	assert.Equal(t, domain.InputModeTrackpad, domain.DetectInputMode("linux", true))
	assert.Equal(t, domain.InputModeWheel, domain.DetectInputMode("linux", false))
	assert.Equal(t, domain.InputModeWheel, domain.DetectInputMode("windows", false))
}
