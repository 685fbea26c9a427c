package pattern_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/patternmind/internal/pattern"
)

// TestNewGrid_Errors verifies that NewGrid rejects non-positive dimensions.
func TestNewGrid_Errors(t *testing.T) {
	cases := []struct {
		name string
		w, h int
	}{
		{"ZeroWidth", 0, 3},
		{"ZeroHeight", 3, 0},
		{"Negative", -1, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pattern.NewGrid(tc.w, tc.h)
			if !errors.Is(err, pattern.ErrInvalidParameter) {
				t.Errorf("NewGrid(%d,%d) error = %v; want %v", tc.w, tc.h, err, pattern.ErrInvalidParameter)
			}
		})
	}
}

// TestGrid_RowMajor checks id = y*width + x on a non-square grid.
func TestGrid_RowMajor(t *testing.T) {
	g, err := pattern.NewGrid(4, 2)
	require.NoError(t, err)
	require.Equal(t, 8, g.NodeCount())

	x, y := g.Coord(5)
	assert.Equal(t, 1, x)
	assert.Equal(t, 1, y)
	assert.Equal(t, 7, g.ID(3, 1))

	for id := 0; id < g.NodeCount(); id++ {
		x, y := g.Coord(id)
		assert.Equal(t, id, g.ID(x, y), "round trip for %d", id)
	}
}

// TestGrid_OutOfRangePanics confirms range violations fail fast.
func TestGrid_OutOfRangePanics(t *testing.T) {
	g, err := pattern.NewGrid(3, 3)
	require.NoError(t, err)

	assert.Panics(t, func() { g.Coord(9) })
	assert.Panics(t, func() { g.Coord(-1) })
	assert.Panics(t, func() { g.ID(3, 0) })
	assert.Panics(t, func() { g.ID(0, -1) })
	assert.False(t, g.Contains(9))
	assert.True(t, g.Contains(8))
}

// TestNewGrid_Overflow rejects dimensions whose product wraps an int.
func TestNewGrid_Overflow(t *testing.T) {
	_, err := pattern.NewGrid(1099511627781, 2951478655969342261)
	assert.ErrorIs(t, err, pattern.ErrInvalidParameter)

	_, err = pattern.NewGrid(math.MaxInt, 2)
	assert.ErrorIs(t, err, pattern.ErrInvalidParameter)

	g, err := pattern.NewGrid(math.MaxInt, 1)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, g.NodeCount())
}
