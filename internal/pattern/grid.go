// internal/pattern/grid.go
//
// Grid model for the unlock-pattern board.
//
// Convention (used by every package in this module):
//   - Width is the number of columns (x in [0, Width)).
//   - Height is the number of rows (y in [0, Height)).
//   - Node id = y*Width + x, i.e. row-major, counting left→right, top→bottom.
//
// For a 3x3 board:
//
//	0 1 2
//	3 4 5
//	6 7 8
package pattern

import (
	"fmt"
	"math"
)

// Grid is an immutable width×height board of nodes.
type Grid struct {
	width, height int
}

// NewGrid validates dimensions and returns a Grid.
// Returns ErrInvalidParameter if width or height is non-positive, or if
// width*height does not fit in an int.
func NewGrid(width, height int) (Grid, error) {
	if width <= 0 || height <= 0 || width > math.MaxInt/height {
		return Grid{}, fmt.Errorf("%w: grid %dx%d", ErrInvalidParameter, width, height)
	}
	return Grid{width: width, height: height}, nil
}

// Width returns the column count.
func (g Grid) Width() int { return g.width }

// Height returns the row count.
func (g Grid) Height() int { return g.height }

// NodeCount returns width*height.
func (g Grid) NodeCount() int { return g.width * g.height }

// Contains reports whether id is a node of g.
func (g Grid) Contains(id int) bool { return id >= 0 && id < g.NodeCount() }

// Coord maps a node id to its (x, y) coordinate.
// Panics if id is outside [0, NodeCount()).
func (g Grid) Coord(id int) (x, y int) {
	if !g.Contains(id) {
		panic(fmt.Sprintf("pattern: node %d out of range for %dx%d grid", id, g.width, g.height))
	}
	return id % g.width, id / g.width
}

// ID maps (x, y) to a node id.
// Panics if the coordinate lies outside the grid.
func (g Grid) ID(x, y int) int {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		panic(fmt.Sprintf("pattern: coordinate (%d,%d) out of range for %dx%d grid", x, y, g.width, g.height))
	}
	return y*g.width + x
}

// String renders the grid as "WxH".
func (g Grid) String() string { return fmt.Sprintf("%dx%d", g.width, g.height) }
