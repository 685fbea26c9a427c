// internal/render/render.go
//
// Plain-text drawing of a pattern on its board.
//
// Each node in the pattern shows its 1-based position in the pattern; other
// nodes show ".". Cells are padded to the width of the largest node number
// plus one, and the board is framed by dashed rules:
//
//	-----
//	1 . .
//	. 2 .
//	. . 3
//	-----
package render

import (
	"strconv"
	"strings"

	"github.com/robalobadob/patternmind/internal/pattern"
)

// Draw renders path on g. Nodes outside g are ignored.
func Draw(g pattern.Grid, path pattern.Path) string {
	cell := len(strconv.Itoa(g.NodeCount())) + 1
	order := make(map[int]int, len(path))
	for i, id := range path {
		order[id] = i + 1
	}
	rule := strings.Repeat("-", cell*g.Width()-1)

	var b strings.Builder
	b.WriteString(rule)
	b.WriteByte('\n')
	for y := 0; y < g.Height(); y++ {
		var row strings.Builder
		for x := 0; x < g.Width(); x++ {
			label := "."
			if n, ok := order[g.ID(x, y)]; ok {
				label = strconv.Itoa(n)
			}
			row.WriteString(label)
			row.WriteString(strings.Repeat(" ", cell-len(label)))
		}
		b.WriteString(strings.TrimRight(row.String(), " "))
		b.WriteByte('\n')
	}
	b.WriteString(rule)
	b.WriteByte('\n')
	return b.String()
}

// Board renders every node numbered by id+1, the legend shown to players.
func Board(g pattern.Grid) string {
	all := make(pattern.Path, g.NodeCount())
	for i := range all {
		all[i] = i
	}
	return Draw(g, all)
}
