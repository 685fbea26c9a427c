// internal/pattern/visibility.go
//
// Line-of-sight resolution for a single step of a pattern.
//
// From the current node, every unvisited node is grouped by direction. Within
// one direction only the nearest node is reachable; farther nodes on the same
// line are hidden behind it. Visited nodes are not considered at all, so a
// step may pass over a visited node but never over an unvisited one.
//
// Directions are keyed by the reduced integer step (dx/g, dy/g), g = gcd(|dx|,|dy|).
// Two nodes share a key exactly when atan2 gives them the same angle, without
// comparing floats for equality.
package pattern

import (
	"math"
	"sort"
)

// Visible returns, for each distinct direction from current, the nearest node
// that is not marked in visited. Results are ordered by ascending angle.
//
// visited must have length g.NodeCount(); current itself is always skipped.
// Complexity: O(N log N) for N = NodeCount().
func (g Grid) Visible(current int, visited []bool) []Sight {
	if len(visited) != g.NodeCount() {
		panic("pattern: visited set does not match grid size")
	}
	cx, cy := g.Coord(current)

	byDir := make(map[[2]int]int, g.NodeCount())
	sights := make([]Sight, 0, g.NodeCount())
	for id := 0; id < g.NodeCount(); id++ {
		if visited[id] || id == current {
			continue
		}
		x, y := id%g.width, id/g.width
		dx, dy := x-cx, y-cy
		d2 := dx*dx + dy*dy
		k := gcd(abs(dx), abs(dy))
		dir := [2]int{dx / k, dy / k}

		if i, ok := byDir[dir]; ok {
			if d2 < sights[i].Dist2 {
				sights[i].Node, sights[i].Dist2 = id, d2
			}
			continue
		}
		byDir[dir] = len(sights)
		sights = append(sights, Sight{
			Node:  id,
			Dist2: d2,
			Angle: math.Atan2(float64(dy), float64(dx)),
		})
	}

	sort.Slice(sights, func(i, j int) bool { return sights[i].Angle < sights[j].Angle })
	return sights
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
