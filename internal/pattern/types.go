// internal/pattern/types.go
//
// Core type definitions for pattern enumeration.
// Defines:
//   - Path: an ordered, duplicate-free sequence of node ids.
//   - Sight: one visible direction from a node (nearest unvisited node on it).
//   - Buckets: paths grouped by length.
//   - Sentinel errors.
package pattern

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidParameter indicates a non-positive width, height or maximum length.
var ErrInvalidParameter = errors.New("pattern: width, height and length must be positive")

// Path is an ordered sequence of distinct node ids.
// Paths returned by this package are never mutated afterwards; Clone before editing.
type Path []int

// Clone returns an independent copy of p.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Equal reports whether p and q hold the same ids in the same order.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Key returns a canonical string form ("0-4-8") usable as a map key.
func (p Path) Key() string {
	var b strings.Builder
	for i, id := range p {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// Sight describes the nearest unvisited node along one direction from the current node.
type Sight struct {
	Node  int     // nearest unvisited node in this direction
	Dist2 int     // squared Euclidean distance to Node
	Angle float64 // math.Atan2(dy, dx) of the direction
}

// Buckets groups paths by their length.
type Buckets map[int][]Path

// GroupByLength buckets paths by observed length, preserving input order within a bucket.
func GroupByLength(paths []Path) Buckets {
	b := make(Buckets)
	for _, p := range paths {
		b[len(p)] = append(b[len(p)], p)
	}
	return b
}

// Lengths returns the bucket lengths in ascending order.
func (b Buckets) Lengths() []int {
	out := make([]int, 0, len(b))
	for l := range b {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}
