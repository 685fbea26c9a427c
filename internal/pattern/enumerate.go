// internal/pattern/enumerate.go
//
// Exhaustive enumeration of unlock patterns.
//
// Every start node seeds a depth-first search. Each partial path is emitted
// before it is extended, so the result holds every length from 1 to maxLen.
// The search is iterative: an explicit stack of frames stores the sights of
// each tail node and the index of the next one to try. A flat []bool marks the
// visited nodes, and the shared path buffer is cloned only on emit.
//
// No memoization: patterns are order-sensitive and subtrees differ per prefix.
// Worst case is exponential in maxLen, bounded by the number of visible
// directions at each step.
package pattern

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// frame is one level of the search stack.
type frame struct {
	sights []Sight
	next   int
}

// Generate returns every valid pattern of length 1..maxLen on a width×height grid,
// ordered by start node and then depth-first.
// Returns ErrInvalidParameter if any argument is non-positive.
func Generate(width, height, maxLen int) ([]Path, error) {
	g, err := checkArgs(width, height, maxLen)
	if err != nil {
		return nil, err
	}
	var out []Path
	visited := make([]bool, g.NodeCount())
	for start := 0; start < g.NodeCount(); start++ {
		out = g.walk(start, maxLen, visited, out)
	}
	return out, nil
}

// GenerateParallel computes the same result as Generate, running one start
// node per goroutine with at most workers in flight (workers <= 0 means unlimited).
// Subtrees share no mutable state; results are concatenated in start order.
// Cancelling ctx stops scheduling further start nodes and returns ctx.Err().
func GenerateParallel(ctx context.Context, width, height, maxLen, workers int) ([]Path, error) {
	g, err := checkArgs(width, height, maxLen)
	if err != nil {
		return nil, err
	}
	parts := make([][]Path, g.NodeCount())

	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for start := 0; start < g.NodeCount(); start++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parts[start] = g.walk(start, maxLen, make([]bool, g.NodeCount()), nil)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]Path, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// walk appends every pattern starting at start to out.
// visited must be all false on entry and is all false again on return.
func (g Grid) walk(start, maxLen int, visited []bool, out []Path) []Path {
	path := make(Path, 1, min(maxLen, g.NodeCount()))
	path[0] = start
	visited[start] = true
	out = append(out, path.Clone())
	if maxLen == 1 {
		visited[start] = false
		return out
	}

	stack := []frame{{sights: g.Visible(start, visited)}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.sights) {
			// Subtree exhausted: drop the tail that owned this frame.
			stack = stack[:len(stack)-1]
			tail := path[len(path)-1]
			visited[tail] = false
			path = path[:len(path)-1]
			continue
		}
		node := top.sights[top.next].Node
		top.next++

		path = append(path, node)
		visited[node] = true
		out = append(out, path.Clone())

		if len(path) == maxLen {
			visited[node] = false
			path = path[:len(path)-1]
			continue
		}
		stack = append(stack, frame{sights: g.Visible(node, visited)})
	}
	return out
}

func checkArgs(width, height, maxLen int) (Grid, error) {
	g, err := NewGrid(width, height)
	if err != nil {
		return Grid{}, err
	}
	if maxLen <= 0 {
		return Grid{}, fmt.Errorf("%w: max length %d", ErrInvalidParameter, maxLen)
	}
	return g, nil
}
