package pattern_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/patternmind/internal/pattern"
)

//----------------------------------------------------------------------------//
// Argument validation
//----------------------------------------------------------------------------//

// TestGenerate_InvalidParameter rejects non-positive width, height or maxLen.
func TestGenerate_InvalidParameter(t *testing.T) {
	cases := []struct {
		name         string
		w, h, maxLen int
	}{
		{"ZeroWidth", 0, 3, 3},
		{"ZeroHeight", 3, 0, 3},
		{"ZeroLength", 3, 3, 0},
		{"NegativeLength", 3, 3, -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pattern.Generate(tc.w, tc.h, tc.maxLen)
			if !errors.Is(err, pattern.ErrInvalidParameter) {
				t.Errorf("Generate(%d,%d,%d) error = %v; want %v", tc.w, tc.h, tc.maxLen, err, pattern.ErrInvalidParameter)
			}
			_, err = pattern.GenerateParallel(context.Background(), tc.w, tc.h, tc.maxLen, 2)
			assert.ErrorIs(t, err, pattern.ErrInvalidParameter)
		})
	}
}

//----------------------------------------------------------------------------//
// Small exact cases
//----------------------------------------------------------------------------//

// TestGenerate_SingleNode: a 1×1 grid has exactly one pattern, [0].
func TestGenerate_SingleNode(t *testing.T) {
	paths, err := pattern.Generate(1, 1, 1)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, pattern.Path{0}, paths[0])

	// Longer limits cannot add anything on a single node.
	paths, err = pattern.Generate(1, 1, 5)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

// TestGenerate_OnePerStart: maxLen=1 on 3×3 gives one pattern per node.
func TestGenerate_OnePerStart(t *testing.T) {
	paths, err := pattern.Generate(3, 3, 1)
	require.NoError(t, err)
	require.Len(t, paths, 9)
	for i, p := range paths {
		assert.Equal(t, pattern.Path{i}, p)
	}
}

// TestGenerate_KnownCounts matches the well-known 3×3 unlock pattern counts.
func TestGenerate_KnownCounts(t *testing.T) {
	want := map[int]int{1: 9, 2: 56, 3: 320, 4: 1624, 5: 7152}

	paths, err := pattern.Generate(3, 3, 5)
	require.NoError(t, err)
	buckets := pattern.GroupByLength(paths)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, buckets.Lengths())
	for l, n := range want {
		assert.Len(t, buckets[l], n, "length %d", l)
	}
}

// TestGenerate_FullBoard covers the longest 3×3 patterns.
func TestGenerate_FullBoard(t *testing.T) {
	if testing.Short() {
		t.Skip("full 3x3 enumeration skipped in -short mode")
	}
	paths, err := pattern.Generate(3, 3, 9)
	require.NoError(t, err)
	buckets := pattern.GroupByLength(paths)
	assert.Len(t, buckets[6], 26016)
	assert.Len(t, buckets[7], 72912)
	assert.Len(t, buckets[8], 140704)
	assert.Len(t, buckets[9], 140704)
}

//----------------------------------------------------------------------------//
// Structural properties
//----------------------------------------------------------------------------//

// TestGenerate_Properties checks uniqueness, the length bound and visibility
// soundness on square and non-square grids.
func TestGenerate_Properties(t *testing.T) {
	cases := []struct {
		w, h, maxLen int
	}{
		{3, 3, 4},
		{4, 2, 4},
		{2, 5, 3},
	}
	for _, tc := range cases {
		g, err := pattern.NewGrid(tc.w, tc.h)
		require.NoError(t, err)
		paths, err := pattern.Generate(tc.w, tc.h, tc.maxLen)
		require.NoError(t, err)
		require.NotEmpty(t, paths)

		for _, p := range paths {
			require.GreaterOrEqual(t, len(p), 1)
			require.LessOrEqual(t, len(p), tc.maxLen)

			seen := make(map[int]bool, len(p))
			for _, id := range p {
				require.True(t, g.Contains(id))
				require.False(t, seen[id], "repeated node %d in %v", id, p)
				seen[id] = true
			}
			require.True(t, soundSteps(g, p), "blocked step in %v on %s", p, g)
		}
	}
}

// TestGenerate_Exhaustive compares against a brute-force search over all
// orderings on a small non-square grid.
func TestGenerate_Exhaustive(t *testing.T) {
	const w, h, maxLen = 3, 2, 3
	g, err := pattern.NewGrid(w, h)
	require.NoError(t, err)

	paths, err := pattern.Generate(w, h, maxLen)
	require.NoError(t, err)
	got := make(map[string]bool, len(paths))
	for _, p := range paths {
		require.False(t, got[p.Key()], "duplicate pattern %v", p)
		got[p.Key()] = true
	}

	want := 0
	var rec func(p pattern.Path)
	rec = func(p pattern.Path) {
		if len(p) > 0 {
			if !soundSteps(g, p) {
				return
			}
			want++
			assert.True(t, got[p.Key()], "missing pattern %v", p)
		}
		if len(p) == maxLen {
			return
		}
	next:
		for id := 0; id < g.NodeCount(); id++ {
			for _, v := range p {
				if v == id {
					continue next
				}
			}
			rec(append(p.Clone(), id))
		}
	}
	rec(nil)
	assert.Equal(t, want, len(paths))
}

// TestGenerateParallel_MatchesSequential requires identical output and order.
func TestGenerateParallel_MatchesSequential(t *testing.T) {
	seq, err := pattern.Generate(3, 3, 4)
	require.NoError(t, err)
	for _, workers := range []int{0, 1, 3} {
		par, err := pattern.GenerateParallel(context.Background(), 3, 3, 4, workers)
		require.NoError(t, err)
		require.Equal(t, seq, par, "workers=%d", workers)
	}
}

// TestGenerateParallel_Cancelled returns the context error.
func TestGenerateParallel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pattern.GenerateParallel(ctx, 3, 3, 3, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

// soundSteps reports whether no step of p jumps over a node that was still
// unvisited at the time of the step.
func soundSteps(g pattern.Grid, p pattern.Path) bool {
	for i := 1; i < len(p); i++ {
		ax, ay := g.Coord(p[i-1])
		bx, by := g.Coord(p[i])
		for id := 0; id < g.NodeCount(); id++ {
			visitedBefore := false
			for _, v := range p[:i] {
				if v == id {
					visitedBefore = true
					break
				}
			}
			if visitedBefore || id == p[i] {
				continue
			}
			x, y := g.Coord(id)
			cross := (bx-ax)*(y-ay) - (by-ay)*(x-ax)
			if cross != 0 {
				continue
			}
			dot := (x-ax)*(bx-ax) + (y-ay)*(by-ay)
			span := (bx-ax)*(bx-ax) + (by-ay)*(by-ay)
			if dot > 0 && dot < span {
				return false
			}
		}
	}
	return true
}
