package catalog_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/patternmind/internal/catalog"
	"github.com/robalobadob/patternmind/internal/pattern"
)

func TestCandidates_LoadsOnceAndShares(t *testing.T) {
	c := catalog.New(catalog.Options{MaxNodes: 9, MaxLength: 9, Workers: 2})

	a, err := c.Candidates(context.Background(), 3, 3, 4)
	require.NoError(t, err)
	require.Len(t, a, 1624)
	for _, p := range a {
		require.Len(t, p, 4)
	}

	b, err := c.Candidates(context.Background(), 3, 3, 4)
	require.NoError(t, err)
	assert.Same(t, &a[0], &b[0], "second call returns the cached slice")

	assert.Equal(t, []catalog.Entry{{Key: catalog.Key{Width: 3, Height: 3, Length: 4}, Patterns: 1624}}, c.Stats())
}

func TestCandidates_Concurrent(t *testing.T) {
	c := catalog.New(catalog.Options{MaxNodes: 9, MaxLength: 9})

	var wg sync.WaitGroup
	counts := make([]int, 8)
	for i := range counts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths, err := c.Candidates(context.Background(), 3, 3, 3)
			if err == nil {
				counts[i] = len(paths)
			}
		}(i)
	}
	wg.Wait()
	for _, n := range counts {
		assert.Equal(t, 320, n)
	}
}

func TestCandidates_Errors(t *testing.T) {
	c := catalog.New(catalog.Options{MaxNodes: 9, MaxLength: 6})
	ctx := context.Background()

	_, err := c.Candidates(ctx, 0, 3, 3)
	assert.ErrorIs(t, err, pattern.ErrInvalidParameter)

	_, err = c.Candidates(ctx, 4, 4, 3)
	assert.ErrorIs(t, err, catalog.ErrTooLarge)

	_, err = c.Candidates(ctx, 3, 3, 7)
	assert.ErrorIs(t, err, catalog.ErrTooLarge)

	_, err = c.Candidates(ctx, 2, 2, 5)
	assert.ErrorIs(t, err, catalog.ErrEmpty)
}

func TestCandidates_CallerCancelDoesNotFailOthers(t *testing.T) {
	c := catalog.New(catalog.Options{MaxNodes: 9, MaxLength: 9, Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	var errA error
	go func() {
		defer wg.Done()
		_, errA = c.Candidates(ctx, 3, 3, 7)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	paths, err := c.Candidates(context.Background(), 3, 3, 7)
	require.NoError(t, err)
	assert.Len(t, paths, 72912)

	wg.Wait()
	if errA != nil {
		assert.ErrorIs(t, errA, context.Canceled)
	}
}

func TestCandidates_CancelledCallerReturnsPromptly(t *testing.T) {
	c := catalog.New(catalog.Options{MaxNodes: 9, MaxLength: 9, Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Candidates(ctx, 3, 3, 3)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}

	paths, err := c.Candidates(context.Background(), 3, 3, 3)
	require.NoError(t, err)
	assert.Len(t, paths, 320)
}

func TestCandidates_TimedOutIsNotCached(t *testing.T) {
	c := catalog.New(catalog.Options{MaxNodes: 9, MaxLength: 9, Workers: 1, Timeout: time.Millisecond})

	_, err := c.Candidates(context.Background(), 3, 3, 9)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, c.Stats())
}

func TestCandidates_OverflowingBoard(t *testing.T) {
	c := catalog.New(catalog.Options{MaxNodes: 9, MaxLength: 9})

	_, err := c.Candidates(context.Background(), 1099511627781, 2951478655969342261, 3)
	assert.ErrorIs(t, err, pattern.ErrInvalidParameter)
	assert.Empty(t, c.Stats())

	unlimited := catalog.New(catalog.Options{})
	_, err = unlimited.Candidates(context.Background(), 1099511627781, 2951478655969342261, 3)
	assert.ErrorIs(t, err, pattern.ErrInvalidParameter)
}

func TestIsPatternAndRandom(t *testing.T) {
	c := catalog.New(catalog.Options{MaxNodes: 9, MaxLength: 9})
	ctx := context.Background()

	assert.False(t, c.IsPattern(3, 3, pattern.Path{0, 1, 2}), "nothing loaded yet")

	_, err := c.Candidates(ctx, 3, 3, 3)
	require.NoError(t, err)

	valid := c.Validator(3, 3)
	assert.True(t, valid(pattern.Path{0, 1, 2}))
	assert.True(t, valid(pattern.Path{1, 0, 2}), "jumping a visited node is allowed")
	assert.False(t, valid(pattern.Path{0, 2, 1}), "jumping an unvisited node is not")
	assert.False(t, valid(pattern.Path{0, 1, 1}))

	p, err := c.Random(ctx, 3, 3, 3)
	require.NoError(t, err)
	assert.True(t, valid(p))
}
