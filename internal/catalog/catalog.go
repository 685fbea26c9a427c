// internal/catalog/catalog.go
//
// In-memory catalog of candidate pattern sets.
//
// Responsibilities:
//   - Generate the candidate set for a (width, height, length) key on first use.
//   - Share each set read-only across every session that plays that key.
//   - Keep a membership index so guesses can be checked in O(len).
//   - Enforce board/length limits so a request cannot trigger an unbounded search.
//
// Sets are never written to disk; they are rebuilt on each process start.
// Generation runs once per key in its own goroutine, bounded by Options.Timeout
// and detached from the request that triggered it. A caller whose context ends
// stops waiting; the generation carries on for everyone else. A generation that
// times out is not cached, so the next caller retries it.
package catalog

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/patternmind/internal/pattern"
)

var (
	// ErrTooLarge indicates the board or length exceeds the configured limits.
	ErrTooLarge = errors.New("catalog: board or length exceeds configured limits")
	// ErrEmpty indicates no pattern of the requested length exists on the board.
	ErrEmpty = errors.New("catalog: no patterns of that length")
)

// Options bounds what the catalog will generate.
type Options struct {
	MaxNodes  int // largest width*height accepted
	MaxLength int // longest pattern accepted
	Workers   int           // parallel start nodes during generation; <=0 uses NumCPU
	Timeout   time.Duration // upper bound on one generation; <=0 uses DefaultTimeout
}

// DefaultTimeout bounds a generation when Options.Timeout is unset.
const DefaultTimeout = 2 * time.Minute

// Key identifies one candidate set.
type Key struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Length int `json:"length"`
}

// Entry describes a loaded candidate set.
type Entry struct {
	Key
	Patterns int `json:"patterns"`
}

type entry struct {
	done  chan struct{} // closed once paths/index/err are final
	paths []pattern.Path
	index map[string]struct{}
	err   error
}

// Catalog caches candidate sets by key. Safe for concurrent use.
type Catalog struct {
	opts    Options
	mu      sync.Mutex // guards entries
	entries map[Key]*entry
}

// New constructs an empty catalog.
func New(opts Options) *Catalog {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Catalog{opts: opts, entries: make(map[Key]*entry)}
}

// Candidates returns every pattern of exactly length nodes on a width×height
// board. The returned slice is shared: callers must not modify it.
func (c *Catalog) Candidates(ctx context.Context, width, height, length int) ([]pattern.Path, error) {
	e, err := c.load(ctx, Key{Width: width, Height: height, Length: length})
	if err != nil {
		return nil, err
	}
	return e.paths, nil
}

// IsPattern reports whether p is a candidate of an already loaded set.
func (c *Catalog) IsPattern(width, height int, p pattern.Path) bool {
	var index map[string]struct{}
	c.mu.Lock()
	if e, ok := c.entries[Key{Width: width, Height: height, Length: len(p)}]; ok {
		index = e.index
	}
	c.mu.Unlock()
	_, ok := index[p.Key()]
	return ok
}

// Validator returns a membership check bound to one board.
func (c *Catalog) Validator(width, height int) func(pattern.Path) bool {
	return func(p pattern.Path) bool { return c.IsPattern(width, height, p) }
}

// Random returns a cryptographically random candidate for the key.
func (c *Catalog) Random(ctx context.Context, width, height, length int) (pattern.Path, error) {
	paths, err := c.Candidates(ctx, width, height, length)
	if err != nil {
		return nil, err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(paths))))
	if err != nil {
		return nil, err
	}
	return paths[n.Int64()].Clone(), nil
}

// Stats lists the loaded sets, ordered by key.
func (c *Catalog) Stats() []Entry {
	c.mu.Lock()
	out := make([]Entry, 0, len(c.entries))
	for k, e := range c.entries {
		if e.index != nil {
			out = append(out, Entry{Key: k, Patterns: len(e.paths)})
		}
	}
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a.Width != b.Width {
			return a.Width < b.Width
		}
		if a.Height != b.Height {
			return a.Height < b.Height
		}
		return a.Length < b.Length
	})
	return out
}

func (c *Catalog) check(k Key) error {
	g, err := pattern.NewGrid(k.Width, k.Height)
	if err != nil || k.Length <= 0 {
		return fmt.Errorf("%w: %dx%d length %d", pattern.ErrInvalidParameter, k.Width, k.Height, k.Length)
	}
	if (c.opts.MaxNodes > 0 && g.NodeCount() > c.opts.MaxNodes) ||
		(c.opts.MaxLength > 0 && k.Length > c.opts.MaxLength) {
		return fmt.Errorf("%w: %dx%d length %d", ErrTooLarge, k.Width, k.Height, k.Length)
	}
	if k.Length > g.NodeCount() {
		return fmt.Errorf("%w: %dx%d length %d", ErrEmpty, k.Width, k.Height, k.Length)
	}
	return nil
}

func (c *Catalog) load(ctx context.Context, k Key) (*entry, error) {
	if err := c.check(k); err != nil {
		return nil, err
	}
	c.mu.Lock()
	e, ok := c.entries[k]
	if !ok {
		e = &entry{done: make(chan struct{})}
		c.entries[k] = e
		go c.run(context.WithoutCancel(ctx), k, e)
	}
	c.mu.Unlock()

	select {
	case <-e.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return e, nil
}

// run generates k under the catalog's own deadline and publishes the result.
func (c *Catalog) run(ctx context.Context, k Key, e *entry) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	e.err = c.generate(ctx, k, e)
	if e.err != nil {
		log.Warn().Err(e.err).Str("grid", fmt.Sprintf("%dx%d", k.Width, k.Height)).Int("length", k.Length).
			Msg("pattern generation failed")
		c.mu.Lock()
		if c.entries[k] == e {
			delete(c.entries, k)
		}
		c.mu.Unlock()
	}
	close(e.done)
}

func (c *Catalog) generate(ctx context.Context, k Key, e *entry) error {
	start := time.Now()
	all, err := pattern.GenerateParallel(ctx, k.Width, k.Height, k.Length, c.opts.Workers)
	if err != nil {
		return err
	}
	buckets := pattern.GroupByLength(all)
	paths := buckets[k.Length]
	if len(paths) == 0 {
		return fmt.Errorf("%w: %dx%d length %d", ErrEmpty, k.Width, k.Height, k.Length)
	}
	index := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		index[p.Key()] = struct{}{}
	}
	e.paths = paths

	c.mu.Lock()
	e.index = index
	c.mu.Unlock()

	log.Info().
		Str("grid", fmt.Sprintf("%dx%d", k.Width, k.Height)).
		Int("length", k.Length).
		Int("patterns", len(paths)).
		Int("searched", len(all)).
		Ints("lengths", buckets.Lengths()).
		Dur("took", time.Since(start)).
		Msg("generated candidate patterns")
	return nil
}
