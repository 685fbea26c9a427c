// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Holds live game sessions and solver sessions for the lifetime of the process.
//
// Characteristics:
//   - Stores *game.Session and *game.Solver objects keyed by ID in maps.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - ErrNotFound is returned for missing IDs on Get/GetSolver.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/patternmind/internal/game"
)

// ErrNotFound indicates no session with the requested ID.
var ErrNotFound = errors.New("store: not found")

// Store defines the persistence interface for live sessions.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type Store interface {
	// Save persists or updates a game session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a game session by ID.
	Get(ctx context.Context, id string) (*game.Session, error)

	// SaveSolver persists or updates a solver session.
	SaveSolver(ctx context.Context, s *game.Solver) error

	// GetSolver retrieves a solver session by ID.
	GetSolver(ctx context.Context, id string) (*game.Solver, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex            // guards both maps
	sessions map[string]*game.Session // keyed by Session.ID
	solvers  map[string]*game.Solver  // keyed by Solver.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		sessions: make(map[string]*game.Session),
		solvers:  make(map[string]*game.Solver),
	}
}

// Save adds or updates the session in the map.
func (m *memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// SaveSolver adds or updates the solver in the map.
func (m *memory) SaveSolver(ctx context.Context, s *game.Solver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solvers[s.ID] = s
	return nil
}

// GetSolver looks up a solver by ID.
func (m *memory) GetSolver(ctx context.Context, id string) (*game.Solver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.solvers[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}
