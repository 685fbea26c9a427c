// internal/game/types.go
//
// Core type definitions for the pattern-guessing game.
// Defines:
//   - Score: two-part feedback for a guess (differential, exact).
//   - Mode / State: session mode and coarse lifecycle state.
//   - Session: state for a single in-progress or finished game.
//   - Solver: state for an assisted solve where the caller reports scores.
//   - Sentinel errors.

package game

import (
	"errors"
	"sync"

	"github.com/robalobadob/patternmind/internal/pattern"
)

var (
	// ErrLengthMismatch indicates a trial and target of different lengths were compared.
	ErrLengthMismatch = errors.New("game: trial and target lengths differ")
	// ErrFinished indicates a guess or hint on a finished game.
	ErrFinished = errors.New("game: game finished")
	// ErrWrongLength indicates a guess whose length differs from the session length.
	ErrWrongLength = errors.New("game: guess has wrong length")
	// ErrNotAPattern indicates a guess that is not a valid pattern on the board.
	ErrNotAPattern = errors.New("game: not a valid pattern")
	// ErrNoCandidates indicates an empty candidate set was supplied.
	ErrNoCandidates = errors.New("game: no candidate patterns")
	// ErrUnknownMode indicates an unsupported session mode.
	ErrUnknownMode = errors.New("game: unknown mode")
	// ErrScoreRange indicates a reported score outside 0 <= differential+exact <= length.
	ErrScoreRange = errors.New("game: score out of range")
	// ErrInconsistentFeedback indicates a reported score that no remaining candidate satisfies.
	ErrInconsistentFeedback = errors.New("game: feedback inconsistent with every remaining candidate")
)

// Score is the feedback for a trial path against a target path.
//   - Exact:        positions where trial and target hold the same node.
//   - Differential: nodes of trial found anywhere in target, minus Exact.
type Score struct {
	Differential int `json:"differential"`
	Exact        int `json:"exact"`
}

// Mode selects how the hidden target behaves.
//   - "play":  target is fixed for the whole game.
//   - "cheat": target is re-drawn after every miss among the still-consistent candidates.
type Mode string

const (
	ModePlay  Mode = "play"
	ModeCheat Mode = "cheat"
)

// ParseMode maps a request string to a Mode; "" and "normal" mean play.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "normal", string(ModePlay):
		return ModePlay, nil
	case string(ModeCheat):
		return ModeCheat, nil
	}
	return "", ErrUnknownMode
}

// State is the coarse lifecycle of a session.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Guess is one scored guess in a session's history.
type Guess struct {
	Path  pattern.Path `json:"path"`
	Score Score        `json:"score"`
}

// Turn is the outcome of a single ApplyGuess call.
type Turn struct {
	Score     Score `json:"score"`
	State     State `json:"state"`
	Remaining int   `json:"remaining"`
	Tries     int   `json:"tries"`
}

// Progress reports how far a session's candidate set has shrunk.
type Progress struct {
	Remaining int `json:"remaining"`
	Total     int `json:"total"`
	Percent   int `json:"percent"` // ceil(Remaining/Total*100)
}

// Session holds the state of a single game.
// Methods are safe for concurrent use; the exported identity fields never change after New.
type Session struct {
	ID         string // Unique session identifier (random hex string).
	Width      int    // Board columns.
	Height     int    // Board rows.
	Length     int    // Pattern length being guessed.
	Mode       Mode   // play | cheat
	MaxGuesses int    // Tries allowed, hints included; 0 means unlimited.

	mu       sync.Mutex
	rng      Rand
	target   pattern.Path
	total    int            // size of the initial candidate set
	working  []pattern.Path // candidates consistent with every guess so far
	guesses  []Guess
	hints    int
	finished bool
	won      bool
}

// Solver holds the state of an assisted solve: it proposes patterns and the
// caller reports how each one scored against a target only they know.
type Solver struct {
	ID     string
	Width  int
	Height int
	Length int

	mu      sync.Mutex
	rng     Rand
	total   int
	working []pattern.Path
	rounds  int
}
