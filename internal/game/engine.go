// internal/game/engine.go
//
// Game engine for a single pattern-guessing session.
// Responsibilities:
//   - Create sessions over a borrowed, read-only candidate set.
//   - Validate and apply guesses (finished, length, valid pattern).
//   - Score guesses and narrow the working candidate set.
//   - Track state transitions: playing → won/lost.
//   - Hints (cost one try) and progress reporting.
//
// Notes:
//   - The candidate set is produced by the catalog and shared across sessions;
//     the engine never writes to it. Narrowing always builds a new slice.
//   - Invariant: the target is always a member of the working set.
package game

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/robalobadob/patternmind/internal/pattern"
)

// Options configures a new Session.
type Options struct {
	Width      int
	Height     int
	Length     int
	Mode       Mode
	MaxGuesses int  // tries (guesses + hints) allowed; 0 = unlimited
	Rand       Rand // nil = crypto/rand
}

// New constructs a session over candidates, which must all have opts.Length nodes.
// If target is nil, a random candidate is chosen.
func New(opts Options, candidates []pattern.Path, target pattern.Path) (*Session, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModePlay
	}
	if mode != ModePlay && mode != ModeCheat {
		return nil, ErrUnknownMode
	}
	rng := opts.Rand
	if rng == nil {
		rng = CryptoRand{}
	}
	if target == nil {
		target = candidates[rng.IntN(len(candidates))]
	}
	if len(target) != opts.Length {
		return nil, ErrWrongLength
	}
	return &Session{
		ID:         randomID(),
		Width:      opts.Width,
		Height:     opts.Height,
		Length:     opts.Length,
		Mode:       mode,
		MaxGuesses: opts.MaxGuesses,
		rng:        rng,
		target:     target.Clone(),
		total:      len(candidates),
		working:    candidates,
	}, nil
}

// ApplyGuess validates and scores a guess, narrowing the working set.
// valid may be nil; otherwise it must report whether guess is a real pattern.
//
// Validation rules:
//   - Session must not be finished.
//   - Guess must have exactly s.Length nodes.
//   - Guess must pass valid.
//
// State transitions:
//   - Exact == Length → finished, won.
//   - Else if tries (guesses + hints) reach MaxGuesses (when set) → finished, lost.
func (s *Session) ApplyGuess(guess pattern.Path, valid func(pattern.Path) bool) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return s.turnLocked(Score{}), ErrFinished
	}
	if len(guess) != s.Length {
		return s.turnLocked(Score{}), ErrWrongLength
	}
	if valid != nil && !valid(guess) {
		return s.turnLocked(Score{}), ErrNotAPattern
	}

	score, _ := Evaluate(guess, s.target)
	if s.Mode == ModeCheat && !(score.Exact == s.Length && len(s.working) == 1) {
		// Dodge: drop the guess and re-draw the target among the rest.
		rest := without(s.working, guess)
		if len(rest) > 0 {
			s.working = rest
			s.target = rest[s.rng.IntN(len(rest))]
			score, _ = Evaluate(guess, s.target)
		}
	}
	s.working = Narrow(s.working, guess, score)
	s.guesses = append(s.guesses, Guess{Path: guess.Clone(), Score: score})

	if score.Exact == s.Length {
		s.finished, s.won = true, true
	} else if s.outOfTriesLocked() {
		s.finished = true
	}
	return s.turnLocked(score), nil
}

// Hint returns a random pattern still consistent with every guess so far.
// Each hint costs one try; a hint that uses the last try loses the game.
func (s *Session) Hint() (pattern.Path, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return nil, ErrFinished
	}
	s.hints++
	if s.outOfTriesLocked() {
		s.finished = true
	}
	return s.working[s.rng.IntN(len(s.working))].Clone(), nil
}

// Progress reports how many candidates remain out of the initial set.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return progress(len(s.working), s.total)
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Tries counts guesses plus hints taken.
func (s *Session) Tries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.guesses) + s.hints
}

// History returns a copy of the scored guesses so far.
func (s *Session) History() []Guess {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Guess, len(s.guesses))
	copy(out, s.guesses)
	return out
}

// Answer reveals the target once the session is finished.
func (s *Session) Answer() (pattern.Path, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finished {
		return nil, false
	}
	return s.target.Clone(), true
}

func (s *Session) turnLocked(score Score) Turn {
	return Turn{
		Score:     score,
		State:     s.stateLocked(),
		Remaining: len(s.working),
		Tries:     len(s.guesses) + s.hints,
	}
}

func (s *Session) outOfTriesLocked() bool {
	return s.MaxGuesses > 0 && len(s.guesses)+s.hints >= s.MaxGuesses
}

// stateLocked reports a coarse representation of the current state.
func (s *Session) stateLocked() State {
	if s.finished {
		if s.won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}

func progress(remaining, total int) Progress {
	p := Progress{Remaining: remaining, Total: total}
	if total > 0 {
		p.Percent = (remaining*100 + total - 1) / total
	}
	return p
}

// without returns a new slice holding every path of paths except p.
func without(paths []pattern.Path, p pattern.Path) []pattern.Path {
	out := make([]pattern.Path, 0, len(paths))
	for _, c := range paths {
		if !c.Equal(p) {
			out = append(out, c)
		}
	}
	return out
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
