// internal/game/solver.go
//
// Assisted solving: the solver proposes a pattern, the caller draws it against
// a target the solver cannot see and reports the score, and the solver narrows
// its candidates. A reported score that leaves no candidate is rejected and the
// working set is kept, so a single mis-typed score does not end the solve.
package game

import "github.com/robalobadob/patternmind/internal/pattern"

// NewSolver starts a solve over a borrowed candidate set. rng nil = crypto/rand.
func NewSolver(width, height int, candidates []pattern.Path, rng Rand) (*Solver, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if rng == nil {
		rng = CryptoRand{}
	}
	return &Solver{
		ID:      randomID(),
		Width:   width,
		Height:  height,
		Length:  len(candidates[0]),
		rng:     rng,
		total:   len(candidates),
		working: candidates,
	}, nil
}

// Suggest returns a random pattern consistent with all feedback so far.
func (s *Solver) Suggest() pattern.Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working[s.rng.IntN(len(s.working))].Clone()
}

// Feedback narrows the candidates by the score guess received.
// Returns the remaining count, ErrWrongLength, ErrScoreRange, or
// ErrInconsistentFeedback (working set unchanged).
func (s *Solver) Feedback(guess pattern.Path, score Score) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(guess) != s.Length {
		return len(s.working), ErrWrongLength
	}
	if !validScore(score, s.Length) {
		return len(s.working), ErrScoreRange
	}
	next := Narrow(s.working, guess, score)
	if len(next) == 0 {
		return len(s.working), ErrInconsistentFeedback
	}
	s.working = next
	s.rounds++
	return len(next), nil
}

// Solved reports whether exactly one candidate remains.
func (s *Solver) Solved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.working) == 1
}

// Progress reports remaining candidates out of the initial set.
func (s *Solver) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return progress(len(s.working), s.total)
}

// Rounds counts accepted feedback rounds.
func (s *Solver) Rounds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rounds
}
