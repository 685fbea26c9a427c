// internal/game/score.go
//
// Feedback scoring and candidate narrowing.
//
// Evaluate is not the classic code-breaker peg count. Exact counts positional
// matches; Differential counts the remaining nodes of the trial that appear
// somewhere in the target. Because a path never repeats a node, the count is
// symmetric: Evaluate(a, b) == Evaluate(b, a).

package game

import "github.com/robalobadob/patternmind/internal/pattern"

// Evaluate scores trial against target.
// Returns ErrLengthMismatch if the lengths differ.
func Evaluate(trial, target pattern.Path) (Score, error) {
	if len(trial) != len(target) {
		return Score{}, ErrLengthMismatch
	}
	exact := 0
	for i := range trial {
		if trial[i] == target[i] {
			exact++
		}
	}
	member := 0
	for _, a := range trial {
		for _, b := range target {
			if a == b {
				member++
				break
			}
		}
	}
	return Score{Differential: member - exact, Exact: exact}, nil
}

// Narrow returns the candidates c for which Evaluate(c, guess) == score.
// Candidates whose length differs from guess never match. The input slice is
// not modified; an empty result means the score fits no candidate.
func Narrow(candidates []pattern.Path, guess pattern.Path, score Score) []pattern.Path {
	out := make([]pattern.Path, 0, len(candidates)/4+1)
	for _, c := range candidates {
		if s, err := Evaluate(c, guess); err == nil && s == score {
			out = append(out, c)
		}
	}
	return out
}

// validScore reports whether a reported score is possible for patterns of length n.
func validScore(s Score, n int) bool {
	return s.Differential >= 0 && s.Exact >= 0 && s.Differential+s.Exact <= n
}
