// internal/game/walkthrough.go
//
// Automated play.
// Responsibilities:
//   - Walkthrough: one self-played game over a candidate set.
//   - Simulate: many games, aggregated into a tries histogram and mean.

package game

import "github.com/robalobadob/patternmind/internal/pattern"

// Summary aggregates automated games.
type Summary struct {
	Games     int         `json:"games"`
	Histogram map[int]int `json:"histogram"` // tries → number of games
	Mean      float64     `json:"mean"`
}

// Walkthrough plays one game automatically: a random target is drawn, and each
// turn guesses a random candidate still consistent with past scores.
// Returns the number of guesses taken to hit the target.
//
// Every miss removes the guess itself (it cannot score Exact == len against
// itself), so the loop ends within len(candidates) turns.
func Walkthrough(candidates []pattern.Path, rng Rand) int {
	if len(candidates) == 0 {
		return 0
	}
	target := candidates[rng.IntN(len(candidates))]
	working := candidates
	for tries := 1; ; tries++ {
		guess := working[rng.IntN(len(working))]
		score, _ := Evaluate(guess, target)
		if score.Exact == len(target) {
			return tries
		}
		working = Narrow(working, guess, score)
	}
}

// Simulate runs games walkthroughs and summarises the tries distribution.
func Simulate(candidates []pattern.Path, games int, rng Rand) Summary {
	sum := Summary{Histogram: make(map[int]int)}
	if len(candidates) == 0 || games <= 0 {
		return sum
	}
	total := 0
	for i := 0; i < games; i++ {
		n := Walkthrough(candidates, rng)
		sum.Histogram[n]++
		total += n
	}
	sum.Games = games
	sum.Mean = float64(total) / float64(games)
	return sum
}
