package game_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/patternmind/internal/game"
	"github.com/robalobadob/patternmind/internal/pattern"
)

func validator(set []pattern.Path) func(pattern.Path) bool {
	keys := make(map[string]struct{}, len(set))
	for _, p := range set {
		keys[p.Key()] = struct{}{}
	}
	return func(p pattern.Path) bool {
		_, ok := keys[p.Key()]
		return ok
	}
}

func newSession(t *testing.T, mode game.Mode, maxGuesses int, target pattern.Path) (*game.Session, []pattern.Path) {
	t.Helper()
	set := candidates(t, 3, 3, 4)
	s, err := game.New(game.Options{
		Width: 3, Height: 3, Length: 4,
		Mode:       mode,
		MaxGuesses: maxGuesses,
		Rand:       rand.New(rand.NewPCG(7, 11)),
	}, set, target)
	require.NoError(t, err)
	return s, set
}

func TestNew_Errors(t *testing.T) {
	_, err := game.New(game.Options{Length: 3}, nil, nil)
	assert.ErrorIs(t, err, game.ErrNoCandidates)

	set := candidates(t, 3, 3, 3)
	_, err = game.New(game.Options{Length: 3, Mode: "bogus"}, set, nil)
	assert.ErrorIs(t, err, game.ErrUnknownMode)

	_, err = game.New(game.Options{Length: 3}, set, pattern.Path{0, 1})
	assert.ErrorIs(t, err, game.ErrWrongLength)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]game.Mode{"": game.ModePlay, "normal": game.ModePlay, "play": game.ModePlay, "cheat": game.ModeCheat} {
		got, err := game.ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := game.ParseMode("walkthrough")
	assert.ErrorIs(t, err, game.ErrUnknownMode)
}

func TestApplyGuess_WinFlow(t *testing.T) {
	target := pattern.Path{0, 4, 8, 5}
	s, set := newSession(t, game.ModePlay, 0, target)
	valid := validator(set)

	turn, err := s.ApplyGuess(pattern.Path{0, 1, 2, 4}, valid)
	require.NoError(t, err)
	assert.Equal(t, game.Score{Differential: 1, Exact: 1}, turn.Score)
	assert.Equal(t, game.StatePlaying, turn.State)
	assert.Less(t, turn.Remaining, len(set))
	assert.Equal(t, 1, turn.Tries)

	_, ok := s.Answer()
	assert.False(t, ok, "answer hidden while playing")

	turn, err = s.ApplyGuess(target, valid)
	require.NoError(t, err)
	assert.Equal(t, game.StateWon, turn.State)
	assert.Equal(t, game.Score{Exact: 4}, turn.Score)
	assert.Equal(t, 1, turn.Remaining)

	ans, ok := s.Answer()
	require.True(t, ok)
	assert.Equal(t, target, ans)
	assert.Len(t, s.History(), 2)

	_, err = s.ApplyGuess(target, valid)
	assert.ErrorIs(t, err, game.ErrFinished)
	_, err = s.Hint()
	assert.ErrorIs(t, err, game.ErrFinished)
}

func TestApplyGuess_Rejects(t *testing.T) {
	s, set := newSession(t, game.ModePlay, 0, pattern.Path{0, 4, 8, 5})
	valid := validator(set)

	_, err := s.ApplyGuess(pattern.Path{0, 1, 2}, valid)
	assert.ErrorIs(t, err, game.ErrWrongLength)

	// 0→2 jumps over the unvisited node 1.
	_, err = s.ApplyGuess(pattern.Path{0, 2, 1, 3}, valid)
	assert.ErrorIs(t, err, game.ErrNotAPattern)

	assert.Equal(t, 0, s.Tries(), "rejected guesses are free")
	assert.Equal(t, game.StatePlaying, s.State())
}

func TestApplyGuess_MaxGuessesLoses(t *testing.T) {
	s, _ := newSession(t, game.ModePlay, 2, pattern.Path{0, 4, 8, 5})

	turn, err := s.ApplyGuess(pattern.Path{0, 1, 2, 4}, nil)
	require.NoError(t, err)
	assert.Equal(t, game.StatePlaying, turn.State)
	turn, err = s.ApplyGuess(pattern.Path{3, 4, 5, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, game.StateLost, turn.State)

	ans, ok := s.Answer()
	require.True(t, ok)
	assert.Equal(t, pattern.Path{0, 4, 8, 5}, ans)
}

func TestHint_CostsTryAndStaysConsistent(t *testing.T) {
	target := pattern.Path{0, 4, 8, 5}
	s, _ := newSession(t, game.ModePlay, 0, target)

	guess := pattern.Path{0, 1, 2, 4}
	turn, err := s.ApplyGuess(guess, nil)
	require.NoError(t, err)

	h, err := s.Hint()
	require.NoError(t, err)
	got, _ := game.Evaluate(h, guess)
	assert.Equal(t, turn.Score, got, "hint agrees with past feedback")
	assert.Equal(t, 2, s.Tries())
}

func TestHint_CountsTowardMaxGuesses(t *testing.T) {
	s, _ := newSession(t, game.ModePlay, 3, pattern.Path{0, 4, 8, 5})

	_, err := s.Hint()
	require.NoError(t, err)
	turn, err := s.ApplyGuess(pattern.Path{0, 1, 2, 4}, nil)
	require.NoError(t, err)
	assert.Equal(t, game.StatePlaying, turn.State)
	assert.Equal(t, 2, turn.Tries)

	_, err = s.Hint()
	require.NoError(t, err, "the last try may be spent on a hint")
	assert.Equal(t, game.StateLost, s.State())
	_, ok := s.Answer()
	assert.True(t, ok)

	_, err = s.Hint()
	assert.ErrorIs(t, err, game.ErrFinished)
	_, err = s.ApplyGuess(pattern.Path{0, 4, 8, 5}, nil)
	assert.ErrorIs(t, err, game.ErrFinished)
}

func TestProgress(t *testing.T) {
	s, set := newSession(t, game.ModePlay, 0, pattern.Path{0, 4, 8, 5})
	p := s.Progress()
	assert.Equal(t, len(set), p.Total)
	assert.Equal(t, len(set), p.Remaining)
	assert.Equal(t, 100, p.Percent)

	_, err := s.ApplyGuess(pattern.Path{0, 1, 2, 4}, nil)
	require.NoError(t, err)
	p = s.Progress()
	assert.Less(t, p.Remaining, p.Total)
	assert.Equal(t, (p.Remaining*100+p.Total-1)/p.Total, p.Percent)
	assert.GreaterOrEqual(t, p.Percent, 1)
}

// TestCheatMode_EventuallyWins: the target keeps moving, yet each miss drops
// at least the guess itself, so consistent guessing always terminates.
func TestCheatMode_EventuallyWins(t *testing.T) {
	s, set := newSession(t, game.ModeCheat, 0, nil)

	var last pattern.Path
	for i := 0; i <= len(set) && s.State() == game.StatePlaying; i++ {
		g, err := s.Hint()
		require.NoError(t, err)
		_, err = s.ApplyGuess(g, nil)
		require.NoError(t, err)
		last = g
	}
	require.Equal(t, game.StateWon, s.State())
	ans, ok := s.Answer()
	require.True(t, ok)
	assert.Equal(t, last, ans)
	assert.Equal(t, 1, s.Progress().Remaining)
}

// TestCheatMode_DodgesFirstHit: a correct first guess is never accepted while
// other candidates remain.
func TestCheatMode_DodgesFirstHit(t *testing.T) {
	target := pattern.Path{0, 4, 8, 5}
	s, _ := newSession(t, game.ModeCheat, 0, target)

	turn, err := s.ApplyGuess(target, nil)
	require.NoError(t, err)
	assert.Equal(t, game.StatePlaying, turn.State)
	assert.Less(t, turn.Score.Exact, 4)
}
