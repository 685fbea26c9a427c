package daily_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/patternmind/assets"
	"github.com/robalobadob/patternmind/internal/daily"
	"github.com/robalobadob/patternmind/internal/database"
)

func TestPatternIndex(t *testing.T) {
	day := time.Date(2026, 10, 15, 23, 30, 0, 0, time.FixedZone("X", -3*3600))
	assert.Equal(t, "2026-10-16", daily.DateKey(day), "keys are UTC")

	a := daily.PatternIndex(day, "salt", 26016)
	assert.Equal(t, a, daily.PatternIndex(day.UTC(), "salt", 26016), "stable across zones")
	assert.GreaterOrEqual(t, a, 0)
	assert.Less(t, a, 26016)

	seen := map[int]bool{}
	for d := 0; d < 30; d++ {
		seen[daily.PatternIndex(day.AddDate(0, 0, d), "salt", 26016)] = true
	}
	assert.Greater(t, len(seen), 25, "days spread over the set")

	assert.Zero(t, daily.PatternIndex(day, "salt", 0))
}

func TestStore(t *testing.T) {
	db, err := database.Open(database.MemoryDSN)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db, assets.Migrations()))

	ctx := context.Background()
	st := daily.NewStore(db)

	played, err := st.AlreadyPlayed(ctx, "u1", "2026-10-15")
	require.NoError(t, err)
	assert.False(t, played)

	rows := []daily.Result{
		{UserID: "u1", Date: "2026-10-15", PatternIndex: 7, Guesses: 4, ElapsedMs: 9000},
		{UserID: "u2", Date: "2026-10-15", PatternIndex: 7, Guesses: 3, ElapsedMs: 20000},
		{UserID: "u3", Date: "2026-10-15", PatternIndex: 7, Guesses: 4, ElapsedMs: 5000},
		{UserID: "u1", Date: "2026-10-15", PatternIndex: 7, Guesses: 1, ElapsedMs: 1},
		{UserID: "u1", Date: "2026-10-14", PatternIndex: 2, Guesses: 2, ElapsedMs: 100},
	}
	for _, r := range rows {
		require.NoError(t, st.InsertResult(ctx, r))
	}

	played, err = st.AlreadyPlayed(ctx, "u1", "2026-10-15")
	require.NoError(t, err)
	assert.True(t, played)

	lb, err := st.Leaderboard(ctx, "2026-10-15", 0)
	require.NoError(t, err)
	require.Len(t, lb, 3, "duplicate insert ignored")
	assert.Equal(t, []string{"u2", "u3", "u1"}, []string{lb[0].UserID, lb[1].UserID, lb[2].UserID})
	assert.Equal(t, 4, lb[2].Guesses, "first result kept")
}
