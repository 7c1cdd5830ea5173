package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "games.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ts(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func TestUpsertGames_InsertThenUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	counts, err := s.UpsertGames(ctx, []Game{
		{AppID: 10, Title: "A", FirstSeen: ts(1000), LastSeen: ts(1000), ReportCount: 3},
		{AppID: 20, Title: "B", FirstSeen: ts(2000), LastSeen: ts(3000), ReportCount: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, UpsertCounts{Inserted: 2, Updated: 0}, counts)

	counts, err = s.UpsertGames(ctx, []Game{
		{AppID: 10, Title: "A2", FirstSeen: ts(500), LastSeen: ts(4000), ReportCount: 5},
		{AppID: 30, Title: "C", FirstSeen: ts(100), LastSeen: ts(100), ReportCount: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, UpsertCounts{Inserted: 1, Updated: 1}, counts)

	g, err := s.GetByAppID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "A2", g.Title)
	assert.Equal(t, ts(500), g.FirstSeen)
	assert.Equal(t, ts(4000), g.LastSeen)
	assert.Equal(t, int64(5), g.ReportCount)
}

func TestUpsertGames_AllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertGames(ctx, []Game{
		{AppID: 10, Title: "A", FirstSeen: ts(1000), LastSeen: ts(1000), ReportCount: 1},
	})
	require.NoError(t, err)

	// The middle aggregate violates the report_count invariant, failing the
	// batch partway through. Nothing from the batch may stick.
	_, err = s.UpsertGames(ctx, []Game{
		{AppID: 10, Title: "changed", FirstSeen: ts(1000), LastSeen: ts(2000), ReportCount: 2},
		{AppID: 20, Title: "bad", FirstSeen: ts(1000), LastSeen: ts(1000), ReportCount: 0},
		{AppID: 30, Title: "never reached", FirstSeen: ts(1000), LastSeen: ts(1000), ReportCount: 1},
	})
	require.Error(t, err)
	var perr *PersistenceError
	assert.ErrorAs(t, err, &perr)

	g, err := s.GetByAppID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "A", g.Title, "first aggregate of the failed batch must not be applied")
	assert.Equal(t, int64(1), g.ReportCount)

	_, err = s.GetByAppID(ctx, 30)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.CountGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUpsertGames_RejectsInvertedTimestamps(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpsertGames(context.Background(), []Game{
		{AppID: 10, Title: "A", FirstSeen: ts(2000), LastSeen: ts(1000), ReportCount: 1},
	})
	require.Error(t, err)
	var perr *PersistenceError
	assert.ErrorAs(t, err, &perr)
}

func TestReadExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertGames(ctx, []Game{
		{AppID: 10, Title: "A", FirstSeen: ts(1000), LastSeen: ts(2000), ReportCount: 3},
		{AppID: 20, Title: "B", FirstSeen: ts(1500), LastSeen: ts(1500), ReportCount: 1},
	})
	require.NoError(t, err)

	got, err := s.ReadExisting(ctx, []int64{10, 20, 999})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[10].Title)
	assert.Equal(t, ts(1000), got[10].FirstSeen)
	assert.Equal(t, int64(1), got[20].ReportCount)
	_, ok := got[999]
	assert.False(t, ok)

	empty, err := s.ReadExisting(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertGames(ctx, []Game{
		{AppID: 10, Title: "Half-Life 2", FirstSeen: ts(1000), LastSeen: ts(5000), ReportCount: 30},
		{AppID: 20, Title: "Portal", FirstSeen: ts(2000), LastSeen: ts(4000), ReportCount: 10},
		{AppID: 30, Title: "Portal 2", FirstSeen: ts(3000), LastSeen: ts(6000), ReportCount: 20},
	})
	require.NoError(t, err)

	t.Run("count", func(t *testing.T) {
		n, err := s.CountGames(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("search", func(t *testing.T) {
		games, err := s.SearchByTitle(ctx, "portal")
		require.NoError(t, err)
		require.Len(t, games, 2)
		// Ordered by report count, descending.
		assert.Equal(t, int64(30), games[0].AppID)
		assert.Equal(t, int64(20), games[1].AppID)
	})

	t.Run("top by reports", func(t *testing.T) {
		games, err := s.TopByReports(ctx, 2)
		require.NoError(t, err)
		require.Len(t, games, 2)
		assert.Equal(t, int64(10), games[0].AppID)
		assert.Equal(t, int64(30), games[1].AppID)
	})

	t.Run("top by first seen", func(t *testing.T) {
		games, err := s.TopByFirstSeen(ctx, 1)
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, int64(30), games[0].AppID)
	})

	t.Run("top by last seen", func(t *testing.T) {
		games, err := s.TopByLastSeen(ctx, 1)
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, int64(30), games[0].AppID)
	})

	t.Run("stats", func(t *testing.T) {
		st, err := s.GameStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), st.TotalGames)
		assert.Equal(t, int64(30), st.MaxReports)
		assert.InDelta(t, 20.0, st.AvgReports, 0.001)
		assert.Equal(t, ts(1000), st.OldestSeen)
		assert.Equal(t, ts(3000), st.NewestSeen)
	})

	t.Run("lookup missing", func(t *testing.T) {
		_, err := s.GetByAppID(ctx, 404)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReplaceApps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.ReplaceApps(ctx, []App{
		{AppID: 220, Name: "Half-Life 2"},
		{AppID: 400, Name: "Portal"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Re-running with an overlapping batch replaces, not duplicates.
	n, err = s.ReplaceApps(ctx, []App{
		{AppID: 400, Name: "Portal (renamed)"},
		{AppID: 620, Name: "Portal 2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := s.CountApps(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestResetApps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceApps(ctx, []App{{AppID: 220, Name: "Half-Life 2"}})
	require.NoError(t, err)
	require.NoError(t, s.ResetApps(ctx))

	count, err := s.CountApps(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
