package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CountGames returns the number of persisted aggregates.
func (s *Store) CountGames(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}

// SearchByTitle returns games whose title contains pattern, case-insensitive
// per SQLite LIKE semantics.
func (s *Store) SearchByTitle(ctx context.Context, pattern string) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT app_id, title, first_seen, last_seen, report_count
		FROM games WHERE title LIKE ? ORDER BY report_count DESC
	`, "%"+pattern+"%")
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	return collectGames(rows)
}

// GetByAppID returns the aggregate for one app id, or ErrNotFound.
func (s *Store) GetByAppID(ctx context.Context, appID int64) (Game, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT app_id, title, first_seen, last_seen, report_count
		FROM games WHERE app_id = ?
	`, appID)
	g, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Game{}, ErrNotFound
		}
		return Game{}, err
	}
	return g, nil
}

// TopByReports returns the limit games with the most reports.
func (s *Store) TopByReports(ctx context.Context, limit int) ([]Game, error) {
	return s.topBy(ctx, "report_count", limit)
}

// TopByFirstSeen returns the limit games most recently added.
func (s *Store) TopByFirstSeen(ctx context.Context, limit int) ([]Game, error) {
	return s.topBy(ctx, "first_seen", limit)
}

// TopByLastSeen returns the limit games most recently reported on.
func (s *Store) TopByLastSeen(ctx context.Context, limit int) ([]Game, error) {
	return s.topBy(ctx, "last_seen", limit)
}

func (s *Store) topBy(ctx context.Context, column string, limit int) ([]Game, error) {
	// column is one of three fixed identifiers, never user input.
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT app_id, title, first_seen, last_seen, report_count
		FROM games ORDER BY %s DESC LIMIT ?
	`, column), limit)
	if err != nil {
		return nil, fmt.Errorf("top games by %s: %w", column, err)
	}
	return collectGames(rows)
}

// Stats summarizes the games table.
type Stats struct {
	TotalGames int64
	MaxReports int64
	AvgReports float64
	OldestSeen time.Time
	NewestSeen time.Time
}

// GameStats computes aggregate statistics over the whole table.
func (s *Store) GameStats(ctx context.Context) (Stats, error) {
	var st Stats
	var maxReports, minSeen, maxSeen sql.NullInt64
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MAX(report_count), AVG(report_count), MIN(first_seen), MAX(first_seen)
		FROM games
	`).Scan(&st.TotalGames, &maxReports, &avg, &minSeen, &maxSeen)
	if err != nil {
		return Stats{}, fmt.Errorf("game stats: %w", err)
	}
	st.MaxReports = maxReports.Int64
	st.AvgReports = avg.Float64
	if minSeen.Valid {
		st.OldestSeen = time.Unix(minSeen.Int64, 0).UTC()
	}
	if maxSeen.Valid {
		st.NewestSeen = time.Unix(maxSeen.Int64, 0).UTC()
	}
	return st, nil
}

func collectGames(rows *sql.Rows) ([]Game, error) {
	defer func() { _ = rows.Close() }()
	var games []Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect games: %w", err)
	}
	return games, nil
}
