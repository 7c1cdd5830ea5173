package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// UpsertCounts reports how a batch split between fresh and existing rows.
type UpsertCounts struct {
	Inserted int
	Updated  int
}

// UpsertGames applies a batch of already-merged aggregates in one
// transaction: either every aggregate is durably applied or none are. Rows
// are overwritten with the supplied values; the caller is responsible for
// having merged them against history first (see ReadExisting).
func (s *Store) UpsertGames(ctx context.Context, games []Game) (UpsertCounts, error) {
	var counts UpsertCounts
	if len(games) == 0 {
		return counts, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, &PersistenceError{Op: "upsert games", Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := tx.PrepareContext(ctx, `SELECT 1 FROM games WHERE app_id = ?`)
	if err != nil {
		return UpsertCounts{}, &PersistenceError{Op: "upsert games", Err: err}
	}
	defer func() { _ = exists.Close() }()

	upsert, err := tx.PrepareContext(ctx, `
		INSERT INTO games (app_id, title, first_seen, last_seen, report_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(app_id) DO UPDATE SET
			title = excluded.title,
			first_seen = excluded.first_seen,
			last_seen = excluded.last_seen,
			report_count = excluded.report_count
	`)
	if err != nil {
		return UpsertCounts{}, &PersistenceError{Op: "upsert games", Err: err}
	}
	defer func() { _ = upsert.Close() }()

	for _, g := range games {
		if err := validateGame(g); err != nil {
			return UpsertCounts{}, &PersistenceError{Op: "upsert games", Err: err}
		}

		var one int
		err := exists.QueryRowContext(ctx, g.AppID).Scan(&one)
		switch {
		case err == sql.ErrNoRows:
			counts.Inserted++
		case err != nil:
			return UpsertCounts{}, &PersistenceError{Op: "upsert games", Err: fmt.Errorf("probe app %d: %w", g.AppID, err)}
		default:
			counts.Updated++
		}

		if _, err := upsert.ExecContext(ctx, g.AppID, g.Title, g.FirstSeen.Unix(), g.LastSeen.Unix(), g.ReportCount); err != nil {
			return UpsertCounts{}, &PersistenceError{Op: "upsert games", Err: fmt.Errorf("upsert app %d: %w", g.AppID, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return UpsertCounts{}, &PersistenceError{Op: "upsert games", Err: fmt.Errorf("commit: %w", err)}
	}
	return counts, nil
}

// validateGame guards the aggregate invariants at the persistence boundary.
func validateGame(g Game) error {
	if g.ReportCount < 1 {
		return fmt.Errorf("app %d: report_count %d < 1", g.AppID, g.ReportCount)
	}
	if g.FirstSeen.After(g.LastSeen) {
		return fmt.Errorf("app %d: first_seen after last_seen", g.AppID)
	}
	return nil
}

// ReadExisting returns the persisted aggregates for the given app ids, keyed
// by app id. Ids with no row are simply absent from the result.
func (s *Store) ReadExisting(ctx context.Context, appIDs []int64) (map[int64]Game, error) {
	out := make(map[int64]Game, len(appIDs))
	if len(appIDs) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(appIDs)), ",")
	args := make([]any, len(appIDs))
	for i, id := range appIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT app_id, title, first_seen, last_seen, report_count
		FROM games WHERE app_id IN (%s)
	`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("read existing games: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out[g.AppID] = g
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read existing games: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(r rowScanner) (Game, error) {
	var g Game
	var title sql.NullString
	var firstSeen, lastSeen sql.NullInt64
	if err := r.Scan(&g.AppID, &title, &firstSeen, &lastSeen, &g.ReportCount); err != nil {
		return Game{}, fmt.Errorf("scan game: %w", err)
	}
	g.Title = title.String
	if firstSeen.Valid {
		g.FirstSeen = time.Unix(firstSeen.Int64, 0).UTC()
	}
	if lastSeen.Valid {
		g.LastSeen = time.Unix(lastSeen.Int64, 0).UTC()
	}
	return g, nil
}
