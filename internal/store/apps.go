package store

import (
	"context"
	"fmt"
)

// ReplaceApps bulk-loads the Steam catalog in one transaction, inserting or
// replacing by app id. It returns the number of rows written.
func (s *Store) ReplaceApps(ctx context.Context, apps []App) (int, error) {
	if len(apps) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &PersistenceError{Op: "replace apps", Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO apps (appid, name) VALUES (?, ?)`)
	if err != nil {
		return 0, &PersistenceError{Op: "replace apps", Err: err}
	}
	defer func() { _ = stmt.Close() }()

	for _, a := range apps {
		if _, err := stmt.ExecContext(ctx, a.AppID, a.Name); err != nil {
			return 0, &PersistenceError{Op: "replace apps", Err: fmt.Errorf("app %d: %w", a.AppID, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &PersistenceError{Op: "replace apps", Err: fmt.Errorf("commit: %w", err)}
	}
	return len(apps), nil
}

// ResetApps drops and recreates the catalog table.
func (s *Store) ResetApps(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DROP TABLE IF EXISTS apps;
		CREATE TABLE apps (
			appid INTEGER PRIMARY KEY,
			name TEXT,
			last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("reset apps: %w", err)
	}
	return nil
}

// CountApps returns the number of catalog rows.
func (s *Store) CountApps(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM apps`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count apps: %w", err)
	}
	return n, nil
}
