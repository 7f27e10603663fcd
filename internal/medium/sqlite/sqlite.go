package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/moveassist/internal/medium"
)

// SQLiteMedium stores entries in the entries table created by the db
// migrations.
type SQLiteMedium struct {
	db    *sql.DB
	quota int64
}

func NewSQLiteMedium(db *sql.DB, quota int64) *SQLiteMedium {
	return &SQLiteMedium{db: db, quota: quota}
}

func (m *SQLiteMedium) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := m.db.QueryRowContext(ctx, `
		SELECT value FROM entries WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get entry: %w", err)
	}

	return value, true, nil
}

func (m *SQLiteMedium) Set(ctx context.Context, key, value string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to roll back entry write", "key", key, "error", err)
		}
	}()

	size := medium.EntrySize(key, value)
	if m.quota > 0 {
		var used int64
		err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(size), 0) FROM entries WHERE key <> ?
		`, key).Scan(&used)
		if err != nil {
			return fmt.Errorf("failed to compute usage: %w", err)
		}
		if err := medium.CheckQuota(used, size, m.quota); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (key, value, size) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			size = excluded.size,
			updated_at = datetime('now')
	`, key, value, size)
	if err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry: %w", err)
	}
	return nil
}

func (m *SQLiteMedium) Remove(ctx context.Context, key string) error {
	_, err := m.db.ExecContext(ctx, `
		DELETE FROM entries WHERE key = ?
	`, key)
	if err != nil {
		return fmt.Errorf("failed to remove entry: %w", err)
	}
	return nil
}

func (m *SQLiteMedium) Usage(ctx context.Context) (medium.Usage, error) {
	u := medium.Usage{QuotaBytes: m.quota}
	err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(size), 0), COUNT(*) FROM entries
	`).Scan(&u.UsedBytes, &u.Entries)
	if err != nil {
		return medium.Usage{}, fmt.Errorf("failed to compute usage: %w", err)
	}
	return u, nil
}
