// Package store persists birthday rows in SQLite. One row per (guild, user);
// rows come back ordered by calendar position, which is what the aggregation
// kernel expects.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/tartampluch/guild-birthday/internal/config"
	"github.com/tartampluch/guild-birthday/internal/engine"
)

const (
	queryFetch = `SELECT user_id, month, day, COALESCE(timezone, '')
FROM birthdays WHERE guild_id = ? ORDER BY month, day, user_id`

	queryOne = `SELECT user_id, month, day, COALESCE(timezone, '')
FROM birthdays WHERE guild_id = ? AND user_id = ?`

	queryUpsert = `INSERT INTO birthdays (guild_id, user_id, month, day, timezone)
VALUES (?, ?, ?, ?, NULLIF(?, ''))
ON CONFLICT (guild_id, user_id)
DO UPDATE SET month = excluded.month, day = excluded.day, timezone = excluded.timezone`

	queryDelete = `DELETE FROM birthdays WHERE guild_id = ? AND user_id = ?`

	queryGuilds = `SELECT DISTINCT guild_id FROM birthdays ORDER BY guild_id`
)

// Repository implements engine.Store on a SQLite database file.
type Repository struct {
	db *sql.DB
}

// Open creates the database file if needed, runs pending migrations and
// returns a ready Repository.
func Open(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrCreateDir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDBOpen, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrDBPing, err)
	}
	if err := runMigrations(dbPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrDBMigrate, err)
	}

	slog.Info(config.MsgStoreReady,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyPath, dbPath,
	)
	return &Repository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// FetchBirthdays returns every stored row of the guild, ordered by
// (month, day).
func (r *Repository) FetchBirthdays(ctx context.Context, guildID uint64) ([]engine.StoredBirthday, error) {
	rows, err := r.db.QueryContext(ctx, queryFetch, int64(guildID))
	if err != nil {
		return nil, fmt.Errorf("fetch birthdays: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []engine.StoredBirthday
	for rows.Next() {
		var (
			userID int64
			b      engine.StoredBirthday
		)
		if err := rows.Scan(&userID, &b.Month, &b.Day, &b.Timezone); err != nil {
			return nil, fmt.Errorf("scan birthday row: %w", err)
		}
		b.UserID = uint64(userID)
		out = append(out, b)
	}
	return out, rows.Err()
}

// Birthday returns the stored row of one user, if any.
func (r *Repository) Birthday(ctx context.Context, guildID, userID uint64) (engine.StoredBirthday, bool, error) {
	var (
		uid int64
		b   engine.StoredBirthday
	)
	err := r.db.QueryRowContext(ctx, queryOne, int64(guildID), int64(userID)).
		Scan(&uid, &b.Month, &b.Day, &b.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.StoredBirthday{}, false, nil
	}
	if err != nil {
		return engine.StoredBirthday{}, false, fmt.Errorf("load birthday: %w", err)
	}
	b.UserID = uint64(uid)
	return b, true, nil
}

// SetBirthday inserts or replaces a user's row. The date is validated against
// the calendar model before anything is written.
func (r *Repository) SetBirthday(ctx context.Context, guildID uint64, b engine.StoredBirthday) error {
	if _, err := engine.Index(b.Month, b.Day); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, queryUpsert,
		int64(guildID), int64(b.UserID), b.Month, b.Day, b.Timezone)
	if err != nil {
		return fmt.Errorf("save birthday: %w", err)
	}
	return nil
}

// RemoveBirthday deletes a user's row and reports whether one existed.
func (r *Repository) RemoveBirthday(ctx context.Context, guildID, userID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, queryDelete, int64(guildID), int64(userID))
	if err != nil {
		return false, fmt.Errorf("delete birthday: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete birthday: %w", err)
	}
	return n > 0, nil
}

// ListGuilds returns every guild that has at least one stored row. The daily
// worker iterates over this to scope its passes.
func (r *Repository) ListGuilds(ctx context.Context) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, queryGuilds)
	if err != nil {
		return nil, fmt.Errorf("list guilds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []uint64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan guild id: %w", err)
		}
		out = append(out, uint64(id))
	}
	return out, rows.Err()
}

// ImportBirthdays upserts a batch of rows in one transaction, as produced by
// a vCard import. Either the whole batch lands or none of it does.
func (r *Repository) ImportBirthdays(ctx context.Context, guildID uint64, batch []engine.StoredBirthday) error {
	for _, b := range batch {
		if _, err := engine.Index(b.Month, b.Day); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, b := range batch {
		if _, err := tx.ExecContext(ctx, queryUpsert,
			int64(guildID), int64(b.UserID), b.Month, b.Day, b.Timezone); err != nil {
			return fmt.Errorf("import birthday: %w", err)
		}
	}
	return tx.Commit()
}
