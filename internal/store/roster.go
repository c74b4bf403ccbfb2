package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tartampluch/guild-birthday/internal/roster"
)

const (
	queryGuildName = `SELECT name FROM guilds WHERE guild_id = ?`

	queryMembers = `SELECT user_id, username, discriminator, COALESCE(nickname, '')
FROM members WHERE guild_id = ? ORDER BY user_id`

	queryUpsertGuild = `INSERT INTO guilds (guild_id, name)
VALUES (?, ?)
ON CONFLICT (guild_id) DO UPDATE SET name = excluded.name,
    synced_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`

	queryUpsertMember = `INSERT INTO members (guild_id, user_id, username, discriminator, nickname)
VALUES (?, ?, ?, ?, NULLIF(?, ''))
ON CONFLICT (guild_id, user_id)
DO UPDATE SET username = excluded.username,
    discriminator = excluded.discriminator,
    nickname = excluded.nickname`

	queryDeleteMembers = `DELETE FROM members WHERE guild_id = ?`
)

// The repository doubles as the roster resolver: the platform glue syncs
// membership snapshots in, everything else reads them back out.
var _ roster.Resolver = (*Repository)(nil)

// GuildName returns the stored display name of a guild. An unsynced guild
// yields an empty name, which callers replace with a fallback.
func (r *Repository) GuildName(ctx context.Context, guildID uint64) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, queryGuildName, int64(guildID)).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load guild name: %w", err)
	}
	return name, nil
}

// Members returns the last synced membership snapshot of the guild.
func (r *Repository) Members(ctx context.Context, guildID uint64) ([]roster.Member, error) {
	rows, err := r.db.QueryContext(ctx, queryMembers, int64(guildID))
	if err != nil {
		return nil, fmt.Errorf("fetch members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []roster.Member
	for rows.Next() {
		var (
			userID int64
			m      roster.Member
		)
		if err := rows.Scan(&userID, &m.Username, &m.Discriminator, &m.Nickname); err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}
		m.UserID = uint64(userID)
		out = append(out, m)
	}
	return out, rows.Err()
}

// SyncRoster replaces a guild's membership snapshot in one transaction.
func (r *Repository) SyncRoster(ctx context.Context, guildID uint64, guildName string, members []roster.Member) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster sync: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, queryUpsertGuild, int64(guildID), guildName); err != nil {
		return fmt.Errorf("sync guild: %w", err)
	}
	if _, err := tx.ExecContext(ctx, queryDeleteMembers, int64(guildID)); err != nil {
		return fmt.Errorf("clear members: %w", err)
	}
	for _, m := range members {
		if _, err := tx.ExecContext(ctx, queryUpsertMember,
			int64(guildID), int64(m.UserID), m.Username, m.Discriminator, m.Nickname); err != nil {
			return fmt.Errorf("sync member: %w", err)
		}
	}
	return tx.Commit()
}
