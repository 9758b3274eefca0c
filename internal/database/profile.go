// internal/database/profile.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anreszii/matchup/internal/matchmaking"
)

// ProfileRepo resolves player names to persistent profiles. It implements
// matchmaking.ProfileStore.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

// NewProfileRepo wraps the given pool.
func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// FindByName fetches the profile snapshot used by player bootstrap and
// refresh. A missing row maps to matchmaking.ErrProfileNotFound.
func (r *ProfileRepo) FindByName(ctx context.Context, name string) (*matchmaking.Profile, error) {
	const q = `
		SELECT nickname, discord_nick, gri, COALESCE(guild_id::text, ''), COALESCE(prefix, '')
		FROM profiles
		WHERE name = $1`

	var p matchmaking.Profile
	err := r.pool.QueryRow(ctx, q, name).Scan(
		&p.Nickname, &p.DiscordNick, &p.GRI, &p.Guild, &p.Prefix,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, matchmaking.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile %q: %w", name, err)
	}
	return &p, nil
}
