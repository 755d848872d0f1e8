package owner

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("owner: not found")

// Querier is the subset of pgxpool.Pool the repository needs, narrowed so
// tests can substitute a pgxmock pool.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores owners in Postgres keyed by their Spotify profile id.
type Repository struct {
	db Querier
}

func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// AutoMigrate creates the owners table if needed.
func AutoMigrate(ctx context.Context, db Querier) error {
	_, err := db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS owners(
            profile_id TEXT PRIMARY KEY,
            session_id TEXT NOT NULL,
            profile_name TEXT NOT NULL DEFAULT '',
            profile_email TEXT NOT NULL DEFAULT '',
            access_token TEXT NOT NULL,
            refresh_token TEXT NOT NULL,
            token_expiration TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )
    `)
	if err != nil {
		log.Error().Err(err).Msg("migrate owners")
		return err
	}
	return nil
}

// Upsert inserts the owner or refreshes the stored tokens for a returning one.
func (r *Repository) Upsert(ctx context.Context, o *Owner) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO owners(profile_id, session_id, profile_name, profile_email,
                           access_token, refresh_token, token_expiration)
        VALUES($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (profile_id) DO UPDATE SET
            session_id = EXCLUDED.session_id,
            profile_name = EXCLUDED.profile_name,
            profile_email = EXCLUDED.profile_email,
            access_token = EXCLUDED.access_token,
            refresh_token = EXCLUDED.refresh_token,
            token_expiration = EXCLUDED.token_expiration,
            updated_at = now()
    `, o.ProfileID, o.SessionID, o.ProfileName, o.ProfileEmail,
		o.AccessToken, o.RefreshToken, o.TokenExpiration)
	return err
}

// Get loads an owner by Spotify profile id.
func (r *Repository) Get(ctx context.Context, profileID string) (*Owner, error) {
	var o Owner
	err := r.db.QueryRow(ctx, `
        SELECT profile_id, session_id, profile_name, profile_email,
               access_token, refresh_token, token_expiration
        FROM owners WHERE profile_id = $1
    `, profileID).Scan(
		&o.ProfileID, &o.SessionID, &o.ProfileName, &o.ProfileEmail,
		&o.AccessToken, &o.RefreshToken, &o.TokenExpiration,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetBySession finds the owner whose last authorization ran under the
// given browser session. This is how a room-creation request maps back to
// Spotify credentials.
func (r *Repository) GetBySession(ctx context.Context, sessionID string) (*Owner, error) {
	var o Owner
	err := r.db.QueryRow(ctx, `
        SELECT profile_id, session_id, profile_name, profile_email,
               access_token, refresh_token, token_expiration
        FROM owners WHERE session_id = $1
        ORDER BY updated_at DESC
        LIMIT 1
    `, sessionID).Scan(
		&o.ProfileID, &o.SessionID, &o.ProfileName, &o.ProfileEmail,
		&o.AccessToken, &o.RefreshToken, &o.TokenExpiration,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateTokens persists a refreshed token pair.
func (r *Repository) UpdateTokens(ctx context.Context, o *Owner) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE owners
        SET access_token = $2, refresh_token = $3, token_expiration = $4,
            updated_at = now()
        WHERE profile_id = $1
    `, o.ProfileID, o.AccessToken, o.RefreshToken, o.TokenExpiration)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
