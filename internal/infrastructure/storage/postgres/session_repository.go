package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"marketsync/internal/domain/session"
)

type SessionRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewSessionRepository(pool *pgxpool.Pool, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		pool: pool,
		log:  log,
	}
}

func (r *SessionRepository) Create(ctx context.Context, userID, businessID int, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (user_id, business_id, token_hash, expires_at)
         VALUES ($1, $2, decode($3, 'hex'), $4)`,
		userID, businessID, tokenHash, expiresAt)
	return err
}

func (r *SessionRepository) Validate(ctx context.Context, tokenHash string) (session.Identity, error) {
	var identity session.Identity
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, business_id FROM sessions
         WHERE token_hash = decode($1, 'hex') AND expires_at > NOW()`,
		tokenHash).Scan(&identity.UserID, &identity.BusinessID)

	if err != nil {
		return identity, fmt.Errorf("invalid session")
	}
	return identity, nil
}
