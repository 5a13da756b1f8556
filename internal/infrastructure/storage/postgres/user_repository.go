package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"marketsync/internal/domain/user"
)

type UserRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewUserRepository(pool *pgxpool.Pool, log *slog.Logger) *UserRepository {
	return &UserRepository{
		pool: pool,
		log:  log,
	}
}

// Create создает бизнес и его первого пользователя одной транзакцией
func (r *UserRepository) Create(ctx context.Context, login, passwordHash, businessName string) (user.User, error) {
	var u user.User

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return u, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO businesses (name) VALUES ($1) RETURNING id`,
		businessName).Scan(&u.BusinessID)
	if err != nil {
		return u, fmt.Errorf("create business: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO users (login, password_hash, business_id) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		login, passwordHash, u.BusinessID).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return u, fmt.Errorf("create user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return u, fmt.Errorf("commit: %w", err)
	}

	u.Login = login
	return u, nil
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) (user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, business_id, password_hash, created_at FROM users WHERE login = $1`, login).
		Scan(&u.ID, &u.BusinessID, &u.Password, &u.CreatedAt)
	if err != nil {
		return u, fmt.Errorf("user not found")
	}

	u.Login = login
	return u, nil
}
