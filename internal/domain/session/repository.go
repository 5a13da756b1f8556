package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, userID, businessID int, tokenHash string, expiresAt time.Time) error
	Validate(ctx context.Context, tokenHash string) (Identity, error)
}
