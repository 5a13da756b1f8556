package user

import (
	"context"
)

type Repository interface {
	// Create создает бизнес и его первого пользователя
	Create(ctx context.Context, login, passwordHash, businessName string) (User, error)
	FindByLogin(ctx context.Context, login string) (User, error)
}
