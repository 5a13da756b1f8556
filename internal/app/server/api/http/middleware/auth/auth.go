package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"marketsync/internal/domain/session"
)

type Auth struct {
	session session.Servicer
	log     *slog.Logger
}

func New(session session.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		session: session,
		log:     log.With("component", "auth middleware"),
	}
}

type contextKey string

const identityKey contextKey = "identity"

// Middleware возвращает middleware для Huma с сигнатурой func(ctx Context, next func(Context))
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token := ctx.Header("Authorization")

		if len(token) < 7 || token[:7] != "Bearer " {
			a.log.Debug("missing or malformed bearer token")
			writeUnauthorized(ctx)
			return
		}

		// Валидируем токен
		identity, err := a.session.Validate(ctx.Context(), token[7:])
		if err != nil {
			a.log.Error(fmt.Sprintf("validate session: %v", err))
			writeUnauthorized(ctx)
			return
		}

		newCtx := context.WithValue(ctx.Context(), identityKey, identity)
		next(huma.WithContext(ctx, newCtx))
	}
}

func writeUnauthorized(ctx huma.Context) {
	ctx.SetStatus(http.StatusUnauthorized)
	ctx.SetHeader("Content-Type", "application/json")

	_ = json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
		"error": "Unauthorized",
	})
}

// GetIdentity возвращает аутентифицированного пользователя и его бизнес
func GetIdentity(ctx context.Context) (userID, businessID int, ok bool) {
	identity, ok := ctx.Value(identityKey).(session.Identity)
	if !ok {
		return 0, 0, false
	}
	return identity.UserID, identity.BusinessID, true
}

// WithIdentity кладет идентичность в контекст. Используется в тестах
// сервисов, работающих под auth middleware.
func WithIdentity(ctx context.Context, userID, businessID int) context.Context {
	return context.WithValue(ctx, identityKey, session.Identity{
		UserID:     userID,
		BusinessID: businessID,
	})
}
