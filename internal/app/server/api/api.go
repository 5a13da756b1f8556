// Сервер каталога маркетплейса с офлайн-синхронизацией:
// регистрация продавцов и их бизнесов;
// чтение каталога (товары, категории) для онлайн-клиентов;
// push/pull синхронизация с отключаемых POS-устройств;
// очередь конфликтов и их разрешение.

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	catalogAPI "marketsync/internal/app/server/api/http/catalog"
	healthAPI "marketsync/internal/app/server/api/http/health"
	"marketsync/internal/app/server/api/http/middleware"
	"marketsync/internal/app/server/api/http/middleware/auth"
	"marketsync/internal/app/server/api/http/middleware/logger"
	"marketsync/internal/app/server/api/http/middleware/ratelimit"
	syncAPI "marketsync/internal/app/server/api/http/sync"
	userAPI "marketsync/internal/app/server/api/http/user"
	"marketsync/internal/app/server/config"
	"marketsync/internal/domain/catalog"
	"marketsync/internal/domain/session"
	"marketsync/internal/domain/sync"
	"marketsync/internal/domain/user"
	"marketsync/internal/infrastructure/storage/postgres"
)

type Handlers struct {
	Health  *healthAPI.Handler
	User    *userAPI.Handler
	Catalog *catalogAPI.Handler
	Sync    *syncAPI.Handler
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	humaConfig := huma.DefaultConfig("Marketsync API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConfig)

	h := handlers(storage, cfg, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Catalog.SetupRoutes(API)
	h.Sync.SetupRoutes(API)

	return mux
}

func handlers(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) *Handlers {
	sessionRepo := postgres.NewSessionRepository(storage.Pool(), log)
	sessionService := session.NewService(sessionRepo, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	limitMW := ratelimit.New(log, cfg.Server.RateLimitRPS)

	healthHandler := healthAPI.NewHandler(log, middleware.Stack(loggerMW.Middleware()))

	userRepo := postgres.NewUserRepository(storage.Pool(), log)
	userService := user.NewService(userRepo, user.NewPasswordValidator(), log)
	userHandler := userAPI.NewHandler(userService, sessionService, log,
		middleware.Stack(limitMW.Middleware(), loggerMW.Middleware()))

	catalogRepo := postgres.NewCatalogRepository(storage.Pool(), log)
	catalogService := catalog.NewService(catalogRepo, log)
	catalogHandler := catalogAPI.NewHandler(catalogService, log,
		middleware.Stack(limitMW.Middleware(), authMW.Middleware(), loggerMW.Middleware()))

	syncRepo := postgres.NewSyncRepository(storage.Pool(), log)
	syncService := sync.NewService(syncRepo, catalogRepo, log, &sync.ServiceConfig{
		PageSize:      cfg.Sync.PageSize,
		RetentionDays: cfg.Sync.RetentionDays,
	})
	syncHandler := syncAPI.NewHandler(syncService, log,
		middleware.Stack(limitMW.Middleware(), authMW.Middleware(), loggerMW.Middleware()))

	return &Handlers{
		Health:  healthHandler,
		User:    userHandler,
		Catalog: catalogHandler,
		Sync:    syncHandler,
	}
}
