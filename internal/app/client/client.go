package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"marketsync/internal/app/client/config"
	"marketsync/internal/domain/catalog"
	"marketsync/internal/domain/sync"
	"marketsync/internal/domain/user"
)

// App клиентское приложение кассы: локальный каталог, журнал правок и
// синхронизация с сервером
type App struct {
	config      *config.Config
	log         *slog.Logger
	httpClient  *httpClient
	storage     *SQLiteStorage
	syncService *SyncService
	deviceID    string
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.ConfigDir, 0o700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
	}

	httpCl, err := NewHTTPClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации HTTP клиента: %w", err)
	}

	storage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации локального хранилища: %w", err)
	}

	app := &App{
		config:     cfg,
		log:        log,
		httpClient: httpCl,
		storage:    storage,
	}
	app.syncService = NewSyncService(app)

	if err := app.ensureDeviceID(); err != nil {
		storage.Close()
		return nil, err
	}

	// Сохраненный токен подхватываем молча: его валидность проверит
	// первый же запрос
	if token, err := app.loadToken(); err == nil && token != "" {
		app.httpClient.SetToken(token)
	}

	return app, nil
}

// ensureDeviceID выбирает устойчивый идентификатор устройства: из
// конфигурации, из файла, либо генерирует новый и сохраняет
func (a *App) ensureDeviceID() error {
	if a.config.DeviceID != "" {
		a.deviceID = a.config.DeviceID
		return nil
	}

	if data, err := os.ReadFile(a.config.DevicePath); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			a.deviceID = id
			return nil
		}
	}

	a.deviceID = uuid.NewString()
	if err := os.WriteFile(a.config.DevicePath, []byte(a.deviceID+"\n"), 0o600); err != nil {
		return fmt.Errorf("ошибка сохранения идентификатора устройства: %w", err)
	}
	return nil
}

// DeviceID возвращает идентификатор этого устройства
func (a *App) DeviceID() string {
	return a.deviceID
}

// IsAuthenticated сообщает, есть ли у клиента токен сессии
func (a *App) IsAuthenticated() bool {
	return a.httpClient.token != ""
}

// CheckConnection проверяет доступность сервера
func (a *App) CheckConnection(ctx context.Context) error {
	return a.httpClient.HealthCheck(ctx)
}

// Register регистрирует продавца и возвращает идентификатор бизнеса
func (a *App) Register(ctx context.Context, req user.RegisterRequest) (int, error) {
	return a.httpClient.Register(ctx, req)
}

// Login аутентифицируется и возвращает токен сессии
func (a *App) Login(ctx context.Context, login, password string) (string, error) {
	return a.httpClient.Login(ctx, login, password)
}

// SaveToken сохраняет токен сессии на диск
func (a *App) SaveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(a.config.TokenPath), 0o700); err != nil {
		return fmt.Errorf("ошибка создания директории токена: %w", err)
	}
	if err := os.WriteFile(a.config.TokenPath, []byte(token), 0o600); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}
	return nil
}

// Logout забывает токен сессии
func (a *App) Logout() error {
	a.httpClient.SetToken("")
	if err := os.Remove(a.config.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	return nil
}

func (a *App) loadToken() (string, error) {
	data, err := os.ReadFile(a.config.TokenPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// CreateProduct заводит товар локально и ставит создание в журнал
// отправки. Идентификатор выбирается здесь и станет первичным ключом
// на сервере.
func (a *App) CreateProduct(p *catalog.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Deleted = false

	if err := a.storage.SaveProduct(p); err != nil {
		return err
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("ошибка сериализации товара: %w", err)
	}
	return a.enqueue(catalog.KindProduct, p.ID, sync.OpCreate, payload, now)
}

// UpdateProduct применяет частичное обновление локально и ставит его в
// журнал отправки
func (a *App) UpdateProduct(id string, patch map[string]any) error {
	p, err := a.storage.GetProduct(id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := mergePatch(p, patch); err != nil {
		return fmt.Errorf("ошибка применения изменений: %w", err)
	}
	p.UpdatedAt = now

	if err := a.storage.SaveProduct(p); err != nil {
		return err
	}

	payload, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("ошибка сериализации изменений: %w", err)
	}
	return a.enqueue(catalog.KindProduct, id, sync.OpUpdate, payload, now)
}

// DeleteProduct помечает товар удаленным локально и ставит удаление в
// журнал отправки
func (a *App) DeleteProduct(id string) error {
	now := time.Now().UTC()
	if err := a.storage.MarkProductDeleted(id, now); err != nil {
		return err
	}
	return a.enqueue(catalog.KindProduct, id, sync.OpDelete, nil, now)
}

// GetProduct возвращает товар из локальной копии каталога
func (a *App) GetProduct(id string) (*catalog.Product, error) {
	return a.storage.GetProduct(id)
}

// ListProducts возвращает товары из локальной копии каталога
func (a *App) ListProducts(filter *ProductFilter) ([]*catalog.Product, error) {
	return a.storage.ListProducts(filter)
}

// CreateCategory заводит категорию локально и ставит создание в журнал
func (a *App) CreateCategory(c *catalog.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Deleted = false

	if err := a.storage.SaveCategory(c); err != nil {
		return err
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("ошибка сериализации категории: %w", err)
	}
	return a.enqueue(catalog.KindCategory, c.ID, sync.OpCreate, payload, now)
}

// DeleteCategory помечает категорию удаленной и ставит удаление в журнал
func (a *App) DeleteCategory(id string) error {
	now := time.Now().UTC()
	if err := a.storage.MarkCategoryDeleted(id, now); err != nil {
		return err
	}
	return a.enqueue(catalog.KindCategory, id, sync.OpDelete, nil, now)
}

// ListCategories возвращает категории из локальной копии каталога
func (a *App) ListCategories(showDeleted bool) ([]*catalog.Category, error) {
	return a.storage.ListCategories(showDeleted)
}

// AddImage привязывает изображение к товару локально и ставит создание
// в журнал
func (a *App) AddImage(img *catalog.Image) error {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	img.CreatedAt = now
	img.UpdatedAt = now

	if err := a.storage.SaveImage(img); err != nil {
		return err
	}

	payload, err := json.Marshal(img)
	if err != nil {
		return fmt.Errorf("ошибка сериализации изображения: %w", err)
	}
	return a.enqueue(catalog.KindImage, img.ID, sync.OpCreate, payload, now)
}

// DeleteImage удаляет изображение локально и ставит удаление в журнал
func (a *App) DeleteImage(id string) error {
	now := time.Now().UTC()
	if err := a.storage.DeleteImage(id); err != nil {
		return err
	}
	return a.enqueue(catalog.KindImage, id, sync.OpDelete, nil, now)
}

// ListImages возвращает изображения товара из локальной копии
func (a *App) ListImages(productID string) ([]*catalog.Image, error) {
	return a.storage.ListImages(productID)
}

// Sync выполняет проход синхронизации
func (a *App) Sync(ctx context.Context) (*SyncResult, error) {
	return a.syncService.Sync(ctx)
}

// FullSync заменяет локальную копию каталога состоянием сервера
func (a *App) FullSync(ctx context.Context) (*SyncResult, error) {
	return a.syncService.FullSync(ctx)
}

// SyncStats возвращает статистику синхронизаций
func (a *App) SyncStats() SyncStats {
	return a.syncService.GetStats()
}

// PendingCount возвращает число неотправленных правок
func (a *App) PendingCount() (int, error) {
	return a.storage.PendingCount()
}

// LastSyncAt возвращает локальную отметку синхронизации
func (a *App) LastSyncAt() (time.Time, error) {
	return a.storage.Checkpoint(sync.CheckpointAll)
}

// Conflicts возвращает неразрешенные конфликты с сервера
func (a *App) Conflicts(ctx context.Context) ([]sync.QueueRecord, error) {
	return a.httpClient.Conflicts(ctx)
}

// ResolveConflict разрешает конфликт на сервере
func (a *App) ResolveConflict(ctx context.Context, id string, resolution sync.Resolution, merged json.RawMessage) error {
	return a.httpClient.Resolve(ctx, id, sync.ResolveRequest{
		Resolution: resolution,
		MergedData: merged,
	})
}

// Close закрывает локальное хранилище
func (a *App) Close() error {
	return a.storage.Close()
}

func (a *App) enqueue(kind catalog.Kind, entityID string, op sync.Operation, payload json.RawMessage, ts time.Time) error {
	return a.storage.EnqueueChange(&PendingChange{
		EntityType:      kind,
		EntityID:        entityID,
		SyncID:          uuid.NewString(),
		Operation:       op,
		Payload:         payload,
		ClientTimestamp: ts,
	})
}

// mergePatch накладывает частичное обновление на сущность через JSON,
// чтобы имена полей совпадали с форматом обмена
func mergePatch(dst any, patch map[string]any) error {
	raw, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	for k, v := range patch {
		m[k] = v
	}
	merged, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, dst)
}
