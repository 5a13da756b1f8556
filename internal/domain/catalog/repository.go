package catalog

import (
	"context"
	"encoding/json"
	"time"
)

// Store фасад доступа к авторитетным таблицам каталога. Ядро синхронизации
// зависит только от этого интерфейса и не знает о конкретном хранилище.
//
// Мутации условные: update/soft-delete выполняются одним оператором с
// условием updated_at <= claimed, проигранная гонка возвращается как
// ErrStaleEntity вместо тихой перезаписи более свежих данных.
type Store interface {
	// Товары
	UpsertProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, businessID int, id string, patch map[string]any, claimed, appliedAt time.Time) error
	SoftDeleteProduct(ctx context.Context, businessID int, id string, claimed, appliedAt time.Time) error
	GetProduct(ctx context.Context, businessID int, id string) (*Product, error)
	ListProducts(ctx context.Context, businessID int, includeDeleted bool) ([]Product, error)
	ProductsSince(ctx context.Context, businessID int, since time.Time, limit int) ([]Product, error)

	// Категории
	UpsertCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, businessID int, id string, patch map[string]any, claimed, appliedAt time.Time) error
	SoftDeleteCategory(ctx context.Context, businessID int, id string, claimed, appliedAt time.Time) error
	GetCategory(ctx context.Context, businessID int, id string) (*Category, error)
	ListCategories(ctx context.Context, businessID int, includeDeleted bool) ([]Category, error)
	CategoriesSince(ctx context.Context, businessID int, since time.Time, limit int) ([]Category, error)

	// Изображения: удаление жесткое, pull-выборки по живой таблице нет
	UpsertImage(ctx context.Context, img *Image) error
	UpdateImage(ctx context.Context, businessID int, id string, patch map[string]any, claimed, appliedAt time.Time) error
	DeleteImage(ctx context.Context, businessID int, id string) error
	GetImage(ctx context.Context, businessID int, id string) (*Image, error)

	// Метаданные для детектора конфликтов
	UpdatedAt(ctx context.Context, kind Kind, businessID int, id string) (time.Time, bool, error)
	Snapshot(ctx context.Context, kind Kind, businessID int, id string) (json.RawMessage, error)
}
