package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketsync/internal/domain/catalog"
)

// DeletionPolicy политика удаления вида сущности
type DeletionPolicy string

const (
	// DeleteSoft строка остается в таблице с флагом deleted, pull видит
	// удаление по живой таблице
	DeleteSoft DeletionPolicy = "soft"
	// DeleteHard строка удаляется из таблицы, pull узнает об удалении
	// только из журнала синхронизации
	DeleteHard DeletionPolicy = "hard"
)

type applyFunc func(ctx context.Context, businessID int, ch Change, claimed, appliedAt time.Time) error

// entityHandler тройка операций одного вида сущности плюс его политика
// удаления, объявленная рядом с обработчиками
type entityHandler struct {
	policy entityPolicy
	create applyFunc
	update applyFunc
	delete applyFunc
}

type entityPolicy struct {
	deletion DeletionPolicy
	// pullable вид участвует в pull-выборке по живой таблице
	pullable bool
}

// Applier применяет валидированное неконфликтующее изменение через
// закрытую таблицу обработчиков. Каждая мутация - один атомарный
// оператор хранилища: частично примененное обновление конкурентный
// pull не увидит.
type Applier struct {
	store    catalog.Store
	handlers map[catalog.Kind]entityHandler
}

func NewApplier(store catalog.Store) *Applier {
	a := &Applier{store: store}
	a.handlers = map[catalog.Kind]entityHandler{
		catalog.KindProduct: {
			policy: entityPolicy{deletion: DeleteSoft, pullable: true},
			create: a.createProduct,
			update: a.updateProduct,
			delete: a.deleteProduct,
		},
		catalog.KindCategory: {
			policy: entityPolicy{deletion: DeleteSoft, pullable: true},
			create: a.createCategory,
			update: a.updateCategory,
			delete: a.deleteCategory,
		},
		catalog.KindImage: {
			policy: entityPolicy{deletion: DeleteHard, pullable: false},
			create: a.createImage,
			update: a.updateImage,
			delete: a.deleteImage,
		},
	}
	return a
}

// Apply выполняет операцию изменения. claimed - момент, на который
// рассчитывает пишущий: push передает клиентское время изменения,
// разрешение конфликта - время разрешения (условие всегда проходит).
func (a *Applier) Apply(ctx context.Context, businessID int, ch Change, claimed, appliedAt time.Time) error {
	h, ok := a.handlers[ch.EntityType]
	if !ok {
		return fmt.Errorf("Unknown entity type: %s", ch.EntityType)
	}

	switch ch.Operation {
	case OpCreate:
		return h.create(ctx, businessID, ch, claimed, appliedAt)
	case OpUpdate:
		return h.update(ctx, businessID, ch, claimed, appliedAt)
	case OpDelete:
		return h.delete(ctx, businessID, ch, claimed, appliedAt)
	default:
		return fmt.Errorf("unknown operation: %s", ch.Operation)
	}
}

// DeletionPolicy возвращает политику удаления вида
func (a *Applier) DeletionPolicy(kind catalog.Kind) (DeletionPolicy, bool) {
	h, ok := a.handlers[kind]
	return h.policy.deletion, ok
}

// Pullable сообщает, участвует ли вид в pull-выборке по живой таблице
func (a *Applier) Pullable(kind catalog.Kind) bool {
	return a.handlers[kind].policy.pullable
}

func (a *Applier) createProduct(ctx context.Context, businessID int, ch Change, _, appliedAt time.Time) error {
	var p catalog.Product
	if err := json.Unmarshal(ch.Payload, &p); err != nil {
		return fmt.Errorf("decode product payload: %w", err)
	}
	p.ID = ch.EntityID
	p.BusinessID = businessID
	p.Deleted = false
	p.LastSyncedAt = &appliedAt
	p.CreatedAt = appliedAt
	p.UpdatedAt = appliedAt
	// Повторный create того же id вырождается в upsert
	return a.store.UpsertProduct(ctx, &p)
}

func (a *Applier) updateProduct(ctx context.Context, businessID int, ch Change, claimed, appliedAt time.Time) error {
	patch, err := decodePatch(ch.Payload)
	if err != nil {
		return err
	}
	return a.store.UpdateProduct(ctx, businessID, ch.EntityID, patch, claimed, appliedAt)
}

func (a *Applier) deleteProduct(ctx context.Context, businessID int, ch Change, claimed, appliedAt time.Time) error {
	return a.store.SoftDeleteProduct(ctx, businessID, ch.EntityID, claimed, appliedAt)
}

func (a *Applier) createCategory(ctx context.Context, businessID int, ch Change, _, appliedAt time.Time) error {
	var c catalog.Category
	if err := json.Unmarshal(ch.Payload, &c); err != nil {
		return fmt.Errorf("decode category payload: %w", err)
	}
	c.ID = ch.EntityID
	c.BusinessID = businessID
	c.Deleted = false
	c.LastSyncedAt = &appliedAt
	c.CreatedAt = appliedAt
	c.UpdatedAt = appliedAt
	return a.store.UpsertCategory(ctx, &c)
}

func (a *Applier) updateCategory(ctx context.Context, businessID int, ch Change, claimed, appliedAt time.Time) error {
	patch, err := decodePatch(ch.Payload)
	if err != nil {
		return err
	}
	return a.store.UpdateCategory(ctx, businessID, ch.EntityID, patch, claimed, appliedAt)
}

func (a *Applier) deleteCategory(ctx context.Context, businessID int, ch Change, claimed, appliedAt time.Time) error {
	return a.store.SoftDeleteCategory(ctx, businessID, ch.EntityID, claimed, appliedAt)
}

func (a *Applier) createImage(ctx context.Context, businessID int, ch Change, _, appliedAt time.Time) error {
	var img catalog.Image
	if err := json.Unmarshal(ch.Payload, &img); err != nil {
		return fmt.Errorf("decode image payload: %w", err)
	}
	img.ID = ch.EntityID
	img.BusinessID = businessID
	img.LastSyncedAt = &appliedAt
	img.CreatedAt = appliedAt
	img.UpdatedAt = appliedAt
	return a.store.UpsertImage(ctx, &img)
}

func (a *Applier) updateImage(ctx context.Context, businessID int, ch Change, claimed, appliedAt time.Time) error {
	patch, err := decodePatch(ch.Payload)
	if err != nil {
		return err
	}
	return a.store.UpdateImage(ctx, businessID, ch.EntityID, patch, claimed, appliedAt)
}

func (a *Applier) deleteImage(ctx context.Context, businessID int, ch Change, _, _ time.Time) error {
	return a.store.DeleteImage(ctx, businessID, ch.EntityID)
}

func decodePatch(payload json.RawMessage) (map[string]any, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	var patch map[string]any
	if err := json.Unmarshal(payload, &patch); err != nil {
		return nil, fmt.Errorf("decode patch payload: %w", err)
	}
	return patch, nil
}
