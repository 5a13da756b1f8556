package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"marketsync/internal/domain/catalog"
)

// CatalogRepository реализация catalog.Store для PostgreSQL.
// Условные мутации выполняются одним оператором с условием
// updated_at <= claimed, так что конкурентный pull не увидит частично
// примененного изменения, а проигранная гонка не перезапишет свежие данные.
type CatalogRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewCatalogRepository(pool *pgxpool.Pool, log *slog.Logger) *CatalogRepository {
	return &CatalogRepository{
		pool: pool,
		log:  log.With("component", "catalog_repository"),
	}
}

// Белые списки колонок, доступных частичному обновлению
var (
	productPatchColumns = map[string]string{
		"category_id": "category_id",
		"name":        "name",
		"description": "description",
		"price":       "price",
		"quantity":    "quantity",
		"barcode":     "barcode",
	}
	categoryPatchColumns = map[string]string{
		"parent_id":  "parent_id",
		"name":       "name",
		"sort_order": "sort_order",
	}
	imagePatchColumns = map[string]string{
		"product_id": "product_id",
		"url":        "url",
		"position":   "position",
	}
)

func (r *CatalogRepository) UpsertProduct(ctx context.Context, p *catalog.Product) error {
	const query = `
		INSERT INTO products
			(id, business_id, category_id, name, description, price, quantity,
			 barcode, deleted, last_synced_at, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, false, $9, $10, $10)
		ON CONFLICT (id) DO UPDATE SET
			category_id = EXCLUDED.category_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			quantity = EXCLUDED.quantity,
			barcode = EXCLUDED.barcode,
			deleted = false,
			last_synced_at = EXCLUDED.last_synced_at,
			updated_at = EXCLUDED.updated_at
		WHERE products.business_id = EXCLUDED.business_id`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.BusinessID, p.CategoryID, p.Name, p.Description, p.Price,
		p.Quantity, p.Barcode, p.LastSyncedAt, p.CreatedAt)
	if err != nil {
		r.log.Error("failed to upsert product", "product_id", p.ID, "error", err)
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpdateProduct(ctx context.Context, businessID int, id string, patch map[string]any, claimed, appliedAt time.Time) error {
	return r.conditionalUpdate(ctx, "products", productPatchColumns, businessID, id, patch, claimed, appliedAt)
}

func (r *CatalogRepository) SoftDeleteProduct(ctx context.Context, businessID int, id string, claimed, appliedAt time.Time) error {
	return r.conditionalSoftDelete(ctx, "products", businessID, id, claimed, appliedAt)
}

func (r *CatalogRepository) GetProduct(ctx context.Context, businessID int, id string) (*catalog.Product, error) {
	const query = `
		SELECT id, business_id, COALESCE(category_id, ''), name, description,
		       price, quantity, barcode, deleted, last_synced_at, created_at, updated_at
		FROM products
		WHERE business_id = $1 AND id = $2`

	var p catalog.Product
	err := r.pool.QueryRow(ctx, query, businessID, id).Scan(
		&p.ID, &p.BusinessID, &p.CategoryID, &p.Name, &p.Description,
		&p.Price, &p.Quantity, &p.Barcode, &p.Deleted, &p.LastSyncedAt,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		r.log.Error("failed to get product", "product_id", id, "error", err)
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context, businessID int, includeDeleted bool) ([]catalog.Product, error) {
	query := `
		SELECT id, business_id, COALESCE(category_id, ''), name, description,
		       price, quantity, barcode, deleted, last_synced_at, created_at, updated_at
		FROM products
		WHERE business_id = $1`
	if !includeDeleted {
		query += ` AND NOT deleted`
	}
	query += ` ORDER BY updated_at ASC`

	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *CatalogRepository) ProductsSince(ctx context.Context, businessID int, since time.Time, limit int) ([]catalog.Product, error) {
	const query = `
		SELECT id, business_id, COALESCE(category_id, ''), name, description,
		       price, quantity, barcode, deleted, last_synced_at, created_at, updated_at
		FROM products
		WHERE business_id = $1 AND updated_at > $2
		ORDER BY updated_at ASC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, businessID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("products since: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *CatalogRepository) UpsertCategory(ctx context.Context, c *catalog.Category) error {
	const query = `
		INSERT INTO categories
			(id, business_id, parent_id, name, sort_order, deleted,
			 last_synced_at, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, false, $6, $7, $7)
		ON CONFLICT (id) DO UPDATE SET
			parent_id = EXCLUDED.parent_id,
			name = EXCLUDED.name,
			sort_order = EXCLUDED.sort_order,
			deleted = false,
			last_synced_at = EXCLUDED.last_synced_at,
			updated_at = EXCLUDED.updated_at
		WHERE categories.business_id = EXCLUDED.business_id`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.BusinessID, c.ParentID, c.Name, c.SortOrder, c.LastSyncedAt, c.CreatedAt)
	if err != nil {
		r.log.Error("failed to upsert category", "category_id", c.ID, "error", err)
		return fmt.Errorf("upsert category: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, businessID int, id string, patch map[string]any, claimed, appliedAt time.Time) error {
	return r.conditionalUpdate(ctx, "categories", categoryPatchColumns, businessID, id, patch, claimed, appliedAt)
}

func (r *CatalogRepository) SoftDeleteCategory(ctx context.Context, businessID int, id string, claimed, appliedAt time.Time) error {
	return r.conditionalSoftDelete(ctx, "categories", businessID, id, claimed, appliedAt)
}

func (r *CatalogRepository) GetCategory(ctx context.Context, businessID int, id string) (*catalog.Category, error) {
	const query = `
		SELECT id, business_id, COALESCE(parent_id, ''), name, sort_order,
		       deleted, last_synced_at, created_at, updated_at
		FROM categories
		WHERE business_id = $1 AND id = $2`

	var c catalog.Category
	err := r.pool.QueryRow(ctx, query, businessID, id).Scan(
		&c.ID, &c.BusinessID, &c.ParentID, &c.Name, &c.SortOrder,
		&c.Deleted, &c.LastSyncedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		r.log.Error("failed to get category", "category_id", id, "error", err)
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context, businessID int, includeDeleted bool) ([]catalog.Category, error) {
	query := `
		SELECT id, business_id, COALESCE(parent_id, ''), name, sort_order,
		       deleted, last_synced_at, created_at, updated_at
		FROM categories
		WHERE business_id = $1`
	if !includeDeleted {
		query += ` AND NOT deleted`
	}
	query += ` ORDER BY updated_at ASC`

	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

func (r *CatalogRepository) CategoriesSince(ctx context.Context, businessID int, since time.Time, limit int) ([]catalog.Category, error) {
	const query = `
		SELECT id, business_id, COALESCE(parent_id, ''), name, sort_order,
		       deleted, last_synced_at, created_at, updated_at
		FROM categories
		WHERE business_id = $1 AND updated_at > $2
		ORDER BY updated_at ASC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, businessID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("categories since: %w", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

func (r *CatalogRepository) UpsertImage(ctx context.Context, img *catalog.Image) error {
	const query = `
		INSERT INTO product_images
			(id, business_id, product_id, url, position, last_synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (id) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			url = EXCLUDED.url,
			position = EXCLUDED.position,
			last_synced_at = EXCLUDED.last_synced_at,
			updated_at = EXCLUDED.updated_at
		WHERE product_images.business_id = EXCLUDED.business_id`

	_, err := r.pool.Exec(ctx, query,
		img.ID, img.BusinessID, img.ProductID, img.URL, img.Position,
		img.LastSyncedAt, img.CreatedAt)
	if err != nil {
		r.log.Error("failed to upsert image", "image_id", img.ID, "error", err)
		return fmt.Errorf("upsert image: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpdateImage(ctx context.Context, businessID int, id string, patch map[string]any, claimed, appliedAt time.Time) error {
	return r.conditionalUpdate(ctx, "product_images", imagePatchColumns, businessID, id, patch, claimed, appliedAt)
}

// DeleteImage жесткое удаление: строка исчезает, ленту удалений для pull
// дальше обеспечивает журнал синхронизации
func (r *CatalogRepository) DeleteImage(ctx context.Context, businessID int, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM product_images WHERE business_id = $1 AND id = $2`,
		businessID, id)
	if err != nil {
		r.log.Error("failed to delete image", "image_id", id, "error", err)
		return fmt.Errorf("delete image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *CatalogRepository) GetImage(ctx context.Context, businessID int, id string) (*catalog.Image, error) {
	const query = `
		SELECT id, business_id, product_id, url, position,
		       last_synced_at, created_at, updated_at
		FROM product_images
		WHERE business_id = $1 AND id = $2`

	var img catalog.Image
	err := r.pool.QueryRow(ctx, query, businessID, id).Scan(
		&img.ID, &img.BusinessID, &img.ProductID, &img.URL, &img.Position,
		&img.LastSyncedAt, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		r.log.Error("failed to get image", "image_id", id, "error", err)
		return nil, fmt.Errorf("get image: %w", err)
	}
	return &img, nil
}

// UpdatedAt возвращает updated_at сущности указанного вида для детектора
// конфликтов: (_, false, nil), если сущности нет
func (r *CatalogRepository) UpdatedAt(ctx context.Context, kind catalog.Kind, businessID int, id string) (time.Time, bool, error) {
	table, ok := tableFor(kind)
	if !ok {
		return time.Time{}, false, catalog.ErrUnknownKind
	}

	var updatedAt time.Time
	query := fmt.Sprintf(`SELECT updated_at FROM %s WHERE business_id = $1 AND id = $2`, table)
	err := r.pool.QueryRow(ctx, query, businessID, id).Scan(&updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get %s updated_at: %w", kind, err)
	}
	return updatedAt, true, nil
}

// Snapshot возвращает текущее серверное состояние сущности в JSON
func (r *CatalogRepository) Snapshot(ctx context.Context, kind catalog.Kind, businessID int, id string) (json.RawMessage, error) {
	var entity any
	var err error

	switch kind {
	case catalog.KindProduct:
		entity, err = r.GetProduct(ctx, businessID, id)
	case catalog.KindCategory:
		entity, err = r.GetCategory(ctx, businessID, id)
	case catalog.KindImage:
		entity, err = r.GetImage(ctx, businessID, id)
	default:
		return nil, catalog.ErrUnknownKind
	}
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("encode %s snapshot: %w", kind, err)
	}
	return raw, nil
}

// conditionalUpdate собирает UPDATE по белому списку колонок. Условие
// updated_at <= claimed делает запись атомарным compare-and-set: ноль
// затронутых строк означает либо отсутствие сущности, либо проигранную
// гонку (ErrStaleEntity).
func (r *CatalogRepository) conditionalUpdate(ctx context.Context, table string, allowed map[string]string, businessID int, id string, patch map[string]any, claimed, appliedAt time.Time) error {
	sets := make([]string, 0, len(patch)+2)
	args := make([]any, 0, len(patch)+5)

	for field, value := range patch {
		column, ok := allowed[field]
		if !ok {
			continue
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if len(sets) == 0 {
		return fmt.Errorf("patch has no updatable fields")
	}

	args = append(args, appliedAt)
	sets = append(sets,
		fmt.Sprintf("updated_at = $%d", len(args)),
		fmt.Sprintf("last_synced_at = $%d", len(args)))

	args = append(args, businessID, id, claimed)
	query := fmt.Sprintf(
		`UPDATE %s SET %s WHERE business_id = $%d AND id = $%d AND updated_at <= $%d`,
		table, strings.Join(sets, ", "), len(args)-2, len(args)-1, len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to update entity", "table", table, "id", id, "error", err)
		return fmt.Errorf("update %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, table, businessID, id)
	}
	return nil
}

func (r *CatalogRepository) conditionalSoftDelete(ctx context.Context, table string, businessID int, id string, claimed, appliedAt time.Time) error {
	query := fmt.Sprintf(
		`UPDATE %s SET deleted = true, updated_at = $1, last_synced_at = $1
		 WHERE business_id = $2 AND id = $3 AND updated_at <= $4`, table)

	tag, err := r.pool.Exec(ctx, query, appliedAt, businessID, id, claimed)
	if err != nil {
		r.log.Error("failed to soft-delete entity", "table", table, "id", id, "error", err)
		return fmt.Errorf("soft delete %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, table, businessID, id)
	}
	return nil
}

// classifyMiss различает отсутствие строки и проигранную гонку
func (r *CatalogRepository) classifyMiss(ctx context.Context, table string, businessID int, id string) error {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE business_id = $1 AND id = $2)`, table)
	if err := r.pool.QueryRow(ctx, query, businessID, id).Scan(&exists); err != nil {
		return fmt.Errorf("check %s existence: %w", table, err)
	}
	if !exists {
		return catalog.ErrNotFound
	}
	return catalog.ErrStaleEntity
}

func tableFor(kind catalog.Kind) (string, bool) {
	switch kind {
	case catalog.KindProduct:
		return "products", true
	case catalog.KindCategory:
		return "categories", true
	case catalog.KindImage:
		return "product_images", true
	}
	return "", false
}

func scanProducts(rows pgx.Rows) ([]catalog.Product, error) {
	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(
			&p.ID, &p.BusinessID, &p.CategoryID, &p.Name, &p.Description,
			&p.Price, &p.Quantity, &p.Barcode, &p.Deleted, &p.LastSyncedAt,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanCategories(rows pgx.Rows) ([]catalog.Category, error) {
	var categories []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(
			&c.ID, &c.BusinessID, &c.ParentID, &c.Name, &c.SortOrder,
			&c.Deleted, &c.LastSyncedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
