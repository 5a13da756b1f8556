package client

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"marketsync/internal/domain/catalog"
	"marketsync/internal/domain/sync"
)

// SQLiteStorage локальная копия каталога плюс журнал неотправленных
// правок. Устройство работает с ним в офлайне, синхронизация сверяет
// его с сервером.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории данных: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			category_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price INTEGER NOT NULL DEFAULT 0,
			quantity INTEGER NOT NULL DEFAULT 0,
			barcode TEXT NOT NULL DEFAULT '',
			deleted INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
		CREATE INDEX IF NOT EXISTS idx_products_deleted ON products(deleted);

		CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			deleted INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS images (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			url TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_images_product ON images(product_id);

		CREATE TABLE IF NOT EXISTS pending_changes (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			sync_id TEXT NOT NULL,
			operation TEXT NOT NULL,
			payload TEXT,
			client_timestamp TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)

	return err
}

func (s *SQLiteStorage) SaveProduct(p *catalog.Product) error {
	_, err := s.db.Exec(`
		INSERT INTO products (id, category_id, name, description, price, quantity, barcode, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			category_id = excluded.category_id,
			name = excluded.name,
			description = excluded.description,
			price = excluded.price,
			quantity = excluded.quantity,
			barcode = excluded.barcode,
			deleted = excluded.deleted,
			updated_at = excluded.updated_at
	`, p.ID, p.CategoryID, p.Name, p.Description, p.Price, p.Quantity, p.Barcode,
		boolToInt(p.Deleted), formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("ошибка сохранения товара: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetProduct(id string) (*catalog.Product, error) {
	row := s.db.QueryRow(`
		SELECT id, category_id, name, description, price, quantity, barcode, deleted, created_at, updated_at
		FROM products WHERE id = ?
	`, id)

	p, err := scanLocalProduct(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("товар не найден: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения товара: %w", err)
	}
	return p, nil
}

func (s *SQLiteStorage) ListProducts(filter *ProductFilter) ([]*catalog.Product, error) {
	query := `
		SELECT id, category_id, name, description, price, quantity, barcode, deleted, created_at, updated_at
		FROM products WHERE 1=1`
	args := []any{}

	if filter != nil {
		if !filter.ShowDeleted {
			query += " AND deleted = 0"
		}
		if filter.CategoryID != "" {
			query += " AND category_id = ?"
			args = append(args, filter.CategoryID)
		}
	} else {
		query += " AND deleted = 0"
	}
	query += " ORDER BY name"
	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки товаров: %w", err)
	}
	defer rows.Close()

	var products []*catalog.Product
	for rows.Next() {
		p, err := scanLocalProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения товара: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// MarkProductDeleted помечает товар удаленным локально (мягкое удаление,
// как и на сервере)
func (s *SQLiteStorage) MarkProductDeleted(id string, ts time.Time) error {
	res, err := s.db.Exec(`UPDATE products SET deleted = 1, updated_at = ? WHERE id = ?`, formatTime(ts), id)
	if err != nil {
		return fmt.Errorf("ошибка удаления товара: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("товар не найден: %s", id)
	}
	return nil
}

func (s *SQLiteStorage) SaveCategory(c *catalog.Category) error {
	_, err := s.db.Exec(`
		INSERT INTO categories (id, parent_id, name, sort_order, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			parent_id = excluded.parent_id,
			name = excluded.name,
			sort_order = excluded.sort_order,
			deleted = excluded.deleted,
			updated_at = excluded.updated_at
	`, c.ID, c.ParentID, c.Name, c.SortOrder, boolToInt(c.Deleted),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("ошибка сохранения категории: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ListCategories(showDeleted bool) ([]*catalog.Category, error) {
	query := `
		SELECT id, parent_id, name, sort_order, deleted, created_at, updated_at
		FROM categories`
	if !showDeleted {
		query += " WHERE deleted = 0"
	}
	query += " ORDER BY sort_order, name"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки категорий: %w", err)
	}
	defer rows.Close()

	var categories []*catalog.Category
	for rows.Next() {
		var c catalog.Category
		var deleted int
		var createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.SortOrder, &deleted, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения категории: %w", err)
		}
		c.Deleted = deleted != 0
		c.CreatedAt = parseTime(createdAt)
		c.UpdatedAt = parseTime(updatedAt)
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (s *SQLiteStorage) MarkCategoryDeleted(id string, ts time.Time) error {
	res, err := s.db.Exec(`UPDATE categories SET deleted = 1, updated_at = ? WHERE id = ?`, formatTime(ts), id)
	if err != nil {
		return fmt.Errorf("ошибка удаления категории: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("категория не найдена: %s", id)
	}
	return nil
}

func (s *SQLiteStorage) SaveImage(img *catalog.Image) error {
	_, err := s.db.Exec(`
		INSERT INTO images (id, product_id, url, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			product_id = excluded.product_id,
			url = excluded.url,
			position = excluded.position,
			updated_at = excluded.updated_at
	`, img.ID, img.ProductID, img.URL, img.Position,
		formatTime(img.CreatedAt), formatTime(img.UpdatedAt))
	if err != nil {
		return fmt.Errorf("ошибка сохранения изображения: %w", err)
	}
	return nil
}

// DeleteImage удаляет изображение жестко, как и сервер
func (s *SQLiteStorage) DeleteImage(id string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления изображения: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ListImages(productID string) ([]*catalog.Image, error) {
	rows, err := s.db.Query(`
		SELECT id, product_id, url, position, created_at, updated_at
		FROM images WHERE product_id = ? ORDER BY position
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки изображений: %w", err)
	}
	defer rows.Close()

	var images []*catalog.Image
	for rows.Next() {
		var img catalog.Image
		var createdAt, updatedAt string
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.Position, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения изображения: %w", err)
		}
		img.CreatedAt = parseTime(createdAt)
		img.UpdatedAt = parseTime(updatedAt)
		images = append(images, &img)
	}
	return images, rows.Err()
}

// EnqueueChange ставит правку в журнал отправки
func (s *SQLiteStorage) EnqueueChange(ch *PendingChange) error {
	res, err := s.db.Exec(`
		INSERT INTO pending_changes (entity_type, entity_id, sync_id, operation, payload, client_timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, string(ch.EntityType), ch.EntityID, ch.SyncID, string(ch.Operation),
		string(ch.Payload), formatTime(ch.ClientTimestamp))
	if err != nil {
		return fmt.Errorf("ошибка постановки изменения в журнал: %w", err)
	}
	ch.Seq, _ = res.LastInsertId()
	return nil
}

// PendingChanges возвращает неотправленные правки в порядке внесения
func (s *SQLiteStorage) PendingChanges(limit int) ([]*PendingChange, error) {
	rows, err := s.db.Query(`
		SELECT seq, entity_type, entity_id, sync_id, operation, payload, client_timestamp
		FROM pending_changes ORDER BY seq LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала изменений: %w", err)
	}
	defer rows.Close()

	var changes []*PendingChange
	for rows.Next() {
		var ch PendingChange
		var entityType, operation, ts string
		var payload sql.NullString
		if err := rows.Scan(&ch.Seq, &entityType, &ch.EntityID, &ch.SyncID, &operation, &payload, &ts); err != nil {
			return nil, fmt.Errorf("ошибка чтения журнала изменений: %w", err)
		}
		ch.EntityType = catalog.Kind(entityType)
		ch.Operation = sync.Operation(operation)
		if payload.Valid && payload.String != "" {
			ch.Payload = json.RawMessage(payload.String)
		}
		ch.ClientTimestamp = parseTime(ts)
		changes = append(changes, &ch)
	}
	return changes, rows.Err()
}

func (s *SQLiteStorage) PendingCount() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM pending_changes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчета журнала изменений: %w", err)
	}
	return n, nil
}

// HasPending сообщает, есть ли в журнале неотправленные правки сущности.
// Pull не перетирает такие строки: локальная правка еще не проиграла
// конфликт на сервере.
func (s *SQLiteStorage) HasPending(kind catalog.Kind, entityID string) (bool, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM pending_changes WHERE entity_type = ? AND entity_id = ?
	`, string(kind), entityID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки журнала изменений: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStorage) RemovePending(seq int64) error {
	_, err := s.db.Exec(`DELETE FROM pending_changes WHERE seq = ?`, seq)
	if err != nil {
		return fmt.Errorf("ошибка удаления из журнала изменений: %w", err)
	}
	return nil
}

// Checkpoint возвращает локальную отметку синхронизации; нулевое время,
// если синхронизация еще не выполнялась
func (s *SQLiteStorage) Checkpoint(key string) (time.Time, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM sync_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("ошибка чтения отметки синхронизации: %w", err)
	}
	return parseTime(value), nil
}

func (s *SQLiteStorage) SetCheckpoint(key string, ts time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_state (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, formatTime(ts))
	if err != nil {
		return fmt.Errorf("ошибка сохранения отметки синхронизации: %w", err)
	}
	return nil
}

// ResetCatalog очищает локальную копию каталога перед полной загрузкой
func (s *SQLiteStorage) ResetCatalog() error {
	_, err := s.db.Exec(`
		DELETE FROM products;
		DELETE FROM categories;
		DELETE FROM images;
	`)
	if err != nil {
		return fmt.Errorf("ошибка очистки каталога: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocalProduct(row rowScanner) (*catalog.Product, error) {
	var p catalog.Product
	var deleted int
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price,
		&p.Quantity, &p.Barcode, &deleted, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.Deleted = deleted != 0
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
