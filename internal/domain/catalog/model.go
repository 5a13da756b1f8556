package catalog

import (
	"time"
)

// Kind вид сущности каталога
type Kind string

const (
	KindProduct  Kind = "product"
	KindCategory Kind = "category"
	KindImage    Kind = "image"
)

// Valid проверяет, что вид сущности поддерживается
func (k Kind) Valid() bool {
	switch k {
	case KindProduct, KindCategory, KindImage:
		return true
	}
	return false
}

// Product товар каталога. Идентификатор выбирает клиент: для сущностей,
// созданных офлайн, он же становится первичным ключом на сервере.
type Product struct {
	ID           string     `json:"id"`
	BusinessID   int        `json:"business_id"`
	CategoryID   string     `json:"category_id,omitempty"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Price        int64      `json:"price"`
	Quantity     int        `json:"quantity"`
	Barcode      string     `json:"barcode,omitempty"`
	Deleted      bool       `json:"deleted"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Category категория товаров
type Category struct {
	ID           string     `json:"id"`
	BusinessID   int        `json:"business_id"`
	ParentID     string     `json:"parent_id,omitempty"`
	Name         string     `json:"name"`
	SortOrder    int        `json:"sort_order"`
	Deleted      bool       `json:"deleted"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Image изображение товара. В отличие от товаров и категорий удаляется
// жестко: строка исчезает из таблицы, факт удаления восстанавливается
// только по журналу синхронизации.
type Image struct {
	ID           string     `json:"id"`
	BusinessID   int        `json:"business_id"`
	ProductID    string     `json:"product_id"`
	URL          string     `json:"url"`
	Position     int        `json:"position"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
