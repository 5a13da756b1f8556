package catalog

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"
)

// Servicer интерфейс читающего сервиса каталога
type Servicer interface {
	ListProducts(ctx context.Context, businessID int) ([]Product, error)
	GetProduct(ctx context.Context, businessID int, id string) (*Product, error)
	ListCategories(ctx context.Context, businessID int) ([]Category, error)
}

// Service читающая обертка над Store для онлайн-клиентов.
// Бизнес-валидация каталога живет вне ядра синхронизации.
type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
	}
}

// ListProducts возвращает активные (не удаленные) товары бизнеса
func (s *Service) ListProducts(ctx context.Context, businessID int) ([]Product, error) {
	products, err := s.store.ListProducts(ctx, businessID, false)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct возвращает товар по идентификатору
func (s *Service) GetProduct(ctx context.Context, businessID int, id string) (*Product, error) {
	product, err := s.store.GetProduct(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return product, nil
}

// ListCategories возвращает активные категории бизнеса
func (s *Service) ListCategories(ctx context.Context, businessID int) ([]Category, error) {
	categories, err := s.store.ListCategories(ctx, businessID, false)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
