package catalog

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listProductsOp() huma.Operation {
	return huma.Operation{
		OperationID: "catalog-list-products",
		Method:      http.MethodGet,
		Path:        "/api/catalog/products",
		Summary:     "Список активных товаров",
		Tags:        []string{"catalog"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) getProductOp() huma.Operation {
	return huma.Operation{
		OperationID: "catalog-get-product",
		Method:      http.MethodGet,
		Path:        "/api/catalog/products/{id}",
		Summary:     "Получить товар",
		Tags:        []string{"catalog"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listCategoriesOp() huma.Operation {
	return huma.Operation{
		OperationID: "catalog-list-categories",
		Method:      http.MethodGet,
		Path:        "/api/catalog/categories",
		Summary:     "Список активных категорий",
		Tags:        []string{"catalog"},
		Middlewares: h.middleware,
	}
}
