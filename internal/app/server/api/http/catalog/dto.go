package catalog

import (
	"marketsync/internal/domain/catalog"
)

type listProductsInput struct{}

type listProductsOutput struct {
	Body ProductsResponse
}

type ProductsResponse struct {
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Data   []catalog.Product `json:"data"`
}

type getProductInput struct {
	ID string `path:"id"`
}

type getProductOutput struct {
	Body ProductResponse
}

type ProductResponse struct {
	Status string           `json:"status"`
	Error  string           `json:"error,omitempty"`
	Data   *catalog.Product `json:"data,omitempty"`
}

type listCategoriesInput struct{}

type listCategoriesOutput struct {
	Body CategoriesResponse
}

type CategoriesResponse struct {
	Status string             `json:"status"`
	Error  string             `json:"error,omitempty"`
	Data   []catalog.Category `json:"data"`
}
