package catalog

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"marketsync/internal/app/server/api/http/middleware/auth"
	"marketsync/internal/domain/catalog"
)

type Handler struct {
	service    catalog.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service catalog.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listProductsOp(), h.listProducts)
	huma.Register(api, h.getProductOp(), h.getProduct)
	huma.Register(api, h.listCategoriesOp(), h.listCategories)
}

func (h *Handler) listProducts(ctx context.Context, _ *listProductsInput) (*listProductsOutput, error) {
	businessID, err := businessFrom(ctx)
	if err != nil {
		return &listProductsOutput{
			Body: ProductsResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	products, err := h.service.ListProducts(ctx, businessID)
	if err != nil {
		return &listProductsOutput{
			Body: ProductsResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	return &listProductsOutput{
		Body: ProductsResponse{Status: "Ok", Data: products},
	}, nil
}

func (h *Handler) getProduct(ctx context.Context, input *getProductInput) (*getProductOutput, error) {
	businessID, err := businessFrom(ctx)
	if err != nil {
		return &getProductOutput{
			Body: ProductResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	product, err := h.service.GetProduct(ctx, businessID, input.ID)
	if err != nil {
		return &getProductOutput{
			Body: ProductResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	return &getProductOutput{
		Body: ProductResponse{Status: "Ok", Data: product},
	}, nil
}

func (h *Handler) listCategories(ctx context.Context, _ *listCategoriesInput) (*listCategoriesOutput, error) {
	businessID, err := businessFrom(ctx)
	if err != nil {
		return &listCategoriesOutput{
			Body: CategoriesResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	categories, err := h.service.ListCategories(ctx, businessID)
	if err != nil {
		return &listCategoriesOutput{
			Body: CategoriesResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	return &listCategoriesOutput{
		Body: CategoriesResponse{Status: "Ok", Data: categories},
	}, nil
}

func businessFrom(ctx context.Context) (int, error) {
	_, businessID, ok := auth.GetIdentity(ctx)
	if !ok {
		return 0, fmt.Errorf("user not authenticated")
	}
	return businessID, nil
}
