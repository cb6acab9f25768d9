package service

import (
	"context"
	"strings"

	"github.com/spec-kit/store-admin/internal/domain"
	"github.com/spec-kit/store-admin/internal/repository"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

// ProductService coordinates inventory workflows.
type ProductService struct {
	products repository.ProductRepository
}

// NewProductService builds the service.
func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// ProductInput describes product creation payload.
type ProductInput struct {
	Name        string
	Description string
	Price       *float64
	Quantity    *int
	Category    string
	Supplier    string
	ImageRef    *string
}

// Create adds a product. Every field except the image is required.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	product := &domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Supplier:    strings.TrimSpace(in.Supplier),
		ImageRef:    in.ImageRef,
	}
	if err := requireFields(map[string]string{
		"name":        product.Name,
		"description": product.Description,
		"category":    product.Category,
		"supplier":    product.Supplier,
	}); err != nil {
		return nil, err
	}
	if in.Price == nil || in.Quantity == nil {
		return nil, apperrors.NewValidationError("price and quantity are required", nil)
	}
	if err := validateStock(*in.Price, *in.Quantity); err != nil {
		return nil, err
	}
	product.Price = *in.Price
	product.Quantity = *in.Quantity

	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return product, nil
}

// ProductListFilter describes product listing filters.
type ProductListFilter struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

// ProductList is one page of products.
type ProductList struct {
	Products   []domain.Product
	Pagination Pagination
}

// List returns products newest first.
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (*ProductList, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)
	products, total, err := s.products.List(ctx, repository.ProductFilter{
		Search:   strings.TrimSpace(filter.Search),
		Category: strings.TrimSpace(filter.Category),
		Page:     repository.Page{Limit: limit, Offset: (page - 1) * limit},
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &ProductList{Products: products, Pagination: newPagination(page, limit, total)}, nil
}

// Get loads a product.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	id, err := requireID(id, "product")
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	return product, nil
}

// ProductPatch lists optional product changes.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Quantity    *int
	Category    *string
	Supplier    *string
	ImageRef    *string
}

func (p ProductPatch) empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Quantity == nil &&
		p.Category == nil && p.Supplier == nil && p.ImageRef == nil
}

// Update applies a partial change.
func (s *ProductService) Update(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error) {
	id, err := requireID(id, "product")
	if err != nil {
		return nil, err
	}
	if patch.empty() {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}

	for field, target := range map[string]struct {
		value *string
		dest  *string
	}{
		"name":        {patch.Name, &product.Name},
		"description": {patch.Description, &product.Description},
		"category":    {patch.Category, &product.Category},
		"supplier":    {patch.Supplier, &product.Supplier},
	} {
		if target.value == nil {
			continue
		}
		trimmed := strings.TrimSpace(*target.value)
		if trimmed == "" {
			return nil, apperrors.NewValidationError(field+" cannot be empty", map[string]any{"field": field})
		}
		*target.dest = trimmed
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Quantity != nil {
		product.Quantity = *patch.Quantity
	}
	if err := validateStock(product.Price, product.Quantity); err != nil {
		return nil, err
	}
	if patch.ImageRef != nil {
		product.ImageRef = patch.ImageRef
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, notFoundOr(err, "product")
	}
	return product, nil
}

// Delete removes a product and returns it.
func (s *ProductService) Delete(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.products.Delete(ctx, product.ID); err != nil {
		return nil, notFoundOr(err, "product")
	}
	return product, nil
}

func validateStock(price float64, quantity int) error {
	if price < 0 {
		return apperrors.NewValidationError("price must not be negative", map[string]any{"field": "price"})
	}
	if quantity < 0 {
		return apperrors.NewValidationError("quantity must not be negative", map[string]any{"field": "quantity"})
	}
	return nil
}
