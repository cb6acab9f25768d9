package dto

import (
	"time"

	"github.com/spec-kit/store-admin/internal/domain"
	"github.com/spec-kit/store-admin/internal/service"
)

// CreateProductRequest payload.
type CreateProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Category    string   `json:"category"`
	Supplier    string   `json:"supplier"`
	ImageRef    *string  `json:"imageRef"`
}

// Input converts the request into service input.
func (r CreateProductRequest) Input() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Category:    r.Category,
		Supplier:    r.Supplier,
		ImageRef:    r.ImageRef,
	}
}

// UpdateProductRequest payload. Absent fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Category    *string  `json:"category"`
	Supplier    *string  `json:"supplier"`
	ImageRef    *string  `json:"imageRef"`
}

// Patch converts the request into a service patch.
func (r UpdateProductRequest) Patch() service.ProductPatch {
	return service.ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Category:    r.Category,
		Supplier:    r.Supplier,
		ImageRef:    r.ImageRef,
	}
}

// ProductResponse is the public view of a product.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Category    string    `json:"category"`
	Supplier    string    `json:"supplier"`
	ImageRef    *string   `json:"imageRef"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewProductResponse maps a domain product.
func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Category:    p.Category,
		Supplier:    p.Supplier,
		ImageRef:    p.ImageRef,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProductListResponse is one page of products.
type ProductListResponse struct {
	Products   []ProductResponse  `json:"products"`
	Pagination service.Pagination `json:"pagination"`
}

// NewProductListResponse maps a service page.
func NewProductListResponse(list *service.ProductList) ProductListResponse {
	products := make([]ProductResponse, 0, len(list.Products))
	for i := range list.Products {
		products = append(products, NewProductResponse(&list.Products[i]))
	}
	return ProductListResponse{Products: products, Pagination: list.Pagination}
}
