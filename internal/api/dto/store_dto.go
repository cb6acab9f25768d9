package dto

import (
	"time"

	"github.com/spec-kit/store-admin/internal/domain"
	"github.com/spec-kit/store-admin/internal/service"
)

// StoreRequest payload for creating the store profile.
type StoreRequest struct {
	Name    string  `json:"name"`
	TaxID   string  `json:"taxId"`
	Address string  `json:"address"`
	Phone   string  `json:"phone"`
	Email   string  `json:"email"`
	LogoRef *string `json:"logoRef"`
}

// Input converts the request into service input.
func (r StoreRequest) Input() service.StoreInput {
	return service.StoreInput{
		Name:    r.Name,
		TaxID:   r.TaxID,
		Address: r.Address,
		Phone:   r.Phone,
		Email:   r.Email,
		LogoRef: r.LogoRef,
	}
}

// UpdateStoreRequest payload. Absent fields are left unchanged.
type UpdateStoreRequest struct {
	Name    *string `json:"name"`
	TaxID   *string `json:"taxId"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	LogoRef *string `json:"logoRef"`
}

// Patch converts the request into a service patch.
func (r UpdateStoreRequest) Patch() service.StorePatch {
	return service.StorePatch{
		Name:    r.Name,
		TaxID:   r.TaxID,
		Address: r.Address,
		Phone:   r.Phone,
		Email:   r.Email,
		LogoRef: r.LogoRef,
	}
}

// StoreResponse is the public view of the store profile.
type StoreResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"taxId"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	LogoRef   *string   `json:"logoRef"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewStoreResponse maps a domain store.
func NewStoreResponse(s *domain.Store) StoreResponse {
	return StoreResponse{
		ID:        s.ID,
		Name:      s.Name,
		TaxID:     s.TaxID,
		Address:   s.Address,
		Phone:     s.Phone,
		Email:     s.Email,
		LogoRef:   s.LogoRef,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
