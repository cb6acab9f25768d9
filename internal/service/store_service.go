package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/store-admin/internal/domain"
	"github.com/spec-kit/store-admin/internal/repository"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

// StoreService manages the single store profile.
type StoreService struct {
	stores repository.StoreRepository
}

// NewStoreService builds the service.
func NewStoreService(stores repository.StoreRepository) *StoreService {
	return &StoreService{stores: stores}
}

// StoreInput describes the store profile payload.
type StoreInput struct {
	Name    string
	TaxID   string
	Address string
	Phone   string
	Email   string
	LogoRef *string
}

// Create registers the store profile. Only one may exist.
func (s *StoreService) Create(ctx context.Context, createdBy string, in StoreInput) (*domain.Store, error) {
	store := &domain.Store{
		Name:      strings.TrimSpace(in.Name),
		TaxID:     strings.TrimSpace(in.TaxID),
		Address:   strings.TrimSpace(in.Address),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     domain.NormalizeEmail(in.Email),
		LogoRef:   in.LogoRef,
		CreatedBy: createdBy,
	}
	if err := requireFields(map[string]string{
		"name":    store.Name,
		"taxId":   store.TaxID,
		"address": store.Address,
		"phone":   store.Phone,
		"email":   store.Email,
	}); err != nil {
		return nil, err
	}
	if !validEmail(store.Email) {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
	}

	if _, err := s.stores.GetFirst(ctx); err == nil {
		return nil, apperrors.NewConflict("a store is already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	if err := s.stores.Create(ctx, store); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("tax id already in use", map[string]any{"field": "taxId"})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return store, nil
}

// Get returns the store profile.
func (s *StoreService) Get(ctx context.Context) (*domain.Store, error) {
	store, err := s.stores.GetFirst(ctx)
	if err != nil {
		return nil, notFoundOr(err, "store")
	}
	return store, nil
}

// StorePatch lists optional store changes.
type StorePatch struct {
	Name    *string
	TaxID   *string
	Address *string
	Phone   *string
	Email   *string
	LogoRef *string
}

func (p StorePatch) empty() bool {
	return p.Name == nil && p.TaxID == nil && p.Address == nil && p.Phone == nil && p.Email == nil && p.LogoRef == nil
}

// Update applies a partial change to the store profile.
func (s *StoreService) Update(ctx context.Context, id string, patch StorePatch) (*domain.Store, error) {
	id, err := requireID(id, "store")
	if err != nil {
		return nil, err
	}
	if patch.empty() {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "store")
	}

	set := func(field string, value *string, dest *string) error {
		if value == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			return apperrors.NewValidationError(field+" cannot be empty", map[string]any{"field": field})
		}
		*dest = trimmed
		return nil
	}
	if err := errors.Join(
		set("name", patch.Name, &store.Name),
		set("taxId", patch.TaxID, &store.TaxID),
		set("address", patch.Address, &store.Address),
		set("phone", patch.Phone, &store.Phone),
	); err != nil {
		return nil, apperrors.NewValidationError("invalid store fields", map[string]any{"error": err.Error()})
	}
	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		if !validEmail(email) {
			return nil, apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
		}
		store.Email = email
	}
	if patch.LogoRef != nil {
		store.LogoRef = patch.LogoRef
	}

	if err := s.stores.Update(ctx, store); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("tax id already in use", map[string]any{"field": "taxId"})
		}
		return nil, notFoundOr(err, "store")
	}
	return store, nil
}

// Delete removes the store profile.
func (s *StoreService) Delete(ctx context.Context, id string) (*domain.Store, error) {
	id, err := requireID(id, "store")
	if err != nil {
		return nil, err
	}
	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "store")
	}
	if err := s.stores.Delete(ctx, id); err != nil {
		return nil, notFoundOr(err, "store")
	}
	return store, nil
}
