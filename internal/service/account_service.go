package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/store-admin/internal/auth"
	"github.com/spec-kit/store-admin/internal/domain"
	"github.com/spec-kit/store-admin/internal/repository"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

// AccountService manages back-office accounts.
type AccountService struct {
	accounts   repository.AccountRepository
	bcryptCost int
}

// NewAccountService builds the service.
func NewAccountService(accounts repository.AccountRepository, bcryptCost int) *AccountService {
	return &AccountService{accounts: accounts, bcryptCost: bcryptCost}
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	ImageRef *string
}

// Register creates an active account. The role defaults to collaborator and
// is taken as given, so callers outside a trusted path use RegisterAs.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if err := requireFields(map[string]string{"name": name, "email": email, "password": in.Password}); err != nil {
		return nil, err
	}
	if !validEmail(email) {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password must be at least 6 characters", map[string]any{"field": "password"})
	}

	role := domain.DefaultRole
	if strings.TrimSpace(in.Role) != "" {
		parsed, ok := domain.ParseRole(in.Role)
		if !ok {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"field": "role"})
		}
		role = parsed
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	account := &domain.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		ImageRef:     in.ImageRef,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return account, nil
}

// RegisterAs registers on behalf of an HTTP caller. requester is nil for
// anonymous callers, who may only create accounts with the default role.
// Any other role requires an active administrator or manager.
func (s *AccountService) RegisterAs(ctx context.Context, requester *domain.Identity, in RegisterInput) (*domain.Account, error) {
	if raw := strings.TrimSpace(in.Role); raw != "" {
		role, ok := domain.ParseRole(raw)
		if !ok {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"field": "role"})
		}
		if role != domain.DefaultRole {
			if err := s.requireManager(ctx, requester); err != nil {
				return nil, err
			}
		}
	}
	return s.Register(ctx, in)
}

func (s *AccountService) requireManager(ctx context.Context, requester *domain.Identity) error {
	if requester == nil {
		return apperrors.NewForbidden("only administrators and managers may assign roles")
	}
	caller, err := s.accounts.GetByID(ctx, requester.AccountID)
	if err != nil {
		return notFoundOr(err, "account")
	}
	if !caller.Active {
		return apperrors.NewAccountInactive()
	}
	if !caller.Role.IsElevated() {
		return apperrors.NewForbidden("only administrators and managers may assign roles")
	}
	return nil
}

// AccountListFilter describes account listing filters.
type AccountListFilter struct {
	Active *bool
	Role   string
	Search string
	Page   int
	Limit  int
}

// AccountList is one page of accounts.
type AccountList struct {
	Accounts   []domain.Account
	Pagination Pagination
}

// List returns accounts newest first.
func (s *AccountService) List(ctx context.Context, filter AccountListFilter) (*AccountList, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)
	accounts, total, err := s.accounts.List(ctx, repository.AccountFilter{
		Active: filter.Active,
		Role:   strings.TrimSpace(filter.Role),
		Search: strings.TrimSpace(filter.Search),
		Page:   repository.Page{Limit: limit, Offset: (page - 1) * limit},
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AccountList{Accounts: accounts, Pagination: newPagination(page, limit, total)}, nil
}

// Get loads a single account.
func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	id, err := requireID(id, "account")
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "account")
	}
	return account, nil
}

// AccountPatch lists optional account changes.
type AccountPatch struct {
	Name     *string
	Email    *string
	Password *string
	Active   *bool
	Role     *string
	ImageRef *string
}

func (p AccountPatch) empty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.Active == nil && p.Role == nil && p.ImageRef == nil
}

// Update applies a partial change. The refresh fingerprint is left alone;
// a deactivated account is rejected by login and refresh through its flag.
func (s *AccountService) Update(ctx context.Context, id string, patch AccountPatch) (*domain.Account, error) {
	id, err := requireID(id, "account")
	if err != nil {
		return nil, err
	}
	if patch.empty() {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "account")
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", map[string]any{"field": "name"})
		}
		account.Name = name
	}
	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		if !validEmail(email) {
			return nil, apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
		}
		if email != account.Email {
			if other, err := s.accounts.GetByEmail(ctx, email); err == nil && other.ID != account.ID {
				return nil, apperrors.NewConflict("email already in use", map[string]any{"field": "email"})
			} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewInternalError(err)
			}
		}
		account.Email = email
	}
	if patch.Password != nil {
		if len(*patch.Password) < minPasswordLength {
			return nil, apperrors.NewValidationError("password must be at least 6 characters", map[string]any{"field": "password"})
		}
		hash, err := auth.HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		account.PasswordHash = hash
	}
	if patch.Active != nil {
		account.Active = *patch.Active
	}
	if patch.Role != nil {
		role, ok := domain.ParseRole(*patch.Role)
		if !ok {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"field": "role"})
		}
		account.Role = role
	}
	if patch.ImageRef != nil {
		account.ImageRef = patch.ImageRef
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already in use", map[string]any{"field": "email"})
		}
		return nil, notFoundOr(err, "account")
	}
	return account, nil
}

// Delete removes an account and returns what was deleted.
func (s *AccountService) Delete(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Delete(ctx, account.ID); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return nil, apperrors.NewConflict("account is still referenced", map[string]any{"id": account.ID})
		}
		return nil, notFoundOr(err, "account")
	}
	return account, nil
}

func notFoundOr(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewInternalError(err)
}
