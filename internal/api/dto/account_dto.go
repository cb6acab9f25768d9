package dto

import (
	"time"

	"github.com/spec-kit/store-admin/internal/domain"
	"github.com/spec-kit/store-admin/internal/service"
)

// RegisterAccountRequest payload for POST /api/accounts.
type RegisterAccountRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	ImageRef *string `json:"imageRef"`
}

// UpdateAccountRequest payload for PUT /api/accounts/:id. Absent fields are left unchanged.
type UpdateAccountRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Active   *bool   `json:"active"`
	Role     *string `json:"role"`
	ImageRef *string `json:"imageRef"`
}

// Patch converts the request into a service patch.
func (r UpdateAccountRequest) Patch() service.AccountPatch {
	return service.AccountPatch{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Active:   r.Active,
		Role:     r.Role,
		ImageRef: r.ImageRef,
	}
}

// AccountSummary is the public view of an account. It never carries the
// password hash or the session fingerprint.
type AccountSummary struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	ImageRef  *string     `json:"imageRef"`
	Role      domain.Role `json:"role"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewAccountSummary maps a domain account.
func NewAccountSummary(a *domain.Account) AccountSummary {
	return AccountSummary{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		ImageRef:  a.ImageRef,
		Role:      a.Role,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountListResponse is one page of accounts with the applied filters.
type AccountListResponse struct {
	Accounts   []AccountSummary   `json:"accounts"`
	Pagination service.Pagination `json:"pagination"`
	Filters    AccountFilters     `json:"filters"`
}

// AccountFilters echoes the listing filters.
type AccountFilters struct {
	Active *bool  `json:"active,omitempty"`
	Role   string `json:"role,omitempty"`
	Search string `json:"search,omitempty"`
}

// NewAccountListResponse maps a service page.
func NewAccountListResponse(list *service.AccountList, filter service.AccountListFilter) AccountListResponse {
	accounts := make([]AccountSummary, 0, len(list.Accounts))
	for i := range list.Accounts {
		accounts = append(accounts, NewAccountSummary(&list.Accounts[i]))
	}
	return AccountListResponse{
		Accounts:   accounts,
		Pagination: list.Pagination,
		Filters:    AccountFilters{Active: filter.Active, Role: filter.Role, Search: filter.Search},
	}
}

// DeletedResponse identifies a removed resource.
type DeletedResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
