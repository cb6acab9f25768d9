package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/store-admin/internal/domain"
)

// The memory repositories back the service when no POSTGRES_DSN is set
// (local development) and in tests. They mirror the Postgres semantics that
// callers rely on: pgx.ErrNoRows for missing rows, ErrDuplicate for unique
// violations and a compare-and-swap RotateSession.

type memoryAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
}

// NewMemoryAccountRepository returns an in-process credential store.
func NewMemoryAccountRepository() AccountRepository {
	return &memoryAccountRepository{accounts: make(map[string]domain.Account)}
}

func (r *memoryAccountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account.Email = domain.NormalizeEmail(account.Email)
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	account.ID = uuid.NewString()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.accounts[account.ID] = *account
	return nil
}

func (r *memoryAccountRepository) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[account.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	for id, existing := range r.accounts {
		if id != account.ID && existing.Email == account.Email {
			return ErrDuplicate
		}
	}
	stored.Name = account.Name
	stored.Email = account.Email
	stored.PasswordHash = account.PasswordHash
	stored.Role = account.Role
	stored.Active = account.Active
	stored.ImageRef = account.ImageRef
	stored.UpdatedAt = time.Now().UTC()
	account.UpdatedAt = stored.UpdatedAt
	r.accounts[account.ID] = stored
	return nil
}

func (r *memoryAccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &account, nil
}

func (r *memoryAccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for _, account := range r.accounts {
		if account.Email == email {
			return &account, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryAccountRepository) List(_ context.Context, filter AccountFilter) ([]domain.Account, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]domain.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		if filter.Active != nil && account.Active != *filter.Active {
			continue
		}
		if filter.Role != "" && !containsFold(string(account.Role), filter.Role) {
			continue
		}
		if filter.Search != "" && !containsFold(account.Name, filter.Search) && !containsFold(account.Email, filter.Search) {
			continue
		}
		matched = append(matched, account)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, filter.Page), len(matched), nil
}

func (r *memoryAccountRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.accounts, id)
	return nil
}

func (r *memoryAccountRepository) SaveSession(_ context.Context, id, fingerprint string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	exp := expiresAt.UTC()
	account.RefreshFingerprint = &fingerprint
	account.RefreshExpiresAt = &exp
	r.accounts[id] = account
	return nil
}

func (r *memoryAccountRepository) RotateSession(_ context.Context, id, oldFingerprint, newFingerprint string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok || account.RefreshFingerprint == nil || *account.RefreshFingerprint != oldFingerprint {
		return false, nil
	}
	exp := expiresAt.UTC()
	account.RefreshFingerprint = &newFingerprint
	account.RefreshExpiresAt = &exp
	r.accounts[id] = account
	return true, nil
}

func (r *memoryAccountRepository) ClearSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.RefreshFingerprint = nil
	account.RefreshExpiresAt = nil
	r.accounts[id] = account
	return nil
}

type memoryProductRepository struct {
	mu       sync.Mutex
	products map[string]domain.Product
}

// NewMemoryProductRepository returns an in-process product store.
func NewMemoryProductRepository() ProductRepository {
	return &memoryProductRepository{products: make(map[string]domain.Product)}
}

func (r *memoryProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.products[p.ID] = *p
	return nil
}

func (r *memoryProductRepository) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[p.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	r.products[p.ID] = *p
	return nil
}

func (r *memoryProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (r *memoryProductRepository) List(_ context.Context, filter ProductFilter) ([]domain.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Search != "" && !containsFold(p.Name, filter.Search) {
			continue
		}
		if filter.Category != "" && !containsFold(p.Category, filter.Category) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, filter.Page), len(matched), nil
}

func (r *memoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.products, id)
	return nil
}

type memoryStoreRepository struct {
	mu     sync.Mutex
	stores map[string]domain.Store
}

// NewMemoryStoreRepository returns an in-process store profile repository.
func NewMemoryStoreRepository() StoreRepository {
	return &memoryStoreRepository{stores: make(map[string]domain.Store)}
}

func (r *memoryStoreRepository) Create(_ context.Context, s *domain.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.stores {
		if existing.TaxID == s.TaxID {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	s.ID = uuid.NewString()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.stores[s.ID] = *s
	return nil
}

func (r *memoryStoreRepository) Update(_ context.Context, s *domain.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.stores[s.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	for id, existing := range r.stores {
		if id != s.ID && existing.TaxID == s.TaxID {
			return ErrDuplicate
		}
	}
	s.CreatedAt = stored.CreatedAt
	s.CreatedBy = stored.CreatedBy
	s.UpdatedAt = time.Now().UTC()
	r.stores[s.ID] = *s
	return nil
}

func (r *memoryStoreRepository) GetByID(_ context.Context, id string) (*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

func (r *memoryStoreRepository) GetFirst(_ context.Context) (*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first *domain.Store
	for _, s := range r.stores {
		if first == nil || s.CreatedAt.Before(first.CreatedAt) {
			candidate := s
			first = &candidate
		}
	}
	if first == nil {
		return nil, pgx.ErrNoRows
	}
	return first, nil
}

func (r *memoryStoreRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stores[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.stores, id)
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func paginate[T any](items []T, page Page) []T {
	page = page.normalized()
	if page.Offset >= len(items) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}
