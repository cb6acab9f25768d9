package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Set groups the repositories used by the services.
type Set struct {
	Accounts AccountRepository
	Products ProductRepository
	Stores   StoreRepository
}

// NewSet returns Postgres repositories, or in-memory ones when pool is nil.
func NewSet(pool *pgxpool.Pool) Set {
	if pool == nil {
		return Set{
			Accounts: NewMemoryAccountRepository(),
			Products: NewMemoryProductRepository(),
			Stores:   NewMemoryStoreRepository(),
		}
	}
	return Set{
		Accounts: NewAccountRepository(pool),
		Products: NewProductRepository(pool),
		Stores:   NewStoreRepository(pool),
	}
}

// InMemory reports whether the set keeps data in process memory.
func (s Set) InMemory() bool {
	_, ok := s.Accounts.(*memoryAccountRepository)
	return ok
}
