package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/store-admin/internal/domain"
)

// StoreRepository persists the single store profile.
type StoreRepository interface {
	Create(ctx context.Context, store *domain.Store) error
	Update(ctx context.Context, store *domain.Store) error
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	GetFirst(ctx context.Context) (*domain.Store, error)
	Delete(ctx context.Context, id string) error
}

type storeRepository struct {
	pool *pgxpool.Pool
}

// NewStoreRepository returns a Postgres-backed implementation.
func NewStoreRepository(pool *pgxpool.Pool) StoreRepository {
	return &storeRepository{pool: pool}
}

// created_by is nulled when the creating account is deleted.
const storeColumns = `id, name, tax_id, address, phone, email, logo_ref, COALESCE(created_by::text, ''), created_at, updated_at`

func scanStore(row pgx.Row) (*domain.Store, error) {
	var s domain.Store
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.TaxID,
		&s.Address,
		&s.Phone,
		&s.Email,
		&s.LogoRef,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *storeRepository) Create(ctx context.Context, s *domain.Store) error {
	const query = `
        INSERT INTO stores (name, tax_id, address, phone, email, logo_ref, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		s.Name, s.TaxID, s.Address, s.Phone, s.Email, s.LogoRef, s.CreatedBy,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapWriteError(err)
}

func (r *storeRepository) Update(ctx context.Context, s *domain.Store) error {
	const query = `
        UPDATE stores
        SET name=$1, tax_id=$2, address=$3, phone=$4, email=$5, logo_ref=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		s.Name, s.TaxID, s.Address, s.Phone, s.Email, s.LogoRef, s.ID,
	).Scan(&s.UpdatedAt)
	return mapWriteError(err)
}

func (r *storeRepository) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	return scanStore(r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id=$1`, id))
}

func (r *storeRepository) GetFirst(ctx context.Context) (*domain.Store, error) {
	return scanStore(r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY created_at ASC LIMIT 1`))
}

func (r *storeRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM stores WHERE id=$1`, id)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
