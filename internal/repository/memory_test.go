package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/store-admin/internal/domain"
)

func TestMemoryAccountSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccountRepository()

	account := &domain.Account{Name: "Ana", Email: " A@X.com ", PasswordHash: "h", Role: domain.RoleManager, Active: true}
	require.NoError(t, repo.Create(ctx, account))
	require.NotEmpty(t, account.ID)
	require.Equal(t, "a@x.com", account.Email)

	require.ErrorIs(t, repo.Create(ctx, &domain.Account{Email: "a@x.com"}), ErrDuplicate)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, repo.SaveSession(ctx, account.ID, "fp1", exp))

	ok, err := repo.RotateSession(ctx, account.ID, "stale", "fp2", exp)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.RotateSession(ctx, account.ID, "fp1", "fp2", exp)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.RotateSession(ctx, account.ID, "fp1", "fp3", exp)
	require.NoError(t, err)
	require.False(t, ok)

	stored, err := repo.GetByEmail(ctx, "A@x.com")
	require.NoError(t, err)
	require.Equal(t, "fp2", *stored.RefreshFingerprint)

	require.NoError(t, repo.ClearSession(ctx, account.ID))
	require.NoError(t, repo.ClearSession(ctx, account.ID))
	stored, err = repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	require.Nil(t, stored.RefreshFingerprint)
	require.Nil(t, stored.RefreshExpiresAt)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, pgx.ErrNoRows)
	require.ErrorIs(t, repo.ClearSession(ctx, "missing"), pgx.ErrNoRows)
	require.ErrorIs(t, repo.SaveSession(ctx, "missing", "fp", exp), pgx.ErrNoRows)
}

func TestMemoryAccountList(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccountRepository()
	for _, a := range []domain.Account{
		{Name: "Ana", Email: "ana@x.com", Role: domain.RoleManager, Active: true},
		{Name: "Bruno", Email: "bruno@x.com", Role: domain.RoleCollaborator, Active: true},
		{Name: "Carla", Email: "carla@x.com", Role: domain.RoleCollaborator, Active: false},
	} {
		account := a
		require.NoError(t, repo.Create(ctx, &account))
	}

	active := true
	accounts, total, err := repo.List(ctx, AccountFilter{Active: &active})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, accounts, 2)

	_, total, err = repo.List(ctx, AccountFilter{Role: "collab"})
	require.NoError(t, err)
	require.Equal(t, 2, total)

	accounts, total, err = repo.List(ctx, AccountFilter{Search: "CARLA"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Carla", accounts[0].Name)

	accounts, total, err = repo.List(ctx, AccountFilter{Page: Page{Limit: 2, Offset: 2}})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, accounts, 1)
}

func TestMemoryStoreUniqueTaxID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStoreRepository()

	_, err := repo.GetFirst(ctx)
	require.ErrorIs(t, err, pgx.ErrNoRows)

	first := &domain.Store{Name: "Loja", TaxID: "123"}
	require.NoError(t, repo.Create(ctx, first))
	require.ErrorIs(t, repo.Create(ctx, &domain.Store{Name: "Outra", TaxID: "123"}), ErrDuplicate)

	got, err := repo.GetFirst(ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)

	require.NoError(t, repo.Delete(ctx, first.ID))
	require.ErrorIs(t, repo.Delete(ctx, first.ID), pgx.ErrNoRows)
}

func TestPageNormalizedMemory(t *testing.T) {
	require.Equal(t, Page{Limit: 10}, Page{}.normalized())
	require.Equal(t, Page{Limit: 100, Offset: 0}, Page{Limit: 500, Offset: -3}.normalized())
}
