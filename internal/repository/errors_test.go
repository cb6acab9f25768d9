package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapWriteError(t *testing.T) {
	require.ErrorIs(t, mapWriteError(&pgconn.PgError{Code: "23505"}), ErrDuplicate)
	require.ErrorIs(t, mapWriteError(fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"})), ErrReferenced)

	other := &pgconn.PgError{Code: "22P02"}
	require.Same(t, other, mapWriteError(other))
	require.NoError(t, mapWriteError(nil))

	plain := errors.New("boom")
	require.Equal(t, plain, mapWriteError(plain))
}

func TestPageNormalized(t *testing.T) {
	require.Equal(t, Page{Limit: 10}, Page{}.normalized())
	require.Equal(t, Page{Limit: 100, Offset: 0}, Page{Limit: 500, Offset: -3}.normalized())
}
