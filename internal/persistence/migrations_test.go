package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@localhost:5432/store", migrationURL("postgres://u:p@localhost:5432/store"))
	require.Equal(t, "pgx5://localhost/store?sslmode=disable", migrationURL("postgresql://localhost/store?sslmode=disable"))
	require.Equal(t, "pgx5://already", migrationURL("pgx5://already"))
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	require.Contains(t, names, "000001_init.up.sql")
	require.Contains(t, names, "000001_init.down.sql")
	require.Contains(t, names, "000002_store_creator_set_null.up.sql")
}

func TestStoreCreatorReleasedOnAccountDelete(t *testing.T) {
	up, err := migrationFiles.ReadFile("migrations/000002_store_creator_set_null.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(up), "DROP NOT NULL")
	require.Contains(t, string(up), "ON DELETE SET NULL")
}
