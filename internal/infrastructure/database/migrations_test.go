package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("arquivo inesperado em migrations: %s", name)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestKVStoreMigrationCreatesTable(t *testing.T) {
	data, err := fs.ReadFile(migrationFiles, "migrations/000001_create_kv_store.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS kv_store")
}

func TestRollbackRejectsNonPositiveSteps(t *testing.T) {
	err := RollbackMigrations("postgres://unused", 0, nil)
	assert.Error(t, err)
}
