package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndMigrate(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "sfss.db") + "?_pragma=foreign_keys(1)"

	database, err := Init("sqlite", dsn)
	require.NoError(t, err)
	defer Close(database)

	require.NoError(t, RunMigrations(database.DB, "sqlite"))

	version, err := MigrationVersion(database.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	var count int
	require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM shares`))
	assert.Equal(t, 0, count)

	require.NoError(t, MigrateDown(database.DB, "sqlite"))

	version, err = MigrationVersion(database.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", dialect("sqlite"))
	assert.Equal(t, "postgres", dialect("pgx"))
	assert.Equal(t, "mysql", dialect("mysql"))
}
