package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInitialSchema(t *testing.T) {
	schema, err := GetInitialSchema()
	require.NoError(t, err)
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS schedules")
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS messages")
	assert.Contains(t, schema, "schedule_recipients")
}

func TestGetInitialSchemaMissingDir(t *testing.T) {
	orig := MigrationsDir
	MigrationsDir = filepath.Join(t.TempDir(), "nope")
	defer func() { MigrationsDir = orig }()

	_, err := GetInitialSchema()
	assert.Error(t, err)
}

func TestGetInitialSchemaEnvOverride(t *testing.T) {
	dir := t.TempDir()
	custom := "CREATE TABLE IF NOT EXISTS schedules (id INTEGER);"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_initial_schema.sql"), []byte(custom), 0600))

	t.Setenv("INVOICEWA_MIGRATIONS_DIR", dir)

	schema, err := GetInitialSchema()
	require.NoError(t, err)
	assert.Equal(t, custom, schema)
}
