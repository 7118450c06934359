package migrations

import (
	"fmt"
	"os"
	"path/filepath"
)

// MigrationsDir can be overridden in tests or by the application.
// INVOICEWA_MIGRATIONS_DIR takes precedence when set.
var MigrationsDir = "scripts/migrations"

const initialSchemaFile = "001_initial_schema.sql"

// GetInitialSchema returns the initial database schema.
func GetInitialSchema() (string, error) {
	dir := MigrationsDir
	if env := os.Getenv("INVOICEWA_MIGRATIONS_DIR"); env != "" {
		dir = env
	}

	// The schema file is resolved relative to wherever the process (or
	// test binary) runs from, so walk up a couple of levels.
	searchPaths := []string{
		filepath.Join(dir, initialSchemaFile),
		filepath.Join("..", "..", dir, initialSchemaFile),
		filepath.Join("..", dir, initialSchemaFile),
	}

	for _, path := range searchPaths {
		schema, err := os.ReadFile(path)
		if err == nil {
			return string(schema), nil
		}
	}

	return "", fmt.Errorf("schema file %s not found under %s", initialSchemaFile, dir)
}
