// Package database is the SQLite-backed store for schedules, clients,
// invoices, devices, templates and message records.
package database

import (
	"database/sql"
	"fmt"
	"os"

	apperrors "invoicewa/internal/errors"
	"invoicewa/internal/migrations"
	"invoicewa/internal/security"

	_ "github.com/mattn/go-sqlite3"
)

type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

func New(dbPath string) (*Database, error) {
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}

	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, closeOnInitError(db, apperrors.WrapRetryable(err, apperrors.ErrCodeDatabaseConnection, "failed to ping database"))
	}

	schema, err := migrations.GetInitialSchema()
	if err != nil {
		return nil, closeOnInitError(db, apperrors.Wrap(err, apperrors.ErrCodeDatabaseMigration, "failed to read schema"))
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, closeOnInitError(db, apperrors.Wrap(err, apperrors.ErrCodeDatabaseMigration, "failed to initialize schema"))
	}

	encryptor, err := NewEncryptor()
	if err != nil {
		return nil, closeOnInitError(db, fmt.Errorf("failed to initialize encryptor: %w", err))
	}

	return &Database{db: db, encryptor: encryptor}, nil
}

func closeOnInitError(db *sql.DB, err error) error {
	if closeErr := db.Close(); closeErr != nil {
		return fmt.Errorf("%w (close error: %v)", err, closeErr)
	}
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}
