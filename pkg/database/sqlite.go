package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SscSPs/school_ledger/migrations"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// OpenSQLite opens (creating if needed) an SQLite database file and applies the
// embedded schema. The pool is limited to one connection: SQLite allows a single
// writer, and holding one connection makes every ledger transaction serial.
// Transactions begin IMMEDIATE and take the write lock up front.
func OpenSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_loc=UTC", path)
	return openSQLite(dsn)
}

// OpenInMemorySQLite opens a private in-memory database with the schema applied.
// Each call gets its own database.
func OpenInMemorySQLite() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:memdb_%s?mode=memory&cache=shared&_foreign_keys=on&_txlock=immediate&_loc=UTC", uuid.NewString())
	return openSQLite(dsn)
}

func openSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(migrations.SQLiteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}
