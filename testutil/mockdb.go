package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

const createItemTableSQL = `
	CREATE TABLE IF NOT EXISTS ItemTable (
		key TEXT UNIQUE ON CONFLICT REPLACE,
		value BLOB
	)`

// CreateInMemoryDB creates an in-memory SQLite database with an empty ItemTable
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// Each pooled connection would get its own :memory: database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createItemTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create ItemTable: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// CreateTestDB creates an in-memory database holding the given ItemTable entries
func CreateTestDB(t *testing.T, items map[string]string) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)
	for key, value := range items {
		InsertItem(t, db, key, value)
	}
	return db
}

// InsertItem inserts or replaces an ItemTable entry
func InsertItem(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	insertSQL := "INSERT INTO ItemTable (key, value) VALUES (?, ?)"
	if _, err := db.Exec(insertSQL, key, value); err != nil {
		t.Fatalf("Failed to insert %s: %v", key, err)
	}
}
