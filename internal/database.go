package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// OpenDatabase opens a SQLite database in read-only mode
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}

	return db, nil
}

// KeyValuePair represents a key-value pair from ItemTable
type KeyValuePair struct {
	Key   string
	Value string
}

// GetItem returns the value stored under key in ItemTable.
// ok is false when the key is absent or its value is NULL.
func GetItem(ctx context.Context, db *sql.DB, key string) (value string, ok bool, err error) {
	var v sql.NullString
	err = db.QueryRowContext(ctx, "SELECT value FROM ItemTable WHERE [key] = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query failed: %w", err)
	}
	return v.String, v.Valid, nil
}

// QueryItemTable runs query against ItemTable and collects (key, value) rows.
// Rows with a NULL value are skipped.
func QueryItemTable(ctx context.Context, db *sql.DB, query string, args ...any) ([]KeyValuePair, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var pair KeyValuePair
		var value sql.NullString
		if err := rows.Scan(&pair.Key, &value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if value.Valid {
			pair.Value = value.String
			pairs = append(pairs, pair)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return pairs, nil
}
