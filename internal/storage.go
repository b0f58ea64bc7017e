package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// ItemTable keys Cursor uses for AI chat state
const (
	chatDataKey    = "workbench.panel.aichat.view.aichat.chatdata"
	generationsKey = "aiService.generations"
	promptsKey     = "aiService.prompts"
)

// chatLikeQuery finds the largest value that looks like chat data when the legacy key is missing
const chatLikeQuery = `
	SELECT [key], value
	FROM ItemTable
	WHERE value LIKE '%"conversations"%'
	   OR value LIKE '%"messages"%'
	   OR value LIKE '%"assistant"%'
	   OR value LIKE '%"role":"assistant"%'
	ORDER BY length(value) DESC
	LIMIT 1`

// BlobSource supplies the raw blobs a workspace's conversations are rebuilt from.
// A nil blob with a nil error means the data is absent.
type BlobSource interface {
	ChatData(ctx context.Context) (*RawBlob, error)
	Generations(ctx context.Context) (*RawBlob, error)
	Prompts(ctx context.Context) (*RawBlob, error)
}

// WorkspaceDB reads AI chat blobs from one workspace's state.vscdb
type WorkspaceDB struct {
	db     *sql.DB
	source string
}

// NewWorkspaceDB wraps an open database. source names it in errors.
func NewWorkspaceDB(db *sql.DB, source string) *WorkspaceDB {
	return &WorkspaceDB{db: db, source: source}
}

// OpenWorkspaceDB opens ws's state.vscdb read-only
func OpenWorkspaceDB(ws Workspace) (*WorkspaceDB, error) {
	path := ws.DBPath()
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	return NewWorkspaceDB(db, path), nil
}

// Close closes the underlying database
func (w *WorkspaceDB) Close() error {
	return w.db.Close()
}

// ChatData returns the legacy chat blob, or failing that the largest chat-like value
func (w *WorkspaceDB) ChatData(ctx context.Context) (*RawBlob, error) {
	blob, err := w.item(ctx, chatDataKey)
	if err != nil || blob != nil {
		return blob, err
	}

	pairs, err := QueryItemTable(ctx, w.db, chatLikeQuery)
	if err != nil {
		return nil, &StorageError{Path: w.source, Op: "query", Err: err}
	}
	if len(pairs) == 0 {
		return nil, nil
	}
	LogDebug("Using chat-like key %q from %s", pairs[0].Key, w.source)
	return DecodeRawBlob(w.source, pairs[0].Key, []byte(pairs[0].Value))
}

// Generations returns the aiService.generations blob
func (w *WorkspaceDB) Generations(ctx context.Context) (*RawBlob, error) {
	return w.item(ctx, generationsKey)
}

// Prompts returns the aiService.prompts blob
func (w *WorkspaceDB) Prompts(ctx context.Context) (*RawBlob, error) {
	return w.item(ctx, promptsKey)
}

// AllData returns every ItemTable entry, JSON-decoded where possible
func (w *WorkspaceDB) AllData(ctx context.Context) (map[string]any, error) {
	pairs, err := QueryItemTable(ctx, w.db, "SELECT [key], value FROM ItemTable ORDER BY [key]")
	if err != nil {
		return nil, &StorageError{Path: w.source, Op: "query", Err: err}
	}

	data := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		var v any
		if err := json.Unmarshal([]byte(pair.Value), &v); err != nil {
			data[pair.Key] = pair.Value
			continue
		}
		data[pair.Key] = v
	}
	return data, nil
}

// Search returns the entries whose raw value contains term
func (w *WorkspaceDB) Search(ctx context.Context, term string) ([]KeyValuePair, error) {
	pairs, err := QueryItemTable(ctx, w.db,
		"SELECT [key], value FROM ItemTable WHERE value LIKE ? ORDER BY [key]", "%"+term+"%")
	if err != nil {
		return nil, &StorageError{Path: w.source, Op: "query", Err: err}
	}
	return pairs, nil
}

// KeySize is an ItemTable key and the length of its value
type KeySize struct {
	Key  string `json:"key"`
	Size int    `json:"size"`
}

// TopKeys returns up to limit keys ordered by value length, largest first
func (w *WorkspaceDB) TopKeys(ctx context.Context, limit int) ([]KeySize, error) {
	rows, err := w.db.QueryContext(ctx,
		"SELECT [key], length(value) AS len FROM ItemTable ORDER BY len DESC LIMIT ?", limit)
	if err != nil {
		return nil, &StorageError{Path: w.source, Op: "query", Err: err}
	}
	defer rows.Close()

	keys := make([]KeySize, 0, limit)
	for rows.Next() {
		var ks KeySize
		var size sql.NullInt64
		if err := rows.Scan(&ks.Key, &size); err != nil {
			return nil, &StorageError{Path: w.source, Op: "scan", Err: err}
		}
		ks.Size = int(size.Int64)
		keys = append(keys, ks)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Path: w.source, Op: "scan", Err: fmt.Errorf("rows iteration error: %w", err)}
	}
	return keys, nil
}

func (w *WorkspaceDB) item(ctx context.Context, key string) (*RawBlob, error) {
	value, ok, err := GetItem(ctx, w.db, key)
	if err != nil {
		return nil, &StorageError{Path: w.source, Op: "read", Err: err}
	}
	if !ok {
		return nil, nil
	}
	return DecodeRawBlob(w.source, key, []byte(value))
}
