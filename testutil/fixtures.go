package testutil

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// Sample ItemTable values shaped like Cursor's storage
const (
	CanonicalChatData = `{"conversations":[{"id":"c1","title":"Fix login","createdAt":"2024-01-01T10:00:00.000Z","updatedAt":"2024-01-01T11:00:00.000Z","messages":[{"id":"m1","type":"user","text":"Update this:\n` + "```ts\\n/* login.ts */\\nexport const a = 1;\\n```" + `","createdAt":"2024-01-01T10:00:00.000Z"},{"id":"m2","type":"ai","text":"Done:\n` + "```ts\\n/* login.ts */\\nexport const a = 1;\\nexport const b = 2;\\n```" + `","createdAt":"2024-01-01T10:01:00.000Z"}]}]}`

	Generations = `[{"unixMs":1000,"generationUUID":"g1","textDescription":"make a button"},{"unixMs":2000,"generationUUID":"g2","textDescription":"style it"}]`

	Prompts = `[{"text":"Here is the button","commandType":4}]`
)

// WorkspaceHash returns the md5-style directory name Cursor would use for name
func WorkspaceHash(name string) string {
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])
}

// CreateItemTableFixture creates a SQLite database file holding the given ItemTable entries
func CreateItemTableFixture(t *testing.T, dbPath string, items map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(createItemTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	insertSQL := "INSERT INTO ItemTable (key, value) VALUES (?, ?)"
	for key, value := range items {
		if _, err := db.Exec(insertSQL, key, value); err != nil {
			t.Fatalf("Failed to insert %s: %v", key, err)
		}
	}
}

// CreateWorkspaceFixture creates root/<hash>/state.vscdb holding items, plus a
// workspace.json naming folder when folder is non-empty. It returns the workspace directory.
func CreateWorkspaceFixture(t *testing.T, root, hash, folder string, items map[string]string) string {
	t.Helper()
	workspaceDir := filepath.Join(root, hash)
	if err := os.MkdirAll(workspaceDir, 0755); err != nil {
		t.Fatalf("Failed to create workspace directory: %v", err)
	}

	if folder != "" {
		jsonData, _ := json.Marshal(map[string]interface{}{"folder": folder})
		workspaceJSONPath := filepath.Join(workspaceDir, "workspace.json")
		if err := os.WriteFile(workspaceJSONPath, jsonData, 0644); err != nil {
			t.Fatalf("Failed to write workspace.json: %v", err)
		}
	}

	CreateItemTableFixture(t, filepath.Join(workspaceDir, "state.vscdb"), items)
	return workspaceDir
}

// SetModTime sets the modification time of a workspace's state.vscdb
func SetModTime(t *testing.T, workspaceDir string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(filepath.Join(workspaceDir, "state.vscdb"), mtime, mtime); err != nil {
		t.Fatalf("Failed to set modification time: %v", err)
	}
}

// CreateMockWorkspaceStorage creates a workspaceStorage directory with three workspaces:
// one with canonical chat data, one with generations and prompts, and one without AI data.
// The canonical workspace is the most recently modified.
func CreateMockWorkspaceStorage(t *testing.T) string {
	t.Helper()
	return CreateMockWorkspaceStorageAt(t, time.Now())
}

// CreateMockWorkspaceStorageAt is CreateMockWorkspaceStorage with modification
// times of 1h, 48h and 90 days before now.
func CreateMockWorkspaceStorageAt(t *testing.T, now time.Time) string {
	t.Helper()
	root := CreateTempDir(t)

	canonical := CreateWorkspaceFixture(t, root, WorkspaceHash("canonical"), "file:///home/dev/webapp", map[string]string{
		"workbench.panel.aichat.view.aichat.chatdata": CanonicalChatData,
	})
	SetModTime(t, canonical, now.Add(-1*time.Hour))

	generated := CreateWorkspaceFixture(t, root, WorkspaceHash("generated"), "/home/dev/api", map[string]string{
		"aiService.generations": Generations,
		"aiService.prompts":     Prompts,
	})
	SetModTime(t, generated, now.Add(-48*time.Hour))

	empty := CreateWorkspaceFixture(t, root, WorkspaceHash("empty"), "", map[string]string{
		"workbench.explorer.treeViewState": `{"expanded":[]}`,
	})
	SetModTime(t, empty, now.Add(-90*24*time.Hour))

	return root
}
