package internal

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/iksnae/cursor-history/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheFixture(t *testing.T) (*CacheManager, Workspace) {
	t.Helper()
	root := testutil.CreateTempDir(t)
	hash := testutil.WorkspaceHash("cached")
	dir := testutil.CreateWorkspaceFixture(t, root, hash, "/src/cached", map[string]string{"k": "v"})
	ws := Workspace{Path: dir, Hash: hash, ProjectPath: "/src/cached"}
	return NewCacheManager(filepath.Join(testutil.CreateTempDir(t), "cache")), ws
}

func TestNewCacheManager(t *testing.T) {
	cacheDir := testutil.CreateTempDir(t)
	cm := NewCacheManager(cacheDir)
	if cm.GetCacheDir() != cacheDir {
		t.Errorf("GetCacheDir() = %q, want %q", cm.GetCacheDir(), cacheDir)
	}
	if got, want := cm.GetIndexPath(), filepath.Join(cacheDir, "workspaces.yaml"); got != want {
		t.Errorf("GetIndexPath() = %q, want %q", got, want)
	}
	if got, want := cm.GetWorkspacePath("abc"), filepath.Join(cacheDir, "workspace_abc.json"); got != want {
		t.Errorf("GetWorkspacePath() = %q, want %q", got, want)
	}
}

func TestCacheManager_SaveAndLoad(t *testing.T) {
	cm, ws := cacheFixture(t)

	_, ok := cm.Load(ws)
	assert.False(t, ok, "empty cache must miss")

	conversations := []Conversation{{
		ID:              "c1",
		Title:           "Cached",
		CreatedAt:       "2024-01-01T00:00:00.000Z",
		UpdatedAt:       "2024-01-01T00:00:00.000Z",
		WorkspaceFolder: "/src/cached",
		Messages: []Message{{
			ID: "m1", Type: MessageUser, Text: "hi", CreatedAt: "2024-01-01T00:00:00.000Z",
			ContextFiles: []ContextFile{}, CodeBlocks: []CodeBlock{},
		}},
	}}
	require.NoError(t, cm.Save(ws, conversations))
	assert.True(t, cm.IsCacheValid(ws))

	loaded, ok := cm.Load(ws)
	require.True(t, ok)
	assert.Equal(t, conversations, loaded)

	index, err := cm.LoadIndex()
	require.NoError(t, err)
	entry := index.Workspaces[ws.Hash]
	assert.Equal(t, 1, entry.ConversationCount)
	assert.Equal(t, "/src/cached", entry.ProjectPath)
	assert.Equal(t, cacheVersion, index.Metadata.CacheVersion)
}

func TestCacheManager_InvalidatedByDatabaseChange(t *testing.T) {
	cm, ws := cacheFixture(t)
	require.NoError(t, cm.Save(ws, []Conversation{}))
	require.True(t, cm.IsCacheValid(ws))

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(ws.DBPath(), later, later))
	assert.False(t, cm.IsCacheValid(ws))
	_, ok := cm.Load(ws)
	assert.False(t, ok)
}

func TestCacheManager_CorruptFiles(t *testing.T) {
	cm, ws := cacheFixture(t)
	require.NoError(t, cm.Save(ws, []Conversation{}))

	require.NoError(t, os.WriteFile(cm.GetWorkspacePath(ws.Hash), []byte("{"), 0644))
	_, ok := cm.Load(ws)
	assert.False(t, ok, "unreadable workspace file must miss")

	require.NoError(t, os.WriteFile(cm.GetIndexPath(), []byte(":\n\t- bad"), 0644))
	assert.False(t, cm.IsCacheValid(ws))

	// A fresh save replaces the broken index
	require.NoError(t, cm.Save(ws, []Conversation{}))
	assert.True(t, cm.IsCacheValid(ws))
}

func TestCacheManager_ConcurrentSave(t *testing.T) {
	root := testutil.CreateTempDir(t)
	cm := NewCacheManager(testutil.CreateTempDir(t))

	var workspaces []Workspace
	for _, name := range []string{"a", "b", "c", "d"} {
		hash := testutil.WorkspaceHash(name)
		dir := testutil.CreateWorkspaceFixture(t, root, hash, "", nil)
		workspaces = append(workspaces, Workspace{Path: dir, Hash: hash})
	}

	var wg sync.WaitGroup
	for _, ws := range workspaces {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, cm.Save(ws, []Conversation{{ID: ws.Hash}}))
		}()
	}
	wg.Wait()

	index, err := cm.LoadIndex()
	require.NoError(t, err)
	assert.Len(t, index.Workspaces, len(workspaces))
}

func TestCacheManager_ClearCache(t *testing.T) {
	cm, ws := cacheFixture(t)
	require.NoError(t, cm.Save(ws, []Conversation{}))

	require.NoError(t, cm.ClearCache())
	_, err := os.Stat(cm.GetIndexPath())
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(cm.GetWorkspacePath(ws.Hash))
	assert.True(t, os.IsNotExist(err))

	// Clearing an empty cache is not an error
	assert.NoError(t, cm.ClearCache())
}
