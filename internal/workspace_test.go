package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/cursor-history/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceScanner_Scan(t *testing.T) {
	root := testutil.CreateMockWorkspaceStorage(t)

	// Entries the scanner must ignore
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not-a-hash"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, testutil.WorkspaceHash("no-db")), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, testutil.WorkspaceHash("file")), nil, 0644))

	workspaces, err := NewWorkspaceScanner(root).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, workspaces, 3)

	assert.Equal(t, testutil.WorkspaceHash("canonical"), workspaces[0].Hash)
	assert.Equal(t, "/home/dev/webapp", workspaces[0].ProjectPath)
	assert.Equal(t, filepath.Join(root, workspaces[0].Hash), workspaces[0].Path)
	assert.Equal(t, testutil.WorkspaceHash("generated"), workspaces[1].Hash)
	assert.Equal(t, "/home/dev/api", workspaces[1].ProjectPath)
	assert.Equal(t, testutil.WorkspaceHash("empty"), workspaces[2].Hash)
	assert.Equal(t, "", workspaces[2].ProjectPath)

	for i := 1; i < len(workspaces); i++ {
		assert.False(t, workspaces[i].LastModified.After(workspaces[i-1].LastModified))
	}
}

func TestWorkspaceScanner_MissingRoot(t *testing.T) {
	_, err := NewWorkspaceScanner(filepath.Join(testutil.CreateTempDir(t), "absent")).Scan(context.Background())
	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "scan", storageErr.Op)
}

func TestWorkspaceScanner_CancelledContext(t *testing.T) {
	root := testutil.CreateMockWorkspaceStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWorkspaceScanner(root).Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkspaceScanner_Lookups(t *testing.T) {
	root := testutil.CreateMockWorkspaceStorage(t)
	scanner := NewWorkspaceScanner(root)
	ctx := context.Background()

	latest, err := scanner.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, testutil.WorkspaceHash("canonical"), latest.Hash)

	found, err := scanner.Find(ctx, testutil.WorkspaceHash("generated"))
	require.NoError(t, err)
	assert.Equal(t, "/home/dev/api", found.ProjectPath)

	_, err = scanner.Find(ctx, "ffffffffffffffffffffffffffffffff")
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)

	matched, err := scanner.FindByProjectPath(ctx, "/elsewhere/webapp")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, testutil.WorkspaceHash("canonical"), matched[0].Hash)

	recent, err := scanner.Recent(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestWorkspaceScanner_LatestEmpty(t *testing.T) {
	_, err := NewWorkspaceScanner(testutil.CreateTempDir(t)).Latest(context.Background())
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestReadProjectPath(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"folder", map[string]string{"workspace.json": `{"folder":"file:///a/b"}`}, "/a/b"},
		{"nested workspace folder", map[string]string{"workspace.json": `{"workspace":{"folder":"/c"}}`}, "/c"},
		{"workspaceFolder", map[string]string{"workspace.json": `{"workspaceFolder":"/d"}`}, "/d"},
		{"multi-root workspace file", map[string]string{"workspace.json": `{"workspace":"file:///e.code-workspace"}`}, ""},
		{"storage.json fallback", map[string]string{
			"workspace.json": `not json`,
			"storage.json":   `{"folder":"/f"}`,
		}, "/f"},
		{"nothing", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.CreateTempDir(t)
			for name, content := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
			}
			if got := readProjectPath(dir); got != tt.want {
				t.Errorf("readProjectPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModifiedSince(t *testing.T) {
	cutoff := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	workspaces := []Workspace{
		{Hash: "after", LastModified: cutoff.Add(time.Hour)},
		{Hash: "at", LastModified: cutoff},
		{Hash: "before", LastModified: cutoff.Add(-time.Hour)},
	}

	kept := ModifiedSince(workspaces, cutoff)
	require.Len(t, kept, 2)
	assert.Equal(t, "after", kept[0].Hash)
	assert.Equal(t, "at", kept[1].Hash)
}
