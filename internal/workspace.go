package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// workspaceDBName is the SQLite file inside each workspaceStorage entry
const workspaceDBName = "state.vscdb"

var workspaceHashRe = regexp.MustCompile(`^[a-fA-F0-9]{32}$`)

// WorkspaceScanner enumerates the workspaces under a workspaceStorage directory
type WorkspaceScanner struct {
	root string
	now  Clock
}

// NewWorkspaceScanner creates a scanner rooted at a workspaceStorage directory
func NewWorkspaceScanner(root string) *WorkspaceScanner {
	return &WorkspaceScanner{root: root, now: SystemClock}
}

// Root returns the workspaceStorage directory being scanned
func (s *WorkspaceScanner) Root() string {
	return s.root
}

// Scan returns every md5-named directory holding a state.vscdb, most recently
// modified database first. Entries that cannot be read are skipped.
func (s *WorkspaceScanner) Scan(ctx context.Context) ([]Workspace, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, &StorageError{Path: s.root, Op: "scan", Err: err}
	}

	workspaces := make([]Workspace, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() || !workspaceHashRe.MatchString(entry.Name()) {
			continue
		}

		dir := filepath.Join(s.root, entry.Name())
		info, err := os.Stat(filepath.Join(dir, workspaceDBName))
		if err != nil {
			continue
		}

		workspaces = append(workspaces, Workspace{
			Path:         dir,
			Hash:         entry.Name(),
			LastModified: info.ModTime(),
			ProjectPath:  readProjectPath(dir),
		})
	}

	sort.SliceStable(workspaces, func(i, j int) bool {
		return workspaces[i].LastModified.After(workspaces[j].LastModified)
	})
	return workspaces, nil
}

// Latest returns the most recently modified workspace
func (s *WorkspaceScanner) Latest(ctx context.Context) (Workspace, error) {
	workspaces, err := s.Scan(ctx)
	if err != nil {
		return Workspace{}, err
	}
	if len(workspaces) == 0 {
		return Workspace{}, ErrWorkspaceNotFound
	}
	return workspaces[0], nil
}

// Recent returns the workspaces whose database changed within the last days
func (s *WorkspaceScanner) Recent(ctx context.Context, days int) ([]Workspace, error) {
	workspaces, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return ModifiedSince(workspaces, s.now().AddDate(0, 0, -days)), nil
}

// Find returns the workspace with the given hash
func (s *WorkspaceScanner) Find(ctx context.Context, hash string) (Workspace, error) {
	workspaces, err := s.Scan(ctx)
	if err != nil {
		return Workspace{}, err
	}
	for _, ws := range workspaces {
		if ws.Hash == hash {
			return ws, nil
		}
	}
	return Workspace{}, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, hash)
}

// FindByProjectPath returns the workspaces whose project path contains the base name of path
func (s *WorkspaceScanner) FindByProjectPath(ctx context.Context, path string) ([]Workspace, error) {
	workspaces, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	matched := make([]Workspace, 0)
	for _, ws := range workspaces {
		if ws.ProjectPath != "" && strings.Contains(ws.ProjectPath, name) {
			matched = append(matched, ws)
		}
	}
	return matched, nil
}

// ModifiedSince keeps the workspaces modified at or after cutoff
func ModifiedSince(workspaces []Workspace, cutoff time.Time) []Workspace {
	kept := make([]Workspace, 0, len(workspaces))
	for _, ws := range workspaces {
		if !ws.LastModified.Before(cutoff) {
			kept = append(kept, ws)
		}
	}
	return kept
}

// readProjectPath reads the opened folder from workspace.json, falling back to storage.json
func readProjectPath(dir string) string {
	for _, name := range []string{"workspace.json", "storage.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			LogDebug("Ignoring unreadable %s in %s: %v", name, dir, err)
			continue
		}
		nested, _ := asObject(doc["workspace"])
		for _, folder := range []string{
			stringOr(doc, "folder", ""),
			stringOr(nested, "folder", ""),
			stringOr(doc, "workspaceFolder", ""),
		} {
			if folder != "" {
				return strings.TrimPrefix(folder, "file://")
			}
		}
	}
	return ""
}
