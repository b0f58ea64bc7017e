package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const cacheVersion = "2.0"

// CacheManager handles caching of reconstructed conversations, one file per workspace.
// It is safe for concurrent use.
type CacheManager struct {
	cacheDir string
	mu       sync.Mutex
}

// CacheMetadata stores metadata about the cache
type CacheMetadata struct {
	CacheVersion string    `yaml:"cache_version"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// WorkspaceIndexEntry records which database state a workspace's cache file reflects
type WorkspaceIndexEntry struct {
	Hash              string    `yaml:"hash"`
	ProjectPath       string    `yaml:"project_path,omitempty"`
	DatabasePath      string    `yaml:"database_path"`
	DatabaseModTime   time.Time `yaml:"database_mod_time"`
	ConversationCount int       `yaml:"conversation_count"`
	CachedAt          time.Time `yaml:"cached_at"`
}

// WorkspaceIndex represents the YAML index of all cached workspaces
type WorkspaceIndex struct {
	Workspaces map[string]WorkspaceIndexEntry `yaml:"workspaces"`
	Metadata   CacheMetadata                  `yaml:"metadata"`
}

// NewCacheManager creates a new cache manager
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{
		cacheDir: cacheDir,
	}
}

// DefaultCacheDir returns the per-user cache directory
func DefaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(dir, "cursor-history"), nil
}

// EnsureCacheDir ensures the cache directory exists
func (cm *CacheManager) EnsureCacheDir() error {
	return os.MkdirAll(cm.cacheDir, 0755)
}

// GetCacheDir returns the cache directory path
func (cm *CacheManager) GetCacheDir() string {
	return cm.cacheDir
}

// GetIndexPath returns the path to the workspace index YAML file
func (cm *CacheManager) GetIndexPath() string {
	return filepath.Join(cm.cacheDir, "workspaces.yaml")
}

// GetWorkspacePath returns the path to a workspace's cache file
func (cm *CacheManager) GetWorkspacePath(hash string) string {
	return filepath.Join(cm.cacheDir, fmt.Sprintf("workspace_%s.json", hash))
}

// IsCacheValid reports whether the cached conversations for ws match its database on disk
func (cm *CacheManager) IsCacheValid(ws Workspace) bool {
	cm.mu.Lock()
	index, err := cm.loadIndex()
	cm.mu.Unlock()
	if err != nil {
		return false
	}

	entry, ok := index.Workspaces[ws.Hash]
	if !ok || entry.DatabasePath != ws.DBPath() {
		return false
	}

	dbInfo, err := os.Stat(ws.DBPath())
	if err != nil {
		return false
	}
	return entry.DatabaseModTime.Equal(dbInfo.ModTime())
}

// Load returns the cached conversations for ws when the cache is still valid
func (cm *CacheManager) Load(ws Workspace) ([]Conversation, bool) {
	if !cm.IsCacheValid(ws) {
		return nil, false
	}

	data, err := os.ReadFile(cm.GetWorkspacePath(ws.Hash))
	if err != nil {
		return nil, false
	}
	var conversations []Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		LogDebug("Discarding unreadable cache for workspace %s: %v", ws.Hash, err)
		return nil, false
	}
	return conversations, true
}

// Save stores ws's conversations and records the database state they came from
func (cm *CacheManager) Save(ws Workspace, conversations []Conversation) error {
	dbInfo, err := os.Stat(ws.DBPath())
	if err != nil {
		return err
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(conversations, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversations: %w", err)
	}
	if err := os.WriteFile(cm.GetWorkspacePath(ws.Hash), data, 0644); err != nil {
		return err
	}

	index, err := cm.loadIndex()
	if err != nil {
		index = newWorkspaceIndex()
	}
	now := time.Now()
	index.Metadata.UpdatedAt = now
	index.Workspaces[ws.Hash] = WorkspaceIndexEntry{
		Hash:              ws.Hash,
		ProjectPath:       ws.ProjectPath,
		DatabasePath:      ws.DBPath(),
		DatabaseModTime:   dbInfo.ModTime(),
		ConversationCount: len(conversations),
		CachedAt:          now,
	}
	return cm.saveIndex(index)
}

// LoadIndex loads the workspace index
func (cm *CacheManager) LoadIndex() (*WorkspaceIndex, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.loadIndex()
}

// ClearCache clears the cache
func (cm *CacheManager) ClearCache() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	// Load index to get all workspace files
	if index, err := cm.loadIndex(); err == nil {
		for hash := range index.Workspaces {
			_ = os.Remove(cm.GetWorkspacePath(hash))
		}
	}

	if err := os.Remove(cm.GetIndexPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func newWorkspaceIndex() *WorkspaceIndex {
	now := time.Now()
	return &WorkspaceIndex{
		Workspaces: make(map[string]WorkspaceIndexEntry),
		Metadata: CacheMetadata{
			CacheVersion: cacheVersion,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}

func (cm *CacheManager) loadIndex() (*WorkspaceIndex, error) {
	data, err := os.ReadFile(cm.GetIndexPath())
	if err != nil {
		return nil, err
	}

	var index WorkspaceIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}
	if index.Metadata.CacheVersion != cacheVersion {
		return nil, fmt.Errorf("cache version %q is not %q", index.Metadata.CacheVersion, cacheVersion)
	}
	if index.Workspaces == nil {
		index.Workspaces = make(map[string]WorkspaceIndexEntry)
	}
	return &index, nil
}

func (cm *CacheManager) saveIndex(index *WorkspaceIndex) error {
	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	return os.WriteFile(cm.GetIndexPath(), data, 0644)
}
