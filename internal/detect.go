package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// StoragePaths holds the detected paths for Cursor storage
type StoragePaths struct {
	BasePath         string // Base Cursor User directory
	WorkspaceStorage string // workspaceStorage directory
}

// DetectStoragePaths detects the Cursor storage paths based on the operating system
func DetectStoragePaths() (StoragePaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return StoragePaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}
	return storagePathsFor(runtime.GOOS, home)
}

func storagePathsFor(goos, home string) (StoragePaths, error) {
	var basePath string
	switch goos {
	case "darwin":
		basePath = filepath.Join(home, "Library", "Application Support", "Cursor", "User")
	case "windows":
		basePath = filepath.Join(home, "AppData", "Roaming", "Cursor", "User")
	case "linux":
		basePath = filepath.Join(home, ".config", "Cursor", "User")
	default:
		return StoragePaths{}, fmt.Errorf("unsupported OS: %s", goos)
	}

	return StoragePaths{
		BasePath:         basePath,
		WorkspaceStorage: filepath.Join(basePath, "workspaceStorage"),
	}, nil
}

// Exists checks if the workspaceStorage directory exists
func (sp StoragePaths) Exists() bool {
	info, err := os.Stat(sp.WorkspaceStorage)
	return err == nil && info.IsDir()
}
