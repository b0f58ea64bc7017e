package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkspaceNotFound is returned when no workspace matches a hash
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrConversationNotFound is returned when no conversation matches an id
	ErrConversationNotFound = errors.New("conversation not found")
)

// StorageError represents errors accessing storage files
type StorageError struct {
	Path string
	Op   string // "open", "read", "query", "scan"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents a stored value that is not the JSON it should be
type ParseError struct {
	Source string // workspace database path
	Key    string // ItemTable key
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReconstructionError represents a workspace whose conversations could not be rebuilt
type ReconstructionError struct {
	Workspace string
	Err       error
}

func (e *ReconstructionError) Error() string {
	return fmt.Sprintf("reconstruction error [%s]: %v", e.Workspace, e.Err)
}

func (e *ReconstructionError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export error [%s]: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
