// Package remote implements the named-file blob storage boundary the
// sync orchestrator uploads snapshots to. The remote store is a
// folder-scoped key/value API: files are found by name within a folder
// and addressed by id afterwards.
package remote

import (
	"context"
	"errors"
)

// ErrUnauthorized reports that the remote session is no longer valid.
// The caller must re-authenticate; requests are never retried with the
// same credentials.
var ErrUnauthorized = errors.New("remote session expired or unauthorized")

// BlobStore defines the remote storage operations the sync orchestrator
// needs. Implementations must not retry failed calls on their own:
// transient failures surface to the orchestrator untouched.
type BlobStore interface {
	// EnsureFolder returns the id of the named folder, creating it if
	// it does not exist.
	EnsureFolder(ctx context.Context, name string) (string, error)
	// FindFile returns the id of the named file within a folder, and
	// whether it exists.
	FindFile(ctx context.Context, folderID, name string) (string, bool, error)
	// CreateFile creates a named file under a folder and returns its id.
	CreateFile(ctx context.Context, folderID, name string, content []byte) (string, error)
	// UpdateFile replaces the content of an existing file.
	UpdateFile(ctx context.Context, fileID string, content []byte) error
	// FetchContent returns the raw content of a file.
	FetchContent(ctx context.Context, fileID string) ([]byte, error)
}
