// Package localstore provides a keyed local JSON document store.
// Each logical collection is persisted as one document so collections
// can be read and written independently.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CorruptStateError reports an unparseable local document. Callers are
// expected to recover by falling back to an empty collection.
type CorruptStateError struct {
	Key string
	Err error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt local document %q: %v", e.Key, e.Err)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

// Store reads and writes JSON documents under a root directory,
// one file per key.
type Store struct {
	rootDir string
}

func New(rootDir string) *Store {
	return &Store{
		rootDir: rootDir,
	}
}

func (s *Store) filePath(key string) string {
	return filepath.Join(s.rootDir, key+".json")
}

// Read decodes the document stored under key into v.
// It returns false if no document exists for the key.
func (s *Store) Read(key string, v any) (bool, error) {
	contents, err := os.ReadFile(s.filePath(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("os.ReadFile(%s) > %w", key, err)
	}

	if err := json.Unmarshal(contents, v); err != nil {
		return false, &CorruptStateError{Key: key, Err: err}
	}
	return true, nil
}

// Write encodes v and stores it under key, replacing any previous document.
// The document is written to a temporary file first and renamed into place.
func (s *Store) Write(key string, v any) error {
	if err := os.MkdirAll(s.rootDir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", s.rootDir, err)
	}

	contents, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.Marshal(%s) > %w", key, err)
	}

	tmpPath := s.filePath(key) + ".tmp"
	if err := os.WriteFile(tmpPath, contents, 0o644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.filePath(key)); err != nil {
		return fmt.Errorf("os.Rename(%s) > %w", key, err)
	}
	return nil
}
