package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"barrabusiness/pkg/domain"
)

// FileStore persists the document as one JSON file on disk.
type FileStore struct {
	path string
}

// NewFileStore creates the parent directory if missing.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Load reads and decodes the file. A missing or corrupt file yields the
// empty document.
func (f *FileStore) Load(_ context.Context) (domain.Document, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.EmptyDocument(), nil
		}
		return domain.Document{}, fmt.Errorf("read store file: %w", err)
	}
	return decodeDocument(data), nil
}

// Save writes the document atomically (temp file + rename) so a crash
// mid-write never leaves a truncated document behind.
func (f *FileStore) Save(_ context.Context, doc domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".store-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close store file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
