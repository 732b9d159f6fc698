// Package file keeps drafts and catalogs on the local filesystem.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"esg-assessment-service/internal/domain"
)

// DraftStore writes one JSON file per draft key under dir.
type DraftStore struct {
	dir string
}

// NewDraftStore creates dir if needed.
func NewDraftStore(dir string) (*DraftStore, error) {
	if dir == "" {
		return nil, errors.New("draft directory not configured")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create draft directory: %w", err)
	}
	return &DraftStore{dir: dir}, nil
}

func (s *DraftStore) GetDraft(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	return data, nil
}

func (s *DraftStore) SetDraft(_ context.Context, key string, data []byte) error {
	return atomicWriteFile(s.path(key), data, 0o600)
}

func (s *DraftStore) RemoveDraft(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove draft: %w", err)
	}
	return nil
}

// path escapes the key so session IDs can't leave dir.
func (s *DraftStore) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".json")
}
