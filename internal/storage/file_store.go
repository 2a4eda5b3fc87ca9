package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/fsutil"
)

// fileStore keeps the marker as a small JSON file.
type fileStore struct {
	path string
}

func newFileStore(path string) *fileStore {
	return &fileStore{path: path}
}

func (f *fileStore) Close() error { return nil }

func (f *fileStore) LoadMarker(ctx context.Context) (domain.Marker, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Marker{}, false, err
	}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Marker{}, false, nil
	}
	if err != nil {
		return domain.Marker{}, false, fmt.Errorf("read marker file: %w", err)
	}
	m, err := decodeMarker(raw)
	if err != nil {
		return domain.Marker{}, false, err
	}
	return m, true, nil
}

func (f *fileStore) SaveMarker(ctx context.Context, m domain.Marker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := encodeMarker(m)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create marker directory: %w", err)
		}
	}
	if err := fsutil.WriteFileAtomic(f.path, raw, 0o644); err != nil {
		return fmt.Errorf("write marker file: %w", err)
	}
	return nil
}
