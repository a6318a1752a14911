package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileMedium keeps the collection in a single JSON file.
// Writes go to a temp file in the same directory which is synced and renamed over
// the target, so readers see either the old or the new collection.
type FileMedium struct {
	path string
}

func NewFileMedium(path string) (*FileMedium, error) {
	if path == "" {
		return nil, errors.New("file medium: path is required")
	}
	return &FileMedium{path: path}, nil
}

func (m *FileMedium) Path() string { return m.path }

func (m *FileMedium) Init(_ context.Context, empty []byte) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	_, err := os.Stat(m.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return m.write(empty)
}

func (m *FileMedium) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMissing
	}
	return data, err
}

func (m *FileMedium) Save(_ context.Context, data []byte) error {
	return m.write(data)
}

func (m *FileMedium) Close() error { return nil }

func (m *FileMedium) write(data []byte) error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(m.path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
