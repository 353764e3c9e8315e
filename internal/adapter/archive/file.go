package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
)

// FileStore keeps table copies as CSV files in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(table domain.Table) (string, error) {
	name, err := ObjectName(table)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Get reads the stored copy of table.
func (s *FileStore) Get(_ context.Context, table domain.Table) ([]byte, error) {
	p, err := s.path(table)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", p, err)
	}
	return data, nil
}

// Put replaces the stored copy of table. The write goes to a temporary file
// first so a reader never sees a partial table.
func (s *FileStore) Put(_ context.Context, table domain.Table, data []byte) error {
	p, err := s.path(table)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".archive-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replace archive %s: %w", p, err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
