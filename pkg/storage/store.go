package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/goliatone/go-exsave/internal/xmlnode"
	"github.com/spf13/afero"
)

// Store loads and saves whole XML documents addressed by path.
type Store interface {
	// Load returns ok=false with a nil error when nothing exists at path.
	Load(ctx context.Context, path string) (doc *etree.Document, ok bool, err error)
	Save(ctx context.Context, path string, doc *etree.Document) error
	// Delete returns ok=false with a nil error when nothing existed at path.
	Delete(ctx context.Context, path string) (ok bool, err error)
}

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// FileStore is a Store over an afero filesystem.
type FileStore struct {
	fs afero.Fs
}

// NewFileStore returns a store backed by fsys, or by the OS filesystem when
// fsys is nil.
func NewFileStore(fsys afero.Fs) *FileStore {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FileStore{fs: fsys}
}

// NewMemoryStore returns a store that never touches the disk. It is intended
// for tests and tooling.
func NewMemoryStore() *FileStore {
	return NewFileStore(afero.NewMemMapFs())
}

// Fs exposes the underlying filesystem.
func (s *FileStore) Fs() afero.Fs {
	return s.fs
}

// Load reads and parses path. A missing file reports ok == false.
func (s *FileStore) Load(ctx context.Context, path string) (*etree.Document, bool, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, false, err
	}
	data, err := afero.ReadFile(s.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: read %q: %w", path, err)
	}
	doc, err := xmlnode.Parse(data)
	if err != nil {
		return nil, false, fmt.Errorf("storage: load %q: %w", path, err)
	}
	return doc, true, nil
}

// Save encodes doc and writes it to path, creating parent directories.
func (s *FileStore) Save(ctx context.Context, path string, doc *etree.Document) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	data, err := xmlnode.Encode(doc)
	if err != nil {
		return fmt.Errorf("storage: save %q: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("storage: mkdir %q: %w", dir, err)
		}
	}
	if err := afero.WriteFile(s.fs, path, data, filePerm); err != nil {
		return fmt.Errorf("storage: write %q: %w", path, err)
	}
	return nil
}

// Delete removes path and reports whether it existed.
func (s *FileStore) Delete(ctx context.Context, path string) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	err := s.fs.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: delete %q: %w", path, err)
	}
	return true, nil
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}
