package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/repository"
)

// PublicPrefix is the route under which LocalStore files are served.
const PublicPrefix = "/uploads"

// LocalStore keeps images in a single directory on disk.
type LocalStore struct {
	Dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) Driver() string { return "local" }

func (s *LocalStore) path(name string) (string, error) {
	if name == "" || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(s.Dir, name), nil
}

// Save writes r to Dir/name and returns /uploads/name. Existing files are never overwritten.
func (s *LocalStore) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	p, err := s.path(name)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return "", err
	}
	return PublicPrefix + "/" + name, nil
}

func (s *LocalStore) List(_ context.Context, prefix string) ([]entity.StoredImage, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]entity.StoredImage, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, entity.StoredImage{
			Name:      e.Name(),
			URL:       PublicPrefix + "/" + e.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	return out, nil
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

var _ repository.ImageStorage = (*LocalStore)(nil)
