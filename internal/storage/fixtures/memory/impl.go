// Package memory хранилище фикстур в памяти процесса.
package memory

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kdv2001/apiMock/internal/domain"
)

type Storage struct {
	mu       sync.RWMutex
	fixtures map[string]domain.Fixture
}

func NewStorage() *Storage {
	return &Storage{
		fixtures: make(map[string]domain.Fixture),
	}
}

// LoadFS загружает все файлы *.json из fsys, ключом служит путь относительно корня fsys.
func (s *Storage) LoadFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".json") {
			return nil
		}

		body, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read fixture %s: %w", p, err)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		s.mu.Lock()
		s.fixtures[p] = domain.Fixture{Path: p, Body: body, UpdatedAt: info.ModTime().UTC()}
		s.mu.Unlock()

		return nil
	})
}

func (s *Storage) Get(_ context.Context, path string) (domain.Fixture, error) {
	s.mu.RLock()
	f, ok := s.fixtures[normalize(path)]
	s.mu.RUnlock()
	if !ok {
		return domain.Fixture{}, domain.ErrNotFound
	}

	return f, nil
}

func (s *Storage) Put(_ context.Context, f domain.Fixture) error {
	f.Path = normalize(f.Path)
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.fixtures[f.Path] = f
	s.mu.Unlock()

	return nil
}

func (s *Storage) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	res := make([]string, 0, len(s.fixtures))
	for p := range s.fixtures {
		res = append(res, p)
	}
	s.mu.RUnlock()

	slices.Sort(res)

	return res, nil
}

func (s *Storage) Ping(_ context.Context) error {
	return nil
}

func normalize(path string) string {
	return strings.TrimLeft(path, "/")
}
