// Package fixtures бизнес-логика хранения и выдачи фикстур.
package fixtures

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kdv2001/apiMock/internal/domain"
)

type fixtureStorage interface {
	Get(ctx context.Context, path string) (domain.Fixture, error)
	Put(ctx context.Context, f domain.Fixture) error
	List(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

type UseCases struct {
	storage fixtureStorage
}

func NewUseCases(storage fixtureStorage) *UseCases {
	return &UseCases{
		storage: storage,
	}
}

// GetFixture возвращает фикстуру по пути относительно корня фикстур.
func (uc *UseCases) GetFixture(ctx context.Context, path string) (domain.Fixture, error) {
	f, err := uc.storage.Get(ctx, path)
	if err != nil {
		return domain.Fixture{}, fmt.Errorf("error Get fixture %s: %w", path, err)
	}

	return f, nil
}

// PutFixture сохраняет фикстуру; тело должно быть корректным JSON.
func (uc *UseCases) PutFixture(ctx context.Context, f domain.Fixture) error {
	if strings.Trim(f.Path, "/") == "" {
		return fmt.Errorf("empty fixture path: %w", domain.ErrInvalidFixture)
	}
	if !gjson.ValidBytes(f.Body) {
		return domain.ErrInvalidFixture
	}

	if err := uc.storage.Put(ctx, f); err != nil {
		return fmt.Errorf("error Put fixture %s: %w", f.Path, err)
	}

	return nil
}

func (uc *UseCases) ListFixtures(ctx context.Context) ([]string, error) {
	return uc.storage.List(ctx)
}

func (uc *UseCases) Ping(ctx context.Context) error {
	return uc.storage.Ping(ctx)
}
