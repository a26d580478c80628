package fixtures

import (
	"context"

	"github.com/kdv2001/apiMock/internal/domain"
)

type mockStorage struct {
	fixture domain.Fixture
	list    []string
	err     error

	put []domain.Fixture
}

func (m *mockStorage) Get(_ context.Context, _ string) (domain.Fixture, error) {
	return m.fixture, m.err
}

func (m *mockStorage) Put(_ context.Context, f domain.Fixture) error {
	if m.err != nil {
		return m.err
	}
	m.put = append(m.put, f)

	return nil
}

func (m *mockStorage) List(_ context.Context) ([]string, error) {
	return m.list, m.err
}

func (m *mockStorage) Ping(_ context.Context) error {
	return m.err
}
