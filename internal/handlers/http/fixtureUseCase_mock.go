package http

import (
	"context"
	"slices"
	"sync"

	"github.com/kdv2001/apiMock/internal/domain"
)

type fixtureUseCaseMock struct {
	mu       sync.Mutex
	fixtures map[string]domain.Fixture
	putErr   error
	pingErr  error
}

func newFixtureUseCaseMock(fixtures ...domain.Fixture) *fixtureUseCaseMock {
	m := &fixtureUseCaseMock{fixtures: make(map[string]domain.Fixture)}
	for _, f := range fixtures {
		m.fixtures[f.Path] = f
	}

	return m
}

func (m *fixtureUseCaseMock) GetFixture(_ context.Context, path string) (domain.Fixture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.fixtures[path]
	if !ok {
		return domain.Fixture{}, domain.ErrNotFound
	}

	return f, nil
}

func (m *fixtureUseCaseMock) PutFixture(_ context.Context, f domain.Fixture) error {
	if m.putErr != nil {
		return m.putErr
	}

	m.mu.Lock()
	m.fixtures[f.Path] = f
	m.mu.Unlock()

	return nil
}

func (m *fixtureUseCaseMock) ListFixtures(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]string, 0, len(m.fixtures))
	for p := range m.fixtures {
		res = append(res, p)
	}
	slices.Sort(res)

	return res, nil
}

func (m *fixtureUseCaseMock) Ping(_ context.Context) error {
	return m.pingErr
}
