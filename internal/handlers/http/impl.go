package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/kdv2001/apiMock/internal/domain"
	"github.com/kdv2001/apiMock/internal/pkg/logger"
)

type useCases interface {
	GetFixture(ctx context.Context, path string) (domain.Fixture, error)
	PutFixture(ctx context.Context, f domain.Fixture) error
	ListFixtures(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

type Handlers struct {
	fixtureUseCases useCases
}

func NewHandlers(useCases useCases) *Handlers {
	return &Handlers{
		fixtureUseCases: useCases,
	}
}

// maxFixtureSize ограничение на размер загружаемой фикстуры
const maxFixtureSize = 10 << 20

// ServeFixture обработчик выдачи фикстуры
//
//	@Summary	Получить фикстуру
//	@Tags		fixtures
//	@Produce	json
//	@Param		path	path	string	true	"путь фикстуры относительно корня"
//	@Success	200
//	@Failure	404	{string}	string
//	@Router		/mock_data/{path} [get]
//	@Router		/mock_data/{path} [head]
func (h *Handlers) ServeFixture(w http.ResponseWriter, r *http.Request) {
	path, err := fixturePath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := h.fixtureUseCases.GetFixture(r.Context(), path)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set(ContentType, ApplicationJSON)
	if !f.UpdatedAt.IsZero() {
		w.Header().Set(LastModified, f.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}

	if _, err = w.Write(f.Body); err != nil {
		logger.Errorf(r.Context(), "failed to write fixture %s: %v", path, err)
	}
}

// PutFixture обработчик загрузки фикстуры
//
//	@Summary	Сохранить фикстуру
//	@Tags		fixtures
//	@Accept		json
//	@Param		path	path	string	true	"путь фикстуры относительно корня"
//	@Success	204
//	@Failure	400	{string}	string
//	@Router		/mock_data/{path} [put]
func (h *Handlers) PutFixture(w http.ResponseWriter, r *http.Request) {
	path, err := fixturePath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxFixtureSize))
	if err != nil {
		http.Error(w, fmt.Sprintf("Error reading body: %v", err), http.StatusBadRequest)
		return
	}

	err = h.fixtureUseCases.PutFixture(r.Context(), domain.Fixture{
		Path: path,
		Body: body,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Infof(r.Context(), "fixture %s stored, %d bytes", path, len(body))
	w.WriteHeader(http.StatusNoContent)
}

// ListFixtures обработчик получения списка фикстур
//
//	@Summary	Список фикстур
//	@Tags		fixtures
//	@Produce	json
//	@Success	200	{array}	string
//	@Router		/fixtures [get]
func (h *Handlers) ListFixtures(w http.ResponseWriter, r *http.Request) {
	paths, err := h.fixtureUseCases.ListFixtures(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if paths == nil {
		paths = []string{}
	}

	b, err := json.Marshal(paths)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set(ContentType, ApplicationJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// GetPing проверка доступности хранилища
//
//	@Summary	Проверка хранилища
//	@Tags		health
//	@Success	200
//	@Failure	500
//	@Router		/ping [get]
func (h *Handlers) GetPing(w http.ResponseWriter, r *http.Request) {
	err := h.fixtureUseCases.Ping(r.Context())
	if err != nil {
		logger.Errorf(r.Context(), "ping failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// fixturePath возвращает декодированный путь фикстуры относительно корня.
// chi маршрутизирует по RawPath, если он есть, поэтому параметр может быть экранирован.
func fixturePath(r *http.Request) (string, error) {
	path := chi.URLParam(r, FixturePathKey)
	if r.URL.RawPath == "" {
		return path, nil
	}

	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return "", fmt.Errorf("bad fixture path %q: %w", path, err)
	}

	return unescaped, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrResourceIsLocked):
		w.WriteHeader(http.StatusLocked)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidFixture):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
