package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	// регистрирует swagger описание сервера
	_ "github.com/kdv2001/apiMock/internal/handlers/http/docs"
)

// RouterConfig параметры маршрутизации сервера фикстур.
type RouterConfig struct {
	MockRoot      string
	APIPathPrefix string
	// Proxy обработчик запросов к API; nil отключает проксирование.
	Proxy http.Handler
}

// NewRouter собирает chi роутер сервера фикстур.
func NewRouter(h *Handlers, cfg RouterConfig, sugarLogger *zap.SugaredLogger) chi.Router {
	r := chi.NewRouter()
	r.Use(
		RequestIDMiddleware(),
		AddLoggerToContextMiddleware(sugarLogger),
		RequestMiddleware(),
		ResponseMiddleware(),
	)

	r.Route(strings.TrimSuffix(cfg.MockRoot, "/"), h.fixtureRoutes)
	r.Get("/fixtures", h.ListFixtures)
	r.Get("/ping", h.GetPing)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if cfg.Proxy != nil {
		prefix := "/" + strings.Trim(cfg.APIPathPrefix, "/")
		r.With(PageMiddleware()).Handle(prefix+"/*", cfg.Proxy)
	}

	return r
}

// FixtureHandler обработчик только маршрутов фикстур, для LocalFixtures.
func FixtureHandler(h *Handlers, mockRoot string) http.Handler {
	r := chi.NewRouter()
	r.Route(strings.TrimSuffix(mockRoot, "/"), h.fixtureRoutes)

	return r
}

func (h *Handlers) fixtureRoutes(r chi.Router) {
	r.With(CompressMiddleware(GetDefaultAcceptedEncodingData())).
		Get("/"+FixturePathKey, h.ServeFixture)
	r.Head("/"+FixturePathKey, h.ServeFixture)
	r.With(DecompressMiddleware()).
		Put("/"+FixturePathKey, h.PutFixture)
}
