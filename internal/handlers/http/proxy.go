package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"net/url"
	"strings"

	apimock "github.com/kdv2001/apiMock/internal/clients/apimock/http"
	"github.com/kdv2001/apiMock/internal/pkg/logger"
)

// NewProxy создает reverse proxy на upstream, пропуская запросы через transport.
func NewProxy(upstream *url.URL, transport http.RoundTripper) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(upstream)
			r.SetXForwarded()
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Errorf(r.Context(), "proxy error for %s: %v", r.URL.RequestURI(), err)
			w.WriteHeader(http.StatusBadGateway)
		},
	}
}

// PageMiddleware сохраняет в контексте URL страницы, с которой пришел запрос.
// Без Referer страницей считается сам запрос.
func PageMiddleware() func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			page := r.Header.Get(Referer)
			if page == "" {
				page = r.URL.String()
			}

			next.ServeHTTP(w, r.WithContext(apimock.WithPage(r.Context(), page)))
		}

		return http.HandlerFunc(fn)
	}
}

// LocalFixtures отдает запросы под mockRoot обработчиком фикстур в процессе,
// остальные передает в next.
type LocalFixtures struct {
	mockRoot string
	fixtures http.Handler
	next     http.RoundTripper
}

var _ http.RoundTripper = (*LocalFixtures)(nil)

func NewLocalFixtures(mockRoot string, fixtures http.Handler, next http.RoundTripper) *LocalFixtures {
	if next == nil {
		next = http.DefaultTransport
	}

	return &LocalFixtures{
		mockRoot: strings.TrimSuffix(mockRoot, "/"),
		fixtures: fixtures,
		next:     next,
	}
}

func (l *LocalFixtures) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL == nil {
		return nil, errors.New("apimock: nil request URL")
	}
	if !strings.HasPrefix(req.URL.Path, l.mockRoot+"/") {
		return l.next.RoundTrip(req)
	}

	rec := httptest.NewRecorder()
	l.fixtures.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req

	return resp, nil
}
