package http

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kdv2001/apiMock/internal/domain"
	"github.com/kdv2001/apiMock/internal/pkg/logger"
	"github.com/kdv2001/apiMock/internal/usecases/reroute"
)

const (
	defaultAPIPath  = "/api/pokemon"
	defaultMockPath = "/mock_data/pokemon.get.json"
)

func defaultRoutes() map[string]mockRoute {
	return map[string]mockRoute{
		"GET " + defaultMockPath: {status: http.StatusOK, body: `{"name":"pikachu"}`},
	}
}

func newLocation(t *testing.T, pageURL string) *MutableLocation {
	t.Helper()

	return NewLocation(pageURL)
}

func commandPtr(c domain.Command) *domain.Command {
	return &c
}

func doRequest(t *testing.T, c *Client, r *Request) (*http.Response, error) {
	t.Helper()
	resp, err := c.Do(context.Background(), r)
	if resp != nil {
		t.Cleanup(func() {
			_ = resp.Body.Close()
		})
	}

	return resp, err
}

func TestClient_FlagDetection(t *testing.T) {
	t.Parallel()
	for _, key := range []string{"apimock", "apiMock", "APIMOCK", "ApImOcK", "ApiMock"} {
		t.Run(key, func(t *testing.T) {
			t.Parallel()
			backend := newHTTPClientMock(defaultRoutes())
			c := NewClient(backend, WithLocation(newLocation(t, "/page?"+key+"=true")))

			_, err := doRequest(t, c, &Request{Method: http.MethodGet, URL: defaultAPIPath})
			require.NoError(t, err)
			assert.Equal(t, []string{"GET " + defaultMockPath}, backend.calls())
		})
	}
}

func TestClient_Commands(t *testing.T) {
	t.Parallel()
	type expected struct {
		calls  []string
		status int
	}
	tests := []struct {
		name     string
		page     string
		request  Request
		expected expected
	}{
		{
			name:     "no flag does regular call",
			page:     "/page",
			request:  Request{Method: http.MethodGet, URL: defaultAPIPath},
			expected: expected{calls: []string{"GET " + defaultAPIPath}, status: http.StatusNotFound},
		},
		{
			name:     "global flag only",
			page:     "/page?apiMock=true",
			request:  Request{Method: http.MethodGet, URL: defaultAPIPath},
			expected: expected{calls: []string{"GET " + defaultMockPath}, status: http.StatusOK},
		},
		{
			name:     "local flag only",
			page:     "/page",
			request:  Request{Method: http.MethodGet, URL: defaultAPIPath, Mock: commandPtr(domain.On())},
			expected: expected{calls: []string{"GET " + defaultMockPath}, status: http.StatusOK},
		},
		{
			name:     "local flag overrides global flag",
			page:     "/page?apiMock=false",
			request:  Request{Method: http.MethodGet, URL: defaultAPIPath, Mock: commandPtr(domain.On())},
			expected: expected{calls: []string{"GET " + defaultMockPath}, status: http.StatusOK},
		},
		{
			name:     "ignores query in url with slash",
			page:     "/page?apiMock=true",
			request:  Request{Method: http.MethodGet, URL: "/api/pokemon/?name=Pikachu"},
			expected: expected{calls: []string{"GET " + defaultMockPath}, status: http.StatusOK},
		},
		{
			name:     "ignores query in url",
			page:     "/page?apiMock=true",
			request:  Request{Method: http.MethodGet, URL: "/api/pokemon?name=Pikachu"},
			expected: expected{calls: []string{"GET " + defaultMockPath}, status: http.StatusOK},
		},
		{
			name:     "ignores params",
			page:     "/page?apiMock=true",
			request:  Request{Method: http.MethodGet, URL: defaultAPIPath, Params: map[string]string{"name": "Pikachu"}},
			expected: expected{calls: []string{"GET " + defaultMockPath}, status: http.StatusOK},
		},
		{
			name:     "ignores body",
			page:     "/page?apiMock=true",
			request:  Request{Method: http.MethodGet, URL: defaultAPIPath, Body: strings.NewReader(`{"name":"Pikachu"}`)},
			expected: expected{calls: []string{"GET " + defaultMockPath}, status: http.StatusOK},
		},
		{
			name:     "invalid api path is not mocked",
			page:     "/page?apiMock=true",
			request:  Request{Method: http.MethodGet, URL: "/something/pikachu"},
			expected: expected{calls: []string{"GET /something/pikachu"}, status: http.StatusNotFound},
		},
		{
			name:     "api not at the beginning of path is not mocked",
			page:     "/page?apiMock=true",
			request:  Request{Method: http.MethodGet, URL: "/wrong/api/pikachu"},
			expected: expected{calls: []string{"GET /wrong/api/pikachu"}, status: http.StatusNotFound},
		},
		{
			name:     "auto recovers from failure",
			page:     "/page?apiMock=auto",
			request:  Request{Method: http.MethodGet, URL: defaultAPIPath},
			expected: expected{calls: []string{"GET " + defaultAPIPath, "GET " + defaultMockPath}, status: http.StatusOK},
		},
		{
			name:     "auto cannot recover invalid api path",
			page:     "/page?apiMock=auto",
			request:  Request{Method: http.MethodGet, URL: "/something/people/pokemon"},
			expected: expected{calls: []string{"GET /something/people/pokemon"}, status: http.StatusNotFound},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			backend := newHTTPClientMock(defaultRoutes())
			c := NewClient(backend, WithLocation(newLocation(t, tt.page)))

			resp, err := doRequest(t, c, &tt.request)
			switch tt.expected.status {
			case http.StatusOK:
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			default:
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.expected.status, statusErr.StatusCode)
			}
			assert.Equal(t, tt.expected.calls, backend.calls())
			assert.Zero(t, c.PendingFallbacks())
		})
	}
}

func TestClient_RerouteAllVerbs(t *testing.T) {
	t.Parallel()
	for _, verb := range []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodPut} {
		t.Run(verb, func(t *testing.T) {
			t.Parallel()
			fixture := "/mock_data/pokemon." + strings.ToLower(verb) + ".json"
			backend := newHTTPClientMock(map[string]mockRoute{
				"GET " + fixture: {status: http.StatusOK, body: `{}`},
			})
			c := NewClient(backend, WithLocation(newLocation(t, "/?apiMock=true")))

			_, err := doRequest(t, c, &Request{
				Method: verb,
				URL:    defaultAPIPath,
				Header: http.Header{"Content-Type": {"application/json"}},
				Body:   strings.NewReader(`{"name":"pikachu"}`),
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"GET " + fixture}, backend.calls())

			req := backend.requests[0]
			assert.Empty(t, req.Header.Get("Content-Type"))
			assert.Zero(t, req.ContentLength)
		})
	}
}

func TestClient_FalsyOverridesBehaveAsUsual(t *testing.T) {
	t.Parallel()
	values := []any{false, "", 0, math.NaN(), nil}
	for _, v := range values {
		backend := newHTTPClientMock(defaultRoutes())
		c := NewClient(backend, WithLocation(newLocation(t, "/page")))

		override := domain.CommandFromValue(v)
		_, err := doRequest(t, c, &Request{Method: http.MethodGet, URL: defaultAPIPath, Mock: &override})

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr, "value %v", v)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Equal(t, []string{"GET " + defaultAPIPath}, backend.calls())
	}
}

// Явное off в запросе отключает мокирование даже при глобальном on.
func TestClient_ExplicitOffOverridesGlobal(t *testing.T) {
	t.Parallel()
	for _, page := range []string{"/page?apiMock=true", "/page?apiMock=auto", "/page?apiMock=404"} {
		backend := newHTTPClientMock(defaultRoutes())
		c := NewClient(backend, WithLocation(newLocation(t, page)))

		_, err := doRequest(t, c, &Request{Method: http.MethodGet, URL: defaultAPIPath, Mock: commandPtr(domain.Off())})

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr, page)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Equal(t, []string{"GET " + defaultAPIPath}, backend.calls(), page)
	}
}

func TestClient_StatusOverride(t *testing.T) {
	t.Parallel()
	for _, code := range []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError} {
		backend := newHTTPClientMock(defaultRoutes())
		c := NewClient(backend, WithLocation(newLocation(t, "/page?apiMock=404")))

		_, err := doRequest(t, c, &Request{Method: http.MethodGet, URL: defaultAPIPath, Mock: commandPtr(domain.Status(code))})

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, code, statusErr.StatusCode)
		assert.Empty(t, backend.calls(), "status override must not touch the transport")
		assert.Zero(t, c.PendingFallbacks())
	}
}

func TestClient_StatusOverrideHeaders(t *testing.T) {
	t.Parallel()
	backend := newHTTPClientMock(defaultRoutes())
	c := NewClient(backend, WithLocation(newLocation(t, "/page?apiMock=404")))

	_, err := doRequest(t, c, &Request{Method: http.MethodGet, URL: defaultAPIPath})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", statusErr.Header.Get("Content-Type"))
	assert.Equal(t, ServerName, statusErr.Header.Get("Server"))
	assert.Empty(t, statusErr.Body)
}

func TestClient_Disabled(t *testing.T) {
	t.Parallel()
	for _, command := range []string{"true", "auto"} {
		cfg := domain.NewModuleConfig()
		cfg.Disabled = true
		backend := newHTTPClientMock(defaultRoutes())
		c := NewClient(backend,
			WithModuleConfig(cfg),
			WithLocation(newLocation(t, "/page?apiMock="+command)),
		)

		_, err := doRequest(t, c, &Request{Method: http.MethodGet, URL: defaultAPIPath, Mock: commandPtr(domain.On())})

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, []string{"GET " + defaultAPIPath}, backend.calls())
	}
}

func TestClient_QueryParams(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		request Request
		want    string
	}{
		{
			name:    "simple path without query params",
			request: Request{URL: defaultAPIPath},
			want:    defaultMockPath,
		},
		{
			name:    "still ignores body",
			request: Request{Method: http.MethodPost, URL: defaultAPIPath, Body: strings.NewReader(`{"moves":["Volt Tackle"]}`)},
			want:    "/mock_data/pokemon.post.json",
		},
		{
			name:    "query in url with slash",
			request: Request{URL: "/api/pokemon/?name=pikachu"},
			want:    "/mock_data/pokemon/name=pikachu.get.json",
		},
		{
			name:    "query in url",
			request: Request{URL: "/api/pokemon?name=pikachu"},
			want:    "/mock_data/pokemon/name=pikachu.get.json",
		},
		{
			name:    "sorts query in url",
			request: Request{URL: "/api/pokemon?strength=electricity&name=pikachu"},
			want:    "/mock_data/pokemon/name=pikachu&strength=electricity.get.json",
		},
		{
			name:    "params",
			request: Request{URL: defaultAPIPath, Params: map[string]string{"strength": "electricity", "name": "pikachu"}},
			want:    "/mock_data/pokemon/name=pikachu&strength=electricity.get.json",
		},
		{
			name:    "mix of params and url query",
			request: Request{URL: "/api/pokemon?strength=electricity&hp=150", Params: map[string]string{"name": "pikachu"}},
			want:    "/mock_data/pokemon/hp=150&name=pikachu&strength=electricity.get.json",
		},
		{
			name:    "params win over url query",
			request: Request{URL: "/api/pokemon?NAME=raichu", Params: map[string]string{"name": "pikachu"}},
			want:    "/mock_data/pokemon/name=pikachu.get.json",
		},
		{
			name:    "decodes and re-encodes characters",
			request: Request{URL: "/api/pokemon?lang=sl&name=pika%C4%8Du"},
			want:    "/mock_data/pokemon/lang=sl&name=pika%C4%8Du.get.json",
		},
		{
			name:    "lowercases",
			request: Request{URL: "/api/pokemon?NAME=PIKACHU"},
			want:    "/mock_data/pokemon/name=pikachu.get.json",
		},
		{
			name:    "space in params",
			request: Request{URL: defaultAPIPath, Params: map[string]string{"name": "mr mime"}},
			want:    "/mock_data/pokemon/name=mr%20mime.get.json",
		},
		{
			name:    "space in url next to params",
			request: Request{URL: "/api/pokemon?name=mr%20mime", Params: map[string]string{"hp": "90"}},
			want:    "/mock_data/pokemon/hp=90&name=mr%20mime.get.json",
		},
		{
			name:    "malformed segment skipped with params",
			request: Request{URL: "/api/pokemon?a=b=c", Params: map[string]string{"name": "x"}},
			want:    "/mock_data/pokemon/name=x.get.json",
		},
		{
			name:    "malformed segment skipped without params",
			request: Request{URL: "/api/pokemon?a=b=c"},
			want:    defaultMockPath,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := domain.NewModuleConfig()
			cfg.StripQueries = false
			backend := newHTTPClientMock(map[string]mockRoute{
				"GET " + tt.want: {status: http.StatusOK, body: `{}`},
			})
			c := NewClient(backend, WithModuleConfig(cfg), WithLocation(newLocation(t, "/?apiMock=true")))

			_, err := doRequest(t, c, &tt.request)
			require.NoError(t, err)
			assert.Equal(t, []string{"GET " + tt.want}, backend.calls())
		})
	}
}

func TestClient_QueryParamsMatchFixturePath(t *testing.T) {
	t.Parallel()
	cfg := domain.NewModuleConfig()
	cfg.StripQueries = false
	tests := []struct {
		url    string
		params map[string]string
	}{
		{url: defaultAPIPath, params: map[string]string{"name": "mr mime"}},
		{url: "/api/pokemon?a=b=c&lang=sl", params: map[string]string{"name": "pikaču"}},
		{url: "/api/pokemon?q=1+2", params: map[string]string{"Q": "3"}},
	}
	for _, tt := range tests {
		want := reroute.BuildFixturePath(cfg, http.MethodGet, tt.url,
			reroute.NormalizeQuery(tt.url, tt.params, cfg.StripQueries))

		backend := newHTTPClientMock(map[string]mockRoute{
			"GET " + want: {status: http.StatusOK, body: `{}`},
		})
		c := NewClient(backend, WithModuleConfig(cfg), WithLocation(newLocation(t, "/?apiMock=true")))

		_, err := doRequest(t, c, &Request{URL: tt.url, Params: tt.params})
		require.NoError(t, err, tt.url)
		assert.Equal(t, []string{"GET " + want}, backend.calls())
	}
}

func TestClient_SetModuleConfig(t *testing.T) {
	t.Parallel()
	backend := newHTTPClientMock(defaultRoutes())
	c := NewClient(backend, WithLocation(newLocation(t, "/?apiMock=true")))

	cfg := domain.NewModuleConfig()
	cfg.Disabled = true
	c.SetModuleConfig(cfg)
	_, err := doRequest(t, c, &Request{URL: defaultAPIPath})
	require.Error(t, err)

	c.SetModuleConfig(domain.NewModuleConfig())
	_, err = doRequest(t, c, &Request{URL: defaultAPIPath})
	require.NoError(t, err)

	assert.Equal(t, []string{"GET " + defaultAPIPath, "GET " + defaultMockPath}, backend.calls())
}

func TestClient_AutoFixtureFailureIsFinal(t *testing.T) {
	t.Parallel()
	backend := newHTTPClientMock(map[string]mockRoute{
		"GET " + defaultMockPath: {status: http.StatusNotFound},
	})
	c := NewClient(backend, WithLocation(newLocation(t, "/?apiMock=auto")))

	_, err := doRequest(t, c, &Request{URL: defaultAPIPath})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, []string{"GET " + defaultAPIPath, "GET " + defaultMockPath}, backend.calls())
}

func TestClient_AutoRecoversFromTransportError(t *testing.T) {
	t.Parallel()
	backend := newHTTPClientMock(map[string]mockRoute{
		"GET " + defaultAPIPath:  {err: errors.New("connection refused")},
		"GET " + defaultMockPath: {status: http.StatusOK, body: `{"name":"pikachu"}`},
	})
	c := NewClient(backend, WithLocation(newLocation(t, "/?apiMock=auto")))

	resp, err := doRequest(t, c, &Request{URL: defaultAPIPath})
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"pikachu"}`, string(body))
}

func TestClient_TransportErrorPropagates(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("connection refused")
	backend := newHTTPClientMock(map[string]mockRoute{
		"GET " + defaultAPIPath: {err: wantErr},
	})
	c := NewClient(backend, WithLocation(newLocation(t, "/page")))

	_, err := doRequest(t, c, &Request{URL: defaultAPIPath})
	assert.ErrorIs(t, err, wantErr)
}

func TestClient_PendingFallbacksDuringRecovery(t *testing.T) {
	t.Parallel()
	backend := newHTTPClientMock(defaultRoutes())
	c := NewClient(backend, WithLocation(newLocation(t, "/?apiMock=auto")))

	var during atomic.Int64
	backend.onDo = func(req *http.Request) {
		if req.URL.Path == defaultMockPath {
			during.Store(c.PendingFallbacks())
		}
	}

	_, err := doRequest(t, c, &Request{URL: defaultAPIPath})
	require.NoError(t, err)
	assert.Equal(t, int64(1), during.Load())
	assert.Zero(t, c.PendingFallbacks())
}

func TestClient_Logging(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		page    string
		want    string
		wantErr bool
	}{
		{name: "command true", page: "/?apiMock=true", want: "apiMock: rerouting /api/pokemon to /mock_data/pokemon.get.json"},
		{name: "command auto", page: "/?apiMock=auto", want: "apiMock: recovering from failure at /api/pokemon"},
		{name: "command status", page: "/?apiMock=404", want: "apiMock: mocking HTTP status to 404", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			core, logs := observer.New(zapcore.InfoLevel)
			ctx := logger.ToContext(context.Background(), zap.New(core).Sugar())
			c := NewClient(newHTTPClientMock(defaultRoutes()), WithLocation(newLocation(t, tt.page)))

			resp, err := c.Do(ctx, &Request{URL: defaultAPIPath})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				_ = resp.Body.Close()
			}

			require.NotZero(t, logs.Len())
			assert.Equal(t, tt.want, logs.All()[0].Message)
		})
	}
}

func TestClient_InjectedLogger(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.InfoLevel)
	c := NewClient(newHTTPClientMock(defaultRoutes()),
		WithLocation(newLocation(t, "/?apiMock=true")),
		WithLogger(zap.New(core).Sugar()),
	)

	_, err := doRequest(t, c, &Request{URL: defaultAPIPath})
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "apiMock: rerouting /api/pokemon to /mock_data/pokemon.get.json", logs.All()[0].Message)
}

func TestClient_Go(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	backend := newHTTPClientMock(defaultRoutes())
	backend.onDo = func(*http.Request) {
		<-release
	}
	c := NewClient(backend, WithLocation(newLocation(t, "/?apiMock=true")))

	res := c.Go(context.Background(), &Request{URL: defaultAPIPath})
	select {
	case <-res:
		t.Fatal("result delivered before the underlying call completed")
	default:
	}

	close(release)
	r := <-res
	require.NoError(t, r.Err)
	defer r.Response.Body.Close()
	assert.Equal(t, http.StatusOK, r.Response.StatusCode)
}

func TestClient_BadURL(t *testing.T) {
	t.Parallel()
	c := NewClient(newHTTPClientMock(nil))

	_, err := c.Do(context.Background(), &Request{URL: "http://[::1"})
	assert.Error(t, err)
}
