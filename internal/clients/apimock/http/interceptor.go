// Package http перехватывает исходящие HTTP запросы и перенаправляет их на статические фикстуры.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kdv2001/apiMock/internal/domain"
	"github.com/kdv2001/apiMock/internal/pkg/logger"
	"github.com/kdv2001/apiMock/internal/usecases/reroute"
)

// ServerName значение заголовка Server в синтетических ответах.
const ServerName = "Go ApiMock"

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type interceptor struct {
	client   httpClient
	cfg      atomic.Pointer[domain.ModuleConfig]
	location Location
	log      *zap.SugaredLogger

	// pending число запущенных и еще не завершенных обращений к фикстуре в режиме auto
	pending atomic.Int64
}

// Option опция перехватчика
type Option func(i *interceptor)

// WithModuleConfig задает конфигурацию модуля.
func WithModuleConfig(cfg domain.ModuleConfig) Option {
	return func(i *interceptor) {
		i.setConfig(cfg)
	}
}

// WithLocation задает источник глобальной команды.
func WithLocation(loc Location) Option {
	return func(i *interceptor) {
		i.location = loc
	}
}

// WithLogger задает logger для запросов, в контексте которых logger'а нет.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(i *interceptor) {
		i.log = l
	}
}

func newInterceptor(client httpClient, opts ...Option) *interceptor {
	i := &interceptor{
		client:   client,
		location: LocationFunc(func(context.Context) url.Values { return url.Values{} }),
	}
	i.setConfig(domain.NewModuleConfig())

	for _, opt := range opts {
		opt(i)
	}

	return i
}

func (i *interceptor) setConfig(cfg domain.ModuleConfig) {
	cfg = cfg.WithDefaults()
	i.cfg.Store(&cfg)
}

func (i *interceptor) config() domain.ModuleConfig {
	return *i.cfg.Load()
}

func (i *interceptor) intercept(req *http.Request) (*http.Response, error) {
	resp, _, err := i.do(req)
	return resp, err
}

// do обрабатывает запрос; synthetic означает, что ответ синтезирован без обращения к сети.
func (i *interceptor) do(req *http.Request) (resp *http.Response, synthetic bool, err error) {
	ctx := req.Context()
	cfg := i.config()

	global := domain.Off()
	if !cfg.Disabled {
		global, _ = reroute.GlobalCommand(i.location.Search(ctx), cfg.FlagName)
	}

	d := reroute.Decide(cfg, reroute.Input{
		Method:   req.Method,
		URL:      req.URL.String(),
		Override: CommandFromContext(ctx),
	}, global)

	switch d.Action {
	case reroute.ActionReroute:
		i.infof(ctx, "apiMock: rerouting %s to %s", req.URL.RequestURI(), d.FixturePath)
		closeBody(req)
		resp, err = i.client.Do(fixtureRequest(req, d.FixturePath))
		return resp, false, err
	case reroute.ActionRespond:
		i.infof(ctx, "apiMock: mocking HTTP status to %d", d.Command.Status)
		closeBody(req)
		return statusResponse(req, d.Command.Status), true, nil
	case reroute.ActionRecover:
		resp, err = i.recoverFrom(req, d.FixturePath)
		return resp, false, err
	}

	resp, err = i.client.Do(req)
	return resp, false, err
}

// recoverFrom выполняет реальный запрос и при ошибке один раз обращается к фикстуре.
// Ошибка обращения к фикстуре возвращается как есть.
func (i *interceptor) recoverFrom(req *http.Request, fixturePath string) (*http.Response, error) {
	resp, err := i.client.Do(req)
	if err == nil && !isFailure(resp) {
		return resp, nil
	}
	if resp != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}

	i.pending.Add(1)
	defer i.pending.Add(-1)

	i.infof(req.Context(), "apiMock: recovering from failure at %s", req.URL.RequestURI())
	return i.client.Do(fixtureRequest(req, fixturePath))
}

func (i *interceptor) infof(ctx context.Context, format string, args ...any) {
	if i.log != nil && !logger.InContext(ctx) {
		i.log.Infof(format, args...)
		return
	}

	logger.Infof(ctx, format, args...)
}

// fixtureRequest строит GET запрос к фикстуре на том же хосте без тела и параметров.
func fixtureRequest(req *http.Request, fixturePath string) *http.Request {
	out := req.Clone(req.Context())

	u := *req.URL
	u.RawQuery, u.ForceQuery = "", false
	u.Fragment, u.RawFragment = "", ""
	if decoded, err := url.PathUnescape(fixturePath); err == nil {
		u.Path, u.RawPath = decoded, fixturePath
	} else {
		u.Path, u.RawPath = fixturePath, ""
	}

	out.URL = &u
	out.Method = http.MethodGet
	out.Body = http.NoBody
	out.GetBody = nil
	out.ContentLength = 0
	out.Header.Del("Content-Type")
	out.Header.Del("Content-Length")

	return out
}

// statusResponse синтезирует ответ с заданным статусом без обращения к сети.
func statusResponse(req *http.Request, code int) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "text/html; charset=utf-8")
	header.Set("Server", ServerName)

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", code, http.StatusText(code)),
		StatusCode:    code,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          http.NoBody,
		ContentLength: 0,
		Request:       req,
	}
}

func isFailure(resp *http.Response) bool {
	return resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

type commandKey struct{}

// WithCommand задает переопределение команды для запросов с этим контекстом.
func WithCommand(ctx context.Context, cmd domain.Command) context.Context {
	return context.WithValue(ctx, commandKey{}, cmd)
}

// CommandFromContext возвращает переопределение команды или nil, если оно не задано.
func CommandFromContext(ctx context.Context) *domain.Command {
	cmd, ok := ctx.Value(commandKey{}).(domain.Command)
	if !ok {
		return nil
	}

	return &cmd
}
