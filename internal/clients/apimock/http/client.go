package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/kdv2001/apiMock/internal/domain"
	"github.com/kdv2001/apiMock/internal/usecases/reroute"
)

// maxErrorBodySize ограничение на тело ответа, сохраняемое в StatusError.
const maxErrorBodySize = 1 << 20

// Request исходящий запрос клиента.
type Request struct {
	Method string
	URL    string
	// Params явные параметры запроса, объединяются с параметрами URL. При совпадении ключей побеждают Params.
	Params map[string]string
	Header http.Header
	Body   io.Reader
	// Mock переопределение команды для запроса; nil означает, что действует глобальная команда.
	Mock *domain.Command
}

// Result результат асинхронного запроса.
type Result struct {
	Response *http.Response
	Err      error
}

// StatusError ответ со статусом вне диапазона 2xx или синтезированный командой статуса.
type StatusError struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apimock: request failed with status %d", e.StatusCode)
}

// Client клиент, все запросы которого проходят через перехватчик.
// Ответы со статусом вне 2xx возвращаются как *StatusError.
type Client struct {
	interceptor *interceptor
}

// NewClient ...
func NewClient(client httpClient, opts ...Option) *Client {
	return &Client{
		interceptor: newInterceptor(client, opts...),
	}
}

// Do выполняет запрос. При успехе вызывающий обязан закрыть тело ответа.
func (c *Client) Do(ctx context.Context, r *Request) (*http.Response, error) {
	req, err := r.build(ctx)
	if err != nil {
		return nil, err
	}

	resp, synthetic, err := c.interceptor.do(req)
	if err != nil {
		return nil, err
	}

	// синтетический статус всегда уходит в канал ошибок, даже 2xx
	if synthetic || isFailure(resp) {
		defer func() {
			_ = resp.Body.Close()
		}()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Header:     resp.Header,
			Body:       body,
		}
	}

	return resp, nil
}

// Go запускает запрос и сразу возвращает канал, в который придет результат.
func (c *Client) Go(ctx context.Context, r *Request) <-chan Result {
	res := make(chan Result, 1)
	go func() {
		resp, err := c.Do(ctx, r)
		res <- Result{Response: resp, Err: err}
	}()

	return res
}

// PendingFallbacks возвращает число незавершенных обращений к фикстурам в режиме auto.
func (c *Client) PendingFallbacks() int64 {
	return c.interceptor.pending.Load()
}

// SetModuleConfig заменяет конфигурацию модуля.
func (c *Client) SetModuleConfig(cfg domain.ModuleConfig) {
	c.interceptor.setConfig(cfg)
}

func (r *Request) build(ctx context.Context) (*http.Request, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url %q: %w", r.URL, err)
	}

	if len(r.Params) > 0 {
		u.RawQuery = mergeQuery(u.RawQuery, r.Params)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	if r.Mock != nil {
		ctx = WithCommand(ctx, *r.Mock)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r.Body)
	if err != nil {
		return nil, err
	}
	if r.Header != nil {
		req.Header = r.Header.Clone()
	}

	return req, nil
}

// mergeQuery дописывает params к строке запроса, не перекодируя исходные сегменты.
// Сегменты URL с ключом из params (без учета регистра) удаляются.
func mergeQuery(rawQuery string, params map[string]string) string {
	var segments []string
	if rawQuery != "" {
		for _, segment := range strings.Split(rawQuery, "&") {
			rawKey, _, _ := strings.Cut(segment, "=")
			if key, err := url.PathUnescape(rawKey); err == nil && hasKeyFold(params, key) {
				continue
			}
			segments = append(segments, segment)
		}
	}

	pairs := make([]reroute.Pair, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, reroute.Pair{Key: k, Value: v})
	}
	slices.SortFunc(pairs, func(a, b reroute.Pair) int {
		return strings.Compare(a.Key, b.Key)
	})
	segments = append(segments, reroute.QueryString(pairs))

	return strings.Join(segments, "&")
}

func hasKeyFold(params map[string]string, key string) bool {
	for param := range params {
		if strings.EqualFold(param, key) {
			return true
		}
	}

	return false
}
