package http

import (
	"net/http"

	"github.com/kdv2001/apiMock/internal/domain"
)

// Transport реализует http.RoundTripper поверх base.
// Ответы с любым статусом возвращаются без ошибки, как того требует контракт RoundTripper.
type Transport struct {
	interceptor *interceptor
}

var _ http.RoundTripper = (*Transport)(nil)

type roundTripperClient struct {
	base http.RoundTripper
}

func (c roundTripperClient) Do(req *http.Request) (*http.Response, error) {
	return c.base.RoundTrip(req)
}

// NewTransport создает перехватывающий транспорт. Если base == nil, используется http.DefaultTransport.
func NewTransport(base http.RoundTripper, opts ...Option) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &Transport{
		interceptor: newInterceptor(roundTripperClient{base: base}, opts...),
	}
}

// RoundTrip ...
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.interceptor.intercept(req)
}

// PendingFallbacks возвращает число незавершенных обращений к фикстурам в режиме auto.
func (t *Transport) PendingFallbacks() int64 {
	return t.interceptor.pending.Load()
}

// SetModuleConfig заменяет конфигурацию модуля.
func (t *Transport) SetModuleConfig(cfg domain.ModuleConfig) {
	t.interceptor.setConfig(cfg)
}

// ModuleConfig возвращает текущую конфигурацию модуля.
func (t *Transport) ModuleConfig() domain.ModuleConfig {
	return t.interceptor.config()
}
