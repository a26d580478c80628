package http

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

type mockRoute struct {
	status int
	body   string
	err    error
}

// httpClientMock отвечает по таблице "METHOD escaped-path" и запоминает запросы.
// Для неизвестных маршрутов отвечает 404.
type httpClientMock struct {
	mu       sync.Mutex
	routes   map[string]mockRoute
	requests []*http.Request
	onDo     func(req *http.Request)
}

func newHTTPClientMock(routes map[string]mockRoute) *httpClientMock {
	return &httpClientMock{routes: routes}
}

func (c *httpClientMock) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	route, ok := c.routes[req.Method+" "+req.URL.EscapedPath()]
	onDo := c.onDo
	c.mu.Unlock()

	if onDo != nil {
		onDo(req)
	}

	if !ok {
		route = mockRoute{status: http.StatusNotFound}
	}
	if route.err != nil {
		return nil, route.err
	}

	return &http.Response{
		StatusCode: route.status,
		Status:     http.StatusText(route.status),
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(route.body)),
		Request:    req,
	}, nil
}

func (c *httpClientMock) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := make([]string, 0, len(c.requests))
	for _, req := range c.requests {
		res = append(res, req.Method+" "+req.URL.EscapedPath())
	}

	return res
}
