package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mock_data/pokemon.get.json":
			_, _ = w.Write([]byte(`{"name":"pikachu"}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(server.Close)
	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	tests := []struct {
		name    string
		mock    string
		page    string
		want    string
		wantErr bool
	}{
		{name: "real call fails", want: "503\n\n", wantErr: true},
		{name: "override on", mock: "true", want: "200\n{\"name\":\"pikachu\"}\n"},
		{name: "global auto", page: "http://front.local/?apiMock=auto", want: "200\n{\"name\":\"pikachu\"}\n"},
		{name: "override status", mock: "418", want: "418\n\n", wantErr: true},
		{name: "explicit off beats global", mock: "false", page: "http://front.local/?apiMock=true", want: "503\n\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			err := fetch(context.Background(), flags{
				serverAddr:   url.URL{Scheme: "http", Host: u.Host},
				path:         "/api/pokemon",
				method:       http.MethodGet,
				mock:         tt.mock,
				page:         tt.page,
				stripQueries: true,
			}, &out)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, out.String())
		})
	}
}
