// Package reroute содержит чистую логику принятия решения о перенаправлении запроса на фикстуру.
package reroute

import (
	"net/url"
	"strings"

	"github.com/kdv2001/apiMock/internal/domain"
)

// IsAPIPath проверяет, что путь запроса начинается с префикса API.
// Префикс, встретившийся не в начале пути, не учитывается.
func IsAPIPath(cfg domain.ModuleConfig, rawURL string) bool {
	prefix := cfg.WithDefaults().APIPathPrefix
	return strings.HasPrefix(pathOf(rawURL), prefix)
}

// BuildFixturePath строит путь фикстуры по методу, пути запроса и нормализованным параметрам.
func BuildFixturePath(cfg domain.ModuleConfig, method, basePath string, query []Pair) string {
	cfg = cfg.WithDefaults()

	p := strings.TrimRight(pathOf(basePath), "/")
	rest, ok := strings.CutPrefix(p+"/", cfg.APIPathPrefix)
	switch {
	case ok:
		rest = strings.TrimRight(rest, "/")
	default:
		rest = strings.TrimLeft(p, "/")
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(cfg.MockRoot, "/"))
	b.WriteByte('/')
	b.WriteString(rest)
	if len(query) > 0 {
		b.WriteByte('/')
		b.WriteString(QueryString(query))
	}
	b.WriteByte('.')
	b.WriteString(strings.ToLower(method))
	b.WriteString(".json")

	return b.String()
}

// pathOf возвращает путь без строки запроса, фрагмента, схемы и хоста.
func pathOf(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}

	if strings.Contains(rawURL, "://") {
		u, err := url.Parse(rawURL)
		if err == nil {
			return u.EscapedPath()
		}
	}

	return rawURL
}
