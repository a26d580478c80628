package http

import (
	"context"
	"net/url"
	"strings"
	"sync"
)

// Location отдает параметры строки запроса страницы, с которой ушел запрос.
// Читается заново на каждый запрос.
type Location interface {
	Search(ctx context.Context) url.Values
}

// LocationFunc адаптер функции к Location.
type LocationFunc func(ctx context.Context) url.Values

// Search ...
func (f LocationFunc) Search(ctx context.Context) url.Values {
	return f(ctx)
}

// MutableLocation изменяемое состояние адреса страницы, безопасное для конкурентного доступа.
type MutableLocation struct {
	mu     sync.RWMutex
	values url.Values
}

// NewLocation создает состояние адреса из URL страницы.
func NewLocation(pageURL string) *MutableLocation {
	l := &MutableLocation{}
	l.SetURL(pageURL)

	return l
}

// Search возвращает копию текущих параметров.
func (l *MutableLocation) Search(_ context.Context) url.Values {
	l.mu.RLock()
	defer l.mu.RUnlock()

	res := make(url.Values, len(l.values))
	for k, v := range l.values {
		res[k] = append([]string(nil), v...)
	}

	return res
}

// SetURL заменяет параметры параметрами из URL страницы.
func (l *MutableLocation) SetURL(pageURL string) {
	values := parseSearch(pageURL)

	l.mu.Lock()
	l.values = values
	l.mu.Unlock()
}

// Set выставляет параметр.
func (l *MutableLocation) Set(key, value string) {
	l.mu.Lock()
	if l.values == nil {
		l.values = make(url.Values)
	}
	l.values.Set(key, value)
	l.mu.Unlock()
}

// Del удаляет параметр.
func (l *MutableLocation) Del(key string) {
	l.mu.Lock()
	l.values.Del(key)
	l.mu.Unlock()
}

type pageKey struct{}

// WithPage сохраняет в контексте URL страницы, инициировавшей запрос.
func WithPage(ctx context.Context, pageURL string) context.Context {
	return context.WithValue(ctx, pageKey{}, pageURL)
}

// PageLocation читает параметры URL страницы из контекста запроса.
// Если страницы в контексте нет, используется fallback.
func PageLocation(fallback Location) Location {
	return LocationFunc(func(ctx context.Context) url.Values {
		if page, ok := ctx.Value(pageKey{}).(string); ok {
			return parseSearch(page)
		}

		if fallback == nil {
			return url.Values{}
		}

		return fallback.Search(ctx)
	})
}

// parseSearch разбирает строку запроса страницы, в том числе после hash-маршрута (/#/view/?apiMock=true).
// Сегменты с ошибкой экранирования пропускаются, остальные параметры сохраняются.
func parseSearch(pageURL string) url.Values {
	values := make(url.Values)
	_, rawQuery, ok := strings.Cut(pageURL, "?")
	if !ok {
		return values
	}
	rawQuery, _, _ = strings.Cut(rawQuery, "#")

	for _, segment := range strings.Split(rawQuery, "&") {
		if segment == "" {
			continue
		}

		rawKey, rawValue, _ := strings.Cut(segment, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil || key == "" {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			continue
		}
		values.Add(key, value)
	}

	return values
}
