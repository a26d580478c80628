package reroute

import (
	"cmp"
	"net/url"
	"slices"
	"strings"
)

// Pair пара ключ-значение параметра запроса.
type Pair struct {
	Key   string
	Value string
}

// NormalizeQuery извлекает параметры из URL и params, декодирует, приводит к нижнему регистру
// и сортирует по ключу. При совпадении ключей побеждает значение из params.
// Если stripQueries выставлен, возвращает пустой результат.
func NormalizeQuery(rawURL string, params map[string]string, stripQueries bool) []Pair {
	if stripQueries {
		return nil
	}

	var pairs []Pair
	if _, rawQuery, ok := strings.Cut(rawURL, "?"); ok {
		rawQuery, _, _ = strings.Cut(rawQuery, "#")
		for _, segment := range strings.Split(rawQuery, "&") {
			p, ok := parsePair(segment)
			if !ok {
				continue
			}
			pairs = append(pairs, p)
		}
	}

	if len(params) > 0 {
		fromParams := make([]Pair, 0, len(params))
		keys := make(map[string]struct{}, len(params))
		for k, v := range params {
			p := Pair{Key: strings.ToLower(k), Value: strings.ToLower(v)}
			fromParams = append(fromParams, p)
			keys[p.Key] = struct{}{}
		}
		// порядок обхода map случаен
		slices.SortFunc(fromParams, func(a, b Pair) int {
			return cmp.Or(strings.Compare(a.Key, b.Key), strings.Compare(a.Value, b.Value))
		})

		pairs = slices.DeleteFunc(pairs, func(p Pair) bool {
			_, exist := keys[p.Key]
			return exist
		})
		pairs = append(pairs, fromParams...)
	}

	slices.SortStableFunc(pairs, func(a, b Pair) int {
		return strings.Compare(a.Key, b.Key)
	})

	return pairs
}

// QueryString собирает пары в суффикс пути фикстуры: key1=value1&key2=value2.
func QueryString(pairs []Pair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, encodeComponent(p.Key)+"="+encodeComponent(p.Value))
	}

	return strings.Join(parts, "&")
}

// parsePair разбирает сегмент key=value. Сегменты без ровно одного "=" пропускаются.
func parsePair(segment string) (Pair, bool) {
	if strings.Count(segment, "=") != 1 {
		return Pair{}, false
	}

	rawKey, rawValue, _ := strings.Cut(segment, "=")
	key, err := url.PathUnescape(rawKey)
	if err != nil || key == "" {
		return Pair{}, false
	}
	value, err := url.PathUnescape(rawValue)
	if err != nil {
		return Pair{}, false
	}

	return Pair{Key: strings.ToLower(key), Value: strings.ToLower(value)}, true
}

// encodeComponent экранирует строку как компонент URL, пробел кодируется как %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
