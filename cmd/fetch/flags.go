package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type flags struct {
	serverAddr   url.URL
	path         string
	method       string
	params       map[string]string
	mock         string
	page         string
	stripQueries bool
	disable      bool
}

func initFlags() (flags, error) {
	scheme := "http"
	serverAddr := url.URL{
		Scheme: scheme,
		Host:   "localhost:8080",
	}
	flag.Func("a", "server address", func(address string) error {
		if address == "" {
			return nil
		}

		serverAddr = url.URL{
			Scheme: scheme,
			Host:   address,
		}

		return nil
	})
	params := make(map[string]string)
	flag.Func("q", "request param key=value, may be repeated", func(value string) error {
		k, v, ok := strings.Cut(value, "=")
		if !ok || k == "" {
			return fmt.Errorf("param %q is not key=value", value)
		}
		params[k] = v

		return nil
	})
	path := flag.String("p", "/api/", "request path with optional query")
	method := flag.String("m", "GET", "request method")
	mock := flag.String("mock", "", "per-request override: true, false, auto or HTTP status")
	page := flag.String("l", "", "page URL the global command is read from")
	stripQueries := flag.Bool("strip", true, "drop query from fixture paths")
	disable := flag.Bool("disable", false, "disable mocking")

	flag.Parse()

	if value, exist := os.LookupEnv("ADDRESS"); exist {
		if value == "" {
			return flags{}, fmt.Errorf("ADDRESS environment variable not set")
		}

		serverAddr = url.URL{
			Scheme: scheme,
			Host:   value,
		}
	}
	if value := os.Getenv("API_MOCK"); value != "" {
		mock = &value
	}
	if value := os.Getenv("PAGE_URL"); value != "" {
		page = &value
	}

	stripKey := "STRIP_QUERIES"
	if value, exist := os.LookupEnv(stripKey); exist {
		val, err := strconv.ParseBool(value)
		if err != nil {
			return flags{}, fmt.Errorf("failed to parse %s: %w", stripKey, err)
		}
		stripQueries = &val
	}

	return flags{
		serverAddr:   serverAddr,
		path:         *path,
		method:       strings.ToUpper(*method),
		params:       params,
		mock:         *mock,
		page:         *page,
		stripQueries: *stripQueries,
		disable:      *disable,
	}, nil
}
