package a

import (
	"net/http"
	nethttp "net/http"
)

func bad() {
	_, _ = http.Get("http://localhost/api/") // want `http.Get bypasses the injected client`
	_, _ = http.Head("http://localhost/api/") // want `http.Head bypasses the injected client`
	_, _ = http.Post("http://localhost/api/", "application/json", nil) // want `http.Post bypasses the injected client`
	_, _ = nethttp.PostForm("http://localhost/api/", nil) // want `http.PostForm bypasses the injected client`
	_ = http.DefaultClient // want `http.DefaultClient bypasses the injected client`
}

func good(c *http.Client) {
	_, _ = c.Get("http://localhost/api/")
	_, _ = http.NewRequest(http.MethodGet, "http://localhost/api/", nil)
}
