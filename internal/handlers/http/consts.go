package http

const (
	ContentType     = "Content-Type"
	ContentEncoding = "Content-Encoding"
	Accept          = "Accept"
	AcceptEncoding  = "Accept-Encoding"
	LastModified    = "Last-Modified"
	Referer         = "Referer"
	RequestID       = "X-Request-Id"

	ApplicationJSON = "application/json"
	TextHTML        = "text/html"
	Any             = "*/*"
	Gzip            = "gzip"
)

// FixturePathKey имя wildcard параметра chi с путем фикстуры
const FixturePathKey = "*"
