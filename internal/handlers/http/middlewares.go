package http

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kdv2001/apiMock/internal/pkg/logger"
)

// defaultAcceptedEncodingTypes поддерживаемы типы для компрессии
var defaultAcceptedEncodingTypes = map[string]struct{}{
	ApplicationJSON: {},
	TextHTML:        {},
	Any:             {},
}

// GetDefaultAcceptedEncodingData возвращает стандартный типа для компрессии
func GetDefaultAcceptedEncodingData() map[string]struct{} {
	return defaultAcceptedEncodingTypes
}

// compressWriter реализует интерфейс http.ResponseWriter и позволяет прозрачно для сервера
// сжимать передаваемые данные и выставлять правильные HTTP-заголовки
type compressWriter struct {
	w              http.ResponseWriter
	compressWriter io.WriteCloser
}

func newCompressWriter(w http.ResponseWriter, h http.Header, acceptedEncodingData map[string]struct{}) *compressWriter {
	if !accepts(h, acceptedEncodingData) || !strings.Contains(h.Get(AcceptEncoding), Gzip) {
		return &compressWriter{
			w: w,
		}
	}

	w.Header().Set(ContentEncoding, Gzip)
	w.Header().Add("Vary", AcceptEncoding)

	return &compressWriter{
		w:              w,
		compressWriter: gzip.NewWriter(w),
	}
}

// accepts проверяет, что клиент принимает хотя бы один из типов
func accepts(h http.Header, acceptedEncodingData map[string]struct{}) bool {
	for _, v := range h.Values(Accept) {
		for _, mediaType := range strings.Split(v, ",") {
			mediaType, _, _ = strings.Cut(mediaType, ";")
			if _, isExist := acceptedEncodingData[strings.TrimSpace(mediaType)]; isExist {
				return true
			}
		}
	}

	return false
}

// Header ...
func (c *compressWriter) Header() http.Header {
	return c.w.Header()
}

// Write ...
func (c *compressWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if c.compressWriter != nil {
		return c.compressWriter.Write(p)
	}

	return c.w.Write(p)
}

// WriteHeader ...
func (c *compressWriter) WriteHeader(statusCode int) {
	if c.compressWriter != nil {
		c.w.Header().Del("Content-Length")
	}
	c.w.WriteHeader(statusCode)
}

// Close ...
func (c *compressWriter) Close() error {
	if c.compressWriter == nil {
		return nil
	}

	return c.compressWriter.Close()
}

// CompressMiddleware создаёт middleware для сжатия ответов с фикстурами
func CompressMiddleware(encodingTypes map[string]struct{}) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ow := newCompressWriter(w, r.Header, encodingTypes)
			defer ow.Close()
			next.ServeHTTP(ow, r)
		}

		return http.HandlerFunc(fn)
	}
}

// DecompressMiddleware создаёт middleware для декомпрессии загружаемых фикстур
func DecompressMiddleware() func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			var zr io.ReadCloser
			switch r.Header.Get(ContentEncoding) {
			case Gzip:
				gr, err := gzip.NewReader(r.Body)
				if err != nil {
					http.Error(w, "error: bad gzip body", http.StatusBadRequest)
					return
				}
				zr = gr
			// случай пустого заголовка
			case "":
				zr = r.Body
			default:
				http.Error(w, "error: unsupported Content-Encoding", http.StatusBadRequest)
				return
			}

			// меняем тело запроса на новое
			r.Body = zr
			defer zr.Close()

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

// RequestIDMiddleware выставляет X-Request-Id, если клиент его не передал
func RequestIDMiddleware() func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestID)
			if id == "" {
				id = uuid.NewString()
				r.Header.Set(RequestID, id)
			}
			w.Header().Set(RequestID, id)

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

// AddLoggerToContextMiddleware помещает logger с идентификатором запроса в context
func AddLoggerToContextMiddleware(sugarLogger *zap.SugaredLogger) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			l := sugarLogger
			if id := r.Header.Get(RequestID); id != "" {
				l = l.With("requestId", id)
			}
			r = r.WithContext(logger.ToContext(r.Context(), l))

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

// RequestMiddleware middleware для логирования запросов
func RequestMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			defer func() {
				logger.Infof(r.Context(), "request: url: %s; method: %s; processing time: %s",
					r.URL.String(), r.Method, time.Since(start).String())
			}()

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

// ResponseMiddleware middleware для логирования ответов
func ResponseMiddleware() func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			updatedWriter := NewWriterWithLogging(w)
			defer func() {
				logger.Infof(r.Context(), "response: status code: %d, datasize: %d bytes",
					updatedWriter.statusCode,
					updatedWriter.responseSize)
			}()

			next.ServeHTTP(updatedWriter, r)
		}

		return http.HandlerFunc(fn)
	}
}

// WriterWithLogging реализация интерфейса writer для перехвата информации ответа
type WriterWithLogging struct {
	statusCode   int
	responseSize int

	baseWriter http.ResponseWriter
}

// NewWriterWithLogging создание нового WriterWithLogging объекта
func NewWriterWithLogging(baseWriter http.ResponseWriter) *WriterWithLogging {
	return &WriterWithLogging{
		statusCode: http.StatusOK,
		baseWriter: baseWriter,
	}
}

// Write ...
func (w *WriterWithLogging) Write(b []byte) (int, error) {
	n, err := w.baseWriter.Write(b)
	w.responseSize += n
	return n, err
}

// WriteHeader ...
func (w *WriterWithLogging) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.baseWriter.WriteHeader(statusCode)
}

// Header ...
func (w *WriterWithLogging) Header() http.Header {
	return w.baseWriter.Header()
}

// Flush нужен reverse proxy для потоковых ответов
func (w *WriterWithLogging) Flush() {
	if f, ok := w.baseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
