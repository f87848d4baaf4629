package server

import (
	"net/http"
	"time"

	"github.com/rizesql/cas/internal/clock"
	"github.com/rizesql/cas/internal/o11y/logging"
)

type Middleware func(http.HandlerFunc) http.HandlerFunc

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newLoggingResponseWriter(w http.ResponseWriter) *loggingResponseWriter {
	return &loggingResponseWriter{w, http.StatusOK}
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func WithLogging(log *logging.Logger) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			log.Info("request received",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			lrw := newLoggingResponseWriter(w)

			defer func() {
				log.Info("request finished",
					"method", r.Method,
					"path", r.URL.Path,
					"status", lrw.statusCode,
					"duration", time.Since(start),
				)
			}()

			next.ServeHTTP(lrw, r)
		}
	}
}

// WithNoCache sets the cache-defeating headers the CAS protocol
// mandates on every endpoint.
func WithNoCache(clk clock.Clock) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Pragma", "no-cache")
			h.Set("Cache-Control", "no-store")
			h.Set("Expires", clk.Now().UTC().Format(http.TimeFormat))

			next.ServeHTTP(w, r)
		}
	}
}
