package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"run-planner/internal/metrics"
)

type responseWriter struct {
	w      http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) Header() http.Header { return rw.w.Header() }
func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.w.Write(b)
	rw.size += n
	return n, err
}
func (rw *responseWriter) WriteHeader(code int) { rw.status = code; rw.w.WriteHeader(code) }

// Logging writes one line per request and records request metrics labelled
// by the chi route pattern, so path parameters do not explode cardinality.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{w: w, status: 200}
			next.ServeHTTP(rw, r)
			dur := time.Since(start)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
			metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(dur.Seconds())

			ev := logger.Info()
			if rw.status >= 500 {
				ev = logger.Error()
			}
			ev.Str("rid", GetRequestID(r)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", rw.status).
				Dur("dur", dur).
				Int("size", rw.size).
				Msg("http")
		})
	}
}
