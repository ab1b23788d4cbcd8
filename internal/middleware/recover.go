package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recover turns a handler panic into a logged 500 with a JSON error body.
// http.ErrAbortHandler is re-raised so the server can drop the connection.
func Recover(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				logger.Error().
					Str("rid", GetRequestID(r)).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", rec).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal"}`))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
