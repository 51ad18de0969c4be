package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// requestIDHeader is echoed back on every response so callers can quote
// the ID when reporting a failure.
const requestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDCtxKey ctxKey = iota

// requestID assigns every request an ID, reusing the caller's when the
// header already carries one, and stores it in the request context for
// the logging middleware.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), requestIDCtxKey, id),
		))
	})
}

// getRequestID extracts the request ID from ctx, or "" when the request
// never passed through the middleware.
func getRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey).(string)

	return id
}
