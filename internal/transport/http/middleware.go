package http

import (
	"log/slog"
	"net/http"
	"time"
)

// logRequest logs the start and completion of every request under the
// request ID assigned upstream.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := s.log.With(
			slog.String("request_id", getRequestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("user_agent", r.UserAgent()),
		)

		entry.Info("request started")

		start := time.Now()
		defer func() {
			entry.Info("request completed",
				slog.String("duration", time.Since(start).String()))
		}()

		next.ServeHTTP(w, r)
	})
}
