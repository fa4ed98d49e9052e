// internal/server/middleware.go
package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/valpere/reachlist/internal/utils"
)

// RequestIDHeader carries the request identifier in both directions
const RequestIDHeader = "X-Request-ID"

// requestIDMiddleware tags every request with an ID and a logger carrying it.
// A well-formed UUID sent by the client is reused.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		logger := s.logger.WithField("request_id", id)
		next.ServeHTTP(w, r.WithContext(utils.ContextWithLogger(r.Context(), logger)))
	})
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, limiter := s.snapshot()
		if !limiter.Allow() {
			s.metrics.RecordRateLimitHit()
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrumentMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		duration := time.Since(start)
		s.metrics.RecordRequest(route, rec.status, duration)

		utils.LoggerFromContext(r.Context(), s.logger).WithFields(map[string]interface{}{
			"method":      r.Method,
			"route":       route,
			"status":      rec.status,
			"duration_ms": duration.Milliseconds(),
		}).Info("request completed")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
