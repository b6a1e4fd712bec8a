package api

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether the backing store is reachable. A nil Pinger
// means the server runs without persistence and readiness only checks
// the process itself.
type Pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			writeError(w, s.logger, http.StatusServiceUnavailable, "storage unreachable")
			return
		}
	}

	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ready"})
}
