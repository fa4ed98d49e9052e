// internal/server/handlers.go
package server

import (
	"io"
	"net/http"

	"github.com/valpere/reachlist/internal/config"
	reacherrors "github.com/valpere/reachlist/internal/errors"
	"github.com/valpere/reachlist/internal/utils"
)

const missingURLMessage = "Missing ?url=..."

// handleFilter resolves the request parameters, runs the pipeline and answers
// with the surviving entries as plain text.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	cfg, p, _ := s.snapshot()
	logger := utils.LoggerFromContext(r.Context(), s.logger)

	params, err := cfg.ResolveRequest(config.ValuesSource(r.URL.Query()))
	if err != nil {
		if reacherrors.IsConfigurationError(err) {
			writeText(w, http.StatusBadRequest, missingURLMessage)
			return
		}
		logger.Errorf("failed to resolve parameters: %v", err)
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := p.Execute(r.Context(), params)
	if err != nil {
		status := http.StatusInternalServerError
		message := err.Error()
		if fetchErr, ok := reacherrors.AsSourceFetchError(err); ok {
			if fetchErr.StatusCode != 0 {
				status = http.StatusBadGateway
			}
		} else {
			message = "Failed to fetch source: " + err.Error()
		}
		writeText(w, status, message)
		return
	}

	logger.WithFields(map[string]interface{}{
		"entries": len(result.Results),
		"kept":    len(result.Entries),
	}).Debug("filter completed")

	writeText(w, http.StatusOK, result.Body())
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
