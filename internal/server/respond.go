package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tonimelisma/datalake-api/internal/driveops"
	"github.com/tonimelisma/datalake-api/internal/drivetree"
	"github.com/tonimelisma/datalake-api/internal/graph"
)

// Client-facing messages for failures whose underlying error must not be
// echoed (credentials, internal state).
const (
	detailAuth          = "Failed to acquire access token"
	detailNotConfigured = "Service is not configured"
	detailTimeout       = "Upstream request timed out"
	detailDepth         = "Folder tree exceeds the maximum depth"
	detailCycle         = "Folder tree contains a cycle"
	detailCanceled      = "Request canceled"
	detailInternal      = "Internal server error"
)

// writeJSON encodes v before committing the status, so an unencodable value
// becomes a 500 rather than a success with an empty body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encoding response body failed", slog.String("error", err.Error()))

		status = http.StatusInternalServerError
		body, _ = json.Marshal(driveops.ErrorResponse{Detail: detailInternal})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Warn("writing response body failed", slog.String("error", err.Error()))
	}
}

func (s *Server) writeDetail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	loggerFrom(r.Context(), s.logger).Info("request rejected",
		slog.Int("status", status),
		slog.String("detail", detail),
	)

	s.writeJSON(w, status, driveops.ErrorResponse{Detail: detail})
}

// writeError maps err onto a status and a client-facing detail message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := classify(err)
	logger := loggerFrom(r.Context(), s.logger)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("request rejected",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}

	s.writeJSON(w, status, driveops.ErrorResponse{Detail: detail})
}

// classify returns the HTTP status and detail message for err.
func classify(err error) (int, string) {
	var qe *driveops.QueryError
	if errors.As(err, &qe) {
		switch {
		case errors.Is(qe.Kind, driveops.ErrNotFound):
			return http.StatusNotFound, qe.Detail
		default:
			return http.StatusBadRequest, qe.Detail
		}
	}

	switch {
	case errors.Is(err, graph.ErrAuth):
		return http.StatusInternalServerError, detailAuth
	case errors.Is(err, driveops.ErrNotConfigured):
		return http.StatusInternalServerError, detailNotConfigured
	case errors.Is(err, graph.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, detailTimeout
	case errors.Is(err, drivetree.ErrDepthExceeded):
		return http.StatusBadGateway, detailDepth
	case errors.Is(err, drivetree.ErrCycle):
		return http.StatusBadGateway, detailCycle
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, detailCanceled
	}

	var ge *graph.GraphError
	if errors.As(err, &ge) && ge.StatusCode >= http.StatusBadRequest {
		return ge.StatusCode, graphDetail(ge)
	}

	return http.StatusInternalServerError, detailInternal
}

// graphDetail prefers Graph's own error message over the raw body.
func graphDetail(ge *graph.GraphError) string {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if json.Unmarshal([]byte(ge.Message), &body) == nil && body.Error.Message != "" {
		return body.Error.Message
	}

	if ge.Message != "" {
		return ge.Message
	}

	return http.StatusText(ge.StatusCode)
}
