package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"shopauth/internal/domain"
	obsmw "shopauth/internal/observability/middleware"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

type errorBody struct {
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// writeError maps domain errors to their declared status and stable
// message code; everything else becomes an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ae, ok := domain.AsAuthError(err); ok {
		writeJSON(w, ae.Status, errorBody{Message: ae.Code, Path: ae.Path})
		return
	}
	slog.Error("unhandled error",
		"error", err,
		"request_id", obsmw.RequestIDFromContext(r.Context()),
		"trace_id", obsmw.TraceIDFromContext(r.Context()),
	)
	writeJSON(w, http.StatusInternalServerError, errorBody{Message: "Error.Internal"})
}
