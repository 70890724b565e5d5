package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"propmanager/internal/core"
	"propmanager/internal/gateway"
	"propmanager/internal/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes the {"error": msg} body clients read messages from.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps gateway and validation errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *core.ValidationError
	var reqErr *gateway.RequestError
	switch {
	case errors.As(err, &vErr):
		writeJSONError(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &reqErr):
		writeJSONError(w, reqErr.StatusCode, reqErr.Message)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Unhandled error", log.FieldError, err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}
