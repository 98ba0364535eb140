package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"usergate/internal/core"
	"usergate/internal/keys"
)

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// writeServiceError maps the service error taxonomy onto status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr core.ValidationError
	var nf core.ErrNotFound
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, keys.ErrOutOfKeys):
		writeError(w, http.StatusBadRequest, "No API keys available")
	case errors.Is(err, keys.ErrMissingRecipient):
		writeError(w, http.StatusBadRequest, "Email is required")
	default:
		h.logger.Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeBody reads a JSON object into dst. An empty body decodes as {}.
// Malformed JSON is answered with 400 and false is returned.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var verr core.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	return true
}
