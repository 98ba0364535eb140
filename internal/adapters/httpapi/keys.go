package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

type issueRequest struct {
	Email string `json:"email"`
}

type issueResponse struct {
	Message string `json:"message"`
	APIKey  string `json:"apiKey"`
}

func (h *Handler) issueKey(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	iss, err := h.issuer.Issue(r.Context(), req.Email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issueResponse{Message: "API key issued", APIKey: iss.Key})
}

// webhookEvent is the subset of a payment provider event the service reads.
type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			CustomerEmail   string `json:"customer_email"`
			CustomerDetails struct {
				Email string `json:"email"`
			} `json:"customer_details"`
		} `json:"object"`
	} `json:"data"`
}

func (e webhookEvent) email() string {
	if email := strings.TrimSpace(e.Data.Object.CustomerEmail); email != "" {
		return email
	}
	return strings.TrimSpace(e.Data.Object.CustomerDetails.Email)
}

// webhook acknowledges every delivery. Matching events issue a key to the
// paying customer; issuance failures are logged, never returned.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	defer writeText(w, http.StatusOK, "ok")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn().Err(err).Msg("webhook body unreadable")
		return
	}
	var evt webhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		h.logger.Debug().Err(err).Msg("webhook payload ignored")
		return
	}
	if evt.Type != h.webhookEvent {
		h.logger.Debug().Str("type", evt.Type).Msg("webhook event ignored")
		return
	}
	email := evt.email()
	if email == "" {
		h.logger.Warn().Str("type", evt.Type).Msg("webhook event without customer email")
		return
	}
	if _, err := h.issuer.Issue(r.Context(), email); err != nil {
		h.logger.Error().Err(err).Str("email", email).Msg("webhook issuance failed")
	}
}
