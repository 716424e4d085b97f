package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"ledger/internal/auth"
)

type tokenRequest struct {
	APIKey string `json:"api_key"`
}

// IssueToken exchanges the configured API key for a short-lived bearer token.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.cfg.APIKey)) != 1 {
		respondError(w, http.StatusUnauthorized, "invalid api key")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, "api-client", h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to issue token")
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_in": int(h.cfg.TokenTTL.Seconds()),
	})
}
