package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/device-loans/internal/auth"
	"github.com/example/device-loans/internal/config"
)

// AuthHandlers issues access tokens to configured API clients.
type AuthHandlers struct {
	jwtService *auth.Service
	clients    map[string]config.Client
}

func NewAuthHandlers(jwtService *auth.Service, clients []config.Client) *AuthHandlers {
	byID := make(map[string]config.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}
	return &AuthHandlers{jwtService: jwtService, clients: byID}
}

// Token exchanges client credentials for a bearer token.
func (h *AuthHandlers) Token(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	client, ok := h.clients[req.ClientID]
	if !ok || !auth.CheckSecret(req.ClientSecret, client.SecretHash) {
		respondError(w, http.StatusUnauthorized, "invalid_client", "unknown client or bad secret")
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(client.ID, client.Scopes, client.Roles)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not issue token")
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(time.Until(expiresAt).Seconds()),
	})
}
