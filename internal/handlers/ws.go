package handlers

import (
	"net/http"

	"budget/internal/auth"
	"budget/internal/middleware"
	"budget/internal/websocket"
)

// WSImports upgrades to a websocket that receives import-completed events.
// Browsers cannot set headers on websocket requests, so the token may also
// arrive as a query parameter.
func (h *Handler) WSImports(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = middleware.BearerToken(r)
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
