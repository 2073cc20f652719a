package handlers

import (
	"net/http"

	"budget/internal/middleware"
)

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accounts, err := h.accounts.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load accounts")
		return
	}
	normalized := make([]map[string]any, 0, len(accounts))
	for _, account := range accounts {
		normalized = append(normalized, map[string]any{
			"id":         account.ID,
			"type":       account.Type,
			"title":      account.Title,
			"iban":       valueToString(account.IBAN),
			"cards":      valueToString(account.Cards),
			"created_at": account.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}
