package handlers

import (
	"encoding/json"
	"net/http"

	"budget/internal/middleware"
	"budget/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	deposits, err := h.deposits.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load deposits")
		return
	}
	normalized := make([]map[string]any, 0, len(deposits))
	for _, deposit := range deposits {
		normalized = append(normalized, map[string]any{
			"id":         deposit.ID,
			"title":      deposit.Title,
			"balance":    valueToMoney(deposit.BalanceMinor),
			"currency":   deposit.Currency,
			"active":     deposit.Active,
			"created_at": deposit.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

type createDepositRequest struct {
	Title    string `json:"title"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Currency == "" || req.Title == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	balanceMinor := int64(0)
	if req.Balance != "" {
		parsed, err := parseAmountMinor(req.Balance)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		balanceMinor = parsed
	}
	depositID := uuid.NewString()
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.deposits.Create(r.Context(), tx, models.Deposit{
			ID:           depositID,
			UserID:       userID,
			Title:        req.Title,
			BalanceMinor: balanceMinor,
			Currency:     req.Currency,
			Active:       true,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"deposit_id": depositID})
		return h.audit.Log(r.Context(), tx, userID, "create_deposit", "deposit", depositID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create deposit")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"deposit_id": depositID})
}
