package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"budget/internal/middleware"
	"budget/internal/models"
	"budget/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 20)
	offset := (page - 1) * limit
	transactions, err := h.transactions.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	normalized := make([]map[string]any, 0, len(transactions))
	for _, t := range transactions {
		normalized = append(normalized, map[string]any{
			"id":             t.ID,
			"title":          t.Title,
			"amount":         valueToMoney(t.AmountMinor),
			"currency":       t.Currency,
			"type":           t.Type,
			"direction":      t.Direction,
			"date":           t.Date,
			"narration":      valueToString(t.Narration),
			"merchant":       valueToString(t.Merchant),
			"merchant_city":  valueToString(t.MerchantCity),
			"mcc":            t.MCC,
			"card_last_four": valueToString(t.CardLastFour),
			"account_id":     valueToString(t.AccountID),
			"bank_import_id": valueToString(t.BankImportID),
			"loan_id":        valueToString(t.LoanID),
			"created_at":     t.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

type createTransactionRequest struct {
	Title     string  `json:"title"`
	Amount    string  `json:"amount"`
	Currency  string  `json:"currency"`
	Type      string  `json:"type"`
	Direction *string `json:"direction"`
	Date      string  `json:"date"`
	Narration *string `json:"narration"`
	LoanID    *string `json:"loan_id"`
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	date, err := parseDateParam(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	if req.Currency == "" || req.Type == "" {
		respondError(w, http.StatusBadRequest, "currency and type are required")
		return
	}
	t := models.Transaction{
		UserID:      userID,
		Title:       req.Title,
		AmountMinor: amountMinor,
		Currency:    req.Currency,
		Type:        models.TransactionType(req.Type),
		Date:        date,
		Narration:   req.Narration,
		LoanID:      req.LoanID,
	}
	if req.Direction != nil {
		direction := models.Direction(*req.Direction)
		t.Direction = &direction
	}
	transactionID, err := h.manual.CreateManual(r.Context(), t)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create transaction")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"transaction_id": transactionID})
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	transactionID := chi.URLParam(r, "id")
	if err := h.manual.Delete(r.Context(), userID, transactionID); err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			respondError(w, http.StatusNotFound, "transaction not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
