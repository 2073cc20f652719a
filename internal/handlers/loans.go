package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"budget/internal/middleware"
	"budget/internal/models"
	"budget/internal/services"
)

func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	loans, err := h.loans.ListByUser(r.Context(), h.loanDB, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load loans")
		return
	}
	normalized := make([]map[string]any, 0, len(loans))
	for _, loan := range loans {
		normalized = append(normalized, map[string]any{
			"id":               loan.ID,
			"title":            loan.Title,
			"remaining_amount": valueToMoney(loan.RemainingMinor),
			"monthly_payment":  valueToMoney(loan.MonthlyMinor),
			"currency":         loan.Currency,
			"holder_name":      loan.HolderName,
			"loan_number":      valueToString(loan.LoanNumber),
			"repaid":           loan.Repaid,
			"created_at":       loan.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

type createLoanRequest struct {
	Title           string  `json:"title"`
	RemainingAmount string  `json:"remaining_amount"`
	MonthlyPayment  string  `json:"monthly_payment"`
	Currency        string  `json:"currency"`
	HolderName      string  `json:"holder_name"`
	LoanNumber      *string `json:"loan_number"`
	DisbursementID  *string `json:"disbursement_transaction_id"`
}

func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	remainingMinor, err := parseAmountMinor(req.RemainingAmount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	monthlyMinor := int64(0)
	if req.MonthlyPayment != "" {
		monthlyMinor, err = parseAmountMinor(req.MonthlyPayment)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
	}
	if req.Title == "" || req.Currency == "" {
		respondError(w, http.StatusBadRequest, "title and currency are required")
		return
	}
	loan := models.Loan{
		UserID:         userID,
		Title:          req.Title,
		RemainingMinor: remainingMinor,
		MonthlyMinor:   monthlyMinor,
		Currency:       req.Currency,
		HolderName:     req.HolderName,
		LoanNumber:     req.LoanNumber,
	}
	loanID, err := h.reconciler.Create(r.Context(), loan, req.DisbursementID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			respondError(w, http.StatusBadRequest, "invalid_amount")
		case errors.Is(err, services.ErrTransactionNotFound):
			respondError(w, http.StatusNotFound, "transaction not found")
		case errors.Is(err, services.ErrNotDisbursement):
			respondError(w, http.StatusBadRequest, "transaction is not a loan disbursement")
		default:
			respondError(w, http.StatusInternalServerError, "unable to create loan")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"loan_id": loanID})
}

func (h *Handler) ReconcileLoans(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	summary, err := h.reconciler.Reconcile(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reconcile loans")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
