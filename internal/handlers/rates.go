package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"budget/internal/middleware"
	"budget/internal/services"

	"github.com/jmoiron/sqlx"
)

func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	currency := query.Get("currency")
	if currency == "" {
		respondError(w, http.StatusBadRequest, "currency is required")
		return
	}
	date, err := parseDateParam(query.Get("date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	rate, err := h.rates.GetRate(r.Context(), currency, date)
	if err != nil {
		if errors.Is(err, services.ErrRateNotFound) {
			respondError(w, http.StatusNotFound, "rate_not_found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to resolve rate")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"currency": currency,
		"date":     date.Format("2006-01-02"),
		"rate":     rate.String(),
	})
}

func (h *Handler) ConvertAmount(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	amountMinor, err := parseAmountMinor(query.Get("amount"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	from := query.Get("from")
	to := query.Get("to")
	if from == "" || to == "" {
		respondError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	date, err := parseDateParam(query.Get("date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	converted, err := h.rates.ConvertAmount(r.Context(), amountMinor, from, to, date)
	if err != nil {
		if errors.Is(err, services.ErrRateNotFound) {
			respondError(w, http.StatusNotFound, "rate_not_found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to convert")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"amount":           valueToMoney(amountMinor),
		"from":             from,
		"to":               to,
		"date":             date.Format("2006-01-02"),
		"converted_amount": valueToMoney(converted),
	})
}

type ensureRatesRequest struct {
	Pairs []struct {
		Currency string `json:"currency"`
		Date     string `json:"date"`
	} `json:"pairs"`
}

func (h *Handler) EnsureRates(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req ensureRatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Pairs) == 0 {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	pairs := make([]services.RatePair, 0, len(req.Pairs))
	for _, pair := range req.Pairs {
		date, err := parseDateParam(pair.Date)
		if err != nil || pair.Currency == "" {
			respondError(w, http.StatusBadRequest, "invalid pair")
			return
		}
		pairs = append(pairs, services.RatePair{Currency: pair.Currency, Date: date})
	}
	resolved, err := h.rates.EnsureRatesForDates(r.Context(), pairs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to resolve rates")
		return
	}
	normalized := make(map[string]string, len(resolved))
	for key, rate := range resolved {
		normalized[key] = rate.String()
	}
	respondJSON(w, http.StatusOK, map[string]any{"rates": normalized})
}

type manualRateRequest struct {
	Currency string `json:"currency"`
	Date     string `json:"date"`
	Rate     string `json:"rate"`
}

func (h *Handler) SetManualRate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req manualRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Currency == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	date, err := parseDateParam(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	rate, err := parseRate(req.Rate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_rate")
		return
	}
	if err := h.rates.SetManualRate(r.Context(), req.Currency, date, rate); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to store rate")
		return
	}
	if err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		data, _ := json.Marshal(map[string]string{
			"currency": req.Currency,
			"date":     date.Format("2006-01-02"),
			"rate":     rate.String(),
		})
		return h.audit.Log(r.Context(), tx, userID, "set_manual_rate", "exchange_rate", req.Currency, string(data))
	}); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to store rate")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}
