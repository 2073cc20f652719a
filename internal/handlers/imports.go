package handlers

import (
	"database/sql"
	"errors"
	"io"
	"net/http"

	"budget/internal/middleware"
	"budget/internal/services"
	"budget/internal/statement"

	"github.com/go-chi/chi/v5"
)

// maxStatementBytes caps uploaded workbooks at 10 MiB; real statements are
// well under 1 MiB.
const maxStatementBytes = 10 << 20

func (h *Handler) UploadStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(maxStatementBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("statement")
	if err != nil {
		respondError(w, http.StatusBadRequest, "statement file is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxStatementBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unable to read statement")
		return
	}

	var accountID *string
	if raw := r.FormValue("account_id"); raw != "" {
		accountID = &raw
	}
	summary, err := h.importer.Import(r.Context(), services.ImportRequest{
		UserID:    userID,
		FileName:  header.Filename,
		Data:      data,
		AccountID: accountID,
	})
	if err != nil {
		switch {
		case errors.Is(err, statement.ErrUnsupportedFormat):
			respondError(w, http.StatusUnprocessableEntity, "unsupported_statement_format")
		case errors.Is(err, statement.ErrMalformed):
			respondError(w, http.StatusUnprocessableEntity, "malformed_statement")
		case errors.Is(err, services.ErrAccountNotFound):
			respondError(w, http.StatusForbidden, "account_access_denied")
		default:
			respondError(w, http.StatusInternalServerError, "import_failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"import_id":  summary.ImportID,
		"account_id": summary.AccountID,
		"created":    summary.Created,
		"skipped":    summary.Skipped,
		"total":      summary.Total,
		"loan_cost":  valueToMoney(summary.LoanCostMinor),
	})
}

func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 20)
	page := parseInt(query.Get("page"), 1)
	offset := (page - 1) * limit
	imports, err := h.imports.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load imports")
		return
	}
	respondJSON(w, http.StatusOK, imports)
}

func (h *Handler) ListSkipped(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	importID := chi.URLParam(r, "id")
	if _, err := h.imports.GetForUser(r.Context(), userID, importID); err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "import not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load import")
		return
	}
	skipped, err := h.imports.ListSkippedByImport(r.Context(), importID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load skipped rows")
		return
	}
	normalized := make([]map[string]any, 0, len(skipped))
	for _, row := range skipped {
		normalized = append(normalized, map[string]any{
			"id":             row.ID,
			"date":           row.Date,
			"amount":         valueToMoney(row.AmountMinor),
			"currency":       row.Currency,
			"narration":      row.Narration,
			"reason":         row.Reason,
			"transaction_id": valueToString(row.TransactionID),
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}
