package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"budget/internal/models"
	"budget/internal/services"
)

func TestCreateTransaction(t *testing.T) {
	var captured models.Transaction
	manual := stubTransactionService{
		createManualFn: func(ctx context.Context, tr models.Transaction) (string, error) {
			captured = tr
			return "tx-42", nil
		},
	}
	handler := newTestHandler(handlerStubs{manual: manual})

	body, _ := json.Marshal(map[string]any{
		"title":    "Rent March",
		"amount":   "1200.50",
		"currency": "GEL",
		"type":     "expense",
		"date":     "2025-03-01",
	})
	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
	rr := serveAuthed(t, handler, req, "user-1")

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if captured.UserID != "user-1" || captured.AmountMinor != 120050 {
		t.Fatalf("unexpected transaction: %+v", captured)
	}
	if captured.Type != models.TypeExpense {
		t.Fatalf("expected expense type, got %s", captured.Type)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["transaction_id"] != "tx-42" {
		t.Fatalf("expected transaction_id tx-42, got %q", resp["transaction_id"])
	}
}

func TestCreateTransactionRejectsBadInput(t *testing.T) {
	handler := newTestHandler(handlerStubs{})

	cases := []map[string]any{
		{"amount": "0", "currency": "GEL", "type": "expense", "date": "2025-03-01"},
		{"amount": "-5.00", "currency": "GEL", "type": "expense", "date": "2025-03-01"},
		{"amount": "12.345", "currency": "GEL", "type": "expense", "date": "2025-03-01"},
		{"amount": "10.00", "currency": "GEL", "type": "expense", "date": "01/03/2025"},
		{"amount": "10.00", "currency": "", "type": "expense", "date": "2025-03-01"},
		{"amount": "10.00", "currency": "GEL", "type": "", "date": "2025-03-01"},
	}
	for _, payload := range cases {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
		rr := serveAuthed(t, handler, req, "user-1")
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("payload %v: expected 400, got %d", payload, rr.Code)
		}
	}
}

func TestDeleteTransaction(t *testing.T) {
	var deletedID string
	manual := stubTransactionService{
		deleteFn: func(ctx context.Context, userID, transactionID string) error {
			deletedID = transactionID
			return nil
		},
	}
	handler := newTestHandler(handlerStubs{manual: manual})

	req := httptest.NewRequest(http.MethodDelete, "/transactions/tx-42", nil)
	rr := serveAuthed(t, handler, req, "user-1")

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if deletedID != "tx-42" {
		t.Fatalf("expected tx-42 deleted, got %q", deletedID)
	}
}

func TestDeleteTransactionNotFound(t *testing.T) {
	manual := stubTransactionService{
		deleteFn: func(ctx context.Context, userID, transactionID string) error {
			return services.ErrTransactionNotFound
		},
	}
	handler := newTestHandler(handlerStubs{manual: manual})

	req := httptest.NewRequest(http.MethodDelete, "/transactions/missing", nil)
	rr := serveAuthed(t, handler, req, "user-1")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestListTransactions(t *testing.T) {
	var gotLimit, gotOffset int
	transactions := stubTransactionStore{
		listByUserFn: func(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
			gotLimit, gotOffset = limit, offset
			return []models.Transaction{{
				ID:          "tx-1",
				Title:       "Carrefour",
				AmountMinor: 4530,
				Currency:    "GEL",
				Type:        models.TypeExpense,
			}}, nil
		},
	}
	handler := newTestHandler(handlerStubs{transactions: transactions})

	req := httptest.NewRequest(http.MethodGet, "/transactions?page=3&limit=10", nil)
	rr := serveAuthed(t, handler, req, "user-1")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotLimit != 10 || gotOffset != 20 {
		t.Fatalf("expected limit 10 offset 20, got %d %d", gotLimit, gotOffset)
	}
	var resp []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0]["amount"] != "45.30" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestTransactionsRequireAuth(t *testing.T) {
	handler := newTestHandler(handlerStubs{})

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
