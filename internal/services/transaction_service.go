package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"budget/internal/db"
	"budget/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// TransactionService handles manual transaction entry and deletion. Imported
// rows go through ImportService; this path covers the cash transactions a
// statement never sees.
type TransactionService struct {
	txRunner     db.TxRunner
	transactions TransactionStore
	loans        LoanStore
	audit        AuditStore
}

func NewTransactionService(txRunner db.TxRunner, transactions TransactionStore, loans LoanStore, audit AuditStore) *TransactionService {
	return &TransactionService{
		txRunner:     txRunner,
		transactions: transactions,
		loans:        loans,
		audit:        audit,
	}
}

// CreateManual persists a hand-entered transaction. Linking it to a loan as
// a repayment pays the loan down by the transaction amount.
func (s *TransactionService) CreateManual(ctx context.Context, t models.Transaction) (string, error) {
	if t.AmountMinor <= 0 {
		return "", ErrInvalidAmount
	}
	t.ID = uuid.NewString()
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.transactions.Create(ctx, tx, t); err != nil {
			return err
		}
		if t.LoanID != nil && t.Type == models.TypeLoanRepayment {
			if err := s.loans.AdjustRemaining(ctx, tx, *t.LoanID, -t.AmountMinor); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(map[string]string{"transaction_id": t.ID})
		return s.audit.Log(ctx, tx, t.UserID, "create_transaction", "transaction", t.ID, string(data))
	})
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// Delete removes a transaction and reverses the loan-balance side effect a
// linked repayment caused.
func (s *TransactionService) Delete(ctx context.Context, userID, transactionID string) error {
	existing, err := s.transactions.GetByID(ctx, userID, transactionID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTransactionNotFound
	}
	if err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		deleted, err := s.transactions.Delete(ctx, tx, userID, transactionID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrTransactionNotFound
		}
		if existing.LoanID != nil && existing.Type == models.TypeLoanRepayment {
			if err := s.loans.AdjustRemaining(ctx, tx, *existing.LoanID, existing.AmountMinor); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(map[string]string{"transaction_id": transactionID})
		return s.audit.Log(ctx, tx, userID, "delete_transaction", "transaction", transactionID, string(data))
	})
}
