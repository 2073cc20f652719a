package store

import (
	"context"

	"budget/internal/models"
)

type ImportStore struct {
	db DB
}

func NewImportStore(db DB) *ImportStore {
	return &ImportStore{db: db}
}

func (s *ImportStore) CreateImport(ctx context.Context, tx Execer, imp models.BankImport) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bank_imports (id, account_id, file_name, period_from, period_to,
			opening_balances, closing_balances, transaction_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, imp.ID, imp.AccountID, imp.FileName, imp.PeriodFrom, imp.PeriodTo,
		imp.OpeningBalances, imp.ClosingBalances, imp.TransactionCount)
	return err
}

// SetTransactionCount updates the one derived field a BankImport row has.
func (s *ImportStore) SetTransactionCount(ctx context.Context, tx Execer, importID string, count int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bank_imports SET transaction_count = $1 WHERE id = $2
	`, count, importID)
	return err
}

func (s *ImportStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.BankImport, error) {
	var rows []models.BankImport
	err := s.db.SelectContext(ctx, &rows, `
		SELECT i.id, i.account_id, i.file_name, i.period_from, i.period_to,
		       i.opening_balances, i.closing_balances, i.transaction_count, i.created_at
		FROM bank_imports i
		JOIN accounts a ON a.id = i.account_id
		WHERE a.user_id = $1
		ORDER BY i.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetForUser loads one import, scoped to the owning user through the
// account join.
func (s *ImportStore) GetForUser(ctx context.Context, userID, importID string) (models.BankImport, error) {
	var row models.BankImport
	err := s.db.GetContext(ctx, &row, `
		SELECT i.id, i.account_id, i.file_name, i.period_from, i.period_to,
		       i.opening_balances, i.closing_balances, i.transaction_count, i.created_at
		FROM bank_imports i
		JOIN accounts a ON a.id = i.account_id
		WHERE a.user_id = $1 AND i.id = $2
	`, userID, importID)
	if err != nil {
		return models.BankImport{}, err
	}
	return row, nil
}

func (s *ImportStore) CreateSkipped(ctx context.Context, tx Execer, skipped models.SkippedTransaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO skipped_transactions (id, bank_import_id, date, amount, currency,
			narration, import_hash, reason, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, skipped.ID, skipped.BankImportID, skipped.Date, skipped.AmountMinor, skipped.Currency,
		skipped.Narration, skipped.ImportHash, skipped.Reason, skipped.TransactionID)
	return err
}

func (s *ImportStore) ListSkippedByImport(ctx context.Context, importID string) ([]models.SkippedTransaction, error) {
	var rows []models.SkippedTransaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, bank_import_id, date, amount, currency, narration,
		       import_hash, reason, transaction_id, created_at
		FROM skipped_transactions
		WHERE bank_import_id = $1
		ORDER BY created_at
	`, importID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
