package store

import (
	"context"

	"budget/internal/models"

	"github.com/lib/pq"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

const transactionColumns = `
	id, user_id, import_hash, title, amount, currency, type, direction,
	date, posting_date, narration, merchant, merchant_city, mcc,
	card_last_four, account_id, bank_import_id, category_id,
	income_source_id, planned_income_id, budget_target_id, loan_id,
	exchange_rate_id, created_at
`

func (s *TransactionStore) Create(ctx context.Context, tx Execer, t models.Transaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, import_hash, title, amount, currency, type, direction,
			date, posting_date, narration, merchant, merchant_city, mcc,
			card_last_four, account_id, bank_import_id, category_id,
			income_source_id, planned_income_id, budget_target_id, loan_id, exchange_rate_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`, t.ID, t.UserID, t.ImportHash, t.Title, t.AmountMinor, t.Currency, t.Type, t.Direction,
		t.Date, t.PostingDate, t.Narration, t.Merchant, t.MerchantCity, t.MCC,
		t.CardLastFour, t.AccountID, t.BankImportID, t.CategoryID,
		t.IncomeSourceID, t.PlannedIncomeID, t.BudgetTargetID, t.LoanID, t.ExchangeRateID)
	return err
}

func (s *TransactionStore) GetByID(ctx context.Context, userID, transactionID string) (models.Transaction, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1 AND user_id = $2
	`, transactionID, userID)
	if err != nil {
		return models.Transaction{}, err
	}
	return row, nil
}

// GetByHash resolves the dedup key. sql.ErrNoRows means the hash is unseen.
func (s *TransactionStore) GetByHash(ctx context.Context, q Getter, hash string) (models.Transaction, error) {
	var row models.Transaction
	err := q.GetContext(ctx, &row, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE import_hash = $1
	`, hash)
	if err != nil {
		return models.Transaction{}, err
	}
	return row, nil
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByUserAndTypes returns a user's transactions of the given kinds in
// insertion order, which the loan matcher relies on.
func (s *TransactionStore) ListByUserAndTypes(ctx context.Context, q Selecter, userID string, types []models.TransactionType) ([]models.Transaction, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	var rows []models.Transaction
	err := q.SelectContext(ctx, &rows, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1 AND type = ANY($2)
		ORDER BY created_at, id
	`, userID, pq.Array(names))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) SetLoan(ctx context.Context, tx Execer, transactionID string, loanID *string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE transactions SET loan_id = $1 WHERE id = $2
	`, loanID, transactionID)
	return err
}

// ClearLoanLinks unlinks every repayment and interest transaction of a user;
// disbursement links are kept, they identify each loan's originating amount.
func (s *TransactionStore) ClearLoanLinks(ctx context.Context, tx Execer, userID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET loan_id = NULL
		WHERE user_id = $1 AND type IN ($2, $3)
	`, userID, models.TypeLoanRepayment, models.TypeLoanInterest)
	return err
}

func (s *TransactionStore) Delete(ctx context.Context, tx Execer, userID, transactionID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM transactions WHERE id = $1 AND user_id = $2
	`, transactionID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
