package store

import (
	"context"

	"budget/internal/models"
)

type LoanStore struct {
	db DB
}

func NewLoanStore(db DB) *LoanStore {
	return &LoanStore{db: db}
}

func (s *LoanStore) Create(ctx context.Context, tx Execer, loan models.Loan) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO loans (id, user_id, title, remaining_amount, monthly_payment,
			currency, holder_name, loan_number, repaid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, loan.ID, loan.UserID, loan.Title, loan.RemainingMinor, loan.MonthlyMinor,
		loan.Currency, loan.HolderName, loan.LoanNumber, loan.Repaid)
	return err
}

func (s *LoanStore) GetByID(ctx context.Context, q Getter, loanID string) (models.Loan, error) {
	var row models.Loan
	err := q.GetContext(ctx, &row, `
		SELECT id, user_id, title, remaining_amount, monthly_payment,
		       currency, holder_name, loan_number, repaid, created_at
		FROM loans
		WHERE id = $1
	`, loanID)
	if err != nil {
		return models.Loan{}, err
	}
	return row, nil
}

func (s *LoanStore) ListByUser(ctx context.Context, q Selecter, userID string) ([]models.Loan, error) {
	var rows []models.Loan
	err := q.SelectContext(ctx, &rows, `
		SELECT id, user_id, title, remaining_amount, monthly_payment,
		       currency, holder_name, loan_number, repaid, created_at
		FROM loans
		WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SetReconciledState writes the fields the reconciliation engine owns.
func (s *LoanStore) SetReconciledState(ctx context.Context, tx Execer, loanID string, remainingMinor int64, repaid bool, loanNumber *string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE loans
		SET remaining_amount = $1, repaid = $2, loan_number = $3
		WHERE id = $4
	`, remainingMinor, repaid, loanNumber, loanID)
	return err
}

// AdjustRemaining applies a repayment side effect from transaction
// create/update/delete outside a full reconciliation run.
func (s *LoanStore) AdjustRemaining(ctx context.Context, tx Execer, loanID string, deltaMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE loans
		SET remaining_amount = remaining_amount + $1
		WHERE id = $2
	`, deltaMinor, loanID)
	return err
}
