package store

import (
	"context"

	"budget/internal/models"
)

type DepositStore struct {
	db DB
}

func NewDepositStore(db DB) *DepositStore {
	return &DepositStore{db: db}
}

func (s *DepositStore) Create(ctx context.Context, tx Execer, deposit models.Deposit) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO deposits (id, user_id, title, balance, currency, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, deposit.ID, deposit.UserID, deposit.Title, deposit.BalanceMinor, deposit.Currency, deposit.Active)
	return err
}

// FindActiveByCurrency resolves the user's single active deposit in a
// currency. sql.ErrNoRows means there is none, which importers treat as a
// warning rather than an error.
func (s *DepositStore) FindActiveByCurrency(ctx context.Context, q Getter, userID, currency string) (models.Deposit, error) {
	var row models.Deposit
	err := q.GetContext(ctx, &row, `
		SELECT id, user_id, title, balance, currency, active, created_at
		FROM deposits
		WHERE user_id = $1 AND currency = $2 AND active = TRUE
	`, userID, currency)
	if err != nil {
		return models.Deposit{}, err
	}
	return row, nil
}

func (s *DepositStore) AddToBalance(ctx context.Context, tx Execer, depositID string, deltaMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE deposits
		SET balance = balance + $1
		WHERE id = $2
	`, deltaMinor, depositID)
	return err
}

func (s *DepositStore) ListByUser(ctx context.Context, userID string) ([]models.Deposit, error) {
	var rows []models.Deposit
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, title, balance, currency, active, created_at
		FROM deposits
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
