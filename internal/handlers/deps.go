package handlers

import (
	"context"
	"time"

	"budget/internal/models"
	"budget/internal/services"
	"budget/internal/store"

	"github.com/shopspring/decimal"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type AccountStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Account, error)
}

type TransactionStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
}

type ImportStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.BankImport, error)
	GetForUser(ctx context.Context, userID, importID string) (models.BankImport, error)
	ListSkippedByImport(ctx context.Context, importID string) ([]models.SkippedTransaction, error)
}

type LoanStore interface {
	ListByUser(ctx context.Context, q store.Selecter, userID string) ([]models.Loan, error)
}

type DepositStore interface {
	Create(ctx context.Context, tx store.Execer, deposit models.Deposit) error
	ListByUser(ctx context.Context, userID string) ([]models.Deposit, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type ImportService interface {
	Import(ctx context.Context, req services.ImportRequest) (services.ImportSummary, error)
}

type TransactionService interface {
	CreateManual(ctx context.Context, t models.Transaction) (string, error)
	Delete(ctx context.Context, userID, transactionID string) error
}

type LoanService interface {
	Create(ctx context.Context, loan models.Loan, disbursementID *string) (string, error)
	Reconcile(ctx context.Context, userID string) (services.ReconcileSummary, error)
}

type RateService interface {
	GetRate(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error)
	ConvertAmount(ctx context.Context, amountMinor int64, from, to string, date time.Time) (int64, error)
	EnsureRatesForDates(ctx context.Context, pairs []services.RatePair) (map[string]decimal.Decimal, error)
	SetManualRate(ctx context.Context, currency string, date time.Time, rate decimal.Decimal) error
}
