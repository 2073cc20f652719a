package services

import (
	"context"
	"time"

	"budget/internal/models"
	"budget/internal/ratefeed"
	"budget/internal/store"
	"budget/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubAccountStore struct {
	createFn    func(ctx context.Context, tx store.Execer, account models.Account) error
	getByIDFn   func(ctx context.Context, q store.Getter, accountID string) (models.Account, error)
	getByIBANFn func(ctx context.Context, q store.Getter, userID, iban string) (models.Account, error)
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, account models.Account) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, account)
}

func (s stubAccountStore) GetByID(ctx context.Context, q store.Getter, accountID string) (models.Account, error) {
	if s.getByIDFn == nil {
		return models.Account{}, nil
	}
	return s.getByIDFn(ctx, q, accountID)
}

func (s stubAccountStore) GetByIBAN(ctx context.Context, q store.Getter, userID, iban string) (models.Account, error) {
	if s.getByIBANFn == nil {
		return models.Account{}, nil
	}
	return s.getByIBANFn(ctx, q, userID, iban)
}

type stubTransactionStore struct {
	createFn             func(ctx context.Context, tx store.Execer, t models.Transaction) error
	getByIDFn            func(ctx context.Context, userID, transactionID string) (models.Transaction, error)
	deleteFn             func(ctx context.Context, tx store.Execer, userID, transactionID string) (int64, error)
	getByHashFn          func(ctx context.Context, q store.Getter, hash string) (models.Transaction, error)
	listByUserAndTypesFn func(ctx context.Context, q store.Selecter, userID string, types []models.TransactionType) ([]models.Transaction, error)
	setLoanFn            func(ctx context.Context, tx store.Execer, transactionID string, loanID *string) error
	clearLoanLinksFn     func(ctx context.Context, tx store.Execer, userID string) error
}

func (s stubTransactionStore) Create(ctx context.Context, tx store.Execer, t models.Transaction) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, t)
}

func (s stubTransactionStore) GetByID(ctx context.Context, userID, transactionID string) (models.Transaction, error) {
	if s.getByIDFn == nil {
		return models.Transaction{}, nil
	}
	return s.getByIDFn(ctx, userID, transactionID)
}

func (s stubTransactionStore) Delete(ctx context.Context, tx store.Execer, userID, transactionID string) (int64, error) {
	if s.deleteFn == nil {
		return 1, nil
	}
	return s.deleteFn(ctx, tx, userID, transactionID)
}

func (s stubTransactionStore) GetByHash(ctx context.Context, q store.Getter, hash string) (models.Transaction, error) {
	if s.getByHashFn == nil {
		return models.Transaction{}, nil
	}
	return s.getByHashFn(ctx, q, hash)
}

func (s stubTransactionStore) ListByUserAndTypes(ctx context.Context, q store.Selecter, userID string, types []models.TransactionType) ([]models.Transaction, error) {
	if s.listByUserAndTypesFn == nil {
		return nil, nil
	}
	return s.listByUserAndTypesFn(ctx, q, userID, types)
}

func (s stubTransactionStore) SetLoan(ctx context.Context, tx store.Execer, transactionID string, loanID *string) error {
	if s.setLoanFn == nil {
		return nil
	}
	return s.setLoanFn(ctx, tx, transactionID, loanID)
}

func (s stubTransactionStore) ClearLoanLinks(ctx context.Context, tx store.Execer, userID string) error {
	if s.clearLoanLinksFn == nil {
		return nil
	}
	return s.clearLoanLinksFn(ctx, tx, userID)
}

type stubImportStore struct {
	createImportFn        func(ctx context.Context, tx store.Execer, imp models.BankImport) error
	setTransactionCountFn func(ctx context.Context, tx store.Execer, importID string, count int) error
	createSkippedFn       func(ctx context.Context, tx store.Execer, skipped models.SkippedTransaction) error
}

func (s stubImportStore) CreateImport(ctx context.Context, tx store.Execer, imp models.BankImport) error {
	if s.createImportFn == nil {
		return nil
	}
	return s.createImportFn(ctx, tx, imp)
}

func (s stubImportStore) SetTransactionCount(ctx context.Context, tx store.Execer, importID string, count int) error {
	if s.setTransactionCountFn == nil {
		return nil
	}
	return s.setTransactionCountFn(ctx, tx, importID, count)
}

func (s stubImportStore) CreateSkipped(ctx context.Context, tx store.Execer, skipped models.SkippedTransaction) error {
	if s.createSkippedFn == nil {
		return nil
	}
	return s.createSkippedFn(ctx, tx, skipped)
}

type stubDepositStore struct {
	findActiveFn   func(ctx context.Context, q store.Getter, userID, currency string) (models.Deposit, error)
	addToBalanceFn func(ctx context.Context, tx store.Execer, depositID string, deltaMinor int64) error
}

func (s stubDepositStore) FindActiveByCurrency(ctx context.Context, q store.Getter, userID, currency string) (models.Deposit, error) {
	if s.findActiveFn == nil {
		return models.Deposit{}, nil
	}
	return s.findActiveFn(ctx, q, userID, currency)
}

func (s stubDepositStore) AddToBalance(ctx context.Context, tx store.Execer, depositID string, deltaMinor int64) error {
	if s.addToBalanceFn == nil {
		return nil
	}
	return s.addToBalanceFn(ctx, tx, depositID, deltaMinor)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubHub struct {
	broadcastFn func(userID string, update websocket.ImportUpdate)
}

func (s stubHub) BroadcastImport(userID string, update websocket.ImportUpdate) {
	if s.broadcastFn != nil {
		s.broadcastFn(userID, update)
	}
}

type stubLoanStore struct {
	createFn             func(ctx context.Context, tx store.Execer, loan models.Loan) error
	listByUserFn         func(ctx context.Context, q store.Selecter, userID string) ([]models.Loan, error)
	setReconciledStateFn func(ctx context.Context, tx store.Execer, loanID string, remainingMinor int64, repaid bool, loanNumber *string) error
	adjustRemainingFn    func(ctx context.Context, tx store.Execer, loanID string, deltaMinor int64) error
}

func (s stubLoanStore) Create(ctx context.Context, tx store.Execer, loan models.Loan) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, loan)
}

func (s stubLoanStore) ListByUser(ctx context.Context, q store.Selecter, userID string) ([]models.Loan, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, q, userID)
}

func (s stubLoanStore) SetReconciledState(ctx context.Context, tx store.Execer, loanID string, remainingMinor int64, repaid bool, loanNumber *string) error {
	if s.setReconciledStateFn == nil {
		return nil
	}
	return s.setReconciledStateFn(ctx, tx, loanID, remainingMinor, repaid, loanNumber)
}

func (s stubLoanStore) AdjustRemaining(ctx context.Context, tx store.Execer, loanID string, deltaMinor int64) error {
	if s.adjustRemainingFn == nil {
		return nil
	}
	return s.adjustRemainingFn(ctx, tx, loanID, deltaMinor)
}

type stubRateStore struct {
	getByCurrencyDateFn func(ctx context.Context, currency string, date time.Time) (models.ExchangeRate, error)
	listByDatesFn       func(ctx context.Context, dates []time.Time) ([]models.ExchangeRate, error)
	insertFn            func(ctx context.Context, rate models.ExchangeRate) error
	updateFn            func(ctx context.Context, rate models.ExchangeRate) (int64, error)
}

func (s stubRateStore) GetByCurrencyDate(ctx context.Context, currency string, date time.Time) (models.ExchangeRate, error) {
	if s.getByCurrencyDateFn == nil {
		return models.ExchangeRate{}, nil
	}
	return s.getByCurrencyDateFn(ctx, currency, date)
}

func (s stubRateStore) ListByDates(ctx context.Context, dates []time.Time) ([]models.ExchangeRate, error) {
	if s.listByDatesFn == nil {
		return nil, nil
	}
	return s.listByDatesFn(ctx, dates)
}

func (s stubRateStore) Insert(ctx context.Context, rate models.ExchangeRate) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, rate)
}

func (s stubRateStore) Update(ctx context.Context, rate models.ExchangeRate) (int64, error) {
	if s.updateFn == nil {
		return 1, nil
	}
	return s.updateFn(ctx, rate)
}

type stubRateFeed struct {
	ratesForDateFn func(ctx context.Context, date time.Time) ([]ratefeed.Rate, error)
}

func (s stubRateFeed) RatesForDate(ctx context.Context, date time.Time) ([]ratefeed.Rate, error) {
	if s.ratesForDateFn == nil {
		return nil, nil
	}
	return s.ratesForDateFn(ctx, date)
}

func stringPtr(value string) *string {
	return &value
}
