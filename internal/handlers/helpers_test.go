package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"budget/internal/auth"
	"budget/internal/config"
	"budget/internal/db"
	"budget/internal/models"
	"budget/internal/services"
	"budget/internal/store"
	"budget/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
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

type stubLoanDB struct {
	selectFn func(ctx context.Context, dest any, query string, args ...any) error
}

func (s stubLoanDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	if s.selectFn == nil {
		return nil
	}
	return s.selectFn(ctx, dest, query, args...)
}

type stubUserStore struct {
	createFn     func(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	getByEmailFn func(ctx context.Context, email string) (models.User, error)
	getByIDFn    func(ctx context.Context, userID string) (models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubAccountStore struct {
	listByUserFn func(ctx context.Context, userID string) ([]models.Account, error)
}

func (s stubAccountStore) ListByUser(ctx context.Context, userID string) ([]models.Account, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

type stubTransactionStore struct {
	listByUserFn func(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

type stubImportStore struct {
	listByUserFn  func(ctx context.Context, userID string, limit, offset int) ([]models.BankImport, error)
	getForUserFn  func(ctx context.Context, userID, importID string) (models.BankImport, error)
	listSkippedFn func(ctx context.Context, importID string) ([]models.SkippedTransaction, error)
}

func (s stubImportStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.BankImport, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

func (s stubImportStore) GetForUser(ctx context.Context, userID, importID string) (models.BankImport, error) {
	if s.getForUserFn == nil {
		return models.BankImport{}, nil
	}
	return s.getForUserFn(ctx, userID, importID)
}

func (s stubImportStore) ListSkippedByImport(ctx context.Context, importID string) ([]models.SkippedTransaction, error) {
	if s.listSkippedFn == nil {
		return nil, nil
	}
	return s.listSkippedFn(ctx, importID)
}

type stubLoanStore struct {
	listByUserFn func(ctx context.Context, q store.Selecter, userID string) ([]models.Loan, error)
}

func (s stubLoanStore) ListByUser(ctx context.Context, q store.Selecter, userID string) ([]models.Loan, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, q, userID)
}

type stubDepositStore struct {
	createFn     func(ctx context.Context, tx store.Execer, deposit models.Deposit) error
	listByUserFn func(ctx context.Context, userID string) ([]models.Deposit, error)
}

func (s stubDepositStore) Create(ctx context.Context, tx store.Execer, deposit models.Deposit) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, deposit)
}

func (s stubDepositStore) ListByUser(ctx context.Context, userID string) ([]models.Deposit, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubImportService struct {
	importFn func(ctx context.Context, req services.ImportRequest) (services.ImportSummary, error)
}

func (s stubImportService) Import(ctx context.Context, req services.ImportRequest) (services.ImportSummary, error) {
	if s.importFn == nil {
		return services.ImportSummary{}, nil
	}
	return s.importFn(ctx, req)
}

type stubTransactionService struct {
	createManualFn func(ctx context.Context, t models.Transaction) (string, error)
	deleteFn       func(ctx context.Context, userID, transactionID string) error
}

func (s stubTransactionService) CreateManual(ctx context.Context, t models.Transaction) (string, error) {
	if s.createManualFn == nil {
		return "tx-1", nil
	}
	return s.createManualFn(ctx, t)
}

func (s stubTransactionService) Delete(ctx context.Context, userID, transactionID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, userID, transactionID)
}

type stubLoanService struct {
	createFn    func(ctx context.Context, loan models.Loan, disbursementID *string) (string, error)
	reconcileFn func(ctx context.Context, userID string) (services.ReconcileSummary, error)
}

func (s stubLoanService) Create(ctx context.Context, loan models.Loan, disbursementID *string) (string, error) {
	if s.createFn == nil {
		return "loan-1", nil
	}
	return s.createFn(ctx, loan, disbursementID)
}

func (s stubLoanService) Reconcile(ctx context.Context, userID string) (services.ReconcileSummary, error) {
	if s.reconcileFn == nil {
		return services.ReconcileSummary{}, nil
	}
	return s.reconcileFn(ctx, userID)
}

type stubRateService struct {
	getRateFn       func(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error)
	convertFn       func(ctx context.Context, amountMinor int64, from, to string, date time.Time) (int64, error)
	ensureFn        func(ctx context.Context, pairs []services.RatePair) (map[string]decimal.Decimal, error)
	setManualRateFn func(ctx context.Context, currency string, date time.Time, rate decimal.Decimal) error
}

func (s stubRateService) GetRate(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error) {
	if s.getRateFn == nil {
		return decimal.NewFromInt(1), nil
	}
	return s.getRateFn(ctx, currency, date)
}

func (s stubRateService) ConvertAmount(ctx context.Context, amountMinor int64, from, to string, date time.Time) (int64, error) {
	if s.convertFn == nil {
		return amountMinor, nil
	}
	return s.convertFn(ctx, amountMinor, from, to, date)
}

func (s stubRateService) EnsureRatesForDates(ctx context.Context, pairs []services.RatePair) (map[string]decimal.Decimal, error) {
	if s.ensureFn == nil {
		return nil, nil
	}
	return s.ensureFn(ctx, pairs)
}

func (s stubRateService) SetManualRate(ctx context.Context, currency string, date time.Time, rate decimal.Decimal) error {
	if s.setManualRateFn == nil {
		return nil
	}
	return s.setManualRateFn(ctx, currency, date, rate)
}

type handlerStubs struct {
	loanDB       store.Selecter
	txRunner     db.TxRunner
	users        UserStore
	accounts     AccountStore
	transactions TransactionStore
	imports      ImportStore
	loans        LoanStore
	deposits     DepositStore
	audit        AuditStore
	importer     ImportService
	manual       TransactionService
	reconciler   LoanService
	rates        RateService
}

func newTestHandler(stubs handlerStubs) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
		BaseCurrency:   "GEL",
	}
	if stubs.loanDB == nil {
		stubs.loanDB = stubLoanDB{}
	}
	if stubs.txRunner == nil {
		stubs.txRunner = fakeTxRunner{}
	}
	if stubs.users == nil {
		stubs.users = stubUserStore{}
	}
	if stubs.accounts == nil {
		stubs.accounts = stubAccountStore{}
	}
	if stubs.transactions == nil {
		stubs.transactions = stubTransactionStore{}
	}
	if stubs.imports == nil {
		stubs.imports = stubImportStore{}
	}
	if stubs.loans == nil {
		stubs.loans = stubLoanStore{}
	}
	if stubs.deposits == nil {
		stubs.deposits = stubDepositStore{}
	}
	if stubs.audit == nil {
		stubs.audit = stubAuditStore{}
	}
	if stubs.importer == nil {
		stubs.importer = stubImportService{}
	}
	if stubs.manual == nil {
		stubs.manual = stubTransactionService{}
	}
	if stubs.reconciler == nil {
		stubs.reconciler = stubLoanService{}
	}
	if stubs.rates == nil {
		stubs.rates = stubRateService{}
	}
	return New(stubs.loanDB, stubs.txRunner, cfg, stubs.users, stubs.accounts, stubs.transactions, stubs.imports, stubs.loans, stubs.deposits, stubs.audit, stubs.importer, stubs.manual, stubs.reconciler, stubs.rates, websocket.NewHub())
}

// serveAuthed routes a request through the full router with a valid bearer
// token for the given user.
func serveAuthed(t *testing.T, handler *Handler, req *http.Request, userID string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	return rr
}

func stringPtr(value string) *string {
	return &value
}
