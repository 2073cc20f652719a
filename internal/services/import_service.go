package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"budget/internal/db"
	"budget/internal/models"
	"budget/internal/money"
	"budget/internal/statement"
	"budget/internal/store"
	"budget/internal/websocket"
	"budget/internal/xlsx"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrAccountNotFound = errors.New("account does not belong to user")

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, account models.Account) error
	GetByID(ctx context.Context, q store.Getter, accountID string) (models.Account, error)
	GetByIBAN(ctx context.Context, q store.Getter, userID, iban string) (models.Account, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, t models.Transaction) error
	GetByID(ctx context.Context, userID, transactionID string) (models.Transaction, error)
	Delete(ctx context.Context, tx store.Execer, userID, transactionID string) (int64, error)
	GetByHash(ctx context.Context, q store.Getter, hash string) (models.Transaction, error)
	ListByUserAndTypes(ctx context.Context, q store.Selecter, userID string, types []models.TransactionType) ([]models.Transaction, error)
	SetLoan(ctx context.Context, tx store.Execer, transactionID string, loanID *string) error
	ClearLoanLinks(ctx context.Context, tx store.Execer, userID string) error
}

type ImportStore interface {
	CreateImport(ctx context.Context, tx store.Execer, imp models.BankImport) error
	SetTransactionCount(ctx context.Context, tx store.Execer, importID string, count int) error
	CreateSkipped(ctx context.Context, tx store.Execer, skipped models.SkippedTransaction) error
}

type DepositStore interface {
	FindActiveByCurrency(ctx context.Context, q store.Getter, userID, currency string) (models.Deposit, error)
	AddToBalance(ctx context.Context, tx store.Execer, depositID string, deltaMinor int64) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type ImportHub interface {
	BroadcastImport(userID string, update websocket.ImportUpdate)
}

type ImportService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionStore
	imports      ImportStore
	deposits     DepositStore
	audit        AuditStore
	hub          ImportHub
}

func NewImportService(txRunner db.TxRunner, accounts AccountStore, transactions TransactionStore, imports ImportStore, deposits DepositStore, audit AuditStore, hub ImportHub) *ImportService {
	return &ImportService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		imports:      imports,
		deposits:     deposits,
		audit:        audit,
		hub:          hub,
	}
}

type ImportRequest struct {
	UserID    string
	FileName  string
	Data      []byte
	AccountID *string
}

type ImportSummary struct {
	ImportID      string
	AccountID     string
	Created       int
	Skipped       int
	Total         int
	LoanCostMinor int64
	Details       statement.Details
	SkippedRows   []models.SkippedTransaction
}

// Import runs the full upload pipeline: parser selection, account
// resolution, dedup, persistence and deposit balance updates. Everything
// after parsing happens in one serializable transaction, so a failure
// partway leaves no partial state.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (ImportSummary, error) {
	wb, err := xlsx.Open(req.Data)
	if err != nil {
		return ImportSummary{}, err
	}
	defer wb.Close()

	parser, err := statement.Detect(wb)
	if err != nil {
		return ImportSummary{}, err
	}
	details, err := parser.ParseDetails(wb)
	if err != nil {
		return ImportSummary{}, err
	}
	parsed, err := parser.ParseTransactions(wb)
	if err != nil {
		return ImportSummary{}, err
	}

	summary := ImportSummary{Total: len(parsed), Details: details}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.resolveAccount(ctx, tx, req, details)
		if err != nil {
			return err
		}
		summary.AccountID = account.ID

		importID := uuid.NewString()
		summary.ImportID = importID
		if err := s.imports.CreateImport(ctx, tx, models.BankImport{
			ID:              importID,
			AccountID:       account.ID,
			FileName:        req.FileName,
			PeriodFrom:      details.PeriodFrom,
			PeriodTo:        details.PeriodTo,
			OpeningBalances: encodeBalances(details.OpeningBalances),
			ClosingBalances: encodeBalances(details.ClosingBalances),
		}); err != nil {
			return err
		}

		depositTotals := map[string]int64{}
		for _, row := range parsed {
			hash := ImportHash(details.IBAN, row.PostingDate, row.Narration, row.AmountMinor, row.Currency)
			existing, err := s.transactions.GetByHash(ctx, tx, hash)
			if err == nil {
				skipped := models.SkippedTransaction{
					ID:            uuid.NewString(),
					BankImportID:  importID,
					Date:          row.Date,
					AmountMinor:   row.AmountMinor,
					Currency:      row.Currency,
					Narration:     row.Narration,
					ImportHash:    hash,
					Reason:        "duplicate",
					TransactionID: &existing.ID,
				}
				if err := s.imports.CreateSkipped(ctx, tx, skipped); err != nil {
					return err
				}
				summary.SkippedRows = append(summary.SkippedRows, skipped)
				summary.Skipped++
				continue
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			if err := s.transactions.Create(ctx, tx, importRowToTransaction(row, req.UserID, account.ID, importID, hash)); err != nil {
				return err
			}
			summary.Created++
			switch row.Type {
			case models.TypeDepositPlacement:
				depositTotals[row.Currency] += row.AmountMinor
			case models.TypeLoanInterest:
				summary.LoanCostMinor += row.AmountMinor
			}
		}

		if err := s.imports.SetTransactionCount(ctx, tx, importID, summary.Created); err != nil {
			return err
		}
		if err := s.applyDepositTotals(ctx, tx, req.UserID, depositTotals); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]any{
			"file_name": req.FileName,
			"created":   summary.Created,
			"skipped":   summary.Skipped,
		})
		return s.audit.Log(ctx, tx, req.UserID, "import", "bank_import", importID, string(data))
	})
	if err != nil {
		return ImportSummary{}, err
	}

	s.hub.BroadcastImport(req.UserID, websocket.ImportUpdate{
		ImportID: summary.ImportID,
		FileName: req.FileName,
		Created:  summary.Created,
		Skipped:  summary.Skipped,
		Total:    summary.Total,
	})
	return summary, nil
}

func (s *ImportService) resolveAccount(ctx context.Context, tx *sqlx.Tx, req ImportRequest, details statement.Details) (models.Account, error) {
	if req.AccountID != nil {
		account, err := s.accounts.GetByID(ctx, tx, *req.AccountID)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, ErrAccountNotFound
		}
		if err != nil {
			return models.Account{}, err
		}
		if account.UserID != req.UserID {
			return models.Account{}, ErrAccountNotFound
		}
		return account, nil
	}
	account, err := s.accounts.GetByIBAN(ctx, tx, req.UserID, details.IBAN)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, err
	}
	iban := details.IBAN
	account = models.Account{
		ID:     uuid.NewString(),
		UserID: req.UserID,
		Type:   "checking",
		Title:  accountTitle(details),
		IBAN:   &iban,
	}
	if len(details.Cards) > 0 {
		cards := strings.Join(details.Cards, ",")
		account.Cards = &cards
	}
	if err := s.accounts.Create(ctx, tx, account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (s *ImportService) applyDepositTotals(ctx context.Context, tx *sqlx.Tx, userID string, totals map[string]int64) error {
	currencies := make([]string, 0, len(totals))
	for currency := range totals {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)
	for _, currency := range currencies {
		deposit, err := s.deposits.FindActiveByCurrency(ctx, tx, userID, currency)
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("import: no active %s deposit for user %s, skipping balance update", currency, userID)
			continue
		}
		if err != nil {
			return err
		}
		if err := s.deposits.AddToBalance(ctx, tx, deposit.ID, totals[currency]); err != nil {
			return err
		}
	}
	return nil
}

// ImportHash is the dedup fingerprint of a statement row. The formula must
// stay bit-reproducible across re-imports.
func ImportHash(iban string, postingDate time.Time, narration string, amountMinor int64, currency string) string {
	payload := fmt.Sprintf("%s|%s|%s|%s|%s",
		iban,
		postingDate.Format("2006-01-02"),
		narration,
		money.FormatMinor(amountMinor),
		currency,
	)
	digest := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(digest[:])
}

func importRowToTransaction(row statement.Transaction, userID, accountID, importID, hash string) models.Transaction {
	postingDate := row.PostingDate
	narration := row.Narration
	return models.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		ImportHash:   &hash,
		Title:        transactionTitle(row),
		AmountMinor:  row.AmountMinor,
		Currency:     row.Currency,
		Type:         row.Type,
		Direction:    row.Direction,
		Date:         row.Date,
		PostingDate:  &postingDate,
		Narration:    &narration,
		Merchant:     row.Merchant,
		MerchantCity: row.MerchantCity,
		MCC:          row.MCC,
		CardLastFour: row.CardLastFour,
		AccountID:    &accountID,
		BankImportID: &importID,
	}
}

func transactionTitle(row statement.Transaction) string {
	if row.Merchant != nil {
		return *row.Merchant
	}
	if len(row.Narration) > 80 {
		return row.Narration[:80]
	}
	return row.Narration
}

func accountTitle(details statement.Details) string {
	if details.OwnerName != "" {
		return details.OwnerName
	}
	return details.IBAN
}

func encodeBalances(balances map[string]int64) string {
	formatted := make(map[string]string, len(balances))
	for currency, minor := range balances {
		formatted[currency] = money.FormatMinor(minor)
	}
	data, _ := json.Marshal(formatted)
	return string(data)
}
