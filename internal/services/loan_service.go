package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"

	"budget/internal/db"
	"budget/internal/models"
	"budget/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotDisbursement = errors.New("transaction is not a loan disbursement")

type LoanStore interface {
	Create(ctx context.Context, tx store.Execer, loan models.Loan) error
	ListByUser(ctx context.Context, q store.Selecter, userID string) ([]models.Loan, error)
	SetReconciledState(ctx context.Context, tx store.Execer, loanID string, remainingMinor int64, repaid bool, loanNumber *string) error
	AdjustRemaining(ctx context.Context, tx store.Execer, loanID string, deltaMinor int64) error
}

type LoanService struct {
	txRunner     db.TxRunner
	loans        LoanStore
	transactions TransactionStore
	audit        AuditStore
}

func NewLoanService(txRunner db.TxRunner, loans LoanStore, transactions TransactionStore, audit AuditStore) *LoanService {
	return &LoanService{
		txRunner:     txRunner,
		loans:        loans,
		transactions: transactions,
		audit:        audit,
	}
}

// Create registers a loan and, when a disbursement transaction id is given,
// links that transaction to the new loan so reconciliation can pair them.
func (s *LoanService) Create(ctx context.Context, loan models.Loan, disbursementID *string) (string, error) {
	if loan.RemainingMinor <= 0 || loan.MonthlyMinor < 0 {
		return "", ErrInvalidAmount
	}
	loan.ID = uuid.NewString()
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.loans.Create(ctx, tx, loan); err != nil {
			return err
		}
		if disbursementID != nil {
			existing, err := s.transactions.GetByID(ctx, loan.UserID, *disbursementID)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTransactionNotFound
			}
			if err != nil {
				return err
			}
			if existing.Type != models.TypeLoanDisbursement {
				return ErrNotDisbursement
			}
			if err := s.transactions.SetLoan(ctx, tx, existing.ID, &loan.ID); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(map[string]string{"loan_id": loan.ID})
		return s.audit.Log(ctx, tx, loan.UserID, "create_loan", "loan", loan.ID, string(data))
	})
	if err != nil {
		return "", err
	}
	return loan.ID, nil
}

type ReconcileSummary struct {
	RepaymentsLinked int `json:"repayments_linked"`
	InterestLinked   int `json:"interest_linked"`
	LoansUnpaid      int `json:"loans_unpaid"`
}

// Reconcile recomputes every loan linkage for a user from scratch. The plan
// is built as a pure function and applied in a single transaction, so a
// re-run always produces the same final state and an interrupted run leaves
// the previous state intact.
func (s *LoanService) Reconcile(ctx context.Context, userID string) (ReconcileSummary, error) {
	var summary ReconcileSummary
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		loans, err := s.loans.ListByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		disbursements, err := s.transactions.ListByUserAndTypes(ctx, tx, userID, []models.TransactionType{models.TypeLoanDisbursement})
		if err != nil {
			return err
		}
		repayments, err := s.transactions.ListByUserAndTypes(ctx, tx, userID, []models.TransactionType{models.TypeLoanRepayment})
		if err != nil {
			return err
		}
		interest, err := s.transactions.ListByUserAndTypes(ctx, tx, userID, []models.TransactionType{models.TypeLoanInterest})
		if err != nil {
			return err
		}

		plan := buildReconcilePlan(loans, disbursements, repayments, interest)

		if err := s.transactions.ClearLoanLinks(ctx, tx, userID); err != nil {
			return err
		}
		for _, loanID := range sortedStateKeys(plan.loanStates) {
			state := plan.loanStates[loanID]
			if err := s.loans.SetReconciledState(ctx, tx, loanID, state.RemainingMinor, state.Repaid, state.LoanNumber); err != nil {
				return err
			}
		}
		for _, transactionID := range sortedLinkKeys(plan.links) {
			loanID := plan.links[transactionID]
			if err := s.transactions.SetLoan(ctx, tx, transactionID, &loanID); err != nil {
				return err
			}
		}

		summary = ReconcileSummary{
			RepaymentsLinked: plan.repaymentsLinked,
			InterestLinked:   plan.interestLinked,
			LoansUnpaid:      plan.loansUnpaid,
		}
		data, _ := json.Marshal(summary)
		return s.audit.Log(ctx, tx, userID, "reconcile_loans", "user", userID, string(data))
	})
	if err != nil {
		return ReconcileSummary{}, err
	}
	return summary, nil
}

func sortedStateKeys(states map[string]loanState) []string {
	keys := make([]string, 0, len(states))
	for key := range states {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedLinkKeys(links map[string]string) []string {
	keys := make([]string, 0, len(links))
	for key := range links {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
