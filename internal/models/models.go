package models

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Account struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	IBAN      *string   `db:"iban" json:"iban,omitempty"`
	Cards     *string   `db:"cards" json:"cards,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TransactionType is the classified economic meaning of a statement row.
type TransactionType string

const (
	TypeExpense          TransactionType = "expense"
	TypeIncome           TransactionType = "income"
	TypeTransfer         TransactionType = "transfer"
	TypeCurrencyExchange TransactionType = "currency_exchange"
	TypeATMWithdrawal    TransactionType = "atm_withdrawal"
	TypeBankFee          TransactionType = "bank_fee"
	TypeLoanDisbursement TransactionType = "loan_disbursement"
	TypeLoanRepayment    TransactionType = "loan_repayment"
	TypeLoanInterest     TransactionType = "loan_interest"
	TypeDepositPlacement TransactionType = "deposit_placement"
	TypeDepositReturn    TransactionType = "deposit_withdrawal"
)

// Direction disambiguates types that can flow either way (transfer,
// currency exchange).
type Direction string

const (
	DirectionInflow  Direction = "inflow"
	DirectionOutflow Direction = "outflow"
)

type Transaction struct {
	ID              string          `db:"id" json:"id"`
	UserID          string          `db:"user_id" json:"user_id"`
	ImportHash      *string         `db:"import_hash" json:"import_hash,omitempty"`
	Title           string          `db:"title" json:"title"`
	AmountMinor     int64           `db:"amount" json:"amount"`
	Currency        string          `db:"currency" json:"currency"`
	Type            TransactionType `db:"type" json:"type"`
	Direction       *Direction      `db:"direction" json:"direction,omitempty"`
	Date            time.Time       `db:"date" json:"date"`
	PostingDate     *time.Time      `db:"posting_date" json:"posting_date,omitempty"`
	Narration       *string         `db:"narration" json:"narration,omitempty"`
	Merchant        *string         `db:"merchant" json:"merchant,omitempty"`
	MerchantCity    *string         `db:"merchant_city" json:"merchant_city,omitempty"`
	MCC             *int            `db:"mcc" json:"mcc,omitempty"`
	CardLastFour    *string         `db:"card_last_four" json:"card_last_four,omitempty"`
	AccountID       *string         `db:"account_id" json:"account_id,omitempty"`
	BankImportID    *string         `db:"bank_import_id" json:"bank_import_id,omitempty"`
	CategoryID      *string         `db:"category_id" json:"category_id,omitempty"`
	IncomeSourceID  *string         `db:"income_source_id" json:"income_source_id,omitempty"`
	PlannedIncomeID *string         `db:"planned_income_id" json:"planned_income_id,omitempty"`
	BudgetTargetID  *string         `db:"budget_target_id" json:"budget_target_id,omitempty"`
	LoanID          *string         `db:"loan_id" json:"loan_id,omitempty"`
	ExchangeRateID  *string         `db:"exchange_rate_id" json:"exchange_rate_id,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// SkippedTransaction is the audit trail for statement rows rejected during an
// import, duplicates included. Never mutated after creation.
type SkippedTransaction struct {
	ID            string    `db:"id" json:"id"`
	BankImportID  string    `db:"bank_import_id" json:"bank_import_id"`
	Date          time.Time `db:"date" json:"date"`
	AmountMinor   int64     `db:"amount" json:"amount"`
	Currency      string    `db:"currency" json:"currency"`
	Narration     string    `db:"narration" json:"narration"`
	ImportHash    string    `db:"import_hash" json:"import_hash"`
	Reason        string    `db:"reason" json:"reason"`
	TransactionID *string   `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type BankImport struct {
	ID               string    `db:"id" json:"id"`
	AccountID        string    `db:"account_id" json:"account_id"`
	FileName         string    `db:"file_name" json:"file_name"`
	PeriodFrom       time.Time `db:"period_from" json:"period_from"`
	PeriodTo         time.Time `db:"period_to" json:"period_to"`
	OpeningBalances  string    `db:"opening_balances" json:"opening_balances"`
	ClosingBalances  string    `db:"closing_balances" json:"closing_balances"`
	TransactionCount int       `db:"transaction_count" json:"transaction_count"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

type Loan struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Title          string    `db:"title" json:"title"`
	RemainingMinor int64     `db:"remaining_amount" json:"remaining_amount"`
	MonthlyMinor   int64     `db:"monthly_payment" json:"monthly_payment"`
	Currency       string    `db:"currency" json:"currency"`
	HolderName     string    `db:"holder_name" json:"holder_name"`
	LoanNumber     *string   `db:"loan_number" json:"loan_number,omitempty"`
	Repaid         bool      `db:"repaid" json:"repaid"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// RateSource records where an exchange-rate row came from.
const (
	RateSourceFeed      = "feed"
	RateSourceManual    = "manual"
	RateSourceStatement = "statement-derived"
)

type ExchangeRate struct {
	ID       string    `db:"id" json:"id"`
	Currency string    `db:"currency" json:"currency"`
	Rate     string    `db:"rate" json:"rate"`
	Quantity int       `db:"quantity" json:"quantity"`
	FeedRate string    `db:"feed_rate" json:"feed_rate"`
	Date     time.Time `db:"date" json:"date"`
	Source   string    `db:"source" json:"source"`
}

type Deposit struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Title        string    `db:"title" json:"title"`
	BalanceMinor int64     `db:"balance" json:"balance"`
	Currency     string    `db:"currency" json:"currency"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
