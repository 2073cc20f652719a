package statement

import (
	"errors"
	"time"

	"budget/internal/models"
	"budget/internal/xlsx"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported statement format")
	ErrMalformed         = errors.New("malformed statement")
)

// Details is the account-level metadata extracted once per workbook.
type Details struct {
	OwnerName       string
	IBAN            string
	Cards           []string
	PeriodFrom      time.Time
	PeriodTo        time.Time
	OpeningBalances map[string]int64
	ClosingBalances map[string]int64
}

// Transaction is one normalized statement row. Amounts are unsigned minor
// units; the sign of the source cell is carried by Direction.
type Transaction struct {
	Date         time.Time
	PostingDate  time.Time
	Narration    string
	AmountMinor  int64
	Currency     string
	Type         models.TransactionType
	Direction    *models.Direction
	Merchant     *string
	MerchantCity *string
	MCC          *int
	CardLastFour *string
}

// Parser is implemented once per supported bank export layout.
type Parser interface {
	Name() string
	// CanParse reports whether the workbook's sheet-name set matches this
	// format's signature.
	CanParse(wb *xlsx.Workbook) bool
	ParseDetails(wb *xlsx.Workbook) (Details, error)
	ParseTransactions(wb *xlsx.Workbook) ([]Transaction, error)
}

// Registry holds the active parsers in priority order. Signatures are
// mutually exclusive across the active set; the first match wins.
var Registry = []Parser{
	&bogParser{},
	&tbcParser{},
}

// Detect returns the first parser that recognizes the workbook.
func Detect(wb *xlsx.Workbook) (Parser, error) {
	for _, parser := range Registry {
		if parser.CanParse(wb) {
			return parser, nil
		}
	}
	return nil, ErrUnsupportedFormat
}
