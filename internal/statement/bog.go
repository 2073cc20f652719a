package statement

import (
	"fmt"
	"strings"

	"budget/internal/xlsx"
)

// bogParser reads the Bank of Georgia personal-account export: one sheet
// named "Statement", fixed metadata cells and one amount column per currency.
type bogParser struct{}

const bogSheet = "Statement"

// bogCurrencies maps the per-currency amount columns, 0-based from the first
// amount column.
var bogCurrencies = []string{"GEL", "USD", "EUR"}

const (
	bogOwnerRow  = 1
	bogIBANRow   = 2
	bogPeriodRow = 3
	bogCardsRow  = 4
	bogValueCol  = 2
	// first amount column in a data row, 0-based
	bogAmountCol = 3
)

func (p *bogParser) Name() string { return "bog" }

func (p *bogParser) CanParse(wb *xlsx.Workbook) bool {
	return wb.HasSheet(bogSheet)
}

func (p *bogParser) ParseDetails(wb *xlsx.Workbook) (Details, error) {
	details := Details{
		OpeningBalances: map[string]int64{},
		ClosingBalances: map[string]int64{},
	}
	owner, err := wb.Cell(bogSheet, bogOwnerRow, bogValueCol)
	if err != nil {
		return Details{}, err
	}
	details.OwnerName = strings.TrimSpace(owner)
	iban, err := wb.Cell(bogSheet, bogIBANRow, bogValueCol)
	if err != nil {
		return Details{}, err
	}
	details.IBAN = strings.TrimSpace(iban)
	if details.IBAN == "" {
		return Details{}, fmt.Errorf("%w: missing IBAN cell", ErrMalformed)
	}
	fromRaw, err := wb.Cell(bogSheet, bogPeriodRow, bogValueCol)
	if err != nil {
		return Details{}, err
	}
	if details.PeriodFrom, err = ParseDate(fromRaw); err != nil {
		return Details{}, err
	}
	toRaw, err := wb.Cell(bogSheet, bogPeriodRow, bogValueCol+1)
	if err != nil {
		return Details{}, err
	}
	if details.PeriodTo, err = ParseDate(toRaw); err != nil {
		return Details{}, err
	}
	cardsRaw, err := wb.Cell(bogSheet, bogCardsRow, bogValueCol)
	if err != nil {
		return Details{}, err
	}
	for _, card := range strings.Split(cardsRaw, ",") {
		if trimmed := strings.TrimSpace(card); trimmed != "" {
			details.Cards = append(details.Cards, trimmed)
		}
	}

	rows, err := wb.Rows(bogSheet)
	if err != nil {
		return Details{}, err
	}
	for _, row := range rows {
		label := cellAt(row, 0)
		var target map[string]int64
		switch label {
		case "Opening Balance":
			target = details.OpeningBalances
		case "Closing Balance":
			target = details.ClosingBalances
		default:
			continue
		}
		for i, currency := range bogCurrencies {
			minor, err := parseAmountMinor(cellAt(row, bogAmountCol+i))
			if err != nil {
				return Details{}, err
			}
			if minor != 0 {
				target[currency] = minor
			}
		}
	}
	return details, nil
}

func (p *bogParser) ParseTransactions(wb *xlsx.Workbook) ([]Transaction, error) {
	details, err := p.ParseDetails(wb)
	if err != nil {
		return nil, err
	}
	rows, err := wb.Rows(bogSheet)
	if err != nil {
		return nil, err
	}
	var transactions []Transaction
	inData := false
	for _, row := range rows {
		first := cellAt(row, 0)
		if !inData {
			// header row marks the start of the data section
			if first == "Date" {
				inData = true
			}
			continue
		}
		if first == "" || first == "Opening Balance" || first == "Closing Balance" {
			continue
		}
		date, err := ParseDate(first)
		if err != nil {
			return nil, err
		}
		postingDate, err := ParseDate(cellAt(row, 1))
		if err != nil {
			return nil, err
		}
		narration := cellAt(row, 2)
		currency, signedMinor, err := bogRowAmount(row)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, buildTransaction(Transaction{
			Date:        date,
			PostingDate: postingDate,
			Narration:   narration,
			Currency:    currency,
		}, signedMinor, details.OwnerName))
	}
	return transactions, nil
}

// bogRowAmount finds the single non-zero per-currency amount cell of a row.
func bogRowAmount(row []string) (string, int64, error) {
	for i, currency := range bogCurrencies {
		minor, err := parseAmountMinor(cellAt(row, bogAmountCol+i))
		if err != nil {
			return "", 0, err
		}
		if minor != 0 {
			return currency, minor, nil
		}
	}
	return "", 0, fmt.Errorf("%w: no amount in row %q", ErrMalformed, strings.Join(row, "|"))
}
