package statement

import (
	"fmt"
	"regexp"
	"strings"

	"budget/internal/xlsx"
)

// tbcParser reads the TBC Bank export: a "Transactions" data sheet plus an
// "Information" sheet whose fields are found by label rather than fixed
// offset, which tolerates rows shifting between exports.
type tbcParser struct{}

const (
	tbcDataSheet = "Transactions"
	tbcInfoSheet = "Information"
)

var tbcBalanceLabelRe = regexp.MustCompile(`(?i)^(opening|closing) balance \(([A-Za-z]{3})\)$`)

func (p *tbcParser) Name() string { return "tbc" }

func (p *tbcParser) CanParse(wb *xlsx.Workbook) bool {
	return wb.HasSheet(tbcDataSheet) && wb.HasSheet(tbcInfoSheet)
}

func (p *tbcParser) ParseDetails(wb *xlsx.Workbook) (Details, error) {
	rows, err := wb.Rows(tbcInfoSheet)
	if err != nil {
		return Details{}, err
	}
	labels := make(map[string]string, len(rows))
	details := Details{
		OpeningBalances: map[string]int64{},
		ClosingBalances: map[string]int64{},
	}
	for _, row := range rows {
		label := cellAt(row, 0)
		if label == "" {
			continue
		}
		value := cellAt(row, 1)
		labels[strings.ToLower(label)] = value

		if match := tbcBalanceLabelRe.FindStringSubmatch(label); match != nil {
			minor, err := parseAmountMinor(value)
			if err != nil {
				return Details{}, err
			}
			currency := strings.ToUpper(match[2])
			if strings.EqualFold(match[1], "opening") {
				details.OpeningBalances[currency] = minor
			} else {
				details.ClosingBalances[currency] = minor
			}
		}
	}

	details.OwnerName = labels["account holder"]
	details.IBAN = labels["iban"]
	if details.IBAN == "" {
		return Details{}, fmt.Errorf("%w: missing IBAN label", ErrMalformed)
	}
	if details.PeriodFrom, err = ParseDate(labels["period from"]); err != nil {
		return Details{}, err
	}
	if details.PeriodTo, err = ParseDate(labels["period to"]); err != nil {
		return Details{}, err
	}
	for _, card := range strings.Split(labels["cards"], ",") {
		if trimmed := strings.TrimSpace(card); trimmed != "" {
			details.Cards = append(details.Cards, trimmed)
		}
	}
	return details, nil
}

func (p *tbcParser) ParseTransactions(wb *xlsx.Workbook) ([]Transaction, error) {
	details, err := p.ParseDetails(wb)
	if err != nil {
		return nil, err
	}
	rows, err := wb.Rows(tbcDataSheet)
	if err != nil {
		return nil, err
	}
	var transactions []Transaction
	for i, row := range rows {
		if i == 0 {
			// header: Date | Value Date | Description | Amount | Currency
			continue
		}
		if cellAt(row, 0) == "" {
			continue
		}
		date, err := ParseDate(cellAt(row, 0))
		if err != nil {
			return nil, err
		}
		postingDate, err := ParseDate(cellAt(row, 1))
		if err != nil {
			return nil, err
		}
		narration := cellAt(row, 2)
		signedMinor, err := parseAmountMinor(cellAt(row, 3))
		if err != nil {
			return nil, err
		}
		currency := strings.ToUpper(cellAt(row, 4))
		if currency == "" {
			return nil, fmt.Errorf("%w: missing currency in row %d", ErrMalformed, i+1)
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
