package statement

import (
	"fmt"
	"strings"

	"budget/internal/models"
	"budget/internal/money"
)

// parseAmountMinor converts a statement amount cell ("1,234.56", "-45.00")
// into signed minor units.
func parseAmountMinor(raw string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, nil
	}
	minor, err := money.ParseMinor(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable amount %q", ErrMalformed, raw)
	}
	return minor, nil
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// buildTransaction assembles a normalized row: the narration is classified,
// merchant fields extracted, and the cell's sign becomes the direction when
// the classifier did not already decide one.
func buildTransaction(tx Transaction, signedMinor int64, ownerName string) Transaction {
	classification := Classify(tx.Narration, ownerName)
	tx.Type = classification.Type
	tx.Direction = classification.Direction
	if tx.Direction == nil {
		direction := models.DirectionOutflow
		if signedMinor > 0 {
			direction = models.DirectionInflow
		}
		tx.Direction = &direction
	}
	if signedMinor < 0 {
		signedMinor = -signedMinor
	}
	tx.AmountMinor = signedMinor
	tx.Merchant, tx.MerchantCity = ExtractMerchant(tx.Narration)
	tx.CardLastFour = ExtractCardLastFour(tx.Narration)
	tx.MCC = ExtractMCC(tx.Narration)
	return tx
}
