package statement

import (
	"bytes"
	"testing"

	"budget/internal/xlsx"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook assembles an in-memory workbook from per-sheet row data and
// reopens it through the xlsx wrapper, the same path production uploads take.
func buildWorkbook(t *testing.T, sheets map[string][][]string) *xlsx.Workbook {
	t.Helper()
	file := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, file.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := file.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			for j, value := range row {
				if value == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(j+1, i+1)
				require.NoError(t, err)
				require.NoError(t, file.SetCellStr(name, cell, value))
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	require.NoError(t, file.Close())

	wb, err := xlsx.Open(buf.Bytes())
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func bogFixtureRows() [][]string {
	return [][]string{
		{"Owner", "John Smith"},
		{"IBAN", "GE29NB0000000101904917"},
		{"Period", "01/03/2025", "31/03/2025"},
		{"Cards", "****7731, ****0042"},
		{},
		{"Date", "Value Date", "Description", "GEL", "USD", "EUR"},
		{"02/03/2025", "03/03/2025", "Merchant: Carrefour, Tbilisi; MCC: 5411, Card No: ****7731", "-45.30"},
		{"05/03/2025", "05/03/2025", "Salary for February", "2500.00"},
		{"10/03/2025", "10/03/2025", "Merchant: Amazon, Online; MCC: 5999", "", "-19.99"},
		{"Opening Balance", "", "", "1000.00", "200.00"},
		{"Closing Balance", "", "", "3454.70", "180.01"},
	}
}

func tbcFixtureSheets() map[string][][]string {
	return map[string][][]string{
		"Transactions": {
			{"Date", "Value Date", "Description", "Amount", "Currency"},
			{"02.03.2025", "03.03.2025", "Merchant: Wolt, Tbilisi; MCC: 5812", "-32.50", "GEL"},
			{"07.03.2025", "07.03.2025", "Loan repayment according to schedule, Loan N 88214", "-850.00", "GEL"},
			{"09.03.2025", "09.03.2025", "Incoming transfer; Sender: J. Smith", "400.00", "USD"},
		},
		"Information": {
			{"Account Holder", "John Smith"},
			{"IBAN", "GE33TB0000000205086914"},
			{"Period From", "01.03.2025"},
			{"Period To", "31.03.2025"},
			{"Cards", "****0042"},
			{"Opening Balance (GEL)", "1500.00"},
			{"Closing Balance (GEL)", "617.50"},
			{"Opening Balance (USD)", "0.00"},
			{"Closing Balance (USD)", "400.00"},
		},
	}
}
