package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixtureBytes(t *testing.T) []byte {
	t.Helper()
	file := excelize.NewFile()
	require.NoError(t, file.SetSheetName("Sheet1", "Data"))
	_, err := file.NewSheet("Extra")
	require.NoError(t, err)
	require.NoError(t, file.SetCellStr("Data", "A1", "header"))
	require.NoError(t, file.SetCellStr("Data", "B2", "value"))
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	require.NoError(t, file.Close())
	return buf.Bytes()
}

func TestOpenAndInspect(t *testing.T) {
	wb, err := Open(fixtureBytes(t))
	require.NoError(t, err)
	defer wb.Close()

	assert.True(t, wb.HasSheet("Data"))
	assert.True(t, wb.HasSheet("Extra"))
	assert.False(t, wb.HasSheet("Missing"))
	assert.Equal(t, []string{"Data", "Extra"}, wb.SheetNames())

	rows, err := wb.Rows("Data")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "header", rows[0][0])

	cell, err := wb.Cell("Data", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, "value", cell)

	// out-of-range cells read as empty, not as an error
	cell, err = wb.Cell("Data", 50, 50)
	require.NoError(t, err)
	assert.Equal(t, "", cell)
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open([]byte("not a spreadsheet"))
	require.Error(t, err)
}
