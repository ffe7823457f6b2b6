package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"spendlog/internal/core"
)

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: "2", Type: core.Expense, Title: "Lunch, with friends", Amount: core.MustAmount("12.5"), Date: "2025-01-02", Category: core.CategoryFood, Description: `said "hi"`},
		{ID: "1", Type: core.Income, Title: "Pay", Amount: core.MustAmount("100"), Date: "2025-01-01", Category: core.CategorySalary},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Date", "Type", "Title", "Category", "Amount", "Description"}, records[0])
	assert.Equal(t, []string{"2025-01-02", "expense", "Lunch, with friends", "food", "12.50", `said "hi"`}, records[1])
	assert.Equal(t, "100.00", records[2][4])
}

func TestWriteCSV_NeutralisesFormulas(t *testing.T) {
	list := []core.Transaction{
		{ID: "1", Type: core.Expense, Title: "=IMPORTXML(A1)", Amount: core.MustAmount("1"), Date: "2025-01-01", Category: core.CategoryFood, Description: "@SUM(1)"},
		{ID: "2", Type: core.Expense, Title: "+1", Amount: core.MustAmount("2"), Date: "2025-01-01", Category: core.CategoryFood, Description: "-2"},
		{ID: "3", Type: core.Expense, Title: "a=b", Amount: core.MustAmount("3"), Date: "2025-01-01", Category: core.CategoryFood},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, list))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"2025-01-01", "expense", "'=IMPORTXML(A1)", "food", "1.00", "'@SUM(1)"}, records[1])
	assert.Equal(t, "'+1", records[2][2])
	assert.Equal(t, "'-2", records[2][5])
	assert.Equal(t, "a=b", records[3][2])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Date,Type,Title,Category,Amount,Description\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sample()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	header, err := f.GetCellValue(SheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)

	title, err := f.GetCellValue(SheetName, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Lunch, with friends", title)

	amount, err := f.GetCellValue(SheetName, "E3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "100", amount)

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
