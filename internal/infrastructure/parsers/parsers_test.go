package parsers

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

const productionCSV = `Product Name,Process Name,Input Name,Quantity,Unit,Batch Start,Batch End
Billet,EAF smelting,Scrap,50,t,2024-01-01,2024-01-31
Billet,EAF smelting,Lime,8,t,2024-01-01,2024-01-31
`

func writeWorkbook(t *testing.T, dir string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"제품명", "공정명", "투입물명", "수량", "단위", "시작일", "종료일"},
		{"Billet", "EAF smelting", "Scrap", 1250.5, "t", 45292, 45322},
		{nil, nil, nil, nil, nil, nil, nil},
		{"Billet", "EAF smelting", "Lime", 8, "t", 45292, 45322},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	// Formatting must not leak into parsed values
	style, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "D2", "D4", style))

	path := filepath.Join(dir, "production.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestCSVParser_Parse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jan.csv")
	require.NoError(t, os.WriteFile(path, []byte(productionCSV), 0644))

	result, err := NewCSVParser(nil).Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "CSV", result.Format)
	assert.Equal(t, 2, result.TotalRows)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, 2, result.Rows[0].Line)
	assert.Equal(t, "Scrap", result.Rows[0].Cells["Input Name"])
	assert.Equal(t, "2024-01-31", result.Rows[1].Cells["Batch End"])
}

func TestCSVParser_BOMAndSemicolons(t *testing.T) {
	content := "\xEF\xBB\xBFProduct;Process;Input;Quantity\n Billet ; EAF ; Scrap ; 1,5\n"

	result, err := NewCSVParser(nil).ParseReader(context.Background(), bytes.NewReader([]byte(content)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Product", "Process", "Input", "Quantity"}, result.Columns)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Billet", result.Rows[0].Cells["Product"])
	assert.Equal(t, "1,5", result.Rows[0].Cells["Quantity"])
}

func TestCSVParser_SkipEmptyRows(t *testing.T) {
	content := "Name,Qty\nScrap,1\n,\nLime,2\n,\n"

	result, err := NewCSVParser(nil).ParseReader(context.Background(), bytes.NewReader([]byte(content)))
	require.NoError(t, err)

	assert.Len(t, result.Rows, 2)
	assert.Equal(t, 2, result.SkippedRows)
	assert.Equal(t, 4, result.Rows[1].Line)
}

func TestCSVParser_MissingColumns(t *testing.T) {
	content := "Name,Qty,Unit\nScrap,1,t\nLime\n"

	result, err := NewCSVParser(nil).ParseReader(context.Background(), bytes.NewReader([]byte(content)))
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "", result.Rows[1].Cells["Qty"])
	assert.Equal(t, "", result.Rows[1].Cells["Unit"])
}

func TestCSVParser_SizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.csv")
	require.NoError(t, os.WriteFile(path, []byte(productionCSV), 0644))

	_, err := NewCSVParser(&ParserConfig{MaxFileSize: 10}).Parse(context.Background(), path)
	assert.Error(t, err)
}

func TestExcelParser_Parse(t *testing.T) {
	path := writeWorkbook(t, t.TempDir())

	result, err := NewExcelParser(nil).Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "XLSX", result.Format)
	assert.Equal(t, "투입물명", result.Columns[2])
	require.Len(t, result.Rows, 2)
	assert.Equal(t, 1, result.SkippedRows)

	first := result.Rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "1250.5", first.Cells["수량"])
	assert.Equal(t, "45292", first.Cells["시작일"])
	assert.Equal(t, 4, result.Rows[1].Line)
}

func TestExcelParser_UnknownSheet(t *testing.T) {
	path := writeWorkbook(t, t.TempDir())

	_, err := NewExcelParser(&ParserConfig{SheetName: "Nope"}).Parse(context.Background(), path)
	assert.Error(t, err)
}

func TestParserFactory(t *testing.T) {
	factory := NewParserFactory(nil)

	assert.Equal(t, []string{".csv", ".xlsm", ".xlsx"}, factory.SupportedFormats())
	assert.True(t, factory.IsSupported("XLSX"))
	assert.False(t, factory.IsSupported(".json"))

	_, err := factory.GetParser(".pdf")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnsupportedFormat))
}

func TestParserFactory_ParseSheet(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir)

	sheet, err := NewParserFactory(nil).ParseSheet(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "XLSX", sheet.Format)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Lime", sheet.Rows[1].Cells["투입물명"])
	assert.Equal(t, 1, sheet.SkippedRows)
}
