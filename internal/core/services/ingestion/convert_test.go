package ingestion

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

var standardColumns = []string{"Product Name", "Process Name", "Input Name", "Quantity", "Unit", "Batch Start", "Batch End"}

func sheetRow(line int, values ...string) SourceRow {
	cells := make(map[string]string, len(values))
	for i, v := range values {
		cells[standardColumns[i]] = v
	}
	return SourceRow{Line: line, Cells: cells}
}

func TestHeaderMap_Aliases(t *testing.T) {
	cols, err := HeaderMap([]string{"제품명", "공정명", "투입물명", "수량", "단위", "시작일", "종료일"})
	require.NoError(t, err)
	assert.Equal(t, "투입물명", cols[FieldInput])

	cols, err = HeaderMap([]string{"product_name", "PROCESS", "material", "qty", "start_date", "end-date"})
	require.NoError(t, err)
	assert.Equal(t, "material", cols[FieldInput])
	_, hasUnit := cols[FieldUnit]
	assert.False(t, hasUnit, "unit is optional")
}

func TestHeaderMap_MissingColumns(t *testing.T) {
	_, err := HeaderMap([]string{"Product", "Process", "Unit"})
	require.Error(t, err)

	appErr, ok := apperrors.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidFile, appErr.Code)
	assert.Equal(t, []string{"input_name", "quantity", "batch_start", "batch_end"}, appErr.Details["missing_columns"])
}

func TestConvert(t *testing.T) {
	batchID := uuid.New()
	sheet := &Sheet{
		Columns: standardColumns,
		Rows: []SourceRow{
			sheetRow(2, "Billet", "EAF  smelting", " Scrap ", "1,250.5", "t", "2024-01-01", "2024-01-31"),
			sheetRow(3, "Billet", "EAF smelting", "", "10", "t", "2024-01-01", "2024-01-31"),
			sheetRow(4, "Billet", "EAF smelting", "Lime", "", "t", "2024-01-01", "2024-01-31"),
			sheetRow(5, "Billet", "EAF smelting", "Lime", "abc", "t", "2024-01-01", "2024-01-31"),
			sheetRow(6, "Billet", "EAF smelting", "Lime", "8", "t", "2024/01/02", "45322"),
			sheetRow(7, "Billet", "EAF smelting", "Lime", "8", "t", "2024-03-01", "2024-02-01"),
		},
	}

	conv, err := Convert(batchID, sheet)
	require.NoError(t, err)

	assert.Equal(t, 6, conv.Total)
	require.Equal(t, 2, conv.Accepted())
	assert.Equal(t, 4, conv.Rejected())

	first := conv.Records[0]
	assert.Equal(t, batchID, first.BatchID)
	assert.Equal(t, 2, first.RowIndex)
	assert.Equal(t, "EAF smelting", first.ProcessName, "inner whitespace collapsed")
	assert.Equal(t, "Scrap", first.InputName)
	assert.True(t, decimal.RequireFromString("1250.5").Equal(first.Quantity))

	second := conv.Records[1]
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), second.BatchStart)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), second.BatchEnd, "spreadsheet serial date")

	fields := map[int]string{}
	for _, is := range conv.Issues {
		fields[is.Line] = is.Field
	}
	assert.Equal(t, "input_name", fields[3])
	assert.Equal(t, "quantity", fields[4])
	assert.Equal(t, "quantity", fields[5])
	assert.Equal(t, "batch_end", fields[7])
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "8", want: "8"},
		{in: "1250.5", want: "1250.5"},
		{in: " 1,250.5 ", want: "1250.5"},
		{in: "1,250", want: "1250"},
		{in: "12,345,678", want: "12345678"},
		{in: "-1,000", want: "-1000"},
		{in: "1,5", wantErr: true},
		{in: "0,75", wantErr: true},
		{in: "1,2345", wantErr: true},
		{in: "1.250,5", wantErr: true},
		{in: ",250", wantErr: true},
		{in: "1,,250", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestConvert_DecimalCommaIsRejected(t *testing.T) {
	sheet := &Sheet{
		Columns: standardColumns,
		Rows: []SourceRow{
			sheetRow(2, "Billet", "EAF smelting", "Scrap", "1,5", "t", "2024-01-01", "2024-01-31"),
			sheetRow(3, "Billet", "EAF smelting", "Lime", "2,500", "t", "2024-01-01", "2024-01-31"),
		},
	}

	conv, err := Convert(uuid.New(), sheet)
	require.NoError(t, err)

	require.Equal(t, 1, conv.Accepted())
	assert.Equal(t, "Lime", conv.Records[0].InputName)
	assert.True(t, decimal.NewFromInt(2500).Equal(conv.Records[0].Quantity))

	require.Len(t, conv.Issues, 1)
	assert.Equal(t, 2, conv.Issues[0].Line)
	assert.Equal(t, "quantity", conv.Issues[0].Field)
	assert.Equal(t, "quantity is not a number", conv.Issues[0].Message)
}

func TestConvert_RejectsUnknownHeader(t *testing.T) {
	_, err := Convert(uuid.New(), &Sheet{Columns: []string{"a", "b"}})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidFile))
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Coke Oven Gas", CleanName("  Coke \t Oven\nGas "))
	assert.Equal(t, "철광석", CleanName("철광석"))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2024-01-15", "2024/01/15", "2024.01.15", "2024. 1. 15", "20240115", "2024-01-15 08:30:00", "45306"} {
		got, ok := ParseDate(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseDate("")
	assert.False(t, ok)
	_, ok = ParseDate("soon")
	assert.False(t, ok)
}
