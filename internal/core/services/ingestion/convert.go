package ingestion

import (
	"github.com/google/uuid"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
)

// Convert validates sheet rows into raw input records for batchID. Rows
// missing a required field, or with an unreadable quantity or date, are
// reported as issues and left out; they never reach name resolution.
func Convert(batchID uuid.UUID, sheet *Sheet) (*Conversion, error) {
	cols, err := HeaderMap(sheet.Columns)
	if err != nil {
		return nil, err
	}

	conv := &Conversion{
		Records: make([]domain.RawInputRecord, 0, len(sheet.Rows)),
		Total:   len(sheet.Rows),
	}

	for _, row := range sheet.Rows {
		rec, issues := convertRow(row, cols)
		if len(issues) > 0 {
			conv.Issues = append(conv.Issues, issues...)
			continue
		}
		rec.BatchID = batchID
		conv.Records = append(conv.Records, rec)
	}
	return conv, nil
}

func convertRow(row SourceRow, cols map[Field]string) (domain.RawInputRecord, []RowIssue) {
	var issues []RowIssue
	issue := func(f Field, msg string) {
		issues = append(issues, RowIssue{Line: row.Line, Field: string(f), Message: msg})
	}
	cell := func(f Field) string {
		col, ok := cols[f]
		if !ok {
			return ""
		}
		return row.Cells[col]
	}

	rec := domain.RawInputRecord{
		RowIndex:    row.Line,
		ProductName: CleanName(cell(FieldProduct)),
		ProcessName: CleanName(cell(FieldProcess)),
		InputName:   CleanName(cell(FieldInput)),
		Unit:        CleanName(cell(FieldUnit)),
	}

	if rec.ProductName == "" {
		issue(FieldProduct, "product name is required")
	}
	if rec.ProcessName == "" {
		issue(FieldProcess, "process name is required")
	}
	if rec.InputName == "" {
		issue(FieldInput, "input name is required")
	}

	if raw := cell(FieldQuantity); raw == "" {
		issue(FieldQuantity, "quantity is required")
	} else if q, err := ParseQuantity(raw); err != nil {
		issue(FieldQuantity, "quantity is not a number")
	} else if q.IsNegative() {
		issue(FieldQuantity, "quantity cannot be negative")
	} else {
		rec.Quantity = q
	}

	start, okStart := ParseDate(cell(FieldBatchStart))
	if !okStart {
		issue(FieldBatchStart, "batch start is missing or not a date")
	}
	end, okEnd := ParseDate(cell(FieldBatchEnd))
	if !okEnd {
		issue(FieldBatchEnd, "batch end is missing or not a date")
	}
	if okStart && okEnd && end.Before(start) {
		issue(FieldBatchEnd, "batch ends before it starts")
	}
	rec.BatchStart, rec.BatchEnd = start, end

	return rec, issues
}
