package parsers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelParser parses workbooks (.xlsx, .xlsm). Cells are read raw, so
// dates arrive as spreadsheet serial numbers and quantities unformatted.
type ExcelParser struct {
	config *ParserConfig
}

// NewExcelParser creates a new Excel parser
func NewExcelParser(config *ParserConfig) *ExcelParser {
	if config == nil {
		config = DefaultParserConfig()
	}
	return &ExcelParser{
		config: config,
	}
}

// Parse reads and parses a workbook from disk
func (p *ExcelParser) Parse(ctx context.Context, filePath string) (*ParseResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer file.Close()

	if err := checkSize(file, p.config.MaxFileSize); err != nil {
		return nil, err
	}

	return p.ParseReader(ctx, file)
}

// ParseReader parses a workbook stream
func (p *ExcelParser) ParseReader(ctx context.Context, r io.Reader) (*ParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel stream: %w", err)
	}
	defer f.Close()

	return p.parseWorkbook(ctx, f)
}

func (p *ExcelParser) parseWorkbook(ctx context.Context, f *excelize.File) (*ParseResult, error) {
	sheetName := p.config.SheetName
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.Rows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet %s: %w", sheetName, err)
	}
	defer rows.Close()

	result := &ParseResult{Format: "XLSX"}
	rowNum := 0
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rowNum++
		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d of sheet %s: %w", rowNum, sheetName, err)
		}

		if result.Columns == nil {
			// The first row is the header, even if it is blank
			result.Columns = make([]string, len(cells))
			for i, c := range cells {
				result.Columns[i] = strings.TrimSpace(c)
			}
			continue
		}

		result.TotalRows++
		if p.config.SkipEmptyRows && isEmptyRow(cells) {
			result.SkippedRows++
			continue
		}
		result.Rows = append(result.Rows, Row{Line: rowNum, Cells: zipRow(result.Columns, cells)})
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate sheet %s: %w", sheetName, err)
	}

	if result.Columns == nil {
		result.Columns = []string{}
	}
	return result, nil
}

// SupportedFormats returns the file extensions this parser supports
func (p *ExcelParser) SupportedFormats() []string {
	return []string{".xlsx", ".xlsm"}
}
