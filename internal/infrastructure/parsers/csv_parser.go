package parsers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser parses comma- or semicolon-separated exports
type CSVParser struct {
	config *ParserConfig
}

// NewCSVParser creates a new CSV parser
func NewCSVParser(config *ParserConfig) *CSVParser {
	if config == nil {
		config = DefaultParserConfig()
	}
	return &CSVParser{
		config: config,
	}
}

// Parse reads and parses a CSV file from disk
func (p *CSVParser) Parse(ctx context.Context, filePath string) (*ParseResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	if err := checkSize(file, p.config.MaxFileSize); err != nil {
		return nil, err
	}

	return p.ParseReader(ctx, file)
}

// ParseReader parses CSV data. A UTF-8 byte order mark is dropped and the
// delimiter is taken from the header line.
func (p *CSVParser) ParseReader(ctx context.Context, r io.Reader) (*ParseResult, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	csvReader := csv.NewReader(br)
	csvReader.FieldsPerRecord = -1
	csvReader.Comma = sniffDelimiter(br)

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	result := &ParseResult{
		Columns: header,
		Format:  "CSV",
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		result.TotalRows++
		if err != nil {
			// Malformed rows are counted and skipped
			result.SkippedRows++
			continue
		}
		line, _ := csvReader.FieldPos(0)

		if p.config.SkipEmptyRows && isEmptyRow(row) {
			result.SkippedRows++
			continue
		}

		result.Rows = append(result.Rows, Row{Line: line, Cells: zipRow(header, row)})
	}

	return result, nil
}

// SupportedFormats returns the file extensions this parser supports
func (p *CSVParser) SupportedFormats() []string {
	return []string{".csv"}
}

// sniffDelimiter picks ';' when the header line has more semicolons than
// commas, as European spreadsheet exports do.
func sniffDelimiter(br *bufio.Reader) rune {
	peek, _ := br.Peek(4096)
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		peek = peek[:i]
	}
	if bytes.Count(peek, []byte{';'}) > bytes.Count(peek, []byte{','}) {
		return ';'
	}
	if bytes.Count(peek, []byte{'\t'}) > bytes.Count(peek, []byte{','}) {
		return '\t'
	}
	return ','
}

// zipRow pairs header names with trimmed cell values. Missing trailing
// cells become empty strings.
func zipRow(header, row []string) map[string]string {
	cells := make(map[string]string, len(header))
	for i, col := range header {
		if col == "" {
			continue
		}
		value := ""
		if i < len(row) {
			value = strings.TrimSpace(row[i])
		}
		cells[col] = value
	}
	return cells
}

// isEmptyRow checks if a row contains only empty strings
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func checkSize(file *os.File, limit int64) error {
	if limit <= 0 {
		return nil
	}
	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.Size() > limit {
		return fmt.Errorf("file size %d exceeds maximum %d", stat.Size(), limit)
	}
	return nil
}
