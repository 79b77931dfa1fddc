package parsers

import (
	"context"
	"io"
)

// Row is one data row keyed by header text. Line is the 1-based line (CSV)
// or row number (XLSX) in the source, so issues can point back at it.
type Row struct {
	Line  int
	Cells map[string]string
}

// ParseResult contains a parsed sheet and its row statistics
type ParseResult struct {
	Rows        []Row
	TotalRows   int
	SkippedRows int
	Columns     []string
	Format      string
}

// FileParser is the interface all parsers must implement
type FileParser interface {
	// Parse reads and parses the file at filePath
	Parse(ctx context.Context, filePath string) (*ParseResult, error)

	// ParseReader parses an already opened stream
	ParseReader(ctx context.Context, r io.Reader) (*ParseResult, error)

	// SupportedFormats returns the file extensions this parser supports
	SupportedFormats() []string
}

// ParserConfig holds configuration for all parsers
type ParserConfig struct {
	// SkipEmptyRows drops rows whose cells are all blank
	SkipEmptyRows bool

	// MaxFileSize is the maximum file size in bytes (0 = unlimited)
	MaxFileSize int64

	// SheetName selects the worksheet of a workbook; empty means the first
	SheetName string
}

// DefaultParserConfig returns sensible defaults
func DefaultParserConfig() *ParserConfig {
	return &ParserConfig{
		SkipEmptyRows: true,
		MaxFileSize:   50 * 1024 * 1024, // 50 MB
	}
}
