package parsers

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alejandroruanova/cbam-emissions/internal/core/services/ingestion"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

// ParserFactory creates the appropriate parser based on file extension
type ParserFactory struct {
	config  *ParserConfig
	parsers map[string]FileParser
}

// NewParserFactory creates a new parser factory with all built-in parsers
func NewParserFactory(config *ParserConfig) *ParserFactory {
	if config == nil {
		config = DefaultParserConfig()
	}

	factory := &ParserFactory{
		config:  config,
		parsers: make(map[string]FileParser),
	}

	factory.RegisterParser(NewCSVParser(config))
	factory.RegisterParser(NewExcelParser(config))

	return factory
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// RegisterParser registers a custom parser
func (f *ParserFactory) RegisterParser(parser FileParser) {
	for _, ext := range parser.SupportedFormats() {
		f.parsers[normalizeExt(ext)] = parser
	}
}

// GetParser returns the appropriate parser for a file extension
func (f *ParserFactory) GetParser(fileExt string) (FileParser, error) {
	parser, exists := f.parsers[normalizeExt(fileExt)]
	if !exists {
		return nil, apperrors.UnsupportedFormat(fileExt)
	}
	return parser, nil
}

// ParseFile selects the parser by extension and parses the file
func (f *ParserFactory) ParseFile(ctx context.Context, filePath string) (*ParseResult, error) {
	parser, err := f.GetParser(filepath.Ext(filePath))
	if err != nil {
		return nil, err
	}
	return parser.Parse(ctx, filePath)
}

// ParseSheet parses a stored upload into the shape ingestion validates.
func (f *ParserFactory) ParseSheet(ctx context.Context, filePath string) (*ingestion.Sheet, error) {
	res, err := f.ParseFile(ctx, filePath)
	if err != nil {
		return nil, err
	}

	sheet := &ingestion.Sheet{
		Format:      res.Format,
		Columns:     res.Columns,
		Rows:        make([]ingestion.SourceRow, 0, len(res.Rows)),
		SkippedRows: res.SkippedRows,
	}
	for _, r := range res.Rows {
		sheet.Rows = append(sheet.Rows, ingestion.SourceRow{Line: r.Line, Cells: r.Cells})
	}
	return sheet, nil
}

// SupportedFormats returns all supported file extensions, sorted
func (f *ParserFactory) SupportedFormats() []string {
	formats := make([]string, 0, len(f.parsers))
	for ext := range f.parsers {
		formats = append(formats, ext)
	}
	sort.Strings(formats)
	return formats
}

// IsSupported checks if a file extension is supported
func (f *ParserFactory) IsSupported(fileExt string) bool {
	_, exists := f.parsers[normalizeExt(fileExt)]
	return exists
}

var _ ingestion.SheetParser = (*ParserFactory)(nil)
