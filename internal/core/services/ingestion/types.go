package ingestion

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
)

// SourceRow is one data row of an uploaded sheet, keyed by header text.
// Line is the 1-based line or row number in the source file.
type SourceRow struct {
	Line  int
	Cells map[string]string
}

// Sheet is a parsed upload: its header and data rows
type Sheet struct {
	Format      string
	Columns     []string
	Rows        []SourceRow
	SkippedRows int
}

// SheetParser reads an uploaded file from disk
type SheetParser interface {
	ParseSheet(ctx context.Context, path string) (*Sheet, error)
	IsSupported(ext string) bool
}

// BatchRepository persists ingestion batches
type BatchRepository interface {
	Create(ctx context.Context, batch *domain.IngestionBatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.IngestionBatch, error)
	// GetByHash returns (nil, nil) when no batch has the hash.
	GetByHash(ctx context.Context, hash string) (*domain.IngestionBatch, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, message string) error
	Complete(ctx context.Context, batch *domain.IngestionBatch) error
}

// RawInputWriter stores converted rows. ReplaceBatch drops any rows the
// batch already has before inserting, so a retried task never duplicates.
type RawInputWriter interface {
	ReplaceBatch(ctx context.Context, batchID uuid.UUID, records []domain.RawInputRecord) error
}

// StoredFile describes an upload written to storage
type StoredFile struct {
	Path string
	Hash string
	Size int64
}

// FileStore keeps uploaded files until they are ingested
type FileStore interface {
	SaveUpload(ctx context.Context, uploadID, filename string, r io.Reader) (*StoredFile, error)
	DeleteUpload(ctx context.Context, uploadID string) error
}

// Enqueuer schedules a batch for background ingestion
type Enqueuer interface {
	EnqueueIngest(ctx context.Context, batchID uuid.UUID) error
}

// RowIssue explains why a source row was rejected
type RowIssue struct {
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Conversion is the outcome of validating a sheet
type Conversion struct {
	Records []domain.RawInputRecord `json:"-"`
	Issues  []RowIssue              `json:"issues"`
	Total   int                     `json:"total"`
}

// Accepted returns the number of rows that became records
func (c *Conversion) Accepted() int {
	return len(c.Records)
}

// Rejected returns the number of distinct rows with issues
func (c *Conversion) Rejected() int {
	seen := make(map[int]bool, len(c.Issues))
	for _, is := range c.Issues {
		seen[is.Line] = true
	}
	return len(seen)
}
