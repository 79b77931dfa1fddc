package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
	"github.com/alejandroruanova/cbam-emissions/internal/pkg/metrics"
)

// maxReportedIssues caps the issues kept on a failed batch's message.
const maxReportedIssues = 20

// Processor ingests one stored upload into raw input records
type Processor struct {
	parser  SheetParser
	batches BatchRepository
	rows    RawInputWriter
	logger  *slog.Logger
}

// NewProcessor creates a new batch processor
func NewProcessor(parser SheetParser, batches BatchRepository, rows RawInputWriter, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Processor{
		parser:  parser,
		batches: batches,
		rows:    rows,
		logger:  logger,
	}
}

// Process parses, validates and stores the batch's file. A completed batch
// is left alone, so redelivered tasks are harmless.
func (p *Processor) Process(ctx context.Context, batchID uuid.UUID) (*Conversion, error) {
	start := time.Now()

	batch, err := p.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.Status == domain.BatchStatusCompleted {
		p.logger.Info("batch already ingested, skipping", slog.String("batch_id", batchID.String()))
		return &Conversion{Total: batch.TotalRows}, nil
	}

	if err := p.batches.UpdateStatus(ctx, batchID, domain.BatchStatusParsing, ""); err != nil {
		return nil, err
	}

	conv, err := p.convert(ctx, batch)
	if err != nil {
		p.fail(ctx, batchID, err.Error())
		metrics.ObserveIngestBatch(metrics.ResultError, time.Since(start))
		return nil, err
	}

	if err := p.rows.ReplaceBatch(ctx, batchID, conv.Records); err != nil {
		p.fail(ctx, batchID, "failed to store rows")
		metrics.ObserveIngestBatch(metrics.ResultError, time.Since(start))
		return nil, apperrors.DatabaseError(err)
	}

	now := time.Now()
	batch.Status = domain.BatchStatusCompleted
	batch.TotalRows = conv.Total
	batch.AcceptedRows = conv.Accepted()
	batch.RejectedRows = conv.Rejected()
	batch.ErrorMessage = summarizeIssues(conv.Issues)
	batch.CompletedAt = &now
	if err := p.batches.Complete(ctx, batch); err != nil {
		return nil, err
	}

	metrics.AddIngestRows(batch.AcceptedRows, batch.RejectedRows)
	metrics.ObserveIngestBatch(metrics.ResultSuccess, time.Since(start))

	p.logger.Info("batch ingested",
		slog.String("batch_id", batchID.String()),
		slog.String("file", batch.OriginalFilename),
		slog.Int("total_rows", batch.TotalRows),
		slog.Int("accepted_rows", batch.AcceptedRows),
		slog.Int("rejected_rows", batch.RejectedRows),
		slog.Duration("duration", time.Since(start)))

	return conv, nil
}

func (p *Processor) convert(ctx context.Context, batch *domain.IngestionBatch) (*Conversion, error) {
	sheet, err := p.parser.ParseSheet(ctx, batch.FilePath)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.InvalidFile(fmt.Sprintf("could not read %s: %v", batch.OriginalFilename, err))
	}
	return Convert(batch.ID, sheet)
}

func (p *Processor) fail(ctx context.Context, batchID uuid.UUID, message string) {
	if err := p.batches.UpdateStatus(ctx, batchID, domain.BatchStatusFailed, message); err != nil {
		p.logger.Error("failed to mark batch as failed",
			slog.String("batch_id", batchID.String()),
			slog.Any("error", err))
	}
	p.logger.Warn("batch ingestion failed",
		slog.String("batch_id", batchID.String()),
		slog.String("reason", message))
}

func summarizeIssues(issues []RowIssue) string {
	if len(issues) == 0 {
		return ""
	}
	msg := fmt.Sprintf("%d row issue(s)", len(issues))
	for i, is := range issues {
		if i == maxReportedIssues {
			msg += "; ..."
			break
		}
		msg += fmt.Sprintf("; line %d %s: %s", is.Line, is.Field, is.Message)
	}
	return msg
}
