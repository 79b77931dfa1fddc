package ingestion

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

// Uploader accepts production spreadsheets and schedules their ingestion
type Uploader struct {
	files        FileStore
	batches      BatchRepository
	parser       SheetParser
	queue        Enqueuer
	processor    *Processor
	maxFileBytes int64
	logger       *slog.Logger
}

// UploaderConfig wires an Uploader. Queue may be nil, in which case the
// batch is processed inline before Upload returns.
type UploaderConfig struct {
	Files        FileStore
	Batches      BatchRepository
	Parser       SheetParser
	Queue        Enqueuer
	Processor    *Processor
	MaxFileBytes int64
}

// NewUploader creates a new uploader
func NewUploader(cfg UploaderConfig, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}

	return &Uploader{
		files:        cfg.Files,
		batches:      cfg.Batches,
		parser:       cfg.Parser,
		queue:        cfg.Queue,
		processor:    cfg.Processor,
		maxFileBytes: cfg.MaxFileBytes,
		logger:       logger,
	}
}

// Upload stores the file, registers a batch for it and hands it to the
// queue. Uploading a file whose content was already ingested is a conflict.
func (u *Uploader) Upload(ctx context.Context, filename string, size int64, r io.Reader) (*domain.IngestionBatch, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || !u.parser.IsSupported(ext) {
		return nil, apperrors.UnsupportedFormat(ext)
	}
	if u.maxFileBytes > 0 && size > u.maxFileBytes {
		return nil, apperrors.FileTooLarge(u.maxFileBytes / (1024 * 1024))
	}

	batchID := uuid.New()
	stored, err := u.files.SaveUpload(ctx, batchID.String(), filename, r)
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.InternalWrap(err, "failed to store upload")
	}

	existing, err := u.batches.GetByHash(ctx, stored.Hash)
	if err != nil {
		u.discard(ctx, batchID)
		return nil, apperrors.DatabaseError(err)
	}
	if existing != nil {
		u.discard(ctx, batchID)
		return nil, apperrors.Conflict("this file has already been uploaded").
			WithDetails("batch_id", existing.ID.String())
	}

	batch := &domain.IngestionBatch{
		ID:               batchID,
		OriginalFilename: filename,
		FilePath:         stored.Path,
		FileHash:         stored.Hash,
		Status:           domain.BatchStatusUploaded,
	}
	if err := u.batches.Create(ctx, batch); err != nil {
		u.discard(ctx, batchID)
		return nil, apperrors.DatabaseError(err)
	}

	u.logger.Info("upload registered",
		slog.String("batch_id", batchID.String()),
		slog.String("filename", filename),
		slog.Int64("size", stored.Size))

	if u.queue != nil {
		if err := u.queue.EnqueueIngest(ctx, batchID); err != nil {
			_ = u.batches.UpdateStatus(ctx, batchID, domain.BatchStatusFailed, "could not schedule ingestion")
			return nil, apperrors.QueueError(err)
		}
		return batch, nil
	}

	if _, err := u.processor.Process(ctx, batchID); err != nil {
		return nil, err
	}
	return u.batches.GetByID(ctx, batchID)
}

// Batch returns an ingestion batch by id.
func (u *Uploader) Batch(ctx context.Context, id uuid.UUID) (*domain.IngestionBatch, error) {
	return u.batches.GetByID(ctx, id)
}

func (u *Uploader) discard(ctx context.Context, batchID uuid.UUID) {
	if err := u.files.DeleteUpload(ctx, batchID.String()); err != nil {
		u.logger.Warn("failed to remove discarded upload",
			slog.String("batch_id", batchID.String()),
			slog.Any("error", err))
	}
}
