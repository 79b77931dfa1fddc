package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/alejandroruanova/cbam-emissions/internal/core/services/ingestion"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

// TaskTypeIngestRawInputs converts an uploaded batch into raw input rows
const TaskTypeIngestRawInputs = "ingest:raw_inputs"

// IngestPayload is the body of an ingestion task
type IngestPayload struct {
	BatchID uuid.UUID `json:"batch_id"`
}

// NewIngestTask builds the task for one batch
func NewIngestTask(batchID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestPayload{BatchID: batchID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode ingest payload: %w", err)
	}
	return asynq.NewTask(TaskTypeIngestRawInputs, payload), nil
}

// BatchProcessor ingests one stored batch
type BatchProcessor interface {
	Process(ctx context.Context, batchID uuid.UUID) (*ingestion.Conversion, error)
}

// IngestHandler runs ingestion tasks on the worker
type IngestHandler struct {
	processor BatchProcessor
	logger    *slog.Logger
}

// NewIngestHandler creates a handler for TaskTypeIngestRawInputs
func NewIngestHandler(processor BatchProcessor, logger *slog.Logger) *IngestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestHandler{processor: processor, logger: logger}
}

// ProcessTask implements asynq.Handler. Bad files and unknown batches are
// not retried; storage errors are.
func (h *IngestHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p IngestPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil || p.BatchID == uuid.Nil {
		return fmt.Errorf("invalid ingest payload %q: %w", t.Payload(), asynq.SkipRetry)
	}

	conv, err := h.processor.Process(ctx, p.BatchID)
	if err != nil {
		if permanent(err) {
			h.logger.Warn("ingest task dropped",
				slog.String("batch_id", p.BatchID.String()),
				slog.Any("error", err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	if conv != nil {
		h.logger.Info("ingest task done",
			slog.String("batch_id", p.BatchID.String()),
			slog.Int("accepted", conv.Accepted()),
			slog.Int("rejected", conv.Rejected()))
	}
	return nil
}

func permanent(err error) bool {
	for _, code := range []apperrors.ErrorCode{
		apperrors.ErrCodeInvalidFile,
		apperrors.ErrCodeUnsupportedFormat,
		apperrors.ErrCodeFileTooLarge,
		apperrors.ErrCodeRecordNotFound,
		apperrors.ErrCodeNotFound,
	} {
		if apperrors.HasCode(err, code) {
			return true
		}
	}
	return false
}

var _ asynq.Handler = (*IngestHandler)(nil)
