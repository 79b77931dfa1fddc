package ingestion

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

// mockParser returns the same sheet for every path
type mockParser struct {
	sheet *Sheet
	err   error
}

func (m *mockParser) ParseSheet(ctx context.Context, path string) (*Sheet, error) {
	return m.sheet, m.err
}

func (m *mockParser) IsSupported(ext string) bool {
	return ext == ".csv" || ext == ".xlsx"
}

// mockBatchRepository keeps batches in memory
type mockBatchRepository struct {
	batches map[uuid.UUID]*domain.IngestionBatch
}

func newMockBatchRepository() *mockBatchRepository {
	return &mockBatchRepository{batches: make(map[uuid.UUID]*domain.IngestionBatch)}
}

func (m *mockBatchRepository) Create(ctx context.Context, b *domain.IngestionBatch) error {
	cp := *b
	m.batches[b.ID] = &cp
	return nil
}

func (m *mockBatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.IngestionBatch, error) {
	b, ok := m.batches[id]
	if !ok {
		return nil, apperrors.RecordNotFound("ingestion batch")
	}
	cp := *b
	return &cp, nil
}

func (m *mockBatchRepository) GetByHash(ctx context.Context, hash string) (*domain.IngestionBatch, error) {
	for _, b := range m.batches {
		if b.FileHash == hash {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockBatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, message string) error {
	b, ok := m.batches[id]
	if !ok {
		return apperrors.RecordNotFound("ingestion batch")
	}
	b.Status = status
	b.ErrorMessage = message
	return nil
}

func (m *mockBatchRepository) Complete(ctx context.Context, b *domain.IngestionBatch) error {
	cp := *b
	m.batches[b.ID] = &cp
	return nil
}

// mockRowWriter records what was stored per batch
type mockRowWriter struct {
	stored map[uuid.UUID][]domain.RawInputRecord
	calls  int
	err    error
}

func (m *mockRowWriter) ReplaceBatch(ctx context.Context, batchID uuid.UUID, records []domain.RawInputRecord) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.stored[batchID] = records
	return nil
}

// mockFileStore hashes uploads without touching disk
type mockFileStore struct {
	saved   map[string][]byte
	deleted []string
}

func (m *mockFileStore) SaveUpload(ctx context.Context, uploadID, filename string, r io.Reader) (*StoredFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.saved[uploadID] = data
	sum := sha256.Sum256(data)
	return &StoredFile{Path: "/uploads/" + uploadID + "/" + filename, Hash: hex.EncodeToString(sum[:]), Size: int64(len(data))}, nil
}

func (m *mockFileStore) DeleteUpload(ctx context.Context, uploadID string) error {
	delete(m.saved, uploadID)
	m.deleted = append(m.deleted, uploadID)
	return nil
}

type mockQueue struct {
	enqueued []uuid.UUID
	err      error
}

func (m *mockQueue) EnqueueIngest(ctx context.Context, batchID uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, batchID)
	return nil
}

func validSheet() *Sheet {
	return &Sheet{
		Format:  "CSV",
		Columns: standardColumns,
		Rows: []SourceRow{
			sheetRow(2, "Billet", "EAF smelting", "Scrap", "50", "t", "2024-01-01", "2024-01-31"),
			sheetRow(3, "Billet", "EAF smelting", "Lime", "", "t", "2024-01-01", "2024-01-31"),
		},
	}
}

type ingestFixture struct {
	parser  *mockParser
	batches *mockBatchRepository
	rows    *mockRowWriter
	files   *mockFileStore
	proc    *Processor
}

func newIngestFixture() *ingestFixture {
	f := &ingestFixture{
		parser:  &mockParser{sheet: validSheet()},
		batches: newMockBatchRepository(),
		rows:    &mockRowWriter{stored: make(map[uuid.UUID][]domain.RawInputRecord)},
		files:   &mockFileStore{saved: make(map[string][]byte)},
	}
	f.proc = NewProcessor(f.parser, f.batches, f.rows, nil)
	return f
}

func (f *ingestFixture) seedBatch() uuid.UUID {
	id := uuid.New()
	f.batches.batches[id] = &domain.IngestionBatch{ID: id, OriginalFilename: "jan.csv", FilePath: "/tmp/jan.csv", FileHash: "h", Status: domain.BatchStatusUploaded}
	return id
}

func TestProcessor_Process(t *testing.T) {
	f := newIngestFixture()
	id := f.seedBatch()

	conv, err := f.proc.Process(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, conv.Accepted())

	batch := f.batches.batches[id]
	assert.Equal(t, domain.BatchStatusCompleted, batch.Status)
	assert.Equal(t, 2, batch.TotalRows)
	assert.Equal(t, 1, batch.AcceptedRows)
	assert.Equal(t, 1, batch.RejectedRows)
	assert.Contains(t, batch.ErrorMessage, "line 3 quantity")
	assert.NotNil(t, batch.CompletedAt)
	require.Len(t, f.rows.stored[id], 1)
	assert.Equal(t, "Scrap", f.rows.stored[id][0].InputName)
}

func TestProcessor_SkipsCompletedBatch(t *testing.T) {
	f := newIngestFixture()
	id := f.seedBatch()

	_, err := f.proc.Process(context.Background(), id)
	require.NoError(t, err)
	_, err = f.proc.Process(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, 1, f.rows.calls)
}

func TestProcessor_ParseFailureMarksBatchFailed(t *testing.T) {
	f := newIngestFixture()
	f.parser.err = errors.New("zip: not a valid zip file")
	id := f.seedBatch()

	_, err := f.proc.Process(context.Background(), id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidFile))
	assert.Equal(t, domain.BatchStatusFailed, f.batches.batches[id].Status)
	assert.Equal(t, 0, f.rows.calls)
}

func TestProcessor_StoreFailure(t *testing.T) {
	f := newIngestFixture()
	f.rows.err = errors.New("deadlock detected")
	id := f.seedBatch()

	_, err := f.proc.Process(context.Background(), id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabaseError))
	assert.Equal(t, domain.BatchStatusFailed, f.batches.batches[id].Status)
}

func TestUploader_Inline(t *testing.T) {
	f := newIngestFixture()
	u := NewUploader(UploaderConfig{
		Files:     f.files,
		Batches:   f.batches,
		Parser:    f.parser,
		Processor: f.proc,
	}, nil)

	batch, err := u.Upload(context.Background(), "jan.csv", 10, bytes.NewReader([]byte("content")))
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusCompleted, batch.Status)
	assert.Equal(t, 1, batch.AcceptedRows)
}

func TestUploader_Queued(t *testing.T) {
	f := newIngestFixture()
	q := &mockQueue{}
	u := NewUploader(UploaderConfig{
		Files:     f.files,
		Batches:   f.batches,
		Parser:    f.parser,
		Queue:     q,
		Processor: f.proc,
	}, nil)

	batch, err := u.Upload(context.Background(), "jan.xlsx", 10, bytes.NewReader([]byte("content")))
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusUploaded, batch.Status)
	assert.Equal(t, []uuid.UUID{batch.ID}, q.enqueued)
	assert.Equal(t, 0, f.rows.calls)
}

func TestUploader_DuplicateContentConflicts(t *testing.T) {
	f := newIngestFixture()
	u := NewUploader(UploaderConfig{Files: f.files, Batches: f.batches, Parser: f.parser, Queue: &mockQueue{}}, nil)
	ctx := context.Background()

	first, err := u.Upload(ctx, "jan.csv", 7, bytes.NewReader([]byte("content")))
	require.NoError(t, err)

	_, err = u.Upload(ctx, "jan-copy.csv", 7, bytes.NewReader([]byte("content")))
	require.Error(t, err)
	appErr, ok := apperrors.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
	assert.Equal(t, first.ID.String(), appErr.Details["batch_id"])
	assert.Len(t, f.files.deleted, 1, "duplicate file is removed from storage")
	assert.Len(t, f.batches.batches, 1)
}

func TestUploader_RejectsFormatAndSize(t *testing.T) {
	f := newIngestFixture()
	u := NewUploader(UploaderConfig{Files: f.files, Batches: f.batches, Parser: f.parser, Queue: &mockQueue{}, MaxFileBytes: 1024 * 1024}, nil)
	ctx := context.Background()

	_, err := u.Upload(ctx, "notes.pdf", 10, bytes.NewReader(nil))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnsupportedFormat))

	_, err = u.Upload(ctx, "big.csv", 2*1024*1024, bytes.NewReader(nil))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFileTooLarge))
	assert.Empty(t, f.files.saved)
}

func TestUploader_QueueFailure(t *testing.T) {
	f := newIngestFixture()
	u := NewUploader(UploaderConfig{Files: f.files, Batches: f.batches, Parser: f.parser, Queue: &mockQueue{err: errors.New("redis down")}}, nil)

	_, err := u.Upload(context.Background(), "jan.csv", 7, bytes.NewReader([]byte("content")))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeQueueError))
	for _, b := range f.batches.batches {
		assert.Equal(t, domain.BatchStatusFailed, b.Status)
	}
}
