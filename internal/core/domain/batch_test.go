package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIngestionBatch_TableName(t *testing.T) {
	assert.Equal(t, "ingestion_batches", IngestionBatch{}.TableName())
}

func TestIngestionBatch_BeforeCreate(t *testing.T) {
	batch := &IngestionBatch{OriginalFilename: "jan.xlsx", FileHash: "abc123"}
	assert.Equal(t, uuid.Nil, batch.ID)

	assert.NoError(t, batch.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, batch.ID)

	// An id chosen by the caller is kept
	fixed := uuid.New()
	batch = &IngestionBatch{ID: fixed}
	assert.NoError(t, batch.BeforeCreate(nil))
	assert.Equal(t, fixed, batch.ID)
}

func TestBatch_StatusValidation(t *testing.T) {
	assert.Equal(t, []string{"uploaded", "parsing", "completed", "failed"}, ValidStatuses())
}

func TestBatch_IsValidStatus(t *testing.T) {
	tests := []struct {
		status string
		valid  bool
	}{
		{"uploaded", true},
		{"parsing", true},
		{"completed", true},
		{"failed", true},
		{"archived", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidStatus(tt.status))
		})
	}
}
