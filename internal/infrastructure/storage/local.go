package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alejandroruanova/cbam-emissions/internal/core/services/ingestion"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

// LocalStorage keeps uploaded spreadsheets on the local filesystem until
// the worker has ingested them
type LocalStorage struct {
	basePath string
	maxBytes int64
	logger   *slog.Logger
}

// LocalStorageConfig configures local storage
type LocalStorageConfig struct {
	BasePath string // Base directory for uploads (e.g., "/tmp/cbam-uploads")
	MaxBytes int64  // Largest accepted upload; 0 = unlimited
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(cfg *LocalStorageConfig, logger *slog.Logger) (*LocalStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Join(cfg.BasePath, "uploads"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &LocalStorage{
		basePath: cfg.BasePath,
		maxBytes: cfg.MaxBytes,
		logger:   logger,
	}, nil
}

// SaveUpload writes r under uploads/<uploadID>/ and returns its SHA-256.
// Streams longer than the configured maximum are removed and rejected.
func (s *LocalStorage) SaveUpload(ctx context.Context, uploadID, filename string, r io.Reader) (*ingestion.StoredFile, error) {
	uploadDir := s.uploadDir(uploadID)
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	destPath := filepath.Join(uploadDir, filepath.Base(filename))
	destFile, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	if s.maxBytes > 0 {
		r = io.LimitReader(r, s.maxBytes+1)
	}

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(destFile, hash), r)
	if err != nil {
		_ = os.RemoveAll(uploadDir)
		return nil, fmt.Errorf("failed to copy file: %w", err)
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		_ = os.RemoveAll(uploadDir)
		return nil, apperrors.FileTooLarge(s.maxBytes / (1024 * 1024))
	}

	stored := &ingestion.StoredFile{
		Path: destPath,
		Hash: hex.EncodeToString(hash.Sum(nil)),
		Size: size,
	}

	s.logger.Info("file uploaded successfully",
		slog.String("upload_id", uploadID),
		slog.String("filename", filename),
		slog.Int64("size", size),
		slog.String("hash", stored.Hash))

	return stored, nil
}

// DeleteUpload removes all files of an upload
func (s *LocalStorage) DeleteUpload(ctx context.Context, uploadID string) error {
	if err := os.RemoveAll(s.uploadDir(uploadID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete upload directory: %w", err)
	}

	s.logger.Info("upload deleted", slog.String("upload_id", uploadID))
	return nil
}

func (s *LocalStorage) uploadDir(uploadID string) string {
	return filepath.Join(s.basePath, "uploads", filepath.Base(uploadID))
}

var _ ingestion.FileStore = (*LocalStorage)(nil)
