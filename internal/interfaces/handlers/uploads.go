package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/ingestion"
	"github.com/alejandroruanova/cbam-emissions/internal/pkg/response"
)

// UploadHandlers accepts production spreadsheets
type UploadHandlers struct {
	Uploader *ingestion.Uploader
}

// Upload POST /api/v1/uploads (multipart field "file")
func (h *UploadHandlers) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "multipart field \"file\" is required")
	}
	f, err := fh.Open()
	if err != nil {
		return response.BadRequest(c, "uploaded file could not be read")
	}
	defer f.Close()

	batch, err := h.Uploader.Upload(c.UserContext(), fh.Filename, fh.Size, f)
	if err != nil {
		return response.FromError(c, err)
	}
	if batch.Status == domain.BatchStatusUploaded {
		return response.Accepted(c, "Upload queued for ingestion", batch)
	}
	return response.SuccessCreated(c, "Upload ingested", batch, nil)
}

// Get GET /api/v1/uploads/:id
func (h *UploadHandlers) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	batch, err := h.Uploader.Batch(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Ingestion batch", batch, nil)
}
