package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alejandroruanova/cbam-emissions/internal/core/services/calcsession"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/calculator"
	"github.com/alejandroruanova/cbam-emissions/internal/pkg/response"
)

// SessionHandlers serves the input dialog of a process
type SessionHandlers struct {
	Service *calcsession.Service
}

type openSessionRequest struct {
	ProcessID uint `json:"process_id"`
}

// Open POST /api/v1/sessions
func (h *SessionHandlers) Open(c *fiber.Ctx) error {
	var req openSessionRequest
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	if req.ProcessID == 0 {
		return response.BadRequest(c, "process_id is required")
	}
	v, err := h.Service.Open(c.UserContext(), req.ProcessID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Input dialog opened", v, nil)
}

// Get GET /api/v1/sessions/:id
func (h *SessionHandlers) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	v, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Input dialog", v, nil)
}

// Refresh POST /api/v1/sessions/:id/refresh
func (h *SessionHandlers) Refresh(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	v, err := h.Service.RefreshMasters(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Master lists refreshed", v, nil)
}

// Preview POST /api/v1/sessions/:id/preview
func (h *SessionHandlers) Preview(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var d calculator.Draft
	if err := parseBody(c, &d); err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Service.Preview(c.UserContext(), id, d)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Calculation preview", p, nil)
}

// Save POST /api/v1/sessions/:id/entries
func (h *SessionHandlers) Save(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var d calculator.Draft
	if err := parseBody(c, &d); err != nil {
		return response.FromError(c, err)
	}
	v, err := h.Service.Save(c.UserContext(), id, d)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Calculation saved", v, nil)
}

// Replace PUT /api/v1/sessions/:id/entries/:entryId
func (h *SessionHandlers) Replace(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	entryID, err := idParam(c, "entryId")
	if err != nil {
		return response.FromError(c, err)
	}
	var d calculator.Draft
	if err := parseBody(c, &d); err != nil {
		return response.FromError(c, err)
	}
	v, err := h.Service.Replace(c.UserContext(), id, entryID, d)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Calculation replaced", v, nil)
}

// DeleteEntry DELETE /api/v1/sessions/:id/entries/:entryId
func (h *SessionHandlers) DeleteEntry(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	entryID, err := idParam(c, "entryId")
	if err != nil {
		return response.FromError(c, err)
	}
	v, err := h.Service.Delete(c.UserContext(), id, entryID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Calculation deleted", v, nil)
}

// Close DELETE /api/v1/sessions/:id
func (h *SessionHandlers) Close(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Close(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Input dialog closed", nil, nil)
}

// Summary GET /api/v1/processes/:id/summary
func (h *SessionHandlers) Summary(c *fiber.Ctx) error {
	processID, err := idParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	sum, err := h.Service.Summary(c.UserContext(), processID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Emission summary", sum, nil)
}
