package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
	"github.com/alejandroruanova/cbam-emissions/internal/pkg/response"
)

// MasterCatalog reads and curates the reference master lists
type MasterCatalog interface {
	ListMaterials(ctx context.Context) ([]domain.MaterialMaster, error)
	ListFuels(ctx context.Context) ([]domain.FuelMaster, error)
	CreateMaterial(ctx context.Context, m *domain.MaterialMaster) error
	CreateFuel(ctx context.Context, f *domain.FuelMaster) error
}

// MasterHandlers serves /api/v1/masters/:kind
type MasterHandlers struct {
	Catalog MasterCatalog
}

type masterRequest struct {
	Name              string          `json:"name"`
	EnglishName       string          `json:"english_name"`
	EmissionFactor    decimal.Decimal `json:"emission_factor"`
	CarbonContent     decimal.Decimal `json:"carbon_content"`
	NetCalorificValue decimal.Decimal `json:"net_calorific_value"`
}

// List GET /api/v1/masters/:kind
func (h *MasterHandlers) List(c *fiber.Ctx) error {
	kind, err := domain.ParseKind(c.Params("kind"))
	if err != nil {
		return response.FromError(c, err)
	}

	var list interface{}
	var count int
	switch kind {
	case domain.KindFuel:
		fuels, err := h.Catalog.ListFuels(c.UserContext())
		if err != nil {
			return response.FromError(c, apperrors.CollaboratorUnavailable(err, "master reference service"))
		}
		list, count = fuels, len(fuels)
	default:
		materials, err := h.Catalog.ListMaterials(c.UserContext())
		if err != nil {
			return response.FromError(c, apperrors.CollaboratorUnavailable(err, "master reference service"))
		}
		list, count = materials, len(materials)
	}
	return response.Success(c, "Master list", list, fiber.Map{"kind": kind, "count": count})
}

// Create POST /api/v1/masters/:kind
func (h *MasterHandlers) Create(c *fiber.Ctx) error {
	kind, err := domain.ParseKind(c.Params("kind"))
	if err != nil {
		return response.FromError(c, err)
	}
	var req masterRequest
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return response.FromError(c, apperrors.Validation("name", "name is required"))
	}
	if req.EmissionFactor.IsNegative() {
		return response.FromError(c, apperrors.Validation("emission_factor", "emission factor cannot be negative"))
	}

	if kind == domain.KindFuel {
		f := &domain.FuelMaster{
			Name:              name,
			EnglishName:       strings.TrimSpace(req.EnglishName),
			EmissionFactor:    req.EmissionFactor,
			NetCalorificValue: req.NetCalorificValue,
		}
		if err := h.Catalog.CreateFuel(c.UserContext(), f); err != nil {
			return response.FromError(c, apperrors.DatabaseError(err))
		}
		return response.SuccessCreated(c, "Fuel master created", f, nil)
	}

	m := &domain.MaterialMaster{
		Name:           name,
		EnglishName:    strings.TrimSpace(req.EnglishName),
		EmissionFactor: req.EmissionFactor,
		CarbonContent:  req.CarbonContent,
	}
	if err := h.Catalog.CreateMaterial(c.UserContext(), m); err != nil {
		return response.FromError(c, apperrors.DatabaseError(err))
	}
	return response.SuccessCreated(c, "Material master created", m, nil)
}
