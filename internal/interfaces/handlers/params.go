package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

func idParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest(name + " must be a positive integer")
	}
	return uint(id), nil
}

// queryID reads an optional numeric filter; a missing value is 0.
func queryID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperrors.BadRequest(name + " must be a positive integer")
	}
	return uint(id), nil
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest(name + " must be a UUID")
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.BadRequest("request body is not valid JSON")
	}
	return nil
}
