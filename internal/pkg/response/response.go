package response

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

// SuccessBody is the standardized success JSON shape.
type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail is the nested error object.
type ErrorDetail struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

const statusSuccess = "success"
const statusError = "error"

// Success sends a 200 OK response with the standard success format.
func Success(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	return send(c, fiber.StatusOK, message, data, metadata)
}

// SuccessCreated sends a 201 Created response with the standard success format.
func SuccessCreated(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	return send(c, fiber.StatusCreated, message, data, metadata)
}

// Accepted sends a 202 for work handed to the background worker.
func Accepted(c *fiber.Ctx, message string, data interface{}) error {
	return send(c, fiber.StatusAccepted, message, data, nil)
}

func send(c *fiber.Ctx, status int, message string, data, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(status).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// Error sends a response with the standard error format.
func Error(c *fiber.Ctx, code apperrors.ErrorCode, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	return c.Status(statusCode).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Code:       string(code),
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
		},
	})
}

// BadRequest sends a 400 for malformed requests.
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, apperrors.ErrCodeBadRequest, message, fiber.StatusBadRequest, nil)
}

// FromError renders err. AppErrors keep their code, status and details;
// anything else is logged and hidden behind a 500.
func FromError(c *fiber.Ctx, err error) error {
	if appErr, ok := apperrors.GetAppError(err); ok {
		if appErr.StatusCode >= fiber.StatusInternalServerError {
			slog.Error("request failed",
				slog.String("path", c.Path()),
				slog.String("code", string(appErr.Code)),
				slog.Any("error", err))
		}
		status := appErr.StatusCode
		if status == 0 {
			status = fiber.StatusInternalServerError
		}
		return Error(c, appErr.Code, appErr.Message, status, appErr.Details)
	}

	if fe, ok := err.(*fiber.Error); ok {
		code := apperrors.ErrCodeBadRequest
		switch {
		case fe.Code == fiber.StatusNotFound:
			code = apperrors.ErrCodeNotFound
		case fe.Code == fiber.StatusRequestEntityTooLarge:
			code = apperrors.ErrCodeFileTooLarge
		case fe.Code >= fiber.StatusInternalServerError:
			code = apperrors.ErrCodeInternal
		}
		return Error(c, code, fe.Message, fe.Code, nil)
	}

	slog.Error("unexpected request error",
		slog.String("path", c.Path()),
		slog.Any("error", err))
	return Error(c, apperrors.ErrCodeInternal, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
