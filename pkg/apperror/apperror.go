package apperror

import (
	"fmt"

	"policy-chat/config"
	"policy-chat/pkg/apperror/status"
	"policy-chat/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

// ErrorResponse is the standardized HTTP error payload.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

// SuccessMessage is the standardized HTTP success envelope.
type SuccessMessage struct {
	Code       status.SuccessCode `json:"code"`
	Message    string             `json:"message"`
	TrackingID string             `json:"tracking_id"`
	Data       any                `json:"data"`
}

// WriteError logs a structured warning and returns a standardized JSON error.
func WriteError(module config.Module, c fiber.Ctx, httpStatus int, code string, message string) error {
	logger.WithFields(map[string]interface{}{
		"module":        module,
		"status_code":   httpStatus,
		"error_code":    code,
		"error_message": message,
		"http_method":   c.Method(),
		"path":          c.Path(),
		"ip":            c.IP(),
	}).Warnf("http error")

	return c.Status(httpStatus).JSON(ErrorResponse{
		Error:     message,
		ErrorCode: code,
	})
}

func BadRequest(module config.Module, c fiber.Ctx, code status.ErrorCode, message string) error {
	return WriteError(module, c, fiber.StatusBadRequest, CodeString(code), message)
}

func NotFound(module config.Module, c fiber.Ctx, message string) error {
	return WriteError(module, c, fiber.StatusNotFound, CodeString(status.NotFound), message)
}

func InternalError(module config.Module, c fiber.Ctx, err error) error {
	return WriteError(module, c, fiber.StatusInternalServerError, CodeString(status.Internal), err.Error())
}

// Success writes a standardized JSON success response.
func Success(module config.Module, c fiber.Ctx, response SuccessMessage) error {
	return c.Status(fiber.StatusOK).JSON(response)
}

// CodeString renders an error code in the stable wire form.
func CodeString(code status.ErrorCode) string {
	return fmt.Sprintf("PC-%d", code)
}
