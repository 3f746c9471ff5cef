package serverutils

import (
	"errors"

	"pin-support-be/internal/pkg/logger"
	"pin-support-be/pkg/capability"

	"github.com/gofiber/fiber/v2"
)

// StatusCoder is implemented by domain errors that know their HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// StatusFor maps an error to the HTTP status and client message.
func StatusFor(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, ve.Error()
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), err.Error()
	}

	var capErr *capability.Error
	if errors.As(err, &capErr) {
		if capErr.Timeout() {
			return fiber.StatusServiceUnavailable, "Upstream model service timed out"
		}
		return fiber.StatusServiceUnavailable, "Upstream model service unavailable"
	}

	return fiber.StatusInternalServerError, "Internal server error"
}

// ErrorHandlerMiddleware renders handler errors in the response envelope.
// Only 5xx errors are logged.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := StatusFor(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": code,
				"error":  err.Error(),
			})
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
