package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/forkintheroad/fitr-admin/internal/domain"
)

// ErrorHandler renders every error as {success:false, error, code}.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// Check if it's a Fiber error
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(errorBody(fiberErr.Message, "HTTP_ERROR"))
		}

		// Check if it's our AppError
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			if appErr.StatusCode >= 500 {
				logger.Error("internal error",
					slog.String("code", appErr.Code),
					slog.String("message", appErr.Message),
					slog.String("path", c.Path()),
					slog.Any("error", appErr.Err),
				)
			}

			return c.Status(appErr.StatusCode).JSON(errorBody(appErr.Message, appErr.Code))
		}

		// Unknown error - log and return generic message
		logger.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Path()),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(
			errorBody(domain.ErrInternal.Message, domain.ErrInternal.Code),
		)
	}
}

func errorBody(message, code string) fiber.Map {
	return fiber.Map{
		"success": false,
		"error":   message,
		"code":    code,
	}
}
