package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/forkintheroad/fitr-admin/internal/domain"
)

// failure keeps client errors intact and turns anything else into a 500
// carrying the endpoint's generic message.
func failure(err error, message string) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.StatusCode < fiber.StatusInternalServerError {
		return appErr
	}
	return domain.ErrInternal.WithMessage(message).WithError(err)
}
