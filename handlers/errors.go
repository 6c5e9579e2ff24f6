// handlers/errors.go
package handlers

import (
	"errors"

	"idle-miner/services"

	"github.com/gofiber/fiber/v2"
)

// writeError maps a service error to its HTTP status. Missing identity is
// rejected with 401 by UserContextMiddleware before a handler runs, so an
// ErrUnauthorized reaching here means the caller does not own the target.
func writeError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrInsufficientScore),
		errors.Is(err, services.ErrAlreadyInitialized):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrMathOverflow):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotInitialized):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, services.ErrInvalidConfig),
		errors.Is(err, services.ErrInvalidBatch):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrVaultMismatch),
		errors.Is(err, services.ErrInsufficientVaultBalance),
		errors.Is(err, services.ErrRewardAccountMissing),
		errors.Is(err, services.ErrTransferRejected):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}
