package Controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"GasTrack/Ledger"
)

func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "Duplicate entry")
}

// ledgerError translates the ledger's error taxonomy into an HTTP response.
func ledgerError(ctx *fiber.Ctx, err error) error {
	var notFound *Ledger.NotFoundError
	if errors.As(err, &notFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFound.Error()})
	}

	var validation *Ledger.ValidationError
	if errors.As(err, &validation) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation error",
			"field":  validation.Field,
			"detail": validation.Reason,
		})
	}

	var policy *Ledger.PolicyViolationError
	if errors.As(err, &policy) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": policy.Reason})
	}

	var conflict *Ledger.ConcurrencyConflictError
	if errors.As(err, &conflict) {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "The customer's balance is being updated concurrently, please retry",
		})
	}

	var storage *Ledger.StorageError
	if errors.As(err, &storage) {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Storage temporarily unavailable, the operation was rolled back",
		})
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
}
