package handler

import (
	"errors"

	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

// writeError maps service errors onto structured JSON bodies so the UI can
// render a precise message instead of a generic failure.
func writeError(c *fiber.Ctx, err error) error {
	var (
		validationErr *service.ValidationError
		stockErr      *service.InsufficientStockError
		conflictErr   *service.UniquenessConflictError
		reconcileErr  *service.ReconciliationError
	)

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "empty_cart",
		})
	case errors.Is(err, service.ErrInvoiceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "invoice_not_found",
		})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "validation_failed",
			"field": validationErr.Field,
			"tag":   validationErr.Tag,
		})
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     "insufficient_stock",
			"item_id":   stockErr.ItemID,
			"name":      stockErr.Name,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      "invoice_id_conflict",
			"invoice_id": conflictErr.InvoiceID,
		})
	case errors.As(err, &reconcileErr):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":       "reconciliation_required",
			"applied_key": reconcileErr.AppliedKey,
			"failed_key":  reconcileErr.FailedKey,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_error",
		})
	}
}
