package handler

import (
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LedgerHandler struct {
	service service.LedgerService
}

func NewLedgerHandler(s service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: s}
}

func (h *LedgerHandler) GetItems(c *fiber.Ctx) error {
	items, err := h.service.ListItems()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

func (h *LedgerHandler) UpsertItem(c *fiber.Ctx) error {
	var req model.UpsertItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_json"})
	}

	item, err := h.service.UpsertItem(&req)
	if err != nil {
		return writeError(c, err)
	}

	status := fiber.StatusOK
	if req.ID == nil {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"message": "Item saved", "data": item})
}

func (h *LedgerHandler) RemoveItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_item_id"})
	}

	removed, err := h.service.RemoveItem(id)
	if err != nil {
		return writeError(c, err)
	}
	// Removing an unknown id is a no-op, not a failure; the caller's list
	// may simply be stale.
	return c.JSON(fiber.Map{"message": "Item removed", "removed": removed})
}
