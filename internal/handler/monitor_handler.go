package handler

import (
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

// MonitorHandler is a read-only developer view over both documents,
// including soft-deleted invoices.
type MonitorHandler struct {
	ledger  service.LedgerService
	journal service.JournalService
}

func NewMonitorHandler(ledger service.LedgerService, journal service.JournalService) *MonitorHandler {
	return &MonitorHandler{ledger: ledger, journal: journal}
}

func (h *MonitorHandler) GetMonitor(c *fiber.Ctx) error {
	items, err := h.ledger.ListItems()
	if err != nil {
		return writeError(c, err)
	}
	invoices, err := h.journal.ListAll()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"inventory": items,
		"invoices":  invoices,
	})
}
