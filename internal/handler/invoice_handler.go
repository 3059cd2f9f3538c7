package handler

import (
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// InvoiceHandler exposes the commit operation. The tax rate is the single
// configured value, threaded into every commit explicitly.
type InvoiceHandler struct {
	service service.InvoiceService
	taxRate decimal.Decimal
}

func NewInvoiceHandler(s service.InvoiceService, taxRate decimal.Decimal) *InvoiceHandler {
	return &InvoiceHandler{service: s, taxRate: taxRate}
}

type commitRequest struct {
	Cart         []model.CartLine `json:"cart"`
	MerchantName string           `json:"merchant_name"`
}

func (h *InvoiceHandler) CommitInvoice(c *fiber.Ctx) error {
	var req commitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_json"})
	}

	result, err := h.service.Commit(req.Cart, req.MerchantName, h.taxRate)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
