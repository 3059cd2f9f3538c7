package handler

import (
	"time"

	"go-pos-ledger/internal/export"
	"go-pos-ledger/internal/receipt"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SalesHandler struct {
	service service.JournalService
}

func NewSalesHandler(s service.JournalService) *SalesHandler {
	return &SalesHandler{service: s}
}

func (h *SalesHandler) GetSales(c *fiber.Ctx) error {
	invoices, err := h.service.ListActive()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoices)
}

func (h *SalesHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}

type toggleDeletedRequest struct {
	Deleted bool `json:"deleted"`
}

func (h *SalesHandler) ToggleDeleted(c *fiber.Ctx) error {
	var req toggleDeletedRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_json"})
	}

	inv, err := h.service.ToggleDeleted(c.Params("id"), req.Deleted)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Invoice updated", "data": inv})
}

// ResetAll clears the whole journal. The confirm query parameter is the
// gate the destructive primitive forces onto callers.
func (h *SalesHandler) ResetAll(c *fiber.Ctx) error {
	if c.Query("confirm") != "true" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "confirmation_required",
		})
	}
	if err := h.service.ResetAll(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sales journal cleared"})
}

func (h *SalesHandler) ExportXLSX(c *fiber.Ctx) error {
	invoices, err := h.service.ListActive()
	if err != nil {
		return writeError(c, err)
	}
	f, err := export.WriteXLSX(invoices)
	if err != nil {
		return writeError(c, err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.Filename(time.Now())+`"`)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}

func (h *SalesHandler) GetReceipt(c *fiber.Ctx) error {
	inv, err := h.service.FindByID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(receipt.Render(*inv))
}

func (h *SalesHandler) GetReceiptQR(c *fiber.Ctx) error {
	inv, err := h.service.FindByID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	size := c.QueryInt("size", 180)
	png, err := receipt.QRPNG(*inv, size)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
