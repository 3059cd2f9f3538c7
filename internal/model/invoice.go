package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is a transient item+quantity selection. It is never persisted;
// the UI keeps the cart and hands it to the invoice engine at commit time.
type CartLine struct {
	ItemID uuid.UUID `json:"item_id" validate:"uuid_required"`
	Qty    int       `json:"qty" validate:"required,gt=0"`
}

// InvoiceLine is a frozen copy of the sold item at commit time. Later edits
// to the stock item must never show through here.
type InvoiceLine struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Qty       int             `json:"qty"`
}

// LineTotal returns UnitPrice * Qty at full precision.
func (l InvoiceLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Invoice is an immutable sale record. Only IsDeleted may change after
// commit, and flipping it never touches stock.
type Invoice struct {
	ID           string          `json:"id"`
	Date         time.Time       `json:"date"`
	MerchantName string          `json:"merchant_name"`
	Items        []InvoiceLine   `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	VAT          decimal.Decimal `json:"vat"`
	Total        decimal.Decimal `json:"total"`
	IsDeleted    bool            `json:"is_deleted"`
}

// CommitResult is what the engine hands back after a successful commit: the
// committed invoice plus the post-commit ledger snapshot, so the caller can
// refresh its view without a second racy read.
type CommitResult struct {
	Invoice Invoice     `json:"invoice"`
	Ledger  []StockItem `json:"ledger"`
}
