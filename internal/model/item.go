package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItem is a sellable catalog entry with its on-hand count.
// Owned exclusively by the stock ledger; the invoice engine only ever
// decrements Quantity.
type StockItem struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UpsertItemRequest carries user input for creating or fully replacing a
// stock item. A nil ID means create.
type UpsertItemRequest struct {
	ID       *uuid.UUID      `json:"id"`
	Name     string          `json:"name" validate:"required"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
}
