package repository

import (
	"encoding/json"
	"fmt"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/store"
)

// LedgerRepository encodes and decodes the inventory document. Methods take
// the store handle explicitly so the same repository works against the root
// store and against the view inside store.Update, the way a transactional
// handle would be threaded through.
type LedgerRepository interface {
	All(s store.Store) ([]model.StockItem, error)
	Save(s store.Store, items []model.StockItem) error
}

type ledgerRepo struct{}

func NewLedgerRepo() LedgerRepository {
	return &ledgerRepo{}
}

func (r *ledgerRepo) All(s store.Store) ([]model.StockItem, error) {
	doc, err := s.Get(store.KeyInventory)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return []model.StockItem{}, nil
	}
	var items []model.StockItem
	if err := json.Unmarshal(doc, &items); err != nil {
		return nil, fmt.Errorf("decode inventory document: %w", err)
	}
	return items, nil
}

func (r *ledgerRepo) Save(s store.Store, items []model.StockItem) error {
	doc, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode inventory document: %w", err)
	}
	return s.Set(store.KeyInventory, doc)
}
