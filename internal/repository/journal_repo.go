package repository

import (
	"encoding/json"
	"fmt"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/store"
)

// JournalRepository encodes and decodes the invoices document. Storage order
// is unspecified; callers sort for display.
type JournalRepository interface {
	All(s store.Store) ([]model.Invoice, error)
	Save(s store.Store, invoices []model.Invoice) error
}

type journalRepo struct{}

func NewJournalRepo() JournalRepository {
	return &journalRepo{}
}

func (r *journalRepo) All(s store.Store) ([]model.Invoice, error) {
	doc, err := s.Get(store.KeyInvoices)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return []model.Invoice{}, nil
	}
	var invoices []model.Invoice
	if err := json.Unmarshal(doc, &invoices); err != nil {
		return nil, fmt.Errorf("decode invoices document: %w", err)
	}
	return invoices, nil
}

func (r *journalRepo) Save(s store.Store, invoices []model.Invoice) error {
	doc, err := json.Marshal(invoices)
	if err != nil {
		return fmt.Errorf("encode invoices document: %w", err)
	}
	return s.Set(store.KeyInvoices, doc)
}
