package service

import (
	"strings"
	"time"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/store"
	"go-pos-ledger/pkg/validator"

	"github.com/google/uuid"
)

// LedgerService owns the stock catalog: list, create/replace, hard delete.
// Quantity decrements on sale go through the invoice service, never here.
type LedgerService interface {
	ListItems() ([]model.StockItem, error)
	UpsertItem(req *model.UpsertItemRequest) (*model.StockItem, error)
	// RemoveItem is idempotent: removing an unknown id reports removed=false
	// without an error, since the caller's own list may be stale.
	RemoveItem(id uuid.UUID) (removed bool, err error)
}

type ledgerService struct {
	store    store.Store
	ledger   repository.LedgerRepository
	notifier ChangeNotifier
	now      func() time.Time
}

func NewLedgerService(s store.Store, ledger repository.LedgerRepository, notifier ChangeNotifier) LedgerService {
	return &ledgerService{
		store:    s,
		ledger:   ledger,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *ledgerService) ListItems() ([]model.StockItem, error) {
	return s.ledger.All(s.store)
}

func (s *ledgerService) UpsertItem(req *model.UpsertItemRequest) (*model.StockItem, error) {
	req.Name = strings.TrimSpace(req.Name)

	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, &ValidationError{Field: first.FailedField, Tag: first.Tag}
	}
	// A fresh item with nothing on hand is rejected; zero only ever results
	// from sales or explicit edits.
	if req.ID == nil && req.Quantity <= 0 {
		return nil, &ValidationError{Field: "UpsertItemRequest.Quantity", Tag: "gt"}
	}

	var committed model.StockItem
	err := s.store.Update(func(view store.Store) error {
		items, err := s.ledger.All(view)
		if err != nil {
			return err
		}

		now := s.now()
		if req.ID == nil {
			committed = model.StockItem{
				ID:        uuid.New(),
				Name:      req.Name,
				Quantity:  req.Quantity,
				Price:     req.Price,
				CreatedAt: now,
				UpdatedAt: now,
			}
			items = append(items, committed)
			return s.ledger.Save(view, items)
		}

		// Full replace of the matching item, not a merge. An unknown id is
		// created under that id: the caller's list may predate a delete.
		committed = model.StockItem{
			ID:        *req.ID,
			Name:      req.Name,
			Quantity:  req.Quantity,
			Price:     req.Price,
			CreatedAt: now,
			UpdatedAt: now,
		}
		replaced := false
		for i := range items {
			if items[i].ID == *req.ID {
				committed.CreatedAt = items[i].CreatedAt
				items[i] = committed
				replaced = true
				break
			}
		}
		if !replaced {
			items = append(items, committed)
		}
		return s.ledger.Save(view, items)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.StoreChanged(store.KeyInventory)
	return &committed, nil
}

func (s *ledgerService) RemoveItem(id uuid.UUID) (bool, error) {
	removed := false
	err := s.store.Update(func(view store.Store) error {
		items, err := s.ledger.All(view)
		if err != nil {
			return err
		}
		kept := items[:0]
		for _, it := range items {
			if it.ID == id {
				removed = true
				continue
			}
			kept = append(kept, it)
		}
		if !removed {
			return nil
		}
		return s.ledger.Save(view, kept)
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.notifier.StoreChanged(store.KeyInventory)
	}
	return removed, nil
}
