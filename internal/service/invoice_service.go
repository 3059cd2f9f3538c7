package service

import (
	"fmt"
	"strings"
	"time"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/store"
	"go-pos-ledger/pkg/logger"
	"go-pos-ledger/pkg/validator"

	"github.com/shopspring/decimal"
)

// InvoiceService turns a validated cart into an immutable invoice and
// decrements stock, as one compound write.
type InvoiceService interface {
	Commit(cart []model.CartLine, merchantName string, taxRate decimal.Decimal) (*model.CommitResult, error)
}

type invoiceService struct {
	store           store.Store
	ledger          repository.LedgerRepository
	journal         repository.JournalRepository
	notifier        ChangeNotifier
	defaultMerchant string
	now             func() time.Time
}

func NewInvoiceService(
	s store.Store,
	ledger repository.LedgerRepository,
	journal repository.JournalRepository,
	notifier ChangeNotifier,
	defaultMerchant string,
) InvoiceService {
	return &invoiceService{
		store:           s,
		ledger:          ledger,
		journal:         journal,
		notifier:        notifier,
		defaultMerchant: defaultMerchant,
		now:             time.Now,
	}
}

// Commit validates the cart against a snapshot read inside the store's write
// lock, never one the caller captured earlier. Either the invoice appends
// and every line decrements, or nothing changes.
func (s *invoiceService) Commit(cart []model.CartLine, merchantName string, taxRate decimal.Decimal) (*model.CommitResult, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}
	for i := range cart {
		if errs := validator.ValidateStruct(&cart[i]); len(errs) > 0 {
			first := errs[0]
			return nil, &ValidationError{Field: first.FailedField, Tag: first.Tag}
		}
	}
	if taxRate.IsNegative() {
		return nil, &ValidationError{Field: "TaxRate", Tag: "gte"}
	}

	merchantName = strings.TrimSpace(merchantName)
	if merchantName == "" {
		merchantName = s.defaultMerchant
	}

	var result model.CommitResult
	journalApplied := false
	err := s.store.Update(func(view store.Store) error {
		items, err := s.ledger.All(view)
		if err != nil {
			return err
		}

		byID := make(map[string]*model.StockItem, len(items))
		for i := range items {
			byID[items[i].ID.String()] = &items[i]
		}

		// Validate every line against current stock before touching anything.
		// Demand is accumulated per item so a cart naming the same item on
		// two lines cannot oversell. First offending line in cart order wins.
		lines := make([]model.InvoiceLine, 0, len(cart))
		subtotal := decimal.Zero
		demand := make(map[string]int, len(cart))
		for _, cl := range cart {
			item, ok := byID[cl.ItemID.String()]
			if !ok {
				return &InsufficientStockError{ItemID: cl.ItemID, Requested: cl.Qty, Available: 0}
			}
			demand[cl.ItemID.String()] += cl.Qty
			if demand[cl.ItemID.String()] > item.Quantity {
				return &InsufficientStockError{
					ItemID:    item.ID,
					Name:      item.Name,
					Requested: demand[cl.ItemID.String()],
					Available: item.Quantity,
				}
			}
			line := model.InvoiceLine{
				ItemID:    item.ID,
				Name:      item.Name,
				UnitPrice: item.Price,
				Qty:       cl.Qty,
			}
			lines = append(lines, line)
			subtotal = subtotal.Add(line.LineTotal())
		}

		// Full precision throughout; rounding happens at display boundaries.
		vat := subtotal.Mul(taxRate)
		total := subtotal.Add(vat)

		ts := s.now()
		inv := model.Invoice{
			ID:           mintInvoiceID(ts),
			Date:         ts,
			MerchantName: merchantName,
			Items:        lines,
			Subtotal:     subtotal,
			VAT:          vat,
			Total:        total,
			IsDeleted:    false,
		}

		invoices, err := s.journal.All(view)
		if err != nil {
			return err
		}
		for i := range invoices {
			if invoices[i].ID == inv.ID {
				return &UniquenessConflictError{InvoiceID: inv.ID}
			}
		}

		// Compound write: journal append then ledger decrement. Both run
		// under the same lock; a failure of the second after the first
		// applied is surfaced, never swallowed.
		invoices = append(invoices, inv)
		if err := s.journal.Save(view, invoices); err != nil {
			return err
		}
		journalApplied = true

		for _, cl := range cart {
			item := byID[cl.ItemID.String()]
			item.Quantity = max(0, item.Quantity-cl.Qty)
			item.UpdatedAt = ts
		}
		if err := s.ledger.Save(view, items); err != nil {
			recErr := &ReconciliationError{
				AppliedKey: store.KeyInvoices,
				FailedKey:  store.KeyInventory,
				Err:        err,
			}
			log := logger.WithComponent("invoice")
			log.Error().
				Str("invoice_id", inv.ID).
				Err(err).
				Msg("ledger decrement failed after journal append")
			return recErr
		}

		result = model.CommitResult{Invoice: inv, Ledger: items}
		return nil
	})
	// The journal append may have persisted even when the ledger decrement
	// failed; other views still need to re-read the invoices document.
	if journalApplied {
		s.notifier.StoreChanged(store.KeyInvoices)
	}
	if err != nil {
		return nil, err
	}

	s.notifier.StoreChanged(store.KeyInventory)
	return &result, nil
}

// mintInvoiceID derives a human-readable invoice number from the commit
// timestamp. Millisecond resolution keeps sequential commits distinct; the
// journal scan at commit time catches the rest.
func mintInvoiceID(ts time.Time) string {
	ts = ts.UTC()
	return fmt.Sprintf("INV-%s%03d", ts.Format("20060102150405"), ts.Nanosecond()/1e6)
}
