package service

import (
	"sort"
	"time"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/store"

	"github.com/shopspring/decimal"
)

// SalesStats are derived views over the active journal, recomputed on
// demand. Daily covers since local midnight, monthly since the 1st.
type SalesStats struct {
	DailyTotal   decimal.Decimal `json:"daily_total"`
	DailyCount   int             `json:"daily_count"`
	MonthlyTotal decimal.Decimal `json:"monthly_total"`
	MonthlyCount int             `json:"monthly_count"`
	InvoiceCount int             `json:"invoice_count"`
	AverageTotal decimal.Decimal `json:"average_total"`
	OverallTotal decimal.Decimal `json:"overall_total"`
}

// JournalService is the read-mostly face of the sales history. Invoices are
// immutable after commit; the only writes here are the soft-delete flag and
// the full reset.
type JournalService interface {
	// ListActive returns non-deleted invoices, newest first.
	ListActive() ([]model.Invoice, error)
	// ListAll returns every invoice including soft-deleted, newest first.
	ListAll() ([]model.Invoice, error)
	FindByID(id string) (*model.Invoice, error)
	// ToggleDeleted flips the reporting flag. Stock is never restored.
	ToggleDeleted(id string, deleted bool) (*model.Invoice, error)
	// ResetAll irreversibly clears the journal. Destructive and unconfirmed
	// by default: the caller gates it behind its own confirmation.
	ResetAll() error
	Stats() (*SalesStats, error)
}

type journalService struct {
	store    store.Store
	journal  repository.JournalRepository
	notifier ChangeNotifier
	now      func() time.Time
}

func NewJournalService(s store.Store, journal repository.JournalRepository, notifier ChangeNotifier) JournalService {
	return &journalService{
		store:    s,
		journal:  journal,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *journalService) ListActive() ([]model.Invoice, error) {
	all, err := s.ListAll()
	if err != nil {
		return nil, err
	}
	active := make([]model.Invoice, 0, len(all))
	for _, inv := range all {
		if !inv.IsDeleted {
			active = append(active, inv)
		}
	}
	return active, nil
}

func (s *journalService) ListAll() ([]model.Invoice, error) {
	invoices, err := s.journal.All(s.store)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(invoices)
	return invoices, nil
}

func (s *journalService) FindByID(id string) (*model.Invoice, error) {
	invoices, err := s.journal.All(s.store)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		if invoices[i].ID == id {
			return &invoices[i], nil
		}
	}
	return nil, ErrInvoiceNotFound
}

func (s *journalService) ToggleDeleted(id string, deleted bool) (*model.Invoice, error) {
	var toggled model.Invoice
	err := s.store.Update(func(view store.Store) error {
		invoices, err := s.journal.All(view)
		if err != nil {
			return err
		}
		for i := range invoices {
			if invoices[i].ID == id {
				invoices[i].IsDeleted = deleted
				toggled = invoices[i]
				return s.journal.Save(view, invoices)
			}
		}
		return ErrInvoiceNotFound
	})
	if err != nil {
		return nil, err
	}

	s.notifier.StoreChanged(store.KeyInvoices)
	return &toggled, nil
}

func (s *journalService) ResetAll() error {
	err := s.store.Update(func(view store.Store) error {
		return s.journal.Save(view, []model.Invoice{})
	})
	if err != nil {
		return err
	}

	s.notifier.StoreChanged(store.KeyInvoices)
	return nil
}

func (s *journalService) Stats() (*SalesStats, error) {
	active, err := s.ListActive()
	if err != nil {
		return nil, err
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &SalesStats{
		DailyTotal:   decimal.Zero,
		MonthlyTotal: decimal.Zero,
		AverageTotal: decimal.Zero,
		OverallTotal: decimal.Zero,
		InvoiceCount: len(active),
	}
	for _, inv := range active {
		stats.OverallTotal = stats.OverallTotal.Add(inv.Total)
		if !inv.Date.Before(monthStart) {
			stats.MonthlyTotal = stats.MonthlyTotal.Add(inv.Total)
			stats.MonthlyCount++
		}
		if !inv.Date.Before(dayStart) {
			stats.DailyTotal = stats.DailyTotal.Add(inv.Total)
			stats.DailyCount++
		}
	}
	if len(active) > 0 {
		stats.AverageTotal = stats.OverallTotal.Div(decimal.NewFromInt(int64(len(active))))
	}
	return stats, nil
}

// sortNewestFirst orders by date descending with an id-descending tie-break,
// so equal timestamps still sort deterministically.
func sortNewestFirst(invoices []model.Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		if invoices[i].Date.Equal(invoices[j].Date) {
			return invoices[i].ID > invoices[j].ID
		}
		return invoices[i].Date.After(invoices[j].Date)
	})
}
