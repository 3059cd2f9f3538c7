package service

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var taxRate15 = decimal.RequireFromString("0.15")

type posFixture struct {
	store   store.Store
	ledger  LedgerService
	engine  *invoiceService
	journal JournalService
}

func setupPOS(t *testing.T) *posFixture {
	t.Helper()
	s := store.NewMemoryStore()
	ledgerRepo := repository.NewLedgerRepo()
	journalRepo := repository.NewJournalRepo()
	engine := NewInvoiceService(s, ledgerRepo, journalRepo, NopNotifier{}, "unspecified").(*invoiceService)
	return &posFixture{
		store:   s,
		ledger:  NewLedgerService(s, ledgerRepo, NopNotifier{}),
		engine:  engine,
		journal: NewJournalService(s, journalRepo, NopNotifier{}),
	}
}

func (f *posFixture) stock(t *testing.T, name string, qty int, price string) *model.StockItem {
	t.Helper()
	return mustUpsert(t, f.ledger, name, qty, price)
}

func (f *posFixture) quantityOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	items, err := f.ledger.ListItems()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, it := range items {
		if it.ID == id {
			return it.Quantity
		}
	}
	t.Fatalf("item %s not found", id)
	return 0
}

func TestCommitSingleLine(t *testing.T) {
	f := setupPOS(t)
	coffee := f.stock(t, "Coffee", 10, "5.00")

	res, err := f.engine.Commit([]model.CartLine{{ItemID: coffee.ID, Qty: 3}}, "Corner Shop", taxRate15)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	inv := res.Invoice
	if !inv.Subtotal.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("subtotal = %s, want 15.00", inv.Subtotal)
	}
	if !inv.VAT.Equal(decimal.RequireFromString("2.25")) {
		t.Fatalf("vat = %s, want 2.25", inv.VAT)
	}
	if !inv.Total.Equal(decimal.RequireFromString("17.25")) {
		t.Fatalf("total = %s, want 17.25", inv.Total)
	}
	if inv.MerchantName != "Corner Shop" || inv.IsDeleted {
		t.Fatalf("unexpected invoice: %+v", inv)
	}
	if !strings.HasPrefix(inv.ID, "INV-") {
		t.Fatalf("invoice id %q missing prefix", inv.ID)
	}

	if got := f.quantityOf(t, coffee.ID); got != 7 {
		t.Fatalf("stock after commit = %d, want 7", got)
	}
	// returned snapshot matches the post-commit ledger
	for _, it := range res.Ledger {
		if it.ID == coffee.ID && it.Quantity != 7 {
			t.Fatalf("returned snapshot quantity = %d, want 7", it.Quantity)
		}
	}
}

func TestCommitInsufficientStock(t *testing.T) {
	f := setupPOS(t)
	coffee := f.stock(t, "Coffee", 7, "5.00")

	_, err := f.engine.Commit([]model.CartLine{{ItemID: coffee.ID, Qty: 9}}, "", taxRate15)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ItemID != coffee.ID || stockErr.Requested != 9 || stockErr.Available != 7 {
		t.Fatalf("wrong error detail: %+v", stockErr)
	}

	if got := f.quantityOf(t, coffee.ID); got != 7 {
		t.Fatalf("failed commit must not decrement, got %d", got)
	}
	invoices, _ := f.journal.ListAll()
	if len(invoices) != 0 {
		t.Fatalf("failed commit must not append, got %d invoices", len(invoices))
	}
}

func TestCommitEmptyCart(t *testing.T) {
	f := setupPOS(t)

	_, err := f.engine.Commit(nil, "", taxRate15)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	invoices, _ := f.journal.ListAll()
	if len(invoices) != 0 {
		t.Fatalf("journal must be untouched")
	}
}

func TestCommitMultiLineAllOrNothing(t *testing.T) {
	f := setupPOS(t)
	a := f.stock(t, "A", 2, "5")
	b := f.stock(t, "B", 1, "20")

	res, err := f.engine.Commit([]model.CartLine{
		{ItemID: a.ID, Qty: 2},
		{ItemID: b.ID, Qty: 1},
	}, "", taxRate15)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !res.Invoice.Subtotal.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("subtotal = %s, want 30.00", res.Invoice.Subtotal)
	}
	if f.quantityOf(t, a.ID) != 0 || f.quantityOf(t, b.ID) != 0 {
		t.Fatalf("both items must decrement in the same commit")
	}
}

func TestCommitRejectsWholeCartOnOneBadLine(t *testing.T) {
	f := setupPOS(t)
	a := f.stock(t, "A", 5, "5")
	b := f.stock(t, "B", 1, "20")

	_, err := f.engine.Commit([]model.CartLine{
		{ItemID: a.ID, Qty: 2},
		{ItemID: b.ID, Qty: 3},
	}, "", taxRate15)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ItemID != b.ID {
		t.Fatalf("must name the offending item, got %s", stockErr.ItemID)
	}
	// no partial decrement
	if f.quantityOf(t, a.ID) != 5 || f.quantityOf(t, b.ID) != 1 {
		t.Fatalf("partial commit forbidden")
	}
}

func TestCommitUnknownItem(t *testing.T) {
	f := setupPOS(t)
	f.stock(t, "A", 5, "5")

	_, err := f.engine.Commit([]model.CartLine{{ItemID: uuid.New(), Qty: 1}}, "", taxRate15)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 0 {
		t.Fatalf("unknown item reports zero availability, got %d", stockErr.Available)
	}
}

func TestCommitDefaultMerchantName(t *testing.T) {
	f := setupPOS(t)
	coffee := f.stock(t, "Coffee", 10, "5.00")

	res, err := f.engine.Commit([]model.CartLine{{ItemID: coffee.ID, Qty: 1}}, "   ", taxRate15)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if res.Invoice.MerchantName != "unspecified" {
		t.Fatalf("merchant = %q, want sentinel", res.Invoice.MerchantName)
	}
}

func TestCommitIDCollision(t *testing.T) {
	f := setupPOS(t)
	coffee := f.stock(t, "Coffee", 10, "5.00")

	frozen := time.Date(2025, 6, 1, 12, 0, 0, 500e6, time.UTC)
	f.engine.now = func() time.Time { return frozen }

	if _, err := f.engine.Commit([]model.CartLine{{ItemID: coffee.ID, Qty: 1}}, "", taxRate15); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	_, err := f.engine.Commit([]model.CartLine{{ItemID: coffee.ID, Qty: 1}}, "", taxRate15)
	var conflictErr *UniquenessConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected UniquenessConflictError, got %v", err)
	}

	// collision rejects before any write: one invoice, one decrement
	invoices, _ := f.journal.ListAll()
	if len(invoices) != 1 {
		t.Fatalf("journal must hold exactly one invoice, got %d", len(invoices))
	}
	if got := f.quantityOf(t, coffee.ID); got != 9 {
		t.Fatalf("stock = %d, want 9", got)
	}
}

func TestCommitSnapshotsAreImmutable(t *testing.T) {
	f := setupPOS(t)
	coffee := f.stock(t, "Coffee", 10, "5.00")

	res, err := f.engine.Commit([]model.CartLine{{ItemID: coffee.ID, Qty: 2}}, "", taxRate15)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	// reprice the item after commit
	id := coffee.ID
	if _, err := f.ledger.UpsertItem(&model.UpsertItemRequest{
		ID:       &id,
		Name:     "Coffee",
		Quantity: 8,
		Price:    decimal.RequireFromString("99.00"),
	}); err != nil {
		t.Fatalf("reprice: %v", err)
	}

	stored, err := f.journal.FindByID(res.Invoice.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("frozen unit price changed: %s", stored.Items[0].UnitPrice)
	}
	if !stored.Total.Equal(decimal.RequireFromString("11.50")) {
		t.Fatalf("frozen total changed: %s", stored.Total)
	}
}

func TestCommitUsesFreshSnapshot(t *testing.T) {
	f := setupPOS(t)
	coffee := f.stock(t, "Coffee", 10, "5.00")

	// The ledger shrinks after the caller last looked at it. Commit must
	// validate against the current count, not the stale one.
	id := coffee.ID
	if _, err := f.ledger.UpsertItem(&model.UpsertItemRequest{
		ID:       &id,
		Name:     "Coffee",
		Quantity: 2,
		Price:    decimal.RequireFromString("5.00"),
	}); err != nil {
		t.Fatalf("shrink: %v", err)
	}

	_, err := f.engine.Commit([]model.CartLine{{ItemID: coffee.ID, Qty: 5}}, "", taxRate15)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 2 {
		t.Fatalf("available = %d, want the fresh count 2", stockErr.Available)
	}
}

func TestCommitDuplicateLinesCannotOversell(t *testing.T) {
	f := setupPOS(t)
	coffee := f.stock(t, "Coffee", 10, "5.00")

	_, err := f.engine.Commit([]model.CartLine{
		{ItemID: coffee.ID, Qty: 6},
		{ItemID: coffee.ID, Qty: 6},
	}, "", taxRate15)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Requested != 12 || stockErr.Available != 10 {
		t.Fatalf("wrong error detail: %+v", stockErr)
	}

	if got := f.quantityOf(t, coffee.ID); got != 10 {
		t.Fatalf("failed commit must not decrement, got %d", got)
	}
	invoices, _ := f.journal.ListAll()
	if len(invoices) != 0 {
		t.Fatalf("failed commit must not append")
	}
}

func TestCommitDuplicateLinesWithinStock(t *testing.T) {
	f := setupPOS(t)
	coffee := f.stock(t, "Coffee", 10, "5.00")

	res, err := f.engine.Commit([]model.CartLine{
		{ItemID: coffee.ID, Qty: 4},
		{ItemID: coffee.ID, Qty: 4},
	}, "", taxRate15)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !res.Invoice.Subtotal.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("subtotal = %s, want 40.00", res.Invoice.Subtotal)
	}
	if got := f.quantityOf(t, coffee.ID); got != 2 {
		t.Fatalf("stock = %d, want 2", got)
	}
}

func TestConservationAcrossCommits(t *testing.T) {
	f := setupPOS(t)
	coffee := f.stock(t, "Coffee", 10, "5.00")

	// tick the clock so sequential commits mint distinct ids
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.engine.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}

	for _, qty := range []int{2, 3, 1} {
		if _, err := f.engine.Commit([]model.CartLine{{ItemID: coffee.ID, Qty: qty}}, "", taxRate15); err != nil {
			t.Fatalf("commit qty %d: %v", qty, err)
		}
	}

	sold := 0
	invoices, _ := f.journal.ListActive()
	for _, inv := range invoices {
		for _, line := range inv.Items {
			if line.ItemID == coffee.ID {
				sold += line.Qty
			}
		}
	}
	remaining := f.quantityOf(t, coffee.ID)
	if remaining+sold != 10 {
		t.Fatalf("conservation broken: remaining %d + sold %d != 10", remaining, sold)
	}
}

// failingStore wraps another store and rejects writes to one key, inside and
// outside Update.
type failingStore struct {
	store.Store
	failKey string
}

func (f *failingStore) Set(key string, doc json.RawMessage) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.Store.Set(key, doc)
}

func (f *failingStore) Update(fn func(view store.Store) error) error {
	return f.Store.Update(func(view store.Store) error {
		return fn(&failingStore{Store: view, failKey: f.failKey})
	})
}

// recordingNotifier captures change signals in order.
type recordingNotifier struct {
	keys []string
}

func (r *recordingNotifier) StoreChanged(key string) { r.keys = append(r.keys, key) }

func (r *recordingNotifier) saw(key string) bool {
	for _, k := range r.keys {
		if k == key {
			return true
		}
	}
	return false
}

func TestCommitReconciliationError(t *testing.T) {
	mem := store.NewMemoryStore()
	ledgerRepo := repository.NewLedgerRepo()
	journalRepo := repository.NewJournalRepo()

	// seed stock on the healthy store before wrapping it
	ledger := NewLedgerService(mem, ledgerRepo, NopNotifier{})
	coffee := mustUpsert(t, ledger, "Coffee", 10, "5.00")

	broken := &failingStore{Store: mem, failKey: store.KeyInventory}
	notifier := &recordingNotifier{}
	engine := NewInvoiceService(broken, ledgerRepo, journalRepo, notifier, "unspecified").(*invoiceService)

	_, err := engine.Commit([]model.CartLine{{ItemID: coffee.ID, Qty: 3}}, "", taxRate15)
	var recErr *ReconciliationError
	if !errors.As(err, &recErr) {
		t.Fatalf("expected ReconciliationError, got %v", err)
	}
	if recErr.AppliedKey != store.KeyInvoices || recErr.FailedKey != store.KeyInventory {
		t.Fatalf("wrong keys: %+v", recErr)
	}

	// the journal append persisted, the decrement did not
	invoices, err := journalRepo.All(mem)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if len(invoices) != 1 {
		t.Fatalf("journal invoices = %d, want 1", len(invoices))
	}
	items, _ := ledgerRepo.All(mem)
	if items[0].Quantity != 10 {
		t.Fatalf("inventory quantity = %d, want 10", items[0].Quantity)
	}

	// other views must still be told the invoices document changed
	if !notifier.saw(store.KeyInvoices) {
		t.Fatalf("invoices change not notified: %v", notifier.keys)
	}
	if notifier.saw(store.KeyInventory) {
		t.Fatalf("inventory did not change but was notified: %v", notifier.keys)
	}
}

func TestMintInvoiceID(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 45, 7e6, time.UTC)
	got := mintInvoiceID(ts)
	if got != "INV-20250601123045007" {
		t.Fatalf("mintInvoiceID = %q", got)
	}
}
