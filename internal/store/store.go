package store

import "encoding/json"

// Document keys used by the application. Both documents are whole-document
// read/write: every mutation reads the full array, transforms it, and writes
// the full array back.
const (
	KeyInventory = "inventory"
	KeyInvoices  = "invoices"
)

// Store is an opaque key -> JSON document space. Get returns nil (no error)
// for an absent key; callers treat that as an empty document.
//
// Update runs fn while holding the store's write lock, so a
// read-validate-write sequence inside fn is atomic with respect to every
// other accessor of the same store. The view passed to fn must be used for
// all reads and writes inside fn; it skips the store's own locking.
type Store interface {
	Get(key string) (json.RawMessage, error)
	Set(key string, doc json.RawMessage) error
	Update(fn func(view Store) error) error
}
