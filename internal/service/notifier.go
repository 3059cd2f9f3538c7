package service

// ChangeNotifier is fired after a store document changed so other views can
// re-read it wholesale. Advisory only: there is no version token to merge
// with, the only sane reaction is a full re-read.
type ChangeNotifier interface {
	StoreChanged(key string)
}

// NopNotifier discards change signals. Used in tests and when no hub is wired.
type NopNotifier struct{}

func (NopNotifier) StoreChanged(string) {}
