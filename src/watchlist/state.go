package watchlist

import (
	"strings"

	"stock-watchlist/src/models"
)

// -----------------------------------------------------------------------------

// Watchlist is the ordered, duplicate-free set of watched symbols and their
// latest quotes. It is not safe for concurrent use; the Engine guards it.
type Watchlist struct {
	entries []models.MWatchlistEntry
}

// -----------------------------------------------------------------------------

// NormalizeSymbol trims and upper-cases a ticker
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// -----------------------------------------------------------------------------

func NewWatchlist(symbols []string) *Watchlist {
	w := &Watchlist{entries: []models.MWatchlistEntry{}}
	for _, s := range symbols {
		w.Add(s)
	}
	return w
}

// -----------------------------------------------------------------------------

func (w *Watchlist) indexOf(symbol string) int {
	for i, e := range w.entries {
		if e.Symbol == symbol {
			return i
		}
	}
	return -1
}

// -----------------------------------------------------------------------------

func (w *Watchlist) Contains(symbol string) bool {
	return w.indexOf(NormalizeSymbol(symbol)) >= 0
}

// -----------------------------------------------------------------------------

// Add appends a quote-absent entry. Empty and duplicate symbols are ignored.
func (w *Watchlist) Add(symbol string) bool {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" || w.indexOf(symbol) >= 0 {
		return false
	}
	w.entries = append(w.entries, models.MWatchlistEntry{Symbol: symbol})
	return true
}

// -----------------------------------------------------------------------------

func (w *Watchlist) Remove(symbol string) bool {
	i := w.indexOf(NormalizeSymbol(symbol))
	if i < 0 {
		return false
	}
	w.entries = append(w.entries[:i:i], w.entries[i+1:]...)
	return true
}

// -----------------------------------------------------------------------------

func (w *Watchlist) Len() int {
	return len(w.entries)
}

// -----------------------------------------------------------------------------

func (w *Watchlist) Symbols() []string {
	out := make([]string, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.Symbol
	}
	return out
}

// -----------------------------------------------------------------------------

// Entries returns a deep copy in insertion order
func (w *Watchlist) Entries() []models.MWatchlistEntry {
	out := make([]models.MWatchlistEntry, len(w.entries))
	for i, e := range w.entries {
		out[i] = e
		if e.Quote != nil {
			q := *e.Quote
			out[i].Quote = &q
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// Reconcile merges a fetch report into the list. Symbols removed while the
// fetch was in flight are not resurrected, symbols added meanwhile stay
// quote-absent, and a failed symbol keeps its previous quote marked stale.
func (w *Watchlist) Reconcile(report models.MFetchReport) {
	fresh := make(map[string]models.MWatchlistEntry, len(report.Entries))
	for _, e := range report.Entries {
		fresh[e.Symbol] = e
	}
	failed := make(map[string]models.ErrorKind, len(report.Errors))
	for _, e := range report.Errors {
		failed[e.Symbol] = e.Kind
	}

	for i := range w.entries {
		entry := &w.entries[i]
		if f, ok := fresh[entry.Symbol]; ok && f.Quote != nil {
			q := *f.Quote
			entry.Quote = &q
			entry.Error = models.ErrorKindNone
			entry.Stale = false
			entry.UpdatedAt = f.UpdatedAt
			continue
		}
		if kind, ok := failed[entry.Symbol]; ok {
			entry.Error = kind
			entry.Stale = entry.Quote != nil
		}
	}
}
