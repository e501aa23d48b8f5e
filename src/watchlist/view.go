package watchlist

import (
	"sort"
	"strings"

	"stock-watchlist/src/models"
)

type SortOption string

const (
	SortSymbol            SortOption = "symbol"
	SortPriceAsc          SortOption = "price-asc"
	SortPriceDesc         SortOption = "price-desc"
	SortChangeAsc         SortOption = "change-asc"
	SortChangeDesc        SortOption = "change-desc"
	SortPercentChangeAsc  SortOption = "percentChange-asc"
	SortPercentChangeDesc SortOption = "percentChange-desc"
)

// SortOptions lists every accepted option in menu order
var SortOptions = []SortOption{
	SortSymbol, SortPriceAsc, SortPriceDesc, SortChangeAsc, SortChangeDesc, SortPercentChangeAsc, SortPercentChangeDesc,
}

// -----------------------------------------------------------------------------

// ParseSortOption falls back to SortSymbol for anything unrecognised
func ParseSortOption(s string) SortOption {
	for _, o := range SortOptions {
		if string(o) == s {
			return o
		}
	}
	return SortSymbol
}

// -----------------------------------------------------------------------------

func (o SortOption) key() (func(q *models.MQuote) float64, bool) {
	switch o {
	case SortPriceAsc, SortPriceDesc:
		return func(q *models.MQuote) float64 { return q.CurrentPrice }, o == SortPriceDesc
	case SortChangeAsc, SortChangeDesc:
		return func(q *models.MQuote) float64 { return q.Change }, o == SortChangeDesc
	case SortPercentChangeAsc, SortPercentChangeDesc:
		return func(q *models.MQuote) float64 { return q.PercentChange }, o == SortPercentChangeDesc
	}
	return nil, false
}

// -----------------------------------------------------------------------------

func lessSymbol(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// -----------------------------------------------------------------------------

// Project sorts then filters entries for display. The input is not modified.
// Entries without a quote sort after quoted ones for numeric options, and ties
// are broken by symbol so the order is deterministic.
func Project(entries []models.MWatchlistEntry, sortOption, filterText string) []models.MWatchlistEntry {
	out := make([]models.MWatchlistEntry, len(entries))
	copy(out, entries)

	key, desc := ParseSortOption(sortOption).key()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if key != nil {
			switch {
			case a.Quote == nil && b.Quote != nil:
				return false
			case a.Quote != nil && b.Quote == nil:
				return true
			case a.Quote != nil && b.Quote != nil:
				ka, kb := key(a.Quote), key(b.Quote)
				if ka != kb {
					if desc {
						return ka > kb
					}
					return ka < kb
				}
			}
		}
		return lessSymbol(a.Symbol, b.Symbol)
	})

	needle := strings.ToLower(filterText)
	if needle == "" {
		return out
	}
	filtered := out[:0]
	for _, e := range out {
		if strings.Contains(strings.ToLower(e.Symbol), needle) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
