package interfaces

import (
	"context"

	"stock-watchlist/src/models"
)

// -----------------------------------------------------------------------------
// IQuoteService fetches the latest quote of a single symbol.
// -----------------------------------------------------------------------------

type IQuoteService interface {
	// FetchQuote returns a classified *helpers.QuoteError on failure.
	FetchQuote(ctx context.Context, symbol string) (models.MQuote, error)
}

// -----------------------------------------------------------------------------
// ISymbolSearcher suggests symbols for a free-text query.
// -----------------------------------------------------------------------------

type ISymbolSearcher interface {
	SearchSymbols(ctx context.Context, query string) ([]models.MSymbolMatch, error)
}

// -----------------------------------------------------------------------------
// IUpstream is a market data provider served through the quote proxy.
// -----------------------------------------------------------------------------

type IUpstream interface {
	IQuoteService
	ISymbolSearcher

	// Name returns the unique identifier of the provider
	Name() string
}
