package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stock-watchlist/src/helpers"
	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/logger"
	"stock-watchlist/src/models"
)

// MultiSourceManager chains providers in priority order. A quote or search
// that fails on one provider is retried on the next; the primary's error is
// reported when every provider fails.
type MultiSourceManager struct {
	Sources []interfaces.IUpstream
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewMultiSourceManager(sources []interfaces.IUpstream, log *logger.Logger) *MultiSourceManager {
	return &MultiSourceManager{Sources: sources, Logger: log}
}

// -----------------------------------------------------------------------------

func (m *MultiSourceManager) Name() string {
	names := make([]string, len(m.Sources))
	for i, s := range m.Sources {
		names[i] = s.Name()
	}
	return strings.Join(names, ">")
}

// -----------------------------------------------------------------------------

func (m *MultiSourceManager) FetchQuote(ctx context.Context, symbol string) (models.MQuote, error) {
	var firstErr error
	for _, src := range m.Sources {
		q, err := src.FetchQuote(ctx, symbol)
		if err == nil {
			return q, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		if ctx.Err() != nil || errors.Is(err, helpers.ErrEmptySymbol) {
			break
		}
		m.Logger.Debug("Source %s failed for %s (%s), trying next", src.Name(), symbol, helpers.KindOf(err))
	}
	if firstErr == nil {
		return models.MQuote{}, fmt.Errorf("no upstream configured")
	}
	return models.MQuote{}, firstErr
}

// -----------------------------------------------------------------------------

func (m *MultiSourceManager) SearchSymbols(ctx context.Context, query string) ([]models.MSymbolMatch, error) {
	var firstErr error
	for _, src := range m.Sources {
		matches, err := src.SearchSymbols(ctx, query)
		if err == nil {
			return matches, nil
		}
		if errors.Is(err, helpers.ErrSearchUnsupported) {
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
		if ctx.Err() != nil {
			break
		}
	}
	if firstErr == nil {
		return nil, &helpers.QuoteError{Kind: models.ErrorKindUnknown, Message: "search unavailable", Cause: helpers.ErrSearchUnsupported}
	}
	return nil, firstErr
}
