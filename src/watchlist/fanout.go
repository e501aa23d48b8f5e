package watchlist

import (
	"context"
	"time"

	"stock-watchlist/src/helpers"
	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/logger"
	"stock-watchlist/src/models"

	"golang.org/x/sync/errgroup"
)

// -----------------------------------------------------------------------------

// Fanout fetches every symbol concurrently and joins the outcomes
type Fanout struct {
	Quotes        interfaces.IQuoteService
	MaxConcurrent int           // 0 = one request per symbol at once
	Timeout       time.Duration // per symbol, 0 = none
	Logger        *logger.Logger
	Now           func() time.Time
}

// -----------------------------------------------------------------------------

func NewFanout(quotes interfaces.IQuoteService, maxConcurrent int, timeout time.Duration, log *logger.Logger) *Fanout {
	return &Fanout{
		Quotes:        quotes,
		MaxConcurrent: maxConcurrent,
		Timeout:       timeout,
		Logger:        log,
		Now:           time.Now,
	}
}

// -----------------------------------------------------------------------------

type fetchResult struct {
	quote models.MQuote
	err   error
}

// FetchAll issues one quote request per symbol and waits for all of them.
// A failing symbol never aborts the others. Results keep the input order.
func (f *Fanout) FetchAll(ctx context.Context, symbols []string) models.MFetchReport {
	report := models.MFetchReport{
		Entries: []models.MWatchlistEntry{},
		Errors:  []models.MSymbolError{},
	}
	if len(symbols) == 0 {
		return report
	}

	results := make([]fetchResult, len(symbols))

	var g errgroup.Group
	if f.MaxConcurrent > 0 {
		g.SetLimit(f.MaxConcurrent)
	}

	for i, symbol := range symbols {
		g.Go(func() error {
			qctx := ctx
			if f.Timeout > 0 {
				var cancel context.CancelFunc
				qctx, cancel = context.WithTimeout(ctx, f.Timeout)
				defer cancel()
			}
			q, err := f.Quotes.FetchQuote(qctx, symbol)
			results[i] = fetchResult{quote: q, err: err}
			return nil
		})
	}
	_ = g.Wait()

	fetchedAt := f.Now().UTC().Unix()
	rateLimited := 0

	for i, symbol := range symbols {
		res := results[i]
		if res.err != nil {
			kind := helpers.KindOf(res.err)
			if kind == models.ErrorKindRateLimited {
				rateLimited++
			}
			report.Errors = append(report.Errors, models.MSymbolError{Symbol: symbol, Kind: kind, Message: res.err.Error()})
			continue
		}
		quote := res.quote
		report.Entries = append(report.Entries, models.MWatchlistEntry{Symbol: symbol, Quote: &quote, UpdatedAt: fetchedAt})
	}

	report.AllRateLimited = rateLimited == len(symbols)
	if len(report.Errors) > 0 && f.Logger != nil {
		f.Logger.Warning("Fetched %d/%d quotes (%d rate limited)", len(report.Entries), len(symbols), rateLimited)
	}
	return report
}
