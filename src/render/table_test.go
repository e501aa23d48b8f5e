package render

import (
	"bytes"
	"strings"
	"testing"

	"stock-watchlist/src/models"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[----------]", ProgressBar(0, 10))
	assert.Equal(t, "[#####-----]", ProgressBar(50, 10))
	assert.Equal(t, "[##########]", ProgressBar(150, 10))
}

func TestStatusLine(t *testing.T) {
	snap := models.MWatchlistSnapshot{
		State: models.StateReady,
		Cycle: models.MRefreshCycle{IntervalMs: 60000, ElapsedMs: 15000, ProgressPercent: 25, SecondsLeft: 45},
	}
	assert.True(t, strings.HasPrefix(StatusLine(snap), "Next refresh in 45s"))

	snap.State = models.StateLoading
	assert.Equal(t, "Loading...", StatusLine(snap))

	snap.State = models.StateError
	snap.Message = "Failed to load stock data"
	assert.Equal(t, "Failed to load stock data", StatusLine(snap))
}

func TestRenderWatchlist(t *testing.T) {
	snap := models.MWatchlistSnapshot{
		State: models.StateReady,
		Entries: []models.MWatchlistEntry{
			{Symbol: "AAPL", Quote: &models.MQuote{CurrentPrice: 150.23, PreviousClose: 149.5, Change: 0.73, PercentChange: 0.49}},
			{Symbol: "MSFT", Quote: &models.MQuote{CurrentPrice: 148, PreviousClose: 150, Change: -2, PercentChange: -1.33}, Stale: true, Error: models.ErrorKindRateLimited},
			{Symbol: "NEW"},
		},
		Total: 4,
		Sort:  "symbol",
	}

	var buf bytes.Buffer
	RenderWatchlist(&buf, snap, Options{})
	out := buf.String()

	assert.Contains(t, out, "150.23")
	assert.Contains(t, out, "+0.49%")
	assert.Contains(t, out, "-1.33%")
	assert.Contains(t, out, "stale (rate_limited)")
	assert.Contains(t, out, "NEW")
	assert.Contains(t, out, "3 of 4 symbols, sorted by symbol")
}

func TestRenderSearch(t *testing.T) {
	var buf bytes.Buffer
	RenderSearch(&buf, nil)
	assert.Equal(t, "No matches\n", buf.String())

	buf.Reset()
	RenderSearch(&buf, []models.MSymbolMatch{{Symbol: "AAPL", Description: "APPLE INC"}})
	assert.Contains(t, buf.String(), "APPLE INC")
}
