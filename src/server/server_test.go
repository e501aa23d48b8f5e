package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"stock-watchlist/src/helpers"
	"stock-watchlist/src/logger"
	"stock-watchlist/src/models"
	"stock-watchlist/src/utils"
	"stock-watchlist/src/watchlist"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = logger.NewLogger("ServerTest")

type stubUpstream struct {
	quotes  map[string]models.MQuote
	errs    map[string]error
	matches []models.MSymbolMatch
	sErr    error
}

func (s *stubUpstream) Name() string { return "stub" }

func (s *stubUpstream) FetchQuote(ctx context.Context, symbol string) (models.MQuote, error) {
	if err, ok := s.errs[symbol]; ok {
		return models.MQuote{}, err
	}
	q, ok := s.quotes[symbol]
	if !ok {
		return models.MQuote{}, &helpers.QuoteError{Kind: models.ErrorKindNotFound, Symbol: symbol, Status: http.StatusNotFound}
	}
	return q, nil
}

func (s *stubUpstream) SearchSymbols(ctx context.Context, query string) ([]models.MSymbolMatch, error) {
	return s.matches, s.sErr
}

type memoryStore struct {
	mu      sync.Mutex
	symbols []string
}

func (m *memoryStore) Load() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.symbols...)
}

func (m *memoryStore) Save(symbols []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols = append([]string{}, symbols...)
	return nil
}

type fixture struct {
	server   *WatchlistServer
	http     *httptest.Server
	upstream *stubUpstream
	store    *memoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	upstream := &stubUpstream{
		quotes: map[string]models.MQuote{
			"AAPL": {CurrentPrice: 150.23, PreviousClose: 149.50, Change: 0.73, PercentChange: 0.49},
		},
		errs: map[string]error{
			"LIMIT": &helpers.QuoteError{Kind: models.ErrorKindRateLimited, Symbol: "LIMIT", Status: http.StatusTooManyRequests},
			"DENY":  &helpers.QuoteError{Kind: models.ErrorKindForbidden, Symbol: "DENY", Status: http.StatusForbidden},
			"BOOM":  &helpers.QuoteError{Kind: models.ErrorKindUnknown, Symbol: "BOOM", Status: http.StatusBadGateway},
			"DOWN":  &helpers.QuoteError{Kind: models.ErrorKindNetwork, Symbol: "DOWN"},
		},
	}
	store := &memoryStore{}

	engine := watchlist.NewEngine(store, watchlist.NewFanout(upstream, 0, 0, testLogger), utils.NewManualScheduler(), time.Minute, testLogger)
	require.NoError(t, engine.Mount(context.Background()))
	t.Cleanup(engine.Unmount)

	cfg := &models.MConfig{Host: "127.0.0.1", Port: 8080, LogLevel: "info"}
	cfg.Watchlist.RefreshIntervalSeconds = 60

	s := NewWatchlistServer(cfg, testLogger, upstream, engine)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = s.Stop()
	})

	return &fixture{server: s, http: srv, upstream: upstream, store: store}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.http.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.Error
}

func TestQuoteProxy_ReturnsQuote(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/quote/aapl", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var q models.MQuote
	require.NoError(t, json.Unmarshal(body, &q))
	assert.Equal(t, 150.23, q.CurrentPrice)
	assert.Equal(t, 0.49, q.PercentChange)
}

func TestQuoteProxy_MapsUpstreamErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		symbol string
		status int
		msg    string
	}{
		{"LIMIT", http.StatusTooManyRequests, msgRateLimited},
		{"DENY", http.StatusForbidden, msgForbidden},
		{"NOPE", http.StatusNotFound, "Failed to fetch stock data for NOPE. Status: 404"},
		{"BOOM", http.StatusBadGateway, "Failed to fetch stock data for BOOM. Status: 502"},
		{"DOWN", http.StatusInternalServerError, "An internal error occurred while fetching stock data."},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			resp, body := f.do(t, http.MethodGet, "/api/quote/"+tt.symbol, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.msg, errorMessage(t, body))
		})
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.upstream.matches = []models.MSymbolMatch{{Symbol: "AAPL", Description: "APPLE INC"}}

	resp, body := f.do(t, http.MethodGet, "/api/search?query=app", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var matches []models.MSymbolMatch
	require.NoError(t, json.Unmarshal(body, &matches))
	assert.Equal(t, f.upstream.matches, matches)

	resp, body = f.do(t, http.MethodGet, "/api/search?query=", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestSearch_Errors(t *testing.T) {
	f := newFixture(t)

	f.upstream.sErr = &helpers.QuoteError{Kind: models.ErrorKindUnknown, Status: http.StatusServiceUnavailable}
	resp, body := f.do(t, http.MethodGet, "/api/search?query=app", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Failed to fetch stock symbol suggestions. Status: 503", errorMessage(t, body))

	f.upstream.sErr = &helpers.QuoteError{Kind: models.ErrorKindUnknown, Message: "search", Cause: helpers.ErrSearchUnsupported}
	resp, _ = f.do(t, http.MethodGet, "/api/search?query=app", "")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestWatchlistRoutes(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/watchlist", `{"symbol":"aapl"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var snap models.MWatchlistSnapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "AAPL", snap.Entries[0].Symbol)
	assert.Nil(t, snap.Entries[0].Quote, "added symbols wait for the next refresh")
	assert.Equal(t, []string{"AAPL"}, f.store.Load())

	resp, _ = f.do(t, http.MethodPost, "/api/watchlist", `{"symbol":"AAPL"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = f.do(t, http.MethodPost, "/api/watchlist", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "symbol is required", errorMessage(t, body))

	resp, body = f.do(t, http.MethodGet, "/api/watchlist?filter=zz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Empty(t, snap.Entries)
	assert.Equal(t, 1, snap.Total)

	resp, _ = f.do(t, http.MethodDelete, "/api/watchlist/aapl", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, f.store.Load())
}

func TestHealthAndConfig(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "stub", health["upstream"])
	assert.Equal(t, string(models.StateReady), health["state"])

	resp, body = f.do(t, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cfg struct {
		RefreshIntervalSeconds int      `json:"refreshIntervalSeconds"`
		SortOptions            []string `json:"sortOptions"`
	}
	require.NoError(t, json.Unmarshal(body, &cfg))
	assert.Equal(t, 60, cfg.RefreshIntervalSeconds)
	assert.Contains(t, cfg.SortOptions, "price-desc")
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequest(http.MethodGet, f.http.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))

	resp, _ = f.do(t, http.MethodGet, "/api/health", "")
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequest(http.MethodOptions, f.http.URL+"/api/watchlist", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

// readUntil reads snapshots until match accepts one
func readUntil(t *testing.T, conn *websocket.Conn, match func(models.MWatchlistSnapshot) bool) models.MWatchlistSnapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var snap models.MWatchlistSnapshot
		require.NoError(t, conn.ReadJSON(&snap))
		if match(snap) {
			return snap
		}
	}
}

func TestWebSocket_PushesPerClientViews(t *testing.T) {
	f := newFixture(t)
	wsURL := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws?sort=price-desc"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readUntil(t, conn, func(models.MWatchlistSnapshot) bool { return true })
	assert.Equal(t, watchlist.SnapshotType, first.Type)
	assert.Equal(t, "price-desc", first.Sort)

	f.do(t, http.MethodPost, "/api/watchlist", `{"symbol":"MSFT"}`)
	snap := readUntil(t, conn, func(s models.MWatchlistSnapshot) bool { return s.Total == 1 })
	assert.Equal(t, "MSFT", snap.Entries[0].Symbol)

	require.NoError(t, conn.WriteJSON(models.MViewCommand{Command: "view", Sort: "symbol", Filter: "zz"}))
	snap = readUntil(t, conn, func(s models.MWatchlistSnapshot) bool { return s.Filter == "zz" })
	assert.Empty(t, snap.Entries)
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, "symbol", snap.Sort)

	assert.Eventually(t, func() bool { return f.server.connections.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestWebSocket_MalformedCommandDisconnects(t *testing.T) {
	f := newFixture(t)
	wsURL := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	readUntil(t, conn, func(models.MWatchlistSnapshot) bool { return true })
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	assert.Eventually(t, func() bool { return f.server.connections.Load() == 0 }, time.Second, 10*time.Millisecond)
}
