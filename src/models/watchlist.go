package models

// MWatchlistEntry pairs a watched symbol with its most recent quote.
// Quote is nil until the first successful fetch for the symbol.
type MWatchlistEntry struct {
	Symbol    string    `json:"symbol"`
	Quote     *MQuote   `json:"quote,omitempty"`
	Error     ErrorKind `json:"error,omitempty"`
	Stale     bool      `json:"stale,omitempty"`
	UpdatedAt int64     `json:"updatedAt,omitempty"`
}

type MSymbolError struct {
	Symbol  string    `json:"symbol"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// MFetchReport is the joined outcome of one fan-out over the watchlist.
// Entries and Errors keep the order of the requested symbols.
type MFetchReport struct {
	Entries        []MWatchlistEntry `json:"entries"`
	Errors         []MSymbolError    `json:"errors"`
	AllRateLimited bool              `json:"allRateLimited"`
}

// AllFailed reports whether every requested symbol failed.
func (r MFetchReport) AllFailed() bool {
	return len(r.Entries) == 0 && len(r.Errors) > 0
}

type EngineState string

const (
	StateIdle       EngineState = "idle"
	StateLoading    EngineState = "loading"
	StateReady      EngineState = "ready"
	StateRefreshing EngineState = "refreshing"
	StateError      EngineState = "error"
)

// MRefreshCycle is the countdown between two refresh ticks.
type MRefreshCycle struct {
	IntervalMs      int64   `json:"intervalMs"`
	ElapsedMs       int64   `json:"elapsedMs"`
	ProgressPercent float64 `json:"progressPercent"`
	SecondsLeft     int64   `json:"secondsLeft"`
}

// MWatchlistSnapshot is a presentation-ready view of the engine.
type MWatchlistSnapshot struct {
	Type        string            `json:"type"`
	State       EngineState       `json:"state"`
	Message     string            `json:"message,omitempty"`
	Cycle       MRefreshCycle     `json:"cycle"`
	Entries     []MWatchlistEntry `json:"entries"`
	Total       int               `json:"total"`
	Sort        string            `json:"sort"`
	Filter      string            `json:"filter"`
	MarketOpen  bool              `json:"marketOpen"`
	LastRefresh int64             `json:"lastRefresh,omitempty"`
	Timestamp   int64             `json:"timestamp"`
}

// MViewCommand is sent by websocket clients to change their projection.
type MViewCommand struct {
	Command string `json:"command"`
	Sort    string `json:"sort"`
	Filter  string `json:"filter"`
}
