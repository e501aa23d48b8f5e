package utils

import (
	"sync"
	"time"

	"stock-watchlist/src/logger"
)

// MarketScheduler answers whether any exchange behind a symbol set is trading.
// Calendars are loaded lazily and shared per exchange.
type MarketScheduler struct {
	Logger *logger.Logger

	mu        sync.Mutex
	calendars map[string]*TradingCalendar // by MIC
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(l *logger.Logger) *MarketScheduler {
	return &MarketScheduler{
		Logger:    l,
		calendars: make(map[string]*TradingCalendar),
	}
}

// -----------------------------------------------------------------------------

func (ms *MarketScheduler) calendarFor(symbol string) *TradingCalendar {
	mic := MICForSymbol(symbol)

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if cal, ok := ms.calendars[mic]; ok {
		return cal
	}
	cal := NewTradingCalendar(mic, ms.Logger)
	ms.calendars[mic] = cal
	return cal
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if ANY exchange of the given symbols is open at now
func (ms *MarketScheduler) AnyMarketOpen(symbols []string, now time.Time) bool {
	seen := make(map[*TradingCalendar]bool)
	for _, symbol := range symbols {
		cal := ms.calendarFor(symbol)
		if seen[cal] {
			continue
		}
		seen[cal] = true
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}
	return false
}
