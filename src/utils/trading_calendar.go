package utils

import (
	"strings"
	"time"

	"stock-watchlist/src/logger"

	"github.com/scmhub/calendar"
)

// TradingCalendar calculates trading sessions using scmhub/calendar.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// Exchange suffixes mapped to ISO 10383 MIC codes. Longer suffixes first so
// ".VI" wins over ".V".
var suffixMICs = []struct {
	suffix string
	mic    string
}{
	{".L", "xlon"}, {".PA", "xpar"}, {".DE", "xfra"}, {".AS", "xams"},
	{".BR", "xbru"}, {".MI", "xmil"}, {".MC", "xmad"}, {".ST", "xsto"},
	{".CO", "xcse"}, {".HE", "xhel"}, {".VI", "xwbo"}, {".SW", "xswx"},
	{".TO", "xtse"}, {".V", "xtsx"}, {".T", "xtks"}, {".HK", "xhkg"},
	{".AX", "xasx"}, {".KS", "xkrx"}, {".TW", "xtai"}, {".SS", "xshg"},
	{".SZ", "xshe"},
}

// -----------------------------------------------------------------------------

// MICForSymbol resolves the exchange of a symbol from its suffix. Plain
// tickers are treated as US listings.
func MICForSymbol(symbol string) string {
	symbol = strings.ToUpper(symbol)
	for _, m := range suffixMICs {
		if strings.HasSuffix(symbol, m.suffix) {
			return m.mic
		}
	}
	return "xnys"
}

// -----------------------------------------------------------------------------

// NewTradingCalendar loads the calendar for mic, falling back to NYSE and then
// to a plain Mon-Fri 09:30-16:00 New York session.
func NewTradingCalendar(mic string, l *logger.Logger) *TradingCalendar {
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		l.Warning("Failed to load calendar for MIC '%s' and fallback 'xnys'. Using simple fallback.", mic)
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{MIC: mic, Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		hour, minute := t.Hour(), t.Minute()
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.Calendar.IsOpen(t)
}
