package render

import (
	"fmt"
	"io"
	"strings"

	"stock-watchlist/src/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const progressWidth = 30

type Options struct {
	Color bool
}

// -----------------------------------------------------------------------------

// ProgressBar draws the refresh countdown as a fixed-width bar
func ProgressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// -----------------------------------------------------------------------------

// StatusLine summarises the engine state above the table
func StatusLine(snap models.MWatchlistSnapshot) string {
	switch snap.State {
	case models.StateIdle:
		return "Idle"
	case models.StateLoading:
		return "Loading..."
	case models.StateError:
		return snap.Message
	}

	line := fmt.Sprintf("Next refresh in %ds %s %3.0f%%", snap.Cycle.SecondsLeft, ProgressBar(snap.Cycle.ProgressPercent, progressWidth), snap.Cycle.ProgressPercent)
	if snap.State == models.StateRefreshing {
		line += "  refreshing..."
	}
	return line
}

// -----------------------------------------------------------------------------

func colorize(opts Options, v float64, s string) string {
	if !opts.Color {
		return s
	}
	switch {
	case v < 0:
		return text.Colors{text.FgRed}.Sprint(s)
	case v > 0:
		return text.Colors{text.FgGreen}.Sprint(s)
	}
	return s
}

// -----------------------------------------------------------------------------

func entryRow(e models.MWatchlistEntry, opts Options) table.Row {
	if e.Quote == nil {
		note := "-"
		if e.Error != models.ErrorKindNone {
			note = string(e.Error)
		}
		return table.Row{e.Symbol, "-", "-", "-", "-", note}
	}

	q := e.Quote
	note := ""
	if e.Stale {
		note = "stale"
		if e.Error != models.ErrorKindNone {
			note += " (" + string(e.Error) + ")"
		}
	}

	return table.Row{
		e.Symbol,
		fmt.Sprintf("%.2f", q.CurrentPrice),
		colorize(opts, q.Change, fmt.Sprintf("%+.2f", q.Change)),
		colorize(opts, q.PercentChange, fmt.Sprintf("%+.2f%%", q.PercentChange)),
		fmt.Sprintf("%.2f", q.PreviousClose),
		note,
	}
}

// -----------------------------------------------------------------------------

// RenderWatchlist writes the status line, the projected entries and a count footer
func RenderWatchlist(w io.Writer, snap models.MWatchlistSnapshot, opts Options) {
	status := StatusLine(snap)
	if opts.Color && snap.State == models.StateError {
		status = text.Colors{text.FgRed, text.Bold}.Sprint(status)
	}
	fmt.Fprintln(w, status)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if opts.Color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false

	tw.AppendHeader(table.Row{"SYMBOL", "PRICE", "CHANGE", "CHG%", "PREV CLOSE", ""})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignRight},
	})

	for _, e := range snap.Entries {
		tw.AppendRow(entryRow(e, opts))
	}
	tw.Render()

	footer := fmt.Sprintf("%d of %d symbols, sorted by %s", len(snap.Entries), snap.Total, snap.Sort)
	if snap.Filter != "" {
		footer += fmt.Sprintf(", filter %q", snap.Filter)
	}
	if snap.MarketOpen {
		footer += ", market open"
	}
	fmt.Fprintln(w, footer)
}

// -----------------------------------------------------------------------------

// RenderSearch lists symbol suggestions
func RenderSearch(w io.Writer, matches []models.MSymbolMatch) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.DrawBorder = false
	tw.AppendHeader(table.Row{"SYMBOL", "DESCRIPTION"})
	for _, m := range matches {
		tw.AppendRow(table.Row{m.Symbol, m.Description})
	}
	tw.Render()
}
