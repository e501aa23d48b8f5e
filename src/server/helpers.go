package server

import (
	"errors"
	"fmt"
	"net/http"

	"stock-watchlist/src/helpers"
	"stock-watchlist/src/models"
	"stock-watchlist/src/watchlist"
)

const (
	msgForbidden   = "Access Forbidden: Check your API key or permissions."
	msgRateLimited = "Rate limit exceeded. Please try again later."
)

// -----------------------------------------------------------------------------

// upstreamErrorResponse maps a classified upstream failure to the status and
// message returned to the browser. what names the resource in messages.
func upstreamErrorResponse(err error, what, internalWhat string) (int, string) {
	if errors.Is(err, helpers.ErrSearchUnsupported) {
		return http.StatusNotImplemented, "Symbol search is not supported by the configured provider."
	}

	var qe *helpers.QuoteError
	if !errors.As(err, &qe) {
		return http.StatusInternalServerError, fmt.Sprintf("An internal error occurred while fetching %s.", internalWhat)
	}

	switch qe.Kind {
	case models.ErrorKindForbidden:
		return http.StatusForbidden, msgForbidden
	case models.ErrorKindRateLimited:
		return http.StatusTooManyRequests, msgRateLimited
	case models.ErrorKindNotFound:
		return http.StatusNotFound, fmt.Sprintf("Failed to fetch %s. Status: %d", what, http.StatusNotFound)
	}

	if qe.Status != 0 {
		return qe.Status, fmt.Sprintf("Failed to fetch %s. Status: %d", what, qe.Status)
	}
	return http.StatusInternalServerError, fmt.Sprintf("An internal error occurred while fetching %s.", internalWhat)
}

// -----------------------------------------------------------------------------

func sortOptionNames() []string {
	names := make([]string, len(watchlist.SortOptions))
	for i, o := range watchlist.SortOptions {
		names[i] = string(o)
	}
	return names
}
