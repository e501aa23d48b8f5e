package server

import (
	"net/http"
	"strings"

	"stock-watchlist/src/helpers"
	"stock-watchlist/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Quote proxy. The upstream API key never leaves the server.
// -----------------------------------------------------------------------------

func (s *WatchlistServer) getQuote(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": helpers.ErrEmptySymbol.Error()})
		return
	}

	quote, err := s.Upstream.FetchQuote(c.Request.Context(), symbol)
	if err != nil {
		status, msg := upstreamErrorResponse(err, "stock data for "+symbol, "stock data")
		s.Logger.Warning("Quote %s failed (%d): %v", symbol, status, err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, quote)
}

// -----------------------------------------------------------------------------

func (s *WatchlistServer) getSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusOK, []models.MSymbolMatch{})
		return
	}

	matches, err := s.Upstream.SearchSymbols(c.Request.Context(), query)
	if err != nil {
		status, msg := upstreamErrorResponse(err, "stock symbol suggestions", "stock symbol suggestions")
		s.Logger.Warning("Search %q failed (%d): %v", query, status, err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	if matches == nil {
		matches = []models.MSymbolMatch{}
	}
	c.JSON(http.StatusOK, matches)
}
