package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type addSymbolRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// -----------------------------------------------------------------------------

func (s *WatchlistServer) getWatchlist(c *gin.Context) {
	c.JSON(http.StatusOK, s.Watch.Snapshot(c.Query("sort"), c.Query("filter")))
}

// -----------------------------------------------------------------------------

func (s *WatchlistServer) addSymbol(c *gin.Context) {
	var req addSymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Symbol) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	status := http.StatusOK
	if s.Watch.Add(req.Symbol) {
		status = http.StatusCreated
	}
	c.JSON(status, s.Watch.Snapshot(c.Query("sort"), c.Query("filter")))
}

// -----------------------------------------------------------------------------

func (s *WatchlistServer) removeSymbol(c *gin.Context) {
	s.Watch.Remove(c.Param("symbol"))
	c.JSON(http.StatusOK, s.Watch.Snapshot(c.Query("sort"), c.Query("filter")))
}
