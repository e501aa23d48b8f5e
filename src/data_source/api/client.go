package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"stock-watchlist/src/helpers"
	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/models"
)

// Client talks to the watchlist backend: the quote and symbol search services
type Client struct {
	BaseURL string
	Network interfaces.INetworkManager
}

// -----------------------------------------------------------------------------

func NewClient(baseURL string, netMgr interfaces.INetworkManager) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Network: netMgr}
}

// -----------------------------------------------------------------------------

func (c *Client) Name() string {
	return "api"
}

// -----------------------------------------------------------------------------

// FetchQuote calls GET /api/quote/{symbol}
func (c *Client) FetchQuote(ctx context.Context, symbol string) (models.MQuote, error) {
	if symbol == "" {
		return models.MQuote{}, helpers.ErrEmptySymbol
	}

	body, err := c.Network.Get(ctx, c.BaseURL+"/api/quote/"+url.PathEscape(symbol), nil)
	if err != nil {
		return models.MQuote{}, classify(symbol, err)
	}

	var q models.MQuote
	if err := json.Unmarshal(body, &q); err != nil {
		return models.MQuote{}, &helpers.QuoteError{Kind: models.ErrorKindUnknown, Symbol: symbol, Message: "malformed quote", Cause: err}
	}
	return q, nil
}

// -----------------------------------------------------------------------------

// SearchSymbols calls GET /api/search?query=q
func (c *Client) SearchSymbols(ctx context.Context, query string) ([]models.MSymbolMatch, error) {
	body, err := c.Network.Get(ctx, c.BaseURL+"/api/search", map[string]string{"query": query})
	if err != nil {
		return nil, classify("", err)
	}

	matches := []models.MSymbolMatch{}
	if err := json.Unmarshal(body, &matches); err != nil {
		return nil, &helpers.QuoteError{Kind: models.ErrorKindUnknown, Message: "malformed search result", Cause: err}
	}
	return matches, nil
}

// -----------------------------------------------------------------------------

// classify maps the backend's status codes onto error kinds and keeps the
// server-provided message when there is one
func classify(symbol string, err error) error {
	var se *helpers.StatusError
	if !errors.As(err, &se) {
		return helpers.ClassifyUpstream(symbol, err)
	}

	qe := &helpers.QuoteError{Kind: helpers.KindForStatus(se.Status), Symbol: symbol, Status: se.Status, Cause: err}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(se.Body, &payload) == nil {
		qe.Message = payload.Error
	}
	return qe
}
