package finnhub

import (
	"context"
	"encoding/json"
	"strings"

	"stock-watchlist/src/helpers"
	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/logger"
	"stock-watchlist/src/models"
)

const DefaultBaseURL = "https://finnhub.io/api/v1"

// FinnhubSource serves quotes and symbol search from the Finnhub REST API
type FinnhubSource struct {
	BaseURL string
	APIKey  string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewFinnhubSource(baseURL, apiKey string, netMgr interfaces.INetworkManager) *FinnhubSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FinnhubSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Network: netMgr,
		Logger:  logger.NewLogger("FinnhubSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *FinnhubSource) Name() string {
	return "finnhub"
}

// -----------------------------------------------------------------------------

type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

type searchResponse struct {
	Count  int `json:"count"`
	Result []struct {
		Description   string `json:"description"`
		DisplaySymbol string `json:"displaySymbol"`
		Symbol        string `json:"symbol"`
		Type          string `json:"type"`
	} `json:"result"`
}

// -----------------------------------------------------------------------------

// FetchQuote maps Finnhub's c/pc/d/dp fields onto a quote. Finnhub answers
// unknown symbols with an all-zero quote, which is reported as NotFound.
func (s *FinnhubSource) FetchQuote(ctx context.Context, symbol string) (models.MQuote, error) {
	if symbol == "" {
		return models.MQuote{}, helpers.ErrEmptySymbol
	}

	body, err := s.Network.Get(ctx, s.BaseURL+"/quote", map[string]string{"symbol": symbol, "token": s.APIKey})
	if err != nil {
		return models.MQuote{}, helpers.ClassifyUpstream(symbol, err)
	}

	var resp quoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MQuote{}, &helpers.QuoteError{Kind: models.ErrorKindUnknown, Symbol: symbol, Message: "malformed quote response", Cause: err}
	}
	if resp.Current == 0 && resp.PreviousClose == 0 {
		return models.MQuote{}, &helpers.QuoteError{Kind: models.ErrorKindNotFound, Symbol: symbol, Status: 404, Message: "unknown symbol"}
	}

	return models.MQuote{
		CurrentPrice:  resp.Current,
		PreviousClose: resp.PreviousClose,
		Change:        resp.Change,
		PercentChange: resp.PercentChange,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *FinnhubSource) SearchSymbols(ctx context.Context, query string) ([]models.MSymbolMatch, error) {
	body, err := s.Network.Get(ctx, s.BaseURL+"/search", map[string]string{"q": query, "token": s.APIKey})
	if err != nil {
		return nil, helpers.ClassifyUpstream("", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &helpers.QuoteError{Kind: models.ErrorKindUnknown, Message: "malformed search response", Cause: err}
	}

	matches := make([]models.MSymbolMatch, 0, len(resp.Result))
	for _, r := range resp.Result {
		matches = append(matches, models.MSymbolMatch{Symbol: r.Symbol, Description: r.Description})
	}
	s.Logger.Debug("Search %q returned %d matches", query, len(matches))
	return matches, nil
}

