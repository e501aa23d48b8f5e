package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"stock-watchlist/src/helpers"
	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/logger"
	"stock-watchlist/src/models"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// YahooFinanceSource derives quotes from the Yahoo chart endpoint
type YahooFinanceSource struct {
	BaseURL string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(baseURL string, netMgr interfaces.INetworkManager) *YahooFinanceSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &YahooFinanceSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Network: netMgr,
		Logger:  logger.NewLogger("YahooFinanceSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				ExchangeName       string  `json:"exchangeName"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

// FetchQuote reads the regular market price and previous close from the chart meta
func (s *YahooFinanceSource) FetchQuote(ctx context.Context, symbol string) (models.MQuote, error) {
	if symbol == "" {
		return models.MQuote{}, helpers.ErrEmptySymbol
	}

	params := map[string]string{
		"interval":       "1d",
		"range":          "1d",
		"includePrePost": "false",
	}
	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s", s.BaseURL, url.PathEscape(symbol))

	body, err := s.Network.Get(ctx, chartURL, params)
	if err != nil {
		return models.MQuote{}, helpers.ClassifyUpstream(symbol, err)
	}
	return s.parseChartResponse(symbol, body)
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) parseChartResponse(symbol string, data []byte) (models.MQuote, error) {
	var resp YahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.MQuote{}, &helpers.QuoteError{Kind: models.ErrorKindUnknown, Symbol: symbol, Message: "malformed chart response", Cause: err}
	}

	if resp.Chart.Error != nil {
		kind := models.ErrorKindUnknown
		if resp.Chart.Error.Code == "Not Found" {
			kind = models.ErrorKindNotFound
		}
		return models.MQuote{}, &helpers.QuoteError{Kind: kind, Symbol: symbol, Message: fmt.Sprintf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description)}
	}

	if len(resp.Chart.Result) == 0 {
		return models.MQuote{}, &helpers.QuoteError{Kind: models.ErrorKindNotFound, Symbol: symbol, Message: "no result in response"}
	}

	meta := resp.Chart.Result[0].Meta
	prev := meta.ChartPreviousClose
	if prev == 0 {
		prev = meta.PreviousClose
	}

	q := models.MQuote{
		CurrentPrice:  meta.RegularMarketPrice,
		PreviousClose: prev,
		Change:        meta.RegularMarketPrice - prev,
	}
	if prev != 0 {
		q.PercentChange = q.Change / prev * 100
	}
	return q, nil
}

// -----------------------------------------------------------------------------

// SearchSymbols is not offered by the chart endpoint
func (s *YahooFinanceSource) SearchSymbols(ctx context.Context, query string) ([]models.MSymbolMatch, error) {
	return nil, &helpers.QuoteError{Kind: models.ErrorKindUnknown, Message: "search unavailable", Cause: helpers.ErrSearchUnsupported}
}
