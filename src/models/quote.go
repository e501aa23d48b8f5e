package models

// MQuote is the latest known pricing of one symbol.
type MQuote struct {
	CurrentPrice  float64 `json:"currentPrice"`
	PreviousClose float64 `json:"previousClose"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percentChange"`
}

// MSymbolMatch is one symbol search suggestion.
type MSymbolMatch struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
}

// ErrorKind classifies a failed quote or storage operation.
type ErrorKind string

const (
	ErrorKindNone               ErrorKind = ""
	ErrorKindRateLimited        ErrorKind = "rate_limited"
	ErrorKindForbidden          ErrorKind = "forbidden"
	ErrorKindNotFound           ErrorKind = "not_found"
	ErrorKindNetwork            ErrorKind = "network"
	ErrorKindUnknown            ErrorKind = "unknown"
	ErrorKindStorageUnavailable ErrorKind = "storage_unavailable"
)
