package helpers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stock-watchlist/src/models"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

var (
	ErrEmptySymbol       = errors.New("symbol cannot be empty")
	ErrSearchUnsupported = errors.New("symbol search is not supported by this provider")
)

type WatchlistError struct {
	Message string
	Cause   error
}

func (e *WatchlistError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *WatchlistError) Unwrap() error {
	return e.Cause
}

type ConfigurationError struct{ WatchlistError }
type NetworkError struct{ WatchlistError }
type StorageError struct{ WatchlistError }

// StatusError is returned for upstream responses outside the 2xx range
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Status)
}

// QuoteError is the classified failure of one quote or search request
type QuoteError struct {
	Kind    models.ErrorKind
	Symbol  string
	Status  int
	Message string
	Cause   error
}

func (e *QuoteError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Symbol != "" {
		msg = fmt.Sprintf("%s: %s", e.Symbol, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *QuoteError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// KindForStatus maps an HTTP status to an error kind
func KindForStatus(status int) models.ErrorKind {
	switch status {
	case http.StatusForbidden:
		return models.ErrorKindForbidden
	case http.StatusTooManyRequests:
		return models.ErrorKindRateLimited
	case http.StatusNotFound:
		return models.ErrorKindNotFound
	default:
		return models.ErrorKindUnknown
	}
}

// -----------------------------------------------------------------------------

// KindOf extracts the error kind carried by err
func KindOf(err error) models.ErrorKind {
	if err == nil {
		return models.ErrorKindNone
	}
	var qe *QuoteError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	var se *StatusError
	if errors.As(err, &se) {
		return KindForStatus(se.Status)
	}
	var ne *NetworkError
	if errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded) {
		return models.ErrorKindNetwork
	}
	var st *StorageError
	if errors.As(err, &st) {
		return models.ErrorKindStorageUnavailable
	}
	return models.ErrorKindUnknown
}

// -----------------------------------------------------------------------------

// ClassifyUpstream converts a transport-level failure into a QuoteError
func ClassifyUpstream(symbol string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QuoteError
	if errors.As(err, &qe) {
		return err
	}
	var se *StatusError
	if errors.As(err, &se) {
		return &QuoteError{Kind: KindForStatus(se.Status), Symbol: symbol, Status: se.Status, Cause: err}
	}
	return &QuoteError{Kind: models.ErrorKindNetwork, Symbol: symbol, Cause: err}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to maxAttempts times with exponential backoff.
// Errors rejected by retryable are returned immediately.
func RetryWithBackoff[T any](ctx context.Context, maxAttempts int, baseDelay time.Duration, retryable func(error) bool, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}
		lastErr = err
		if attempt == maxAttempts-1 || (retryable != nil && !retryable(err)) {
			break
		}

		delay := baseDelay * (1 << attempt)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
