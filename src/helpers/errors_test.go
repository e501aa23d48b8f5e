package helpers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"stock-watchlist/src/models"

	"github.com/stretchr/testify/assert"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   models.ErrorKind
	}{
		{http.StatusForbidden, models.ErrorKindForbidden},
		{http.StatusTooManyRequests, models.ErrorKindRateLimited},
		{http.StatusNotFound, models.ErrorKindNotFound},
		{http.StatusInternalServerError, models.ErrorKindUnknown},
		{http.StatusBadRequest, models.ErrorKindUnknown},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, KindForStatus(tt.status))
		})
	}
}

func TestKindOf_UnwrapsWrappedErrors(t *testing.T) {
	qe := &QuoteError{Kind: models.ErrorKindRateLimited, Symbol: "AAPL"}
	assert.Equal(t, models.ErrorKindRateLimited, KindOf(fmt.Errorf("fetch: %w", qe)))
	assert.Equal(t, models.ErrorKindForbidden, KindOf(&StatusError{Status: 403}))
	assert.Equal(t, models.ErrorKindNetwork, KindOf(context.DeadlineExceeded))
	assert.Equal(t, models.ErrorKindStorageUnavailable, KindOf(&StorageError{WatchlistError{Message: "db"}}))
	assert.Equal(t, models.ErrorKindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, models.ErrorKindNone, KindOf(nil))
}

func TestClassifyUpstream(t *testing.T) {
	err := ClassifyUpstream("MSFT", &StatusError{Status: 429})
	var qe *QuoteError
	assert.True(t, errors.As(err, &qe))
	assert.Equal(t, models.ErrorKindRateLimited, qe.Kind)
	assert.Equal(t, 429, qe.Status)
	assert.Equal(t, "MSFT", qe.Symbol)

	err = ClassifyUpstream("MSFT", errors.New("connection refused"))
	assert.Equal(t, models.ErrorKindNetwork, KindOf(err))
}

func TestRetryWithBackoff_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	_, err := RetryWithBackoff(context.Background(), 5, time.Millisecond,
		func(err error) bool { return false },
		func() (int, error) {
			calls++
			return 0, errors.New("fatal")
		})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	got, err := RetryWithBackoff(context.Background(), 3, time.Millisecond, nil,
		func() (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("flaky")
			}
			return "ok", nil
		})
	assert.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestProxyManager_RotatesAndPinsUserAgent(t *testing.T) {
	pm := NewProxyManager([]string{"10.0.0.1:8080", "http://10.0.0.2:3128", "::bad"}, "watchlist-test")
	assert.True(t, pm.HasProxies())

	first, _ := pm.GetCurrentProxy()
	assert.Equal(t, "http://10.0.0.1:8080", first)
	pm.RotateProxy()
	second, _ := pm.GetCurrentProxy()
	assert.Equal(t, "http://10.0.0.2:3128", second)
	assert.Equal(t, "watchlist-test", pm.GetUserAgent())
}
