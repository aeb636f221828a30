package fetch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryClient wraps a Client with bounded exponential backoff. The
// underlying fetch carries its own timeout; this only re-issues the
// request on transient failures.
type RetryClient struct {
	inner      Client
	maxRetries uint64
	base       time.Duration
}

var _ Client = (*RetryClient)(nil)

func NewRetryClient(inner Client, maxRetries uint64, base time.Duration) *RetryClient {
	return &RetryClient{
		inner:      inner,
		maxRetries: maxRetries,
		base:       base,
	}
}

func (c *RetryClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	var data []byte

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.base))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		data, err = c.inner.Fetch(ctx, url)
		if err == nil {
			return nil
		}

		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return err
		}

		slog.Warn("Fetch failed, will retry", "url", url, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}
