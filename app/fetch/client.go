package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

// The source site sits behind bot mitigation that rejects obviously
// non-browser clients, so the transport carries a browser user-agent
// and the cloudflare bypass round tripper.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Client is the injected retrieval capability: everything downstream of
// the fetch is testable without touching the network.
type Client interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type HTTPClient struct {
	http *resty.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(userAgent string, timeout time.Duration) (*HTTPClient, error) {
	client := resty.New()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(timeout)

	return &HTTPClient{http: client}, nil
}

func (c *HTTPClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode()}
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body from %s", url)
	}

	return body, nil
}

// SaveTo retrieves url and writes the body verbatim to path.
func SaveTo(ctx context.Context, client Client, url, path string) error {
	data, err := client.Fetch(ctx, url)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// HTTPStatusError reports a non-200 response from the source site.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d for %s", e.StatusCode, e.URL)
}

// Retryable reports whether the status is worth retrying. Client errors
// (bot mitigation rejecting the request included) will not improve on a
// blind retry; server errors and rate limits might.
func (e *HTTPStatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}
