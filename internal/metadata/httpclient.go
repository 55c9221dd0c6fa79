// file: internal/metadata/httpclient.go
// version: 1.0.0
// guid: 5d2a8e1f-4c3b-49d7-b6e0-7a1f9c3d2e54

package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is sent with every catalog request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// maxBodySize caps any single response (covers included) at 10 MB.
const maxBodySize = 10 * 1024 * 1024

// HTTPClient fetches the full body of a URL. Implementations must apply timeout
// to the whole request and report failures wrapping ErrTransport.
type HTTPClient interface {
	Get(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

// StdHTTPClient is the default HTTPClient on top of net/http.
type StdHTTPClient struct {
	client    *http.Client
	userAgent string
}

// NewStdHTTPClient wraps client (http.DefaultClient when nil).
func NewStdHTTPClient(client *http.Client, userAgent string) *StdHTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &StdHTTPClient{client: client, userAgent: userAgent}
}

// Get issues a GET request and reads the whole body.
func (c *StdHTTPClient) Get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request for %s: %w", ErrTransport, url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, image/*;q=0.9, */*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrTransport, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: GET %s returned status %d", ErrTransport, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body of %s: %w", ErrTransport, url, err)
	}
	return body, nil
}
