package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient is the agent's plain HTTP client: fixed base origin, timeout and
// user agent.
type HTTPClient struct {
	baseURL   *url.URL
	userAgent string
	client    *http.Client
}

func NewHTTPClient(baseURL *url.URL, timeout time.Duration, userAgent string) *HTTPClient {
	return &HTTPClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

func (c *HTTPClient) Timeout() time.Duration {
	return c.client.Timeout
}

func (c *HTTPClient) UserAgent() string {
	return c.userAgent
}

// Resolve resolves ref against the base origin. Absolute refs pass through.
func (c *HTTPClient) Resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", ref, err)
	}
	return c.baseURL.ResolveReference(u), nil
}

func (c *HTTPClient) Get(ctx context.Context, ref string) (*http.Response, error) {
	u, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	return c.Do(req)
}

func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.client.Do(req)
}

func (c *HTTPClient) Close() {
	c.client.CloseIdleConnections()
}
