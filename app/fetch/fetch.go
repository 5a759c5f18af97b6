package fetch

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

// Result carries the outcome of a single GET request. Transport failures are
// reported through Success and Body rather than an error: Body then holds the
// transport error text and StatusCode is zero.
type Result struct {
	Body       string
	StatusCode int
	Success    bool
}

// Client issues single GET requests with a fixed timeout and user agent.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		userAgent: userAgent,
	}
}

// Fetch performs a GET request against url. It never returns an error; all
// failure modes are communicated through the Result.
func (c *Client) Fetch(ctx context.Context, url string) Result {
	if url == "" {
		return Result{Body: "empty URL", StatusCode: 0, Success: false}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Body: err.Error(), StatusCode: 0, Success: false}
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Body: err.Error(), StatusCode: 0, Success: false}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Body: err.Error(), StatusCode: resp.StatusCode, Success: false}
	}

	// Success reflects transport-level completion only; HTTP-level failures
	// are left to the caller to judge from StatusCode.
	return Result{
		Body:       string(data),
		StatusCode: resp.StatusCode,
		Success:    true,
	}
}
