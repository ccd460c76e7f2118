// Package httpx implements a relayer HTTP client with exponential-backoff
// retry on transient failures (spec §4.11).
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultMaxRetries is the default retry budget for a single request.
const DefaultMaxRetries = 3

// DefaultBaseDelay is the starting backoff delay; each subsequent attempt
// doubles it (500ms * 2^attempt).
const DefaultBaseDelay = 500 * time.Millisecond

// rawBody captures a JSON response body verbatim instead of decoding it,
// by satisfying json.Unmarshaler with a no-op copy.
type rawBody []byte

func (r *rawBody) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// StatusError carries a non-2xx HTTP response body verbatim. 4xx errors
// are never retried and are always returned as a StatusError.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpx: unexpected status %d: %s", e.StatusCode, string(e.Body))
}

// Client wraps net/http.Client with the relayer's retry policy.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	MaxRetries int
	BaseDelay  time.Duration
}

// NewClient builds a Client pointed at baseURL with the default timeout
// and retry policy.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
	}
}

// Get issues a GET request and decodes a JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// GetRaw issues a GET request and returns the raw response body,
// undecoded, for callers that need to disambiguate between multiple
// possible response shapes before parsing.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	var raw rawBody
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// PostJSON issues a POST request with a JSON body and decodes a JSON
// response into out.
func (c *Client) PostJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("httpx: encode request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(encoded), out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("httpx: buffer request body: %w", err)
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.BaseDelay
	policy.Multiplier = 2
	policy.MaxElapsedTime = 0 // bounded by MaxRetries via backoff.WithMaxRetries below
	bo := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.MaxRetries)), ctx)

	operation := func() error {
		var reqBody io.Reader
		if bodyBytes != nil {
			reqBody = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("httpx: build request: %w", err))
		}
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			// Network errors are transient: retry.
			return err
		}
		defer resp.Body.Close()

		respBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode >= 500 {
			return &StatusError{StatusCode: resp.StatusCode, Body: respBytes}
		}
		if resp.StatusCode >= 400 {
			// 4xx are never retried.
			return backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: respBytes})
		}

		if out != nil && len(respBytes) > 0 {
			if err := json.Unmarshal(respBytes, out); err != nil {
				return backoff.Permanent(fmt.Errorf("httpx: decode response: %w", err))
			}
		}
		return nil
	}

	return backoff.Retry(operation, bo)
}
