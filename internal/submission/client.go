package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"geniusdesign/internal/generation"
)

// Endpoint is the remote generation call a submission depends on.
type Endpoint interface {
	Generate(ctx context.Context, token string, req generation.Request) (*generation.Response, error)
}

// Client calls the generation endpoint over HTTP.
type Client struct {
	URL        string
	HTTPClient *http.Client
}

// NewClient builds a client for url. A nil httpClient gets a generous timeout
// because one call covers every variation.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{URL: url, HTTPClient: httpClient}
}

// Generate posts the request with the bearer token. Non-2xx replies become an
// *UpstreamError holding the server's error message.
func (c *Client) Generate(ctx context.Context, token string, req generation.Request) (*generation.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody generation.ErrorResponse
		_ = json.Unmarshal(body, &errBody)
		return nil, newUpstreamError(resp.StatusCode, errBody.Error)
	}

	var out generation.Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
