// Package graphql implements the query client for the learning platform's
// GraphQL endpoint: one POST surface taking {query, variables} and
// returning {data, errors}. The bearer credential is passed explicitly on
// every call; the client holds no ambient token.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client issues authenticated queries against one fixed endpoint. Calls
// are stateless, idempotent reads; the client never retries.
type Client struct {
	endpoint string
	httpc    *http.Client
}

// NewClient creates a query client for the given endpoint URL. A nil
// httpc falls back to a client with a sane overall timeout.
func NewClient(endpoint string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{endpoint: endpoint, httpc: httpc}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []ErrorDetail   `json:"errors"`
}

// Query executes one GraphQL request with the given bearer token and
// decodes the data payload into out (skipped when out is nil).
//
// Failure modes: *AuthError when the token is empty (raised before any
// network I/O), *TransportError when the call cannot complete, *APIError
// on non-2xx status or a server-reported errors list.
func (c *Client) Query(ctx context.Context, token, query string, variables map[string]any, out any) error {
	token = normalizeToken(token)
	if token == "" {
		return &AuthError{}
	}

	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	var env envelope
	// A non-2xx body may not be JSON at all; status wins in that case.
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || len(env.Errors) > 0 {
		return &APIError{StatusCode: resp.StatusCode, Errors: env.Errors}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data payload: %w", err)
	}
	return nil
}

// normalizeToken strips surrounding quote characters the token storage
// may carry over from a JSON-encoded value.
func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, `"`)
	token = strings.TrimSuffix(token, `"`)
	return token
}
