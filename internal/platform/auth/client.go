// Package auth implements the credential exchange against the platform's
// signin endpoint: a basic-encoded username/password pair traded for an
// opaque bearer token.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// SigninError is a rejected credential exchange. Detail carries the
// server's explanation when one was provided.
type SigninError struct {
	StatusCode int
	Detail     string
}

func (e *SigninError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("signin failed: status %d", e.StatusCode)
	}
	return fmt.Sprintf("signin failed: status %d: %s", e.StatusCode, e.Detail)
}

// Client exchanges credentials at one fixed signin endpoint.
type Client struct {
	endpoint string
	httpc    *http.Client
}

func NewClient(endpoint string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{endpoint: endpoint, httpc: httpc}
}

// Signin trades login/password for a bearer token. The success body is
// the raw token, possibly JSON-quoted; quotes and whitespace are
// stripped. Non-2xx responses surface either a JSON {error} field or the
// plain-text body via *SigninError.
func (c *Client) Signin(ctx context.Context, login, password string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader("{}"))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(login, password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("signin request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read signin response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &SigninError{StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}

	token := strings.TrimSpace(string(body))
	token = strings.TrimPrefix(token, `"`)
	token = strings.TrimSuffix(token, `"`)
	if token == "" {
		return "", errors.New("signin succeeded but token not found")
	}
	return token, nil
}

// errorDetail pulls the {error} field out of a JSON failure body, falling
// back to the body text itself.
func errorDetail(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
