// Package backend is the REST client for the timetable backend. It
// owns no state: every call is a fresh request carrying the current
// bearer token, and every response is decoded at this boundary into
// explicit domain types.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"edtclient/internal/domain"
)

// TokenSource supplies the current bearer token; empty means
// unauthenticated.
type TokenSource interface {
	Token() string
}

// Client calls the backend REST surface.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger

	onUnauthorized func()
}

// New returns a client for the given base URL.
func New(baseURL string, httpClient *http.Client, tokens TokenSource, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		logger:  logger,
	}
}

// OnUnauthorized registers a callback invoked whenever the backend
// rejects the bearer token, on any endpoint. The caller uses it to
// clear the stored credential so the user is treated as logged out
// everywhere, not only on the auth endpoints.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// doJSON performs the request and decodes a 2xx JSON body into out
// (which may be nil). Non-2xx responses become errors via
// responseError.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.responseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

// responseError turns a non-2xx response into an error. Unauthorized
// maps to domain.ErrUnauthorized so callers can tear the session down;
// everything else becomes a *domain.CommandError carrying the parsed
// body when the backend sent one, else a message synthesized from the
// HTTP status.
func (c *Client) responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var parsed domain.CommandError
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Message == "" {
		parsed = domain.CommandError{
			Code:    parsed.Code,
			Message: fmt.Sprintf("backend returned status %d", resp.StatusCode),
		}
	}
	parsed.Status = resp.StatusCode

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, parsed.Message)
	}
	c.logger.Debug("backend error response", "status", resp.StatusCode, "code", parsed.Code)
	return &parsed
}

func scopeQuery(scope domain.Scope) url.Values {
	q := url.Values{}
	if scope == domain.ScopeDraft {
		q.Set("scope", string(domain.ScopeDraft))
	}
	return q
}
