package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// LookupError reports a failed entity lookup. Callers treat it as a
// recoverable, per-entity failure rather than aborting a whole resolution.
type LookupError struct {
	Ref string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("directory lookup for %q failed: %v", e.Ref, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// TokenSource supplies the credential presented to the directory service.
type TokenSource interface {
	// Token returns the current bearer token, or empty for anonymous access.
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a TokenSource that always yields the given token.
func StaticTokenSource(token string) TokenSource {
	return staticTokenSource(token)
}

type staticTokenSource string

func (s staticTokenSource) Token(context.Context) (string, error) { return string(s), nil }

// Client is the read-only query interface the resolver needs.
type Client interface {
	// EntityByRef fetches a single entity by reference.
	// A missing entity is reported as (nil, nil), not an error.
	EntityByRef(ctx context.Context, ref string) (*Entity, error)
	// EntitiesByKind lists all entities of the given kind.
	EntitiesByKind(ctx context.Context, kind string) ([]Entity, error)
}

// HTTPClient is a Client backed by the directory service's REST API.
type HTTPClient struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// NewHTTPClient creates a directory client for the service at baseURL.
// tokens may be nil for anonymous access.
func NewHTTPClient(baseURL string, tokens TokenSource) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// EntityByRef fetches GET /entities/by-name/{kind}/{namespace}/{name}.
func (c *HTTPClient) EntityByRef(ctx context.Context, ref string) (*Entity, error) {
	parsed, err := ParseRef(ref)
	if err != nil {
		return nil, &LookupError{Ref: ref, Err: err}
	}

	endpoint := fmt.Sprintf("%s/entities/by-name/%s/%s/%s",
		c.baseURL,
		url.PathEscape(strings.ToLower(parsed.Kind)),
		url.PathEscape(parsed.Namespace),
		url.PathEscape(parsed.Name),
	)

	var entity Entity
	found, err := c.getJSON(ctx, endpoint, &entity)
	if err != nil {
		return nil, &LookupError{Ref: ref, Err: err}
	}
	if !found {
		return nil, nil
	}
	return &entity, nil
}

// EntitiesByKind fetches GET /entities?filter=kind={kind} and returns the items.
func (c *HTTPClient) EntitiesByKind(ctx context.Context, kind string) ([]Entity, error) {
	endpoint := fmt.Sprintf("%s/entities?filter=kind%%3D%s", c.baseURL, url.QueryEscape(strings.ToLower(kind)))

	var payload struct {
		Items []Entity `json:"items"`
	}
	found, err := c.getJSON(ctx, endpoint, &payload)
	if err != nil {
		return nil, &LookupError{Ref: "kind=" + kind, Err: err}
	}
	if !found {
		return nil, nil
	}
	return payload.Items, nil
}

// getJSON performs an authenticated GET and decodes the JSON response into v.
// A 404 response is reported as (false, nil).
func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return false, fmt.Errorf("acquiring directory token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("decoding directory response: %w", err)
	}
	return true, nil
}
