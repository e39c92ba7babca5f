package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultAPIURL is the public GitHub REST API.
const DefaultAPIURL = "https://api.github.com"

// ErrBadCredentials is returned when GitHub rejects the token.
var ErrBadCredentials = errors.New("bad credentials")

// APIError is a non-2xx response from the GitHub API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("GitHub API error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("GitHub API error: %s (HTTP %d)", e.Message, e.StatusCode)
}

// Client is a minimal GitHub REST client authenticated with a bearer token.
type Client struct {
	http       *http.Client
	baseURL    string
	limiter    *rate.Limiter
	newBackOff func() backoff.BackOff
	maxRetries uint64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different API root, e.g. GitHub
// Enterprise ("https://ghe.example.com/api/v3").
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRateLimit caps requests per second with the given burst.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithBackOff sets the retry policy and how many retries are allowed.
func WithBackOff(newBackOff func() backoff.BackOff, maxRetries uint64) ClientOption {
	return func(c *Client) {
		c.newBackOff = newBackOff
		c.maxRetries = maxRetries
	}
}

// NewClient creates a client that sends token on every request. ctx is
// only used to build the underlying HTTP client (see oauth2.NewClient).
func NewClient(ctx context.Context, token string, opts ...ClientOption) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(ctx, src)
	httpClient.Timeout = 30 * time.Second

	c := &Client{
		http:    httpClient,
		baseURL: DefaultAPIURL,
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs a request against path, retrying transport errors and 5xx
// responses. The caller must close the returned body.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = io.ReadAll(body); err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
	}

	var resp *http.Response
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = strings.NewReader(string(payload))
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		r, err := c.http.Do(req)
		if err != nil {
			return err
		}
		if r.StatusCode >= 500 {
			r.Body.Close()
			return &APIError{StatusCode: r.StatusCode}
		}
		resp = r
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// Viewer describes the user a token belongs to.
type Viewer struct {
	Login  string   `json:"login"`
	Name   string   `json:"name"`
	Scopes []string `json:"scopes"`
}

// Viewer returns the authenticated user. A rejected token yields
// ErrBadCredentials.
func (c *Client) Viewer(ctx context.Context) (*Viewer, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrBadCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp)
	}

	var v Viewer
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	v.Scopes = parseScopes(resp.Header.Get("X-OAuth-Scopes"))
	return &v, nil
}

// parseScopes splits the comma-separated scope header. Fine-grained tokens
// send no header and get an empty list.
func parseScopes(header string) []string {
	scopes := []string{}
	for _, s := range strings.Split(header, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func parseErrorResponse(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &APIError{StatusCode: resp.StatusCode, Message: body.Message}
}
