package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// TokenSource supplies a JWT for request authorization.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client provides access to the Alor REST API.
type Client struct {
	baseURL    string
	exchange   string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. tokens may be nil for endpoints
// that allow anonymous access.
func NewClient(baseURL string, tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  baseURL,
		exchange: "MOEX",
		tokens:   tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithExchange sets the default exchange for quote requests.
func WithExchange(exchange string) ClientOption {
	return func(c *Client) {
		if exchange != "" {
			c.exchange = exchange
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
