package upstream

import (
	"log/slog"
	"net/http"
	"time"
)

// Option defines a function type used to configure an instance of the Client struct.
type Option func(*Client)

// WithURL sets the JSON endpoint to fetch.
func WithURL(url string) Option {
	return func(c *Client) {
		c.url = url
	}
}

// WithTimeout bounds each fetch, body included. Zero keeps the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxBodyBytes caps the accepted payload size. Zero keeps the default.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom slog.Logger instance for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}
