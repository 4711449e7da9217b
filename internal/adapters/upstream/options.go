package upstream

import (
	"net/http"
	"time"

	"github.com/okian/trainhist/pkg/logger"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the site root, e.g. "https://www.managerzone.com".
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithSport sets the sport query parameter.
func WithSport(s string) Option {
	return func(c *Client) {
		if s != "" {
			c.sport = s
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithLocation sets the timezone used to read header dates.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.location = loc
		}
	}
}
