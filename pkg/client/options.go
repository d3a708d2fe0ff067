package client

import (
	"net/http"
	"time"
)

// Option configures a Client at construction.
type Option func(*Client)

// WithHTTPClient replaces the transport. Its Timeout bounds one attempt;
// WithScoreTimeout bounds a whole Score call, retries included.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger routes request and retry logging to l.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent overrides the dockrmsd-go-sdk/<version> User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRetries sets how often a 5xx, 429 or transport failure is retried and
// the backoff window between attempts. A negative n keeps the current count.
// The window is kept unless 0 < minWait <= maxWait.
func WithRetries(n int, minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retryMax = n
		}
		if minWait > 0 && maxWait >= minWait {
			c.retryWaitMin, c.retryWaitMax = minWait, maxWait
		}
	}
}

// WithMapping asks for the atom correspondence on every Score call, as if
// each ScoreRequest had Mapping set.
func WithMapping() Option {
	return func(c *Client) { c.mapping = true }
}

// WithScoreTimeout bounds each Score and ScoreFiles call, upload and retries
// included. Zero leaves the caller's context as the only bound.
func WithScoreTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.scoreTimeout = d
		}
	}
}

//Personal.AI order the ending
