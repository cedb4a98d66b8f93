package types

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Request describes the single page a run fetches.
type Request struct {
	// URL is the target URL to fetch.
	URL *url.URL

	// Headers are custom HTTP headers to send with the request.
	Headers http.Header

	// Timeout bounds the wait for the page to signal readiness.
	// Zero means the fetcher's configured default.
	Timeout time.Duration

	// ReadySelectors are CSS selectors whose presence marks the page as
	// rendered. The first one to appear wins.
	ReadySelectors []string

	// CreatedAt is when this request was created.
	CreatedAt time.Time
}

// NewRequest creates a new Request for rawURL.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, rawURL, err)
	}

	return &Request{
		URL:       u,
		Headers:   make(http.Header),
		CreatedAt: time.Now(),
	}, nil
}

// URLString returns the string representation of the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}
