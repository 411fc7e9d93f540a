package httpclient

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a single outbound request
const DefaultTimeout = 10 * time.Second

// Client defines an interface for making HTTP requests
// This allows for easy mocking and testing of HTTP calls
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// StandardHTTPClient wraps the standard http.Client
type StandardHTTPClient struct {
	client *http.Client
}

// NewStandardClient creates a new HTTP client with the given timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewStandardClient(timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &StandardHTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// NewWithTransport creates a client over a custom round tripper
func NewWithTransport(transport http.RoundTripper, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &StandardHTTPClient{
		client: &http.Client{Transport: transport, Timeout: timeout},
	}
}

// Do executes an HTTP request
func (c *StandardHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}
