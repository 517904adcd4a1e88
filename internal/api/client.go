// Package api implements the client for the chat REST endpoint.
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/openxai/openxai-chat/internal/logging"
)

// ChatClientInterface is the subset of the client used by commands and the TUI
type ChatClientInterface interface {
	Send(ctx context.Context, message string) (string, error)
	Endpoint() string
	Close()
}

// Ensure ChatClient implements ChatClientInterface
var _ ChatClientInterface = (*ChatClient)(nil)

// ChatClient posts user messages to the chat endpoint
type ChatClient struct {
	httpClient tls_client.HttpClient
	endpoint   string
	timeout    time.Duration
	logger     *logging.Logger
	mu         sync.RWMutex
	closed     bool
}

// ClientOption is a function that configures the client
type ClientOption func(*ChatClient)

// WithTimeout sets the transport timeout. Zero means no timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ChatClient) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client (used in tests)
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *ChatClient) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the debug logger
func WithLogger(l *logging.Logger) ClientOption {
	return func(c *ChatClient) {
		c.logger = l
	}
}

// NewClient creates a ChatClient for endpoint
func NewClient(endpoint string, opts ...ClientOption) (*ChatClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}

	client := &ChatClient{
		endpoint: endpoint,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the chat endpoint URL
func (c *ChatClient) Endpoint() string {
	return c.endpoint
}

// Timeout returns the configured transport timeout
func (c *ChatClient) Timeout() time.Duration {
	return c.timeout
}

// GetHTTPClient returns the underlying HTTP client
func (c *ChatClient) GetHTTPClient() tls_client.HttpClient {
	return c.httpClient
}

// Close releases idle connections. Further sends fail.
func (c *ChatClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *ChatClient) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
