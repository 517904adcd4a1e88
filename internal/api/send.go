package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	apierrors "github.com/openxai/openxai-chat/internal/errors"
)

const (
	// maxResponseBody caps how much of a response is read
	maxResponseBody = 1 << 20
	// maxErrorBody caps the body kept on a RequestError for diagnostics
	maxErrorBody = 4096
)

// chatRequest is the JSON body posted to the endpoint
type chatRequest struct {
	Message string `json:"message"`
}

// Send posts message and returns the assistant reply. Every failure is a
// *errors.RequestError.
func (c *ChatClient) Send(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apierrors.ErrEmptyMessage
	}

	if c.IsClosed() {
		return "", apierrors.NewNetworkError(c.endpoint, fmt.Errorf("client is closed"))
	}

	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", apierrors.NewNetworkError(c.endpoint, fmt.Errorf("failed to create request: %w", err))
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debugf("POST %s request=%s len=%d", c.endpoint, requestID, len(message))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("request=%s transport failure: %v", requestID, err)
		return "", apierrors.NewNetworkError(c.endpoint, err)
	}
	defer func() {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	var body []byte
	if resp.Body != nil {
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if err != nil {
			return "", apierrors.NewNetworkError(c.endpoint, fmt.Errorf("failed to read response: %w", err))
		}
	}

	c.logger.Debugf("request=%s status=%d bytes=%d took=%s", requestID, resp.StatusCode, len(body), time.Since(start).Round(time.Millisecond))

	return parseResponse(c.endpoint, resp.StatusCode, body)
}

// parseResponse maps a status and body to the reply text or a RequestError
func parseResponse(endpoint string, status int, body []byte) (string, error) {
	if status < 200 || status > 299 {
		var msg string
		if gjson.ValidBytes(body) {
			if e := gjson.GetBytes(body, "error"); e.Type == gjson.String {
				msg = e.String()
			}
		}
		return "", apierrors.NewAPIError(status, endpoint, msg, truncate(string(body), maxErrorBody))
	}

	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError(endpoint, "invalid JSON in response")
	}

	reply := gjson.GetBytes(body, "message")
	if reply.Type != gjson.String {
		return "", apierrors.NewParseError(endpoint, "response has no message field")
	}

	return reply.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
