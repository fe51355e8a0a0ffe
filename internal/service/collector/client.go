package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cjrutherford/tanuki-orchestrator/internal/model/chat"
)

var ErrRejected = errors.New("message collector rejected the message")

// Client posts finished chat messages to the message-collector service.
// Conversation/thread identity is the collector's concern, not ours.
type Client interface {
	Post(ctx context.Context, msg chat.Message) error
}

// HTTPClient is the production collector client.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a collector client for the given base URL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Post publishes the message and awaits acknowledgement. Already published
// messages are never retracted by this client.
func (c *HTTPClient) Post(ctx context.Context, msg chat.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build collector request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	return nil
}

// MemoryClient records posted messages in memory for dev mode and tests.
type MemoryClient struct {
	Posted []chat.Message
}

// Post appends the message to the in-memory log.
func (c *MemoryClient) Post(_ context.Context, msg chat.Message) error {
	c.Posted = append(c.Posted, msg)
	return nil
}
