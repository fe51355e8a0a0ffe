package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

var (
	ErrTimeout     = errors.New("gateway call exceeded deadline")
	ErrUnavailable = errors.New("gateway unavailable")
)

// Role identifies who a prompt turn speaks as.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Turn is one ordered entry of a prompt.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a fully assembled prompt. Built fresh per call; never reused
// across personas because the system turn embeds persona instructions.
type Request struct {
	Model    string `json:"model"`
	Stream   bool   `json:"stream"`
	Messages []Turn `json:"messages"`
}

// Response carries the generated text.
type Response struct {
	Content string
}

// Client sends an assembled prompt to a text-generation service.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// HTTPClient speaks the chat-completion JSON contract
// ({model, stream, messages} -> {message:{content}}) with a per-call
// deadline and bounded retry on transient failures.
type HTTPClient struct {
	baseURL    string
	client     *http.Client
	timeout    time.Duration
	maxRetries int
}

// NewHTTPClient builds a gateway client. maxRetries counts retries after the
// first attempt; retries apply only to transport errors and 5xx responses.
func NewHTTPClient(baseURL string, timeout time.Duration, maxRetries int) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		client:     &http.Client{},
		timeout:    timeout,
		maxRetries: maxRetries,
	}
}

type generateEnvelope struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Generate posts the prompt and returns the generated content.
func (c *HTTPClient) Generate(ctx context.Context, req Request) (Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode gateway request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			log.Printf("[gateway] retrying after failure (attempt %d/%d): %v", attempt, c.maxRetries, lastErr)
			select {
			case <-ctx.Done():
				return Response{}, c.wrapContextErr(ctx.Err())
			case <-time.After(backoff):
			}
		}

		resp, retryable, err := c.attempt(ctx, payload)
		if err == nil {
			return resp, nil
		}
		if !retryable {
			return Response{}, err
		}
		lastErr = err
	}

	return Response{}, lastErr
}

func (c *HTTPClient) attempt(ctx context.Context, payload []byte) (Response, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return Response{}, false, fmt.Errorf("build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		wrapped := c.wrapContextErr(err)
		// Deadline and cancellation are not worth retrying inside the same
		// caller budget; transport errors are.
		retryable := !errors.Is(wrapped, ErrTimeout) && ctx.Err() == nil
		return Response{}, retryable, wrapped
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= http.StatusInternalServerError {
		io.Copy(io.Discard, httpResp.Body)
		return Response{}, true, fmt.Errorf("%w: status %d", ErrUnavailable, httpResp.StatusCode)
	}
	if httpResp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, httpResp.Body)
		return Response{}, false, fmt.Errorf("gateway returned status %d", httpResp.StatusCode)
	}

	var envelope generateEnvelope
	if err := json.NewDecoder(httpResp.Body).Decode(&envelope); err != nil {
		return Response{}, false, fmt.Errorf("decode gateway response: %w", err)
	}

	return Response{Content: envelope.Message.Content}, false, nil
}

func (c *HTTPClient) wrapContextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("gateway call canceled: %w", err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
