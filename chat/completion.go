package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultCompletionTimeout caps how long one completion call may run. The
// upstream service can stall; without a deadline a send would hang in the
// typing state forever.
const DefaultCompletionTimeout = 30 * time.Second

// Completer produces the assistant reply for a user message given the
// bounded context window.
type Completer interface {
	Complete(ctx context.Context, userText string, window []Turn) (string, error)
}

// CompletionClient talks to the completion service over HTTP. One request
// per call, no retries: retry policy belongs to the caller.
type CompletionClient struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewCompletionClient(endpoint, token string, timeout time.Duration) *CompletionClient {
	if timeout <= 0 {
		timeout = DefaultCompletionTimeout
	}
	return &CompletionClient{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
	}
}

type completionRequest struct {
	Message             string `json:"message"`
	ConversationHistory []Turn `json:"conversationHistory"`
}

type completionResponse struct {
	Response string `json:"response"`
}

// Complete posts the window and the new user message and returns the
// assistant text. Transport failures, timeouts, non-200 statuses and
// malformed bodies all surface as the upstream failure kind.
func (c *CompletionClient) Complete(ctx context.Context, userText string, window []Turn) (string, error) {
	if window == nil {
		window = []Turn{}
	}
	body, err := json.Marshal(completionRequest{
		Message:             userText,
		ConversationHistory: window,
	})
	if err != nil {
		return "", UpstreamError("marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", UpstreamError("create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", UpstreamError("send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", UpstreamError("send request", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	var result completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", UpstreamError("decode response", err)
	}
	if result.Response == "" {
		return "", UpstreamError("decode response", fmt.Errorf("empty response field"))
	}
	return result.Response, nil
}
