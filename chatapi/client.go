// Package chatapi is the client for the remote chat-completion
// endpoint. One request per message, no retry, no streaming.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rumik/ira"
)

// DefaultPath is the chat-completion endpoint path.
const DefaultPath = "/api/chat-ira"

// Config holds chat API connection configuration.
type Config struct {
	BaseURL string
	Path    string // Default: DefaultPath

	// HTTPClient overrides the transport. Default: http.DefaultClient.
	HTTPClient *http.Client
}

// Client calls the remote chat-completion endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// New creates a new chat API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("chat API base URL is required: %w", ira.ErrInvalidConfig)
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		url:        strings.TrimSuffix(cfg.BaseURL, "/") + path,
		httpClient: httpClient,
	}, nil
}

// Reply sends the user's message and returns the assistant's reply.
// Any non-2xx status or missing reply field is an error.
func (c *Client) Reply(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("chat API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if parsed.Reply == "" {
		return "", fmt.Errorf("chat response missing reply")
	}
	return parsed.Reply, nil
}
