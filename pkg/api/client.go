package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to the dashboard backend's REST surface. The streaming
// chat POST returns the raw response body; everything else is plain
// request/response JSON.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL. The HTTP client
// carries no overall timeout because PostChatMessage returns a body
// that streams for the duration of a chat turn.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// FetchLiveSnapshot fetches authoritative live state for all channels.
func (c *Client) FetchLiveSnapshot(ctx context.Context) (*LiveSnapshot, error) {
	var snapshot LiveSnapshot
	if err := c.getJSON(ctx, "/api/live/snapshot", &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// FetchChatHistory fetches stored messages for one chat session.
func (c *Client) FetchChatHistory(ctx context.Context, sessionID string) ([]MessageSnapshot, error) {
	var history []MessageSnapshot
	path := fmt.Sprintf("/api/chat/%s/history", url.PathEscape(sessionID))
	if err := c.getJSON(ctx, path, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// ListChannels lists the channels known to the backend.
func (c *Client) ListChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	if err := c.getJSON(ctx, "/api/channels", &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// ListAgents lists agent configurations.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	if err := c.getJSON(ctx, "/api/agents", &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// PostChatMessage submits one user message and returns the streaming
// response body carrying the turn's event frames. The caller owns the
// body and must close it.
func (c *Client) PostChatMessage(ctx context.Context, sessionID, content string) (io.ReadCloser, error) {
	reqBody, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/chat/%s/messages", c.baseURL, url.PathEscape(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp.Body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// statusError derives an error from a non-success response, preferring
// a JSON error body when the server sent one.
func statusError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var errorResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errorResp) == nil && errorResp.Error != "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, errorResp.Error)
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, trimmed)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
