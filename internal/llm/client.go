// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the Claude Messages API for the triage and analysis
// stages. Both stages share one Backend abstraction so tests can supply
// mocks and so retry behavior lives in one place.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/pdiddy/paperflow/pkg/types"
)

// Backend abstracts a single-turn completion call against a language
// model. Implementations must be safe for sequential reuse.
type Backend interface {
	// Complete sends one system prompt and one user message and returns
	// the model's text response.
	Complete(ctx context.Context, system, user string) (string, error)
}

// apiURL is the Claude API endpoint. Package-level var for test substitution.
var apiURL = "https://api.anthropic.com/v1/messages"

// backoffBase controls the base duration for retry backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

const defaultMaxTokens = 4096

// Client calls the Claude Messages API.
type Client struct {
	cfg    types.AIConfig
	client *http.Client
}

// NewClient builds a Client from stage AI settings. A nil httpClient
// falls back to http.DefaultClient.
func NewClient(cfg types.AIConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, client: httpClient}
}

// request is the body for the Claude Messages API.
type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

// message is a single message in the conversation.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// response is the body returned by the Claude Messages API.
type response struct {
	Content []contentBlock `json:"content"`
}

// contentBlock is one block in the API response.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends the prompt and retries transient failures with
// exponential backoff before giving up.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	maxRetries := c.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := c.complete(ctx, system, user)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	reqBody := request{
		Model:     c.cfg.Model,
		MaxTokens: defaultMaxTokens,
		System:    system,
		Messages: []message{
			{Role: "user", Content: user},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp response
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}

// ExtractJSON locates the outermost JSON object in a model response.
// Models occasionally wrap the requested JSON in prose; parsing only the
// braced span keeps malformed framing from failing the whole call.
func ExtractJSON(text string) (string, bool) {
	start := -1
	depth := 0
	for i, r := range text {
		switch r {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}
	return "", false
}
