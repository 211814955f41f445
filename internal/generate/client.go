// Package generate drafts candidate step titles from a free-text prompt
// using an external language model. Output is candidate text only; callers
// always run it back through the sanitizer before it touches the checklist.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// anthropicAPIURL is the Anthropic Messages API endpoint.
	anthropicAPIURL = "https://api.anthropic.com/v1/messages"

	// defaultModel is the Claude model used for drafting steps.
	defaultModel = "claude-3-haiku-20240307"

	// defaultMaxItems caps the number of candidate titles per request.
	defaultMaxItems = 10

	// defaultTimeout is the API request timeout.
	defaultTimeout = 15 * time.Second
)

// draftPrompt asks for plain newline-separated titles so parsing stays
// trivial and a partially garbled response still yields usable candidates.
const draftPrompt = `Draft up to %d short checklist step titles for this goal.

Rules:
1. One step per line, nothing else (no numbering, no bullets, no quotes)
2. Each step starts with a verb and stays under 60 characters
3. Order steps roughly in the sequence they would be done
4. Do not repeat any of these existing steps:
%s

Goal: %s`

// Generator turns a prompt into candidate step titles.
type Generator interface {
	Generate(ctx context.Context, prompt string, existingTitles []string) ([]string, error)
}

// AnthropicClient implements Generator using the Anthropic Messages API.
type AnthropicClient struct {
	apiKey     string
	model      string
	maxItems   int
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures an AnthropicClient.
type ClientOption func(*AnthropicClient)

// WithModel sets the model used for drafting.
func WithModel(model string) ClientOption {
	return func(c *AnthropicClient) {
		c.model = model
	}
}

// WithMaxItems caps the number of candidates per request.
func WithMaxItems(n int) ClientOption {
	return func(c *AnthropicClient) {
		if n > 0 {
			c.maxItems = n
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *AnthropicClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL overrides the API endpoint (tests).
func WithBaseURL(url string) ClientOption {
	return func(c *AnthropicClient) {
		c.baseURL = url
	}
}

// NewAnthropicClient creates a client using STEPWISE_ANTHROPIC_API_KEY (or
// ANTHROPIC_API_KEY). The key is held for the process only; it is never
// persisted anywhere.
func NewAnthropicClient(opts ...ClientOption) (*AnthropicClient, error) {
	apiKey := strings.TrimSpace(os.Getenv("STEPWISE_ANTHROPIC_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("STEPWISE_ANTHROPIC_API_KEY (or ANTHROPIC_API_KEY) environment variable not set")
	}

	c := &AnthropicClient{
		apiKey:   apiKey,
		model:    defaultModel,
		maxItems: defaultMaxItems,
		baseURL:  anthropicAPIURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// messagesRequest is the Anthropic Messages API request structure.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic Messages API response structure.
type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Generate drafts candidate titles for the prompt. Failures (network, auth,
// malformed or empty response) come back as errors and never mutate
// anything; the caller may simply retry.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string, existingTitles []string) ([]string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt is empty")
	}

	existing := "(none)"
	if len(existingTitles) > 0 {
		existing = "- " + strings.Join(existingTitles, "\n- ")
	}

	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []message{
			{Role: "user", Content: fmt.Sprintf(draftPrompt, c.maxItems, existing, prompt)},
		},
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var respData messagesResponse
	if err := json.Unmarshal(body, &respData); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if respData.Error != nil {
		return nil, fmt.Errorf("API error: %s", respData.Error.Message)
	}

	if len(respData.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	titles := ParseTitles(respData.Content[0].Text, existingTitles, c.maxItems)
	if len(titles) == 0 {
		return nil, fmt.Errorf("API returned no usable step titles")
	}

	return titles, nil
}

// ParseTitles extracts candidate titles from raw model output: one per
// line, bullets/numbering/quotes stripped, de-duplicated case-insensitively
// against existing titles and within the batch, capped at max.
func ParseTitles(raw string, existingTitles []string, max int) []string {
	if max <= 0 {
		max = defaultMaxItems
	}
	seen := map[string]bool{}
	for _, t := range existingTitles {
		seen[strings.ToLower(strings.TrimSpace(t))] = true
	}

	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•")
		line = trimListNumber(line)
		line = strings.Trim(strings.TrimSpace(line), "\"'`")
		if line == "" {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, line)
		if len(out) >= max {
			break
		}
	}
	return out
}

func trimListNumber(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) {
		return s
	}
	if s[i] == '.' || s[i] == ')' {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
