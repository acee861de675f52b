// Package nlparse turns free-text task descriptions into structured
// task fields via the OpenAI chat-completions API. There is no local
// date-parsing fallback; the model does all interpretation.
package nlparse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	openaiBaseURL      = "https://api.openai.com/v1/chat/completions"
	openaiModel        = "gpt-4o-mini"
	openaiMaxRetries   = 3
	openaiInitialDelay = 1 * time.Second
)

const systemPrompt = `You convert a task description into JSON with fields:
"title" (string, the task with date/urgency phrases removed),
"due_date" (string, RFC3339 or YYYY-MM-DD, or null when no date is implied),
"urgency" (number 1-5, default 3).
Today's date is %s. Respond with JSON only.`

// ParsedTask is the structured result of parsing a task description
type ParsedTask struct {
	Title   string     `json:"title"`
	DueDate *time.Time `json:"due_date,omitempty"`
	Urgency float64    `json:"urgency"`
}

// Client calls the OpenAI chat-completions endpoint
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	now     func() time.Time
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
	Temperature    float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openaiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// rawParsed matches the model's JSON before due-date interpretation
type rawParsed struct {
	Title   string   `json:"title"`
	DueDate *string  `json:"due_date"`
	Urgency *float64 `json:"urgency"`
}

// NewClient creates a parsing client. Empty baseURL and model fall back
// to the OpenAI defaults.
func NewClient(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = openaiBaseURL
	}
	if model == "" {
		model = openaiModel
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
		now:     time.Now,
	}
}

// Parse sends the task description to the model and decodes the result
func (c *Client) Parse(ctx context.Context, input string) (*ParsedTask, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("no input provided")
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(systemPrompt, c.now().Format("2006-01-02"))},
			{Role: "user", Content: input},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Retry with exponential backoff
	var lastErr error
	for attempt := 0; attempt < openaiMaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			delay := time.Duration(math.Pow(2, float64(attempt))) * openaiInitialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var apiErr openaiError
			if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
				lastErr = fmt.Errorf("OpenAI API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
			} else {
				lastErr = fmt.Errorf("OpenAI API error (%d): %s", resp.StatusCode, string(respBody))
			}

			// Retry on rate limit (429) or server errors (5xx)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}

			// Don't retry on client errors (4xx except 429)
			return nil, lastErr
		}

		var chatResp chatResponse
		if err := json.Unmarshal(respBody, &chatResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if len(chatResp.Choices) == 0 {
			return nil, fmt.Errorf("no completion returned")
		}

		return c.decode(chatResp.Choices[0].Message.Content, input)
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", openaiMaxRetries, lastErr)
}

// decode interprets the model's JSON payload into a ParsedTask
func (c *Client) decode(content, input string) (*ParsedTask, error) {
	var raw rawParsed
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}

	parsed := &ParsedTask{
		Title:   strings.TrimSpace(raw.Title),
		Urgency: 3,
	}
	if parsed.Title == "" {
		parsed.Title = input
	}
	if raw.Urgency != nil {
		parsed.Urgency = clamp(*raw.Urgency, 1, 5)
	}

	if raw.DueDate != nil && *raw.DueDate != "" {
		due, err := parseDueDate(*raw.DueDate, c.now())
		if err != nil {
			return nil, fmt.Errorf("model returned unparseable due date %q: %w", *raw.DueDate, err)
		}
		parsed.DueDate = &due
	}

	return parsed, nil
}

// parseDueDate accepts RFC3339 or a bare date. Bare dates get a 09:00
// local-time reminder anchor, matching how the app schedules them.
func parseDueDate(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t.Add(9 * time.Hour), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
