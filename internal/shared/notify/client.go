// Package notify posts operational events to a chat-group webhook
// (Lark/Feishu-style incoming bot). Delivery is best effort: a down
// webhook must never fail the business operation that triggered it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client posts JSON card payloads to one configured webhook URL.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient creates a webhook client. A zero timeout defaults to 5s.
func NewClient(webhookURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Message is a simple markdown-flavoured card.
type Message struct {
	Title  string
	Text   string
	Fields map[string]string
}

type webhookResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Send posts one message to the webhook.
func (c *Client) Send(ctx context.Context, msg Message) error {
	content := msg.Text
	for k, v := range msg.Fields {
		content += fmt.Sprintf("\n**%s**: %s", k, v)
	}

	payload := map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"header": map[string]interface{}{
				"title": map[string]interface{}{
					"tag":     "plain_text",
					"content": msg.Title,
				},
			},
			"elements": []map[string]interface{}{
				{
					"tag": "div",
					"text": map[string]interface{}{
						"tag":     "lark_md",
						"content": content,
					},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	var result webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// Some webhook gateways return an empty body on success.
		return nil
	}
	if result.Code != 0 {
		return fmt.Errorf("webhook error[%d]: %s", result.Code, result.Msg)
	}

	return nil
}
