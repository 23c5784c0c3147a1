// Package telegram is a minimal Telegram Bot API client covering message
// delivery to a single chat.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Client sends messages through the Telegram Bot API.
type Client interface {
	Send(ctx context.Context, text string) error
}

type telegramClient struct {
	apiURL string
	apiKey string
	chatID string
	client *http.Client
	logger *logrus.Logger
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// NewClient creates a Telegram client. apiURL is the API root including a
// trailing slash (e.g. https://api.telegram.org/); the bot token path
// segment is appended per request.
func NewClient(apiURL, apiKey, chatID string, httpClient *http.Client, logger *logrus.Logger) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	return &telegramClient{
		apiURL: apiURL,
		apiKey: apiKey,
		chatID: chatID,
		client: httpClient,
		logger: logger,
	}
}

// Send posts text to the configured chat. Messages are parsed as literal
// Markdown on the Telegram side; callers are responsible for escaping.
func (c *telegramClient) Send(ctx context.Context, text string) error {
	payload := sendMessageRequest{
		ChatID:                c.chatID,
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%sbot%s/sendMessage", c.apiURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	c.logger.WithField("chat_id", c.chatID).Debug("Telegram message delivered")
	return nil
}
