// Package discord is a minimal Discord REST client covering message
// delivery to a single channel.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Client sends messages through the Discord channel messages API.
type Client interface {
	Send(ctx context.Context, content string) error
}

type discordClient struct {
	apiURL    string
	botToken  string
	channelID string
	client    *http.Client
	logger    *logrus.Logger
}

type createMessageRequest struct {
	Content string `json:"content"`
}

// NewClient creates a Discord client for one channel. apiURL is the API
// root (e.g. https://discord.com/api/v10).
func NewClient(apiURL, botToken, channelID string, httpClient *http.Client, logger *logrus.Logger) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	return &discordClient{
		apiURL:    strings.TrimSuffix(apiURL, "/"),
		botToken:  botToken,
		channelID: channelID,
		client:    httpClient,
		logger:    logger,
	}
}

// Send posts content to the configured channel.
func (c *discordClient) Send(ctx context.Context, content string) error {
	jsonData, err := json.Marshal(createMessageRequest{Content: content})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/channels/%s/messages", c.apiURL, c.channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.botToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("discord API error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	c.logger.WithField("channel_id", c.channelID).Debug("Discord message delivered")
	return nil
}
