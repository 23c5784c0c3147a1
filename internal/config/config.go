package config

import (
	"encoding/json"
	"fmt"
	"os"

	"chatrelay/internal/constants"
	"chatrelay/internal/models"
	"chatrelay/internal/security"
)

var (
	ErrMissingWebhookSecret = models.ConfigError{Message: "missing webhook secret"}
	ErrNoPlatformConfigured = models.ConfigError{Message: "at least one platform (telegram or discord) must be configured"}
)

// LoadConfig reads, validates and defaults the JSON configuration file.
func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - Path validated above
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(c *models.Config) error {
	if c.WebhookSecret == "" {
		return ErrMissingWebhookSecret
	}

	telegramSet := c.Telegram != (models.TelegramConfig{})
	discordSet := c.Discord != (models.DiscordConfig{})
	if !telegramSet && !discordSet {
		return ErrNoPlatformConfigured
	}
	if telegramSet {
		if c.Telegram.APIURL == "" || c.Telegram.APIKey == "" || c.Telegram.ChatID == "" {
			return models.ConfigError{Message: "telegram config requires api_url, api_key and chat_id"}
		}
	}
	if discordSet {
		if c.Discord.APIURL == "" || c.Discord.BotToken == "" || c.Discord.ChannelID == "" {
			return models.ConfigError{Message: "discord config requires api_url, bot_token and channel_id"}
		}
	}

	if c.Email.Enable {
		if c.Email.Server == "" || c.Email.Port == 0 || c.Email.Sender == "" || c.Email.Recipient == "" {
			return models.ConfigError{Message: "email alerting requires server, port, sender and recipient"}
		}
	}

	applyDefaults(c)

	if err := security.ValidateFilePath(c.Queue.QueueFile); err != nil {
		return models.ConfigError{Message: fmt.Sprintf("invalid queue file path: %v", err)}
	}
	if err := security.ValidateFilePath(c.Queue.SentFile); err != nil {
		return models.ConfigError{Message: fmt.Sprintf("invalid sent file path: %v", err)}
	}

	return nil
}

func applyDefaults(c *models.Config) {
	if c.Network.ForegroundIP == "" {
		c.Network.ForegroundIP = constants.DefaultForegroundIP
	}
	if c.Network.ForegroundPort == 0 {
		c.Network.ForegroundPort = constants.DefaultForegroundPort
	}
	if c.Network.BackgroundIP == "" {
		c.Network.BackgroundIP = constants.DefaultBackgroundIP
	}
	if c.Network.BackgroundPort == 0 {
		c.Network.BackgroundPort = constants.DefaultBackgroundPort
	}

	if c.Retry.SendRetryNum <= 0 {
		c.Retry.SendRetryNum = constants.DefaultSendRetryNum
	}
	if c.Retry.SendRetrySleepSec <= 0 {
		c.Retry.SendRetrySleepSec = constants.DefaultSendRetrySleepSec
	}
	if c.Retry.SendRetryWaitSec <= 0 {
		c.Retry.SendRetryWaitSec = constants.DefaultSendRetryWaitSec
	}

	if c.Queue.QueueFile == "" {
		c.Queue.QueueFile = constants.DefaultQueueFile
	}
	if c.Queue.SentFile == "" {
		c.Queue.SentFile = constants.DefaultSentFile
	}

	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec <= 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}

	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = constants.DefaultRateLimitRequests
	}
	if c.RateLimit.WindowSec <= 0 {
		c.RateLimit.WindowSec = constants.DefaultRateLimitWindowSec
	}
}

func applyEnvironmentOverrides(c *models.Config) {
	// Secrets are overridable from the environment so config files can be
	// committed without credentials.
	if secret := os.Getenv("CHATRELAY_WEBHOOK_SECRET"); secret != "" {
		c.WebhookSecret = secret
	}
	if key := os.Getenv("TELEGRAM_API_KEY"); key != "" {
		c.Telegram.APIKey = key
	}
	if token := os.Getenv("DISCORD_BOT_TOKEN"); token != "" {
		c.Discord.BotToken = token
	}
}
