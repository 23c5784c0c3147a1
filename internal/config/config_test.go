package config

import (
	"os"
	"path/filepath"
	"testing"

	"chatrelay/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `{
	"webhook_secret": "s3cret",
	"telegram": {
		"api_url": "https://api.telegram.org/",
		"api_key": "bot-key",
		"chat_id": "12345"
	},
	"discord": {
		"api_url": "https://discord.com/api/v10",
		"bot_token": "token",
		"channel_id": "67890"
	}
}`

func TestLoadConfigValid(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.WebhookSecret)
	assert.Equal(t, "https://api.telegram.org/", cfg.Telegram.APIURL)
	assert.Equal(t, "12345", cfg.Telegram.ChatID)
	assert.Equal(t, "67890", cfg.Discord.ChannelID)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultForegroundIP, cfg.Network.ForegroundIP)
	assert.Equal(t, constants.DefaultForegroundPort, cfg.Network.ForegroundPort)
	assert.Equal(t, constants.DefaultBackgroundIP, cfg.Network.BackgroundIP)
	assert.Equal(t, constants.DefaultBackgroundPort, cfg.Network.BackgroundPort)
	assert.Equal(t, constants.DefaultSendRetryNum, cfg.Retry.SendRetryNum)
	assert.Equal(t, constants.DefaultSendRetrySleepSec, cfg.Retry.SendRetrySleepSec)
	assert.Equal(t, constants.DefaultSendRetryWaitSec, cfg.Retry.SendRetryWaitSec)
	assert.Equal(t, constants.DefaultQueueFile, cfg.Queue.QueueFile)
	assert.Equal(t, constants.DefaultSentFile, cfg.Queue.SentFile)
	assert.Equal(t, constants.DefaultRateLimitRequests, cfg.RateLimit.Requests)
}

func TestLoadConfigRetryOverrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{
		"webhook_secret": "s",
		"telegram": {"api_url": "u/", "api_key": "k", "chat_id": "c"},
		"retry": {"send_retry_num": 7, "send_retry_sleep": 2, "send_retry_wait": 11}
	}`))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Retry.SendRetryNum)
	assert.Equal(t, 2, cfg.Retry.SendRetrySleepSec)
	assert.Equal(t, 11, cfg.Retry.SendRetryWaitSec)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing webhook secret",
			content: `{"telegram": {"api_url": "u/", "api_key": "k", "chat_id": "c"}}`,
			errMsg:  "missing webhook secret",
		},
		{
			name:    "no platform configured",
			content: `{"webhook_secret": "s"}`,
			errMsg:  "at least one platform",
		},
		{
			name:    "incomplete telegram config",
			content: `{"webhook_secret": "s", "telegram": {"api_url": "u/"}}`,
			errMsg:  "telegram config requires",
		},
		{
			name:    "incomplete discord config",
			content: `{"webhook_secret": "s", "discord": {"bot_token": "t"}}`,
			errMsg:  "discord config requires",
		},
		{
			name: "email enabled without transport",
			content: `{
				"webhook_secret": "s",
				"telegram": {"api_url": "u/", "api_key": "k", "chat_id": "c"},
				"email": {"enable": true}
			}`,
			errMsg: "email alerting requires",
		},
		{
			name:    "malformed json",
			content: `{`,
			errMsg:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("CHATRELAY_WEBHOOK_SECRET", "env-secret")
	t.Setenv("TELEGRAM_API_KEY", "env-key")
	t.Setenv("DISCORD_BOT_TOKEN", "env-token")

	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.WebhookSecret)
	assert.Equal(t, "env-key", cfg.Telegram.APIKey)
	assert.Equal(t, "env-token", cfg.Discord.BotToken)
}

func TestLoadConfigEnvSecretSatisfiesValidation(t *testing.T) {
	t.Setenv("CHATRELAY_WEBHOOK_SECRET", "env-secret")

	cfg, err := LoadConfig(writeConfig(t, `{
		"telegram": {"api_url": "u/", "api_key": "k", "chat_id": "c"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.WebhookSecret)
}

func TestLoadConfigRejectsTraversalPath(t *testing.T) {
	_, err := LoadConfig("../../etc/config.json")
	assert.Error(t, err)
}
