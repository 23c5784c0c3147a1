package models

// Config holds the application configuration
type Config struct {
	Telegram      TelegramConfig  `json:"telegram"`
	Discord       DiscordConfig   `json:"discord"`
	WebhookSecret string          `json:"webhook_secret"`
	Network       NetworkConfig   `json:"network"`
	Retry         RetryConfig     `json:"retry"`
	Email         EmailConfig     `json:"email"`
	Queue         QueueConfig     `json:"queue"`
	Server        ServerConfig    `json:"server"`
	RateLimit     RateLimitConfig `json:"rate_limit"`
	Tracing       TracingConfig   `json:"tracing"`
	LogLevel      string          `json:"log_level"`
}

// TelegramConfig holds the Telegram Bot API credentials
type TelegramConfig struct {
	APIURL string `json:"api_url"`
	APIKey string `json:"api_key"`
	ChatID string `json:"chat_id"`
}

// DiscordConfig holds the Discord Bot API credentials
type DiscordConfig struct {
	APIURL    string `json:"api_url"`
	BotToken  string `json:"bot_token"`
	ChannelID string `json:"channel_id"`
}

// NetworkConfig holds the bind addresses for the two run modes
type NetworkConfig struct {
	ForegroundIP   string `json:"foreground_ip"`
	ForegroundPort int    `json:"foreground_port"`
	BackgroundIP   string `json:"background_ip"`
	BackgroundPort int    `json:"background_port"`
}

// RetryConfig holds the delivery retry parameters. Sleep and wait values
// are in seconds, matching the config file surface.
type RetryConfig struct {
	SendRetryNum      int `json:"send_retry_num"`
	SendRetrySleepSec int `json:"send_retry_sleep"`
	SendRetryWaitSec  int `json:"send_retry_wait"`
}

// EmailConfig holds the SMTP alert transport settings
type EmailConfig struct {
	Enable    bool   `json:"enable"`
	Server    string `json:"server"`
	Port      int    `json:"port"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
}

// QueueConfig holds the durable queue and sent-log file paths
type QueueConfig struct {
	QueueFile string `json:"queue_file"`
	SentFile  string `json:"sent_file"`
}

// ServerConfig holds HTTP server tuning
type ServerConfig struct {
	ReadTimeoutSec  int `json:"readTimeoutSec"`
	WriteTimeoutSec int `json:"writeTimeoutSec"`
	IdleTimeoutSec  int `json:"idleTimeoutSec"`
}

// RateLimitConfig holds per-IP webhook rate limiting
type RateLimitConfig struct {
	Requests  int `json:"requests"`
	WindowSec int `json:"windowSec"`
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled      bool    `json:"enabled"`
	UseStdout    bool    `json:"use_stdout"`
	OTLPEndpoint string  `json:"otlp_endpoint"`
	SampleRate   float64 `json:"sample_rate"`
	Environment  string  `json:"environment"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
