package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatrelay/internal/alert"
	"chatrelay/internal/config"
	"chatrelay/internal/constants"
	"chatrelay/internal/models"
	"chatrelay/internal/privacy"
	"chatrelay/internal/queue"
	"chatrelay/internal/tracing"
	"chatrelay/internal/worker"
	"chatrelay/pkg/discord"
	"chatrelay/pkg/telegram"

	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	configPath = flag.String("config", "config.json", "Path to configuration file")
	foreground = flag.Bool("fg", false, "Bind to the foreground address instead of the background one")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("chatrelay %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting chatrelay")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	configureLogLevel(logger, cfg)

	tracingManager := tracing.NewManager(cfg.Tracing, Version, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	store, err := queue.NewStore(cfg.Queue.QueueFile, cfg.Queue.SentFile)
	if err != nil {
		return fmt.Errorf("failed to initialize message store: %w", err)
	}

	httpClient := &http.Client{Timeout: constants.DefaultHTTPTimeoutSec * time.Second}
	senders := buildSenders(cfg, httpClient, logger)

	alerter := alert.NewEmailAlerter(cfg.Email, logger)
	deliveryWorker := worker.New(store, senders, alerter, cfg.Retry, logger)
	go deliveryWorker.Run(ctx)

	server := NewServer(cfg, store, logger)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(*foreground); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultGracefulShutdownSec*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	logger.Info("Server shutdown completed")
	return nil
}

func configureLogLevel(logger *logrus.Logger, cfg *models.Config) {
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.Info("Verbose logging enabled")
		return
	}
	if cfg.LogLevel == "" {
		logger.SetLevel(logrus.InfoLevel)
		return
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// buildSenders wires an outbound client for every platform with
// credentials in config. Messages queued for a platform missing here fail
// every delivery attempt and alert each pass.
func buildSenders(cfg *models.Config, httpClient *http.Client, logger *logrus.Logger) map[models.Platform]worker.Sender {
	senders := make(map[models.Platform]worker.Sender)

	if cfg.Telegram != (models.TelegramConfig{}) {
		senders[models.PlatformTelegram] = telegram.NewClient(
			cfg.Telegram.APIURL, cfg.Telegram.APIKey, cfg.Telegram.ChatID, httpClient, logger)
		logger.WithFields(logrus.Fields{
			"api_key": privacy.MaskToken(cfg.Telegram.APIKey),
			"chat_id": cfg.Telegram.ChatID,
		}).Info("Telegram sender configured")
	}
	if cfg.Discord != (models.DiscordConfig{}) {
		senders[models.PlatformDiscord] = discord.NewClient(
			cfg.Discord.APIURL, cfg.Discord.BotToken, cfg.Discord.ChannelID, httpClient, logger)
		logger.WithFields(logrus.Fields{
			"bot_token":  privacy.MaskToken(cfg.Discord.BotToken),
			"channel_id": cfg.Discord.ChannelID,
		}).Info("Discord sender configured")
	}

	return senders
}
