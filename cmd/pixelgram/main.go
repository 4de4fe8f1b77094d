package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pixelgram/internal/config"
	"pixelgram/internal/constants"
	"pixelgram/internal/service"
	"pixelgram/internal/tracing"
	"pixelgram/pkg/pixeldrain"
	"pixelgram/pkg/telegram"

	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging (includes sensitive information)")
	configPath = flag.String("config", "config.json", "Path to configuration file")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("Pixelgram %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
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
	}).Info("Starting Pixelgram")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.Info("Verbose logging enabled - sensitive information will be logged")
	} else if cfg.LogLevel != "" {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
			logger.SetLevel(logrus.InfoLevel)
		} else {
			if level > logrus.InfoLevel {
				level = logrus.InfoLevel
			}
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	logger.WithField("app_id", maskSecret(cfg.Telegram.AppID)).Info("Application identity loaded")

	// Initialize OpenTelemetry tracing
	tracingManager := tracing.NewManager(cfg.Tracing, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	storeClient := pixeldrain.NewClientWithLogger(pixeldrain.ClientConfig{
		BaseURL:       cfg.Store.BaseURL,
		APIKey:        cfg.Store.APIKey,
		UploadTimeout: time.Duration(cfg.Store.UploadTimeoutSec) * time.Second,
		ListTimeout:   time.Duration(cfg.Store.ListTimeoutSec) * time.Second,
	}, logger)

	transport, err := telegram.NewTransport(telegram.TransportConfig{
		BotToken:        cfg.Telegram.BotToken,
		DownloadDir:     cfg.Telegram.DownloadDir,
		DownloadTimeout: time.Duration(cfg.Store.DownloadTimeoutSec) * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram transport: %w", err)
	}
	logger.WithField("bot", transport.Self()).Info("Telegram transport initialized")

	pending := service.NewPendingActions(time.Duration(cfg.Batch.PendingTTLMin) * time.Minute)
	uploader := service.NewUploadService(transport, storeClient, logger)
	aggregator := service.NewAggregator(
		ctx,
		time.Duration(cfg.Batch.DebounceMs)*time.Millisecond,
		uploader,
		transport,
		pending,
		storeClient,
		logger,
	)
	defer aggregator.Stop()

	actions := service.NewActionService(pending, storeClient, transport, logger)

	sweeper := service.NewSweeper(pending, time.Duration(cfg.Batch.SweepIntervalMin)*time.Minute, logger)
	go sweeper.Start(ctx)
	defer sweeper.Stop()

	dispatcher := telegram.NewDispatcher(transport, aggregator, actions, cfg.Telegram.PollTimeoutSec, logger)
	dispatcherErrCh := make(chan error, 1)
	go func() {
		if err := dispatcher.Start(ctx); err != nil {
			dispatcherErrCh <- fmt.Errorf("dispatcher error: %w", err)
		}
	}()

	server := NewServer(cfg.Server, logger)
	serverErrCh := make(chan error, constants.ServerErrorChannelSize)
	go func() {
		if err := server.Start(); err != nil {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-dispatcherErrCh:
		logger.Error(err)
		return err
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.DefaultGracefulShutdownSec)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	logger.Info("Server shutdown completed")
	return nil
}

// maskSecret hides all but the last few characters of a credential for logging.
func maskSecret(secret string) string {
	if len(secret) <= constants.DefaultSecretMaskLength {
		return strings.Repeat("*", len(secret))
	}
	visible := secret[len(secret)-constants.DefaultSecretMaskLength:]
	return strings.Repeat("*", len(secret)-constants.DefaultSecretMaskLength) + visible
}
