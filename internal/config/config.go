package config

import (
	"encoding/json"
	"fmt"
	"os"

	"pixelgram/internal/constants"
	"pixelgram/internal/models"
	"pixelgram/internal/security"
)

var (
	ErrMissingAppID    = models.ConfigError{Message: "missing application identity (set TELEGRAM_APP_ID)"}
	ErrMissingAppHash  = models.ConfigError{Message: "missing application secret (set TELEGRAM_APP_HASH)"}
	ErrMissingBotToken = models.ConfigError{Message: "missing bot token (set TELEGRAM_BOT_TOKEN)"}
	ErrMissingStoreKey = models.ConfigError{Message: "missing store credential (set PIXELDRAIN_API_KEY)"}
)

func LoadConfig(path string) (*models.Config, error) {
	// Validate config file path to prevent directory traversal
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - Path validated by security.ValidateFilePath above
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	// Overrides apply before validation so an env-provided download dir
	// satisfies the required-settings check.
	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	if err := validateCredentials(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(c *models.Config) error {
	if c.Store.BaseURL == "" {
		c.Store.BaseURL = constants.DefaultStoreBaseURL
	}
	if c.Telegram.DownloadDir == "" {
		return models.ConfigError{Message: "missing download directory"}
	}
	if c.Telegram.PollTimeoutSec <= 0 {
		c.Telegram.PollTimeoutSec = constants.DefaultPollTimeoutSec
	}

	if c.Batch.DebounceMs <= 0 {
		c.Batch.DebounceMs = constants.DefaultBatchDebounceMs
	}
	if c.Batch.PendingTTLMin <= 0 {
		c.Batch.PendingTTLMin = constants.DefaultPendingTTLMin
	}
	if c.Batch.SweepIntervalMin <= 0 {
		c.Batch.SweepIntervalMin = constants.DefaultSweepIntervalMin
	}

	if c.Store.UploadTimeoutSec < 0 {
		return models.ConfigError{Message: "uploadTimeoutSec must not be negative"}
	}
	if c.Store.ListTimeoutSec <= 0 {
		c.Store.ListTimeoutSec = constants.DefaultListTimeoutSec
	}
	if c.Store.DownloadTimeoutSec <= 0 {
		c.Store.DownloadTimeoutSec = constants.DefaultDownloadTimeoutSec
	}

	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
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

	return nil
}

func applyEnvironmentOverrides(c *models.Config) {
	// SECURITY: credentials are only ever read from the environment
	c.Telegram.AppID = os.Getenv("TELEGRAM_APP_ID")
	c.Telegram.AppHash = os.Getenv("TELEGRAM_APP_HASH")
	c.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	c.Store.APIKey = os.Getenv("PIXELDRAIN_API_KEY")

	if url := os.Getenv("STORE_BASE_URL"); url != "" {
		c.Store.BaseURL = url
	}
	if dir := os.Getenv("DOWNLOAD_DIR"); dir != "" {
		c.Telegram.DownloadDir = dir
	}
}

// validateCredentials enforces the four required settings; the process
// refuses to start when any of them is absent.
func validateCredentials(c *models.Config) error {
	if c.Telegram.AppID == "" {
		return ErrMissingAppID
	}
	if c.Telegram.AppHash == "" {
		return ErrMissingAppHash
	}
	if c.Telegram.BotToken == "" {
		return ErrMissingBotToken
	}
	if c.Store.APIKey == "" {
		return ErrMissingStoreKey
	}
	return nil
}
