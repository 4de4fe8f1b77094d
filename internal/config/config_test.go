package config

import (
	"encoding/json"
	"os"
	"testing"

	"pixelgram/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_APP_ID", "12345")
	t.Setenv("TELEGRAM_APP_HASH", "hash-value")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-value")
	t.Setenv("PIXELDRAIN_API_KEY", "key-value")
	t.Setenv("STORE_BASE_URL", "")
	t.Setenv("DOWNLOAD_DIR", "")
}

// chdir switches to dir for the duration of the test (t.Chdir needs Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

// Config paths must be relative, so tests run from a temp working directory.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("config.json", []byte(content), 0600))
	return "config.json"
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfigFile(t, `{"telegram": {"download_dir": "/tmp/attachments"}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultStoreBaseURL, cfg.Store.BaseURL)
	assert.Equal(t, constants.DefaultBatchDebounceMs, cfg.Batch.DebounceMs)
	assert.Equal(t, constants.DefaultPendingTTLMin, cfg.Batch.PendingTTLMin)
	assert.Equal(t, constants.DefaultSweepIntervalMin, cfg.Batch.SweepIntervalMin)
	assert.Equal(t, constants.DefaultUploadTimeoutSec, cfg.Store.UploadTimeoutSec)
	assert.Equal(t, constants.DefaultListTimeoutSec, cfg.Store.ListTimeoutSec)
	assert.Equal(t, constants.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, constants.DefaultPollTimeoutSec, cfg.Telegram.PollTimeoutSec)
}

func TestLoadConfig_CredentialsComeFromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfigFile(t, `{
		"telegram": {"download_dir": "/tmp/attachments", "botToken": "from-file"},
		"store": {"apiKey": "from-file"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "token-value", cfg.Telegram.BotToken, "file-provided tokens must be ignored")
	assert.Equal(t, "key-value", cfg.Store.APIKey)
	assert.Equal(t, "12345", cfg.Telegram.AppID)
	assert.Equal(t, "hash-value", cfg.Telegram.AppHash)
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantErr error
	}{
		{"app id", "TELEGRAM_APP_ID", ErrMissingAppID},
		{"app hash", "TELEGRAM_APP_HASH", ErrMissingAppHash},
		{"bot token", "TELEGRAM_BOT_TOKEN", ErrMissingBotToken},
		{"store key", "PIXELDRAIN_API_KEY", ErrMissingStoreKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")
			path := writeConfigFile(t, `{"telegram": {"download_dir": "/tmp/attachments"}}`)

			_, err := LoadConfig(path)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestLoadConfig_MissingDownloadDir(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfigFile(t, `{}`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download directory")
}

func TestLoadConfig_DownloadDirFromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DOWNLOAD_DIR", "/var/lib/attachments")
	path := writeConfigFile(t, `{}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/attachments", cfg.Telegram.DownloadDir)
}

func TestLoadConfig_StoreBaseURLOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORE_BASE_URL", "https://store.example.com")
	path := writeConfigFile(t, `{"telegram": {"download_dir": "/tmp/attachments"}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://store.example.com", cfg.Store.BaseURL)
}

func TestLoadConfig_NegativeUploadTimeoutRejected(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfigFile(t, `{
		"telegram": {"download_dir": "/tmp/attachments"},
		"store": {"uploadTimeoutSec": -1}
	}`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uploadTimeoutSec")
}

func TestLoadConfig_ZeroUploadTimeoutMeansUnlimited(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfigFile(t, `{
		"telegram": {"download_dir": "/tmp/attachments"},
		"store": {"uploadTimeoutSec": 0}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Store.UploadTimeoutSec)
}

func TestLoadConfig_ExplicitValuesKept(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfigFile(t, `{
		"telegram": {"download_dir": "/tmp/attachments", "pollTimeoutSec": 60},
		"batch": {"debounceMs": 5000, "pendingTTLMin": 5},
		"store": {"listTimeoutSec": 10},
		"server": {"port": 9090}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Batch.DebounceMs)
	assert.Equal(t, 5, cfg.Batch.PendingTTLMin)
	assert.Equal(t, 10, cfg.Store.ListTimeoutSec)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Telegram.PollTimeoutSec)
}

func TestLoadConfig_FileMissing(t *testing.T) {
	setRequiredEnv(t)
	chdir(t, t.TempDir())

	_, err := LoadConfig("absent.json")
	assert.Error(t, err)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfigFile(t, `{not json`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_PathTraversalRejected(t *testing.T) {
	setRequiredEnv(t)

	_, err := LoadConfig("../../etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config path")
}

func TestLoadConfig_SecretsNotSerialized(t *testing.T) {
	setRequiredEnv(t)
	path := writeConfigFile(t, `{"telegram": {"download_dir": "/tmp/attachments"}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// json:"-" keeps credentials out of any marshalled output
	serialized, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(serialized), "token-value")
	assert.NotContains(t, string(serialized), "key-value")
	assert.NotContains(t, string(serialized), "hash-value")
}
