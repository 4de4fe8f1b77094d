package models

// Config holds the application configuration
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Store    StoreConfig    `json:"store"`
	Batch    BatchConfig    `json:"batch"`
	Server   ServerConfig   `json:"server"`
	Tracing  TracingConfig  `json:"tracing"`
	LogLevel string         `json:"log_level"`
}

// TelegramConfig holds messaging transport related configuration.
// AppID, AppHash, and BotToken are secrets and are populated only from the
// environment, never from the config file.
type TelegramConfig struct {
	AppID          string `json:"-"`
	AppHash        string `json:"-"`
	BotToken       string `json:"-"`
	DownloadDir    string `json:"download_dir"`
	PollTimeoutSec int    `json:"pollTimeoutSec"`
}

// StoreConfig holds remote file store related configuration.
// APIKey is populated only from the environment.
type StoreConfig struct {
	BaseURL            string `json:"base_url"`
	APIKey             string `json:"-"`
	UploadTimeoutSec   int    `json:"uploadTimeoutSec"`
	ListTimeoutSec     int    `json:"listTimeoutSec"`
	DownloadTimeoutSec int    `json:"downloadTimeoutSec"`
}

// BatchConfig holds batch aggregation related configuration
type BatchConfig struct {
	DebounceMs       int `json:"debounceMs"`
	PendingTTLMin    int `json:"pendingTTLMin"`
	SweepIntervalMin int `json:"sweepIntervalMin"`
}

// ServerConfig holds the health/metrics HTTP server configuration
type ServerConfig struct {
	Port            int `json:"port"`
	ReadTimeoutSec  int `json:"readTimeoutSec"`
	WriteTimeoutSec int `json:"writeTimeoutSec"`
	IdleTimeoutSec  int `json:"idleTimeoutSec"`
}

// TracingConfig holds OpenTelemetry related configuration
type TracingConfig struct {
	Enabled        bool    `json:"enabled"`
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	UseStdout      bool    `json:"use_stdout"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
