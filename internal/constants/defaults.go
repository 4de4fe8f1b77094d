package constants

// Default batching configuration values
const (
	DefaultBatchDebounceMs     = 3500
	DefaultPendingTTLMin       = 30
	DefaultSweepIntervalMin    = 10
	ServerErrorChannelSize     = 1
	DefaultGracefulShutdownSec = 10
)

// Default remote store configuration values
const (
	DefaultStoreBaseURL       = "https://pixeldrain.com"
	DefaultListTimeoutSec     = 30
	DefaultUploadTimeoutSec   = 0 // no caller-imposed timeout on blob uploads
	DefaultDownloadTimeoutSec = 60
)

// Default transport configuration values
const (
	DefaultPollTimeoutSec = 30
	DefaultServerPort     = 8082
)

// Default server timeout values
const (
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
)

// Privacy settings
const (
	DefaultSecretMaskLength = 4
)
