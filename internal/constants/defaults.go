package constants

// Default scheduler configuration values
const (
	DefaultPollIntervalSec      = 30
	DefaultCleanupIntervalHours = 24
	DefaultRetentionDays        = 90
	DefaultServerPort           = 8082
)

// Default retry configuration values
const (
	DefaultRetryBackoffMs        = 1000
	DefaultMaxBackoffMs          = 60000
	DefaultMaxAttempts           = 5
	DefaultDatabaseRetryAttempts = 3
	// Gateway sends are single-shot unless retries are configured.
	DefaultGatewayRetryCount = 1
)

// Default timeout values
const (
	DefaultHTTPTimeoutSec         = 30
	DefaultGracefulShutdownSec    = 30
	DefaultSessionReadyTimeoutSec = 30
	DefaultServerReadTimeoutSec   = 15
	DefaultServerWriteTimeoutSec  = 15
	DefaultServerIdleTimeoutSec   = 60
)

// Encryption salts. The lookup salt must stay stable across releases or
// previously stored rows become unreadable.
const (
	EncryptionSalt       = "invoicewa-db-encryption-v1"
	EncryptionLookupSalt = "invoicewa-lookup-v1"
)

// DefaultSessionName matches the WAHA gateway's default session.
const DefaultSessionName = "default"

const ServerErrorChannelSize = 1
