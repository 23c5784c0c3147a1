package constants

// Default network configuration values
const (
	DefaultForegroundIP   = "127.0.0.1"
	DefaultForegroundPort = 8000
	DefaultBackgroundIP   = "0.0.0.0"
	DefaultBackgroundPort = 8080
)

// Default delivery retry values
const (
	DefaultSendRetryNum      = 3
	DefaultSendRetrySleepSec = 5
	DefaultSendRetryWaitSec  = 30

	// QueuePollIntervalSec is the idle pause between full queue passes.
	QueuePollIntervalSec = 5
)

// Default persistence file names, relative to the working directory
const (
	DefaultQueueFile = "message_queue.json"
	DefaultSentFile  = "message_sent.json"
)

// Default timeout values
const (
	DefaultHTTPTimeoutSec        = 30
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultGracefulShutdownSec   = 30
)

// Default rate limiting values
const (
	DefaultRateLimitRequests  = 100
	DefaultRateLimitWindowSec = 60
)

// MaxWebhookBodyBytes caps inbound webhook payload size.
const MaxWebhookBodyBytes = 1 << 20
