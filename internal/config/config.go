package config

import "time"

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultRedisURL is empty; token revocation falls back to process memory.
	DefaultRedisURL = ""

	// DefaultTokenTTL is how long an issued access token stays valid.
	DefaultTokenTTL = 24 * time.Hour

	// DefaultTokenIssuer is written into the iss claim of every token.
	DefaultTokenIssuer = "taskdesk"

	// DefaultNotifyBuffer is the async notification queue size. Zero writes inline.
	DefaultNotifyBuffer = 256
)

// EnvFiles are loaded (when present) before flags are parsed.
var EnvFiles = []string{".env", ".env.local"}
