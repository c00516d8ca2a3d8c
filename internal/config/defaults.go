package config

import (
	"time"

	"github.com/tonimelisma/datalake-api/internal/graph"
)

// Default values for configuration options. These represent "layer 0" of
// the override chain. Credentials and the drive ID deliberately have none.
const (
	defaultMetadataFileName  = "metadata.json"
	defaultMetadataFallback  = FallbackRemoteFirst
	defaultMetadataMaxSize   = "10MiB"
	defaultListen            = ":8000"
	defaultReadHeaderTimeout = "10s"
	defaultShutdownTimeout   = "15s"
	defaultRequestTimeout    = "30s"
	defaultUserAgent         = "datalake-api/0.1"
	defaultMaxDepth          = 64
	defaultWalkTimeout       = "5m"
	defaultLogLevel          = "info"
	defaultLogFormat         = "auto"
)

const (
	defaultRequestTimeoutDuration    = 30 * time.Second
	defaultWalkTimeoutDuration       = 5 * time.Minute
	defaultReadHeaderTimeoutDuration = 10 * time.Second
	defaultShutdownTimeoutDuration   = 15 * time.Second
)

// DefaultConfig returns a Config populated with all default values.
// This is used both as the starting point for TOML decoding (so unset
// fields retain defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Metadata: MetadataConfig{
			FileName: defaultMetadataFileName,
			Fallback: defaultMetadataFallback,
			MaxSize:  defaultMetadataMaxSize,
		},
		Server: ServerConfig{
			Listen:            defaultListen,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			ShutdownTimeout:   defaultShutdownTimeout,
			CORSOrigins:       []string{"*"},
			PrivacyPage:       true,
		},
		Network: NetworkConfig{
			RequestTimeout: defaultRequestTimeout,
			UserAgent:      defaultUserAgent,
			GraphBaseURL:   graph.DefaultBaseURL,
		},
		Tree: TreeConfig{
			MaxDepth:    defaultMaxDepth,
			WalkTimeout: defaultWalkTimeout,
		},
		Logging: LoggingConfig{
			LogLevel:  defaultLogLevel,
			LogFormat: defaultLogFormat,
		},
	}
}
