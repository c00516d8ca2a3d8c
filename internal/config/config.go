// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for datalake-api. It supports a
// four-layer override chain (defaults -> config file -> environment -> CLI
// flags). Secrets have no defaults: they must come from the file or the
// environment, and startup fails when they are missing.
package config

import (
	"time"

	"github.com/tonimelisma/datalake-api/internal/driveid"
)

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Auth     AuthConfig     `toml:"auth" json:"auth"`
	Drive    DriveConfig    `toml:"drive" json:"drive"`
	Metadata MetadataConfig `toml:"metadata" json:"metadata"`
	Server   ServerConfig   `toml:"server" json:"server"`
	Network  NetworkConfig  `toml:"network" json:"network"`
	Tree     TreeConfig     `toml:"tree" json:"tree"`
	Logging  LoggingConfig  `toml:"logging" json:"logging"`
}

// AuthConfig holds the service principal used for the client-credentials
// grant. ClientSecret is never rendered by "config show".
type AuthConfig struct {
	TenantID     string `toml:"tenant_id" json:"tenant_id"`
	ClientID     string `toml:"client_id" json:"client_id"`
	ClientSecret string `toml:"client_secret" json:"-"`
}

// DriveConfig selects the drive and an optional path prefix (for example
// the document-library folder) that logical paths are resolved under.
type DriveConfig struct {
	DriveID    driveid.ID `toml:"drive_id" json:"drive_id"`
	PathPrefix string     `toml:"path_prefix" json:"path_prefix"`
}

// Metadata fallback orders for the default metadata document.
const (
	FallbackRemoteFirst = "remote_first"
	FallbackLocalFirst  = "local_first"
	FallbackRemoteOnly  = "remote_only"
)

// MetadataConfig controls the /metadata endpoint: which file is the default
// metadata document, whether a local copy may stand in for it, and in which
// order the two are tried.
type MetadataConfig struct {
	FileName  string `toml:"file_name" json:"file_name"`
	Fallback  string `toml:"fallback" json:"fallback"`
	LocalPath string `toml:"local_path" json:"local_path"`
	MaxSize   string `toml:"max_size" json:"max_size"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Listen            string   `toml:"listen" json:"listen"`
	ReadHeaderTimeout string   `toml:"read_header_timeout" json:"read_header_timeout"`
	ShutdownTimeout   string   `toml:"shutdown_timeout" json:"shutdown_timeout"`
	CORSOrigins       []string `toml:"cors_origins" json:"cors_origins"`
	PrivacyPage       bool     `toml:"privacy_page" json:"privacy_page"`
}

// NetworkConfig controls outbound HTTP behavior. GraphBaseURL and TokenURL
// exist for national clouds and tests; TokenURL empty means the tenant's
// public Azure AD endpoint.
type NetworkConfig struct {
	RequestTimeout string `toml:"request_timeout" json:"request_timeout"`
	UserAgent      string `toml:"user_agent" json:"user_agent"`
	GraphBaseURL   string `toml:"graph_base_url" json:"graph_base_url"`
	TokenURL       string `toml:"token_url" json:"token_url"`
}

// TreeConfig bounds recursive listings. MaxDepth 0 disables the depth guard.
type TreeConfig struct {
	MaxDepth    int    `toml:"max_depth" json:"max_depth"`
	WalkTimeout string `toml:"walk_timeout" json:"walk_timeout"`
}

// LoggingConfig controls log output: level and format (auto, text, json).
type LoggingConfig struct {
	LogLevel  string `toml:"log_level" json:"log_level"`
	LogFormat string `toml:"log_format" json:"log_format"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Empty strings mean "not specified".
type CLIOverrides struct {
	ConfigPath string // --config flag (empty = use default)
	Listen     string // --listen flag on serve
}

// mustDuration parses a duration that Validate has already accepted.
// Unparseable values fall back to def so callers never see zero timeouts.
func mustDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}

	return d
}

// RequestTimeoutDuration is the per-call timeout for Graph requests.
func (n NetworkConfig) RequestTimeoutDuration() time.Duration {
	return mustDuration(n.RequestTimeout, defaultRequestTimeoutDuration)
}

// WalkTimeoutDuration is the overall deadline for one recursive listing.
func (t TreeConfig) WalkTimeoutDuration() time.Duration {
	return mustDuration(t.WalkTimeout, defaultWalkTimeoutDuration)
}

// ReadHeaderTimeoutDuration bounds how long a client may take to send headers.
func (s ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return mustDuration(s.ReadHeaderTimeout, defaultReadHeaderTimeoutDuration)
}

// ShutdownTimeoutDuration bounds graceful shutdown of in-flight requests.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(s.ShutdownTimeout, defaultShutdownTimeoutDuration)
}
