package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Validation range constants.
const (
	minRequestTimeout = 1 * time.Second
	minWalkTimeout    = 1 * time.Second
	minServerTimeout  = 1 * time.Second
	maxTreeDepth      = 1024
	minMetadataBytes  = 1
)

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateDrive(&cfg.Drive)...)
	errs = append(errs, validateMetadata(&cfg.Metadata)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateNetwork(&cfg.Network)...)
	errs = append(errs, validateTree(&cfg.Tree)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	return errors.Join(errs...)
}

// ValidateResolved checks the fields that have no defaults and may come
// from either the file or the environment. It runs after the override chain
// so a secret supplied only through DATALAKE_CLIENT_SECRET is accepted.
func ValidateResolved(cfg *Config) error {
	var errs []error

	required := []struct {
		field string
		env   string
		set   bool
	}{
		{"auth.tenant_id", EnvTenantID, cfg.Auth.TenantID != ""},
		{"auth.client_id", EnvClientID, cfg.Auth.ClientID != ""},
		{"auth.client_secret", EnvClientSecret, cfg.Auth.ClientSecret != ""},
		{"drive.drive_id", EnvDriveID, !cfg.Drive.DriveID.IsZero()},
	}

	for _, r := range required {
		if !r.set {
			errs = append(errs, fmt.Errorf("%s: required (set it in the config file or %s)", r.field, r.env))
		}
	}

	return errors.Join(errs...)
}

func validateDrive(d *DriveConfig) []error {
	for _, seg := range strings.Split(d.PathPrefix, "/") {
		if seg == ".." {
			return []error{fmt.Errorf("drive.path_prefix: must not contain \"..\", got %q", d.PathPrefix)}
		}
	}

	return nil
}

var validFallbacks = []string{FallbackRemoteFirst, FallbackLocalFirst, FallbackRemoteOnly}

func validateMetadata(m *MetadataConfig) []error {
	var errs []error

	if m.FileName == "" || strings.Contains(m.FileName, "/") {
		errs = append(errs, fmt.Errorf("metadata.file_name: must be a plain file name, got %q", m.FileName))
	}

	if !slices.Contains(validFallbacks, m.Fallback) {
		errs = append(errs, fmt.Errorf("metadata.fallback: must be one of %s; got %q",
			strings.Join(validFallbacks, ", "), m.Fallback))
	}

	if m.Fallback == FallbackLocalFirst && m.LocalPath == "" {
		errs = append(errs, errors.New("metadata.local_path: required when fallback is local_first"))
	}

	n, err := humanize.ParseBytes(m.MaxSize)
	if err != nil {
		errs = append(errs, fmt.Errorf("metadata.max_size: %w", err))
	} else if n < minMetadataBytes {
		errs = append(errs, fmt.Errorf("metadata.max_size: must be positive, got %q", m.MaxSize))
	}

	return errs
}

// MaxSizeBytes returns the parsed metadata size limit. Validate has already
// rejected unparseable values.
func (m MetadataConfig) MaxSizeBytes() int64 {
	n, err := humanize.ParseBytes(m.MaxSize)
	if err != nil || n == 0 {
		n, _ = humanize.ParseBytes(defaultMetadataMaxSize)
	}

	return int64(n) //nolint:gosec // validated sizes are far below MaxInt64
}

func validateServer(s *ServerConfig) []error {
	var errs []error

	if s.Listen == "" {
		errs = append(errs, errors.New("server.listen: must not be empty"))
	}

	errs = append(errs, validateDurationMin("server.read_header_timeout", s.ReadHeaderTimeout, minServerTimeout)...)
	errs = append(errs, validateDurationMin("server.shutdown_timeout", s.ShutdownTimeout, minServerTimeout)...)

	return errs
}

func validateNetwork(n *NetworkConfig) []error {
	var errs []error

	errs = append(errs, validateDurationMin("network.request_timeout", n.RequestTimeout, minRequestTimeout)...)
	errs = append(errs, validateURL("network.graph_base_url", n.GraphBaseURL, true)...)
	errs = append(errs, validateURL("network.token_url", n.TokenURL, false)...)

	return errs
}

func validateURL(field, value string, required bool) []error {
	if value == "" {
		if required {
			return []error{fmt.Errorf("%s: must not be empty", field)}
		}

		return nil
	}

	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return []error{fmt.Errorf("%s: must be an absolute URL, got %q", field, value)}
	}

	return nil
}

func validateTree(t *TreeConfig) []error {
	var errs []error

	if t.MaxDepth < 0 || t.MaxDepth > maxTreeDepth {
		errs = append(errs, fmt.Errorf("tree.max_depth: must be between 0 and %d, got %d",
			maxTreeDepth, t.MaxDepth))
	}

	errs = append(errs, validateDurationMin("tree.walk_timeout", t.WalkTimeout, minWalkTimeout)...)

	return errs
}

func validateDurationMin(field, value string, minimum time.Duration) []error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return []error{fmt.Errorf("%s: invalid duration %q: %w", field, value, err)}
	}

	if d < minimum {
		return []error{fmt.Errorf("%s: must be >= %s, got %s", field, minimum, d)}
	}

	return nil
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	errs = append(errs, validateLogLevel(l.LogLevel)...)
	errs = append(errs, validateLogFormat(l.LogFormat)...)

	return errs
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func validateLogLevel(level string) []error {
	if !validLogLevels[level] {
		return []error{fmt.Errorf("logging.log_level: must be one of debug, info, warn, error; got %q", level)}
	}

	return nil
}

var validLogFormats = map[string]bool{
	"auto": true,
	"text": true,
	"json": true,
}

func validateLogFormat(format string) []error {
	if !validLogFormats[format] {
		return []error{fmt.Errorf("logging.log_format: must be one of auto, text, json; got %q", format)}
	}

	return nil
}
