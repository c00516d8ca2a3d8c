package config

import (
	"fmt"
	"io"
	"strings"
)

// redacted replaces secrets in rendered output.
const redacted = "<redacted>"

// RenderEffective writes the resolved configuration as a human-readable
// annotated summary to w. This powers the "config show" command, giving
// operators visibility into the effective values after all four override
// layers (defaults -> file -> env -> CLI) have been applied. The client
// secret is never printed.
func RenderEffective(cfg *Config, path string, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration (file: %s)\n\n", displayPath(path))

	renderAuthSection(ew, &cfg.Auth)
	renderDriveSection(ew, &cfg.Drive)
	renderMetadataSection(ew, &cfg.Metadata)
	renderServerSection(ew, &cfg.Server)
	renderNetworkSection(ew, &cfg.Network)
	renderTreeSection(ew, &cfg.Tree)
	renderLoggingSection(ew, &cfg.Logging)

	return ew.err
}

func displayPath(path string) string {
	if path == "" {
		return "none"
	}

	return path
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, so callers can chain
// printf calls without checking each one individually.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func renderAuthSection(ew *errWriter, a *AuthConfig) {
	secret := ""
	if a.ClientSecret != "" {
		secret = redacted
	}

	ew.printf("[auth]\n")
	ew.printf("  tenant_id     = %q\n", a.TenantID)
	ew.printf("  client_id     = %q\n", a.ClientID)
	ew.printf("  client_secret = %q\n", secret)
	ew.printf("\n")
}

func renderDriveSection(ew *errWriter, d *DriveConfig) {
	ew.printf("[drive]\n")
	ew.printf("  drive_id    = %q\n", d.DriveID.String())
	ew.printf("  path_prefix = %q\n", d.PathPrefix)
	ew.printf("\n")
}

func renderMetadataSection(ew *errWriter, m *MetadataConfig) {
	ew.printf("[metadata]\n")
	ew.printf("  file_name = %q\n", m.FileName)
	ew.printf("  fallback  = %q\n", m.Fallback)

	if m.LocalPath != "" {
		ew.printf("  local_path = %q\n", m.LocalPath)
	}

	ew.printf("  max_size  = %q\n", m.MaxSize)
	ew.printf("\n")
}

func renderServerSection(ew *errWriter, s *ServerConfig) {
	ew.printf("[server]\n")
	ew.printf("  listen              = %q\n", s.Listen)
	ew.printf("  read_header_timeout = %q\n", s.ReadHeaderTimeout)
	ew.printf("  shutdown_timeout    = %q\n", s.ShutdownTimeout)
	ew.printf("  privacy_page        = %t\n", s.PrivacyPage)

	if len(s.CORSOrigins) > 0 {
		ew.printf("  cors_origins        = [%s]\n", joinQuoted(s.CORSOrigins))
	}

	ew.printf("\n")
}

func renderNetworkSection(ew *errWriter, n *NetworkConfig) {
	ew.printf("[network]\n")
	ew.printf("  request_timeout = %q\n", n.RequestTimeout)
	ew.printf("  user_agent      = %q\n", n.UserAgent)
	ew.printf("  graph_base_url  = %q\n", n.GraphBaseURL)

	if n.TokenURL != "" {
		ew.printf("  token_url       = %q\n", n.TokenURL)
	}

	ew.printf("\n")
}

func renderTreeSection(ew *errWriter, t *TreeConfig) {
	ew.printf("[tree]\n")
	ew.printf("  max_depth    = %d\n", t.MaxDepth)
	ew.printf("  walk_timeout = %q\n", t.WalkTimeout)
	ew.printf("\n")
}

func renderLoggingSection(ew *errWriter, l *LoggingConfig) {
	ew.printf("[logging]\n")
	ew.printf("  log_level  = %q\n", l.LogLevel)
	ew.printf("  log_format = %q\n", l.LogFormat)
}

// joinQuoted formats a string slice as comma-separated quoted values.
func joinQuoted(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}

	return strings.Join(quoted, ", ")
}
