package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/datalake-api/internal/driveid"
)

// testLogger returns a debug-level logger so config debug output appears in
// test output for CI visibility.
func testLogger(t *testing.T) *slog.Logger {
	t.Helper()

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)

	return path
}

const fullConfig = `
[auth]
tenant_id = "tenant-1"
client_id = "client-1"
client_secret = "s3cret"

[drive]
drive_id = "b!LakeDrive"
path_prefix = "Datalake"

[metadata]
file_name = "metadata.yaml"
fallback = "local_first"
local_path = "/srv/metadata.yaml"
max_size = "2 MiB"

[server]
listen = "127.0.0.1:9000"
read_header_timeout = "5s"
shutdown_timeout = "20s"
cors_origins = ["https://example.org"]
privacy_page = false

[network]
request_timeout = "45s"
user_agent = "lake-test/1.0"
graph_base_url = "https://graph.example.test/v1.0"

[tree]
max_depth = 8
walk_timeout = "90s"

[logging]
log_level = "debug"
log_format = "json"
`

func TestLoad_ValidFullConfig(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "tenant-1", cfg.Auth.TenantID)
	assert.Equal(t, "client-1", cfg.Auth.ClientID)
	assert.Equal(t, "s3cret", cfg.Auth.ClientSecret)
	assert.Equal(t, driveid.New("b!LakeDrive"), cfg.Drive.DriveID)
	assert.Equal(t, "Datalake", cfg.Drive.PathPrefix)
	assert.Equal(t, "metadata.yaml", cfg.Metadata.FileName)
	assert.Equal(t, FallbackLocalFirst, cfg.Metadata.Fallback)
	assert.Equal(t, int64(2*1024*1024), cfg.Metadata.MaxSizeBytes())
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Listen)
	assert.Equal(t, []string{"https://example.org"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Server.PrivacyPage)
	assert.Equal(t, "45s", cfg.Network.RequestTimeout)
	assert.Equal(t, 8, cfg.Tree.MaxDepth)
	assert.Equal(t, "json", cfg.Logging.LogFormat)
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, "[tree]\nmax_depth = 3\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Tree.MaxDepth)
	assert.Equal(t, defaultWalkTimeout, cfg.Tree.WalkTimeout)
	assert.Equal(t, defaultListen, cfg.Server.Listen)
	assert.Equal(t, defaultMetadataFileName, cfg.Metadata.FileName)
	assert.True(t, cfg.Server.PrivacyPage)
}

func TestLoad_UnknownKeySuggestion(t *testing.T) {
	_, err := Load(writeTestConfig(t, "[auth]\ntenant_idd = \"x\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"auth.tenant_idd"`)
	assert.Contains(t, err.Error(), `did you mean "auth.tenant_id"`)
}

func TestLoad_UnknownSection(t *testing.T) {
	_, err := Load(writeTestConfig(t, "[srever]\nlisten = \":1\"\nother = 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "server"`)
	assert.Equal(t, 1, strings.Count(err.Error(), "unknown config section"))
}

func TestLoad_InvalidTOML(t *testing.T) {
	_, err := Load(writeTestConfig(t, "[auth\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(writeTestConfig(t, "[logging]\nlog_level = \"loud\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOrDefault_EmptyPath(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestResolveConfigPath_Precedence(t *testing.T) {
	assert.Equal(t, "/cli.toml",
		ResolveConfigPath(EnvOverrides{ConfigPath: "/env.toml"}, CLIOverrides{ConfigPath: "/cli.toml"}))
	assert.Equal(t, "/env.toml", ResolveConfigPath(EnvOverrides{ConfigPath: "/env.toml"}, CLIOverrides{}))
	assert.Equal(t, DefaultConfigPath(), ResolveConfigPath(EnvOverrides{}, CLIOverrides{}))
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	path := writeTestConfig(t, fullConfig)

	env := EnvOverrides{
		ClientSecret: "from-env",
		DriveID:      "B!EnvDrive",
		PathPrefix:   "Other",
		Listen:       ":7000",
	}

	cfg, err := Resolve(env, CLIOverrides{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, "tenant-1", cfg.Auth.TenantID)
	assert.Equal(t, "from-env", cfg.Auth.ClientSecret)
	assert.Equal(t, "B!EnvDrive", cfg.Drive.DriveID.String())
	assert.Equal(t, "Other", cfg.Drive.PathPrefix)
	assert.Equal(t, ":7000", cfg.Server.Listen)
}

func TestResolve_CLIOverridesEnv(t *testing.T) {
	path := writeTestConfig(t, fullConfig)

	cfg, err := Resolve(EnvOverrides{Listen: ":7000"}, CLIOverrides{ConfigPath: path, Listen: ":6000"})
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.Server.Listen)
}

func TestResolve_EnvOnlyWithoutFile(t *testing.T) {
	env := EnvOverrides{
		ConfigPath:   filepath.Join(t.TempDir(), "missing.toml"),
		TenantID:     "t",
		ClientID:     "c",
		ClientSecret: "s",
		DriveID:      "b!D",
	}

	cfg, err := Resolve(env, CLIOverrides{})
	require.NoError(t, err)
	assert.Equal(t, "b!D", cfg.Drive.DriveID.String())
	assert.Equal(t, defaultListen, cfg.Server.Listen)
}

func TestResolve_MissingSecretsFailFast(t *testing.T) {
	env := EnvOverrides{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")}

	_, err := Resolve(env, CLIOverrides{})
	require.Error(t, err)

	for _, field := range []string{"auth.tenant_id", "auth.client_id", "auth.client_secret", "drive.drive_id"} {
		assert.Contains(t, err.Error(), field)
	}

	assert.Contains(t, err.Error(), EnvClientSecret)
}

func TestResolvePartial_AllowsMissingSecrets(t *testing.T) {
	env := EnvOverrides{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")}

	cfg, err := ResolvePartial(env, CLIOverrides{})
	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.ClientSecret)
}
