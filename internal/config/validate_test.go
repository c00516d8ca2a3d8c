package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/datalake-api/internal/driveid"
)

const invalidEnumStr = "invalid-value"

func validConfig() *Config {
	return DefaultConfig()
}

func TestValidate_ValidDefaults(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"path prefix dotdot", func(c *Config) { c.Drive.PathPrefix = "a/../b" }, "drive.path_prefix"},
		{"metadata file name empty", func(c *Config) { c.Metadata.FileName = "" }, "metadata.file_name"},
		{"metadata file name with slash", func(c *Config) { c.Metadata.FileName = "a/b.json" }, "metadata.file_name"},
		{"fallback enum", func(c *Config) { c.Metadata.Fallback = invalidEnumStr }, "metadata.fallback"},
		{"local first without path", func(c *Config) { c.Metadata.Fallback = FallbackLocalFirst }, "metadata.local_path"},
		{"max size unparseable", func(c *Config) { c.Metadata.MaxSize = "lots" }, "metadata.max_size"},
		{"max size zero", func(c *Config) { c.Metadata.MaxSize = "0" }, "metadata.max_size"},
		{"listen empty", func(c *Config) { c.Server.Listen = "" }, "server.listen"},
		{"read header timeout", func(c *Config) { c.Server.ReadHeaderTimeout = "1ms" }, "server.read_header_timeout"},
		{"shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = "soon" }, "server.shutdown_timeout"},
		{"request timeout", func(c *Config) { c.Network.RequestTimeout = "0s" }, "network.request_timeout"},
		{"graph base url relative", func(c *Config) { c.Network.GraphBaseURL = "/v1.0" }, "network.graph_base_url"},
		{"graph base url empty", func(c *Config) { c.Network.GraphBaseURL = "" }, "network.graph_base_url"},
		{"token url relative", func(c *Config) { c.Network.TokenURL = "token" }, "network.token_url"},
		{"max depth negative", func(c *Config) { c.Tree.MaxDepth = -1 }, "tree.max_depth"},
		{"max depth huge", func(c *Config) { c.Tree.MaxDepth = maxTreeDepth + 1 }, "tree.max_depth"},
		{"walk timeout", func(c *Config) { c.Tree.WalkTimeout = "forever" }, "tree.walk_timeout"},
		{"log level", func(c *Config) { c.Logging.LogLevel = invalidEnumStr }, "logging.log_level"},
		{"log format", func(c *Config) { c.Logging.LogFormat = invalidEnumStr }, "logging.log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_AccumulatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.LogLevel = invalidEnumStr
	cfg.Tree.MaxDepth = -5
	cfg.Server.Listen = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "max_depth")
	assert.Contains(t, err.Error(), "listen")
}

func TestValidate_MaxDepthZeroDisablesGuard(t *testing.T) {
	cfg := validConfig()
	cfg.Tree.MaxDepth = 0
	assert.NoError(t, Validate(cfg))
}

func TestValidate_LocalFirstWithPath(t *testing.T) {
	cfg := validConfig()
	cfg.Metadata.Fallback = FallbackLocalFirst
	cfg.Metadata.LocalPath = "/srv/metadata.json"
	assert.NoError(t, Validate(cfg))
}

func TestValidateResolved(t *testing.T) {
	cfg := validConfig()
	cfg.Auth = AuthConfig{TenantID: "t", ClientID: "c", ClientSecret: "s"}
	cfg.Drive.DriveID = driveid.New("b!x")
	assert.NoError(t, ValidateResolved(cfg))

	cfg.Auth.ClientSecret = ""
	err := ValidateResolved(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.client_secret")
	assert.NotContains(t, err.Error(), "auth.tenant_id")
}

func TestDurationAccessors(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, defaultRequestTimeoutDuration, cfg.Network.RequestTimeoutDuration())
	assert.Equal(t, defaultWalkTimeoutDuration, cfg.Tree.WalkTimeoutDuration())
	assert.Equal(t, defaultReadHeaderTimeoutDuration, cfg.Server.ReadHeaderTimeoutDuration())
	assert.Equal(t, defaultShutdownTimeoutDuration, cfg.Server.ShutdownTimeoutDuration())

	cfg.Tree.WalkTimeout = "garbage"
	assert.Equal(t, defaultWalkTimeoutDuration, cfg.Tree.WalkTimeoutDuration())
}

func TestMaxSizeBytes_Default(t *testing.T) {
	assert.Equal(t, int64(10*1024*1024), validConfig().Metadata.MaxSizeBytes())
}
