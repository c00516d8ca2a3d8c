package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/datalake-api/internal/config"
	"github.com/tonimelisma/datalake-api/testutil"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	expected := []string{"serve", "ls", "search", "url", "metadata", "config"}
	for _, name := range expected {
		found := false

		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true

				break
			}
		}

		assert.True(t, found, "expected subcommand %q not found", name)
	}
}

func TestNewRootCmd_PersistentFlags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"config", "json", "verbose", "quiet"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "expected persistent flag %q not found", name)
	}
}

func TestNewRootCmd_MutualExclusivity(t *testing.T) {
	clearEnv(t)

	missing := filepath.Join(t.TempDir(), "missing.toml")

	_, err := execute(t, "--verbose", "--quiet", "--config", missing, "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestLevelFor(t *testing.T) {
	saveGlobals(t)

	tests := []struct {
		name     string
		cfgLevel string
		verbose  bool
		quiet    bool
		want     slog.Level
	}{
		{"default", "info", false, false, slog.LevelInfo},
		{"config debug", "debug", false, false, slog.LevelDebug},
		{"config warn", "warn", false, false, slog.LevelWarn},
		{"config error", "error", false, false, slog.LevelError},
		{"verbose overrides", "error", true, false, slog.LevelDebug},
		{"quiet overrides", "debug", false, true, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Logging.LogLevel = tt.cfgLevel
			flagVerbose = tt.verbose
			flagQuiet = tt.quiet

			assert.Equal(t, tt.want, levelFor(cfg))
		})
	}
}

func TestLevelFor_NilConfig(t *testing.T) {
	saveGlobals(t)

	flagVerbose, flagQuiet = false, false
	assert.Equal(t, slog.LevelInfo, levelFor(nil))
}

func TestNewLogger_Formats(t *testing.T) {
	saveGlobals(t)
	logLevel.Set(slog.LevelInfo)

	tests := []struct {
		format   string
		terminal bool
		json     bool
	}{
		{"json", true, true},
		{"text", false, false},
		{"auto", true, false},
		{"auto", false, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer

		newLogger(&buf, tt.format, tt.terminal).Info("hello", slog.String("k", "v"))

		isJSON := json.Valid(bytes.TrimSpace(buf.Bytes()))
		assert.Equal(t, tt.json, isJSON, "format=%s terminal=%v: %s", tt.format, tt.terminal, buf.String())
	}
}

func TestNewLogger_FollowsLevelVar(t *testing.T) {
	saveGlobals(t)

	logger := newLogger(&bytes.Buffer{}, "text", true)

	logLevel.Set(slog.LevelWarn)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))

	logLevel.Set(slog.LevelDebug)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestDefaultHTTPClient_UsesRequestTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Network.RequestTimeout = "7s"

	assert.Equal(t, 7*time.Second, defaultHTTPClient(cfg).Timeout)
}

func TestLoadConfig_ValidTOML(t *testing.T) {
	clearEnv(t)
	saveGlobals(t)

	fg := testutil.NewFakeGraph(t, sampleTree())
	path := writeConfig(t, fg, "")

	cmd := newRootCmd()
	flagConfigPath = path

	require.NoError(t, loadConfig(cmd))
	require.NotNil(t, resolvedCfg)

	assert.Equal(t, testutil.FakeDriveID, resolvedCfg.Drive.DriveID.String())
	assert.Equal(t, path, resolvedCfgPath)
	assert.Equal(t, slog.LevelError, logLevel.Level())
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	clearEnv(t)
	saveGlobals(t)

	cmd := newRootCmd()
	flagConfigPath = filepath.Join(t.TempDir(), "nonexistent.toml")

	err := loadConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvTenantID)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	clearEnv(t)
	saveGlobals(t)

	t.Setenv(config.EnvTenantID, "t")
	t.Setenv(config.EnvClientID, "c")
	t.Setenv(config.EnvClientSecret, "s")
	t.Setenv(config.EnvDriveID, "b!EnvDrive")

	cmd := newRootCmd()
	flagConfigPath = filepath.Join(t.TempDir(), "nonexistent.toml")

	require.NoError(t, loadConfig(cmd))
	assert.Equal(t, "b!EnvDrive", resolvedCfg.Drive.DriveID.String())
	assert.Empty(t, resolvedCfgPath, "missing file is not watched")
}

func TestLoadConfig_ListenFlag(t *testing.T) {
	clearEnv(t)
	saveGlobals(t)

	fg := testutil.NewFakeGraph(t, sampleTree())
	path := writeConfig(t, fg, "")

	cmd := newRootCmd()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	require.NoError(t, serveCmd.ParseFlags([]string{"--listen", "127.0.0.1:9999"}))

	flagConfigPath = path

	require.NoError(t, loadConfig(serveCmd))
	assert.Equal(t, "127.0.0.1:9999", resolvedCfg.Server.Listen)
}

func TestExistingPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "c.toml")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	assert.Equal(t, file, existingPath(file))
	assert.Empty(t, existingPath(filepath.Join(dir, "missing.toml")))
	assert.Empty(t, existingPath(""))
}
