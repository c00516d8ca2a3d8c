package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/datalake-api/internal/config"
	"github.com/tonimelisma/datalake-api/testutil"
)

// Global flag reset pattern: newRootCmd() binds flags via StringVar/BoolVar,
// which reset the global flag variables to their zero values. Tests either
// set globals AFTER newRootCmd() returns, or let Cobra parse flags through
// cmd.SetArgs() + cmd.Execute().

// clearEnv blanks every DATALAKE_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, name := range []string{
		config.EnvConfig, config.EnvTenantID, config.EnvClientID, config.EnvClientSecret,
		config.EnvDriveID, config.EnvPathPrefix, config.EnvListen,
	} {
		t.Setenv(name, "")
	}
}

// saveGlobals restores the package-level CLI state after the test.
func saveGlobals(t *testing.T) {
	t.Helper()

	oldCfg, oldPath := resolvedCfg, resolvedCfgPath
	oldConfig, oldJSON, oldVerbose, oldQuiet := flagConfigPath, flagJSON, flagVerbose, flagQuiet
	oldLevel := logLevel.Level()

	t.Cleanup(func() {
		resolvedCfg, resolvedCfgPath = oldCfg, oldPath
		flagConfigPath, flagJSON, flagVerbose, flagQuiet = oldConfig, oldJSON, oldVerbose, oldQuiet
		logLevel.Set(oldLevel)
	})
}

// writeConfig writes a config pointing at fg and returns its path.
func writeConfig(t *testing.T, fg *testutil.FakeGraph, extra string) string {
	t.Helper()

	content := fmt.Sprintf(`
[auth]
tenant_id = "tenant"
client_id = "client"
client_secret = "secret"

[drive]
drive_id = %q

[network]
graph_base_url = %q
token_url = %q

[logging]
log_level = "error"
%s`, testutil.FakeDriveID, fg.URL(), fg.TokenURL(), extra)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// captureStdout redirects os.Stdout to a pipe and returns what fn wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w

	t.Cleanup(func() { os.Stdout = old })

	fn()
	w.Close()

	out, err := io.ReadAll(r)
	require.NoError(t, err)

	os.Stdout = old

	return string(out)
}

// execute runs the CLI with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	saveGlobals(t)

	var err error

	out := captureStdout(t, func() {
		cmd := newRootCmd()
		cmd.SetArgs(args)
		cmd.SetErr(&bytes.Buffer{})
		err = cmd.Execute()
	})

	return out, err
}

// sampleTree is root/{Reports/{q1.csv, Archive/{old.csv}}, metadata.json}.
func sampleTree() *testutil.Node {
	return testutil.Dir("", "",
		testutil.Dir("id-reports", "Reports",
			testutil.File("id-q1", "q1.csv", "text/csv", "a,b\n1,2\n"),
			testutil.Dir("id-archive", "Archive",
				testutil.File("id-old", "old.csv", "text/csv", "x"),
			),
		),
		testutil.File("id-meta", "metadata.json", "application/json", `{"owner":"data-team"}`),
	)
}
