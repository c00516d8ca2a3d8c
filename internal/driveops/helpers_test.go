package driveops

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/tonimelisma/datalake-api/internal/config"
	"github.com/tonimelisma/datalake-api/internal/driveid"
	"github.com/tonimelisma/datalake-api/testutil"
)

func discardLogger() *slog.Logger {
	return slog.Default()
}

// testConfig points a default config at fg.
func testConfig(fg *testutil.FakeGraph) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Auth = config.AuthConfig{TenantID: "tenant", ClientID: "client", ClientSecret: "secret"}
	cfg.Drive.DriveID = driveid.New(testutil.FakeDriveID)
	cfg.Network.GraphBaseURL = fg.URL()
	cfg.Network.TokenURL = fg.TokenURL()

	return cfg
}

// newTestService serves root through a fake Graph and returns a Service
// wired to it. mutate may adjust the config before the service is built.
func newTestService(t *testing.T, root *testutil.Node, mutate func(*config.Config)) (*Service, *testutil.FakeGraph) {
	t.Helper()

	fg := testutil.NewFakeGraph(t, root)

	cfg := testConfig(fg)
	if mutate != nil {
		mutate(cfg)
	}

	holder := config.NewHolder(cfg, "")
	sessions := NewSessionProvider(holder, &http.Client{Timeout: 5 * time.Second}, discardLogger())

	return NewService(sessions, holder, discardLogger()), fg
}

// sampleTree is root/{A/{b.txt, C/{d.json}}, metadata.json, notes.md}.
func sampleTree() *testutil.Node {
	return testutil.Dir("", "",
		testutil.Dir("id-A", "A",
			testutil.File("id-b", "b.txt", "text/plain", "hello"),
			testutil.Dir("id-C", "C",
				testutil.File("id-d", "d.json", "application/json", `{"k":1}`),
			),
		),
		testutil.File("id-meta", "metadata.json", "application/json", `{"project":"lake","tags":["a","b"]}`),
		testutil.File("id-notes", "notes.md", "text/markdown", "# notes"),
	)
}
