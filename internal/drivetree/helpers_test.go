package drivetree

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/tonimelisma/datalake-api/internal/driveid"
	"github.com/tonimelisma/datalake-api/internal/graph"
	"github.com/tonimelisma/datalake-api/testutil"
)

// staticToken is a test TokenSource that returns the fake server's token.
type staticToken string

func (t staticToken) Token() (string, error) {
	return string(t), nil
}

// newFakeDrive serves root from a fake Graph API and returns a real client
// pointed at it.
func newFakeDrive(t *testing.T, root *testutil.Node) (*testutil.FakeGraph, *graph.Client) {
	t.Helper()

	fg := testutil.NewFakeGraph(t, root)
	client := graph.NewClient(fg.URL(), http.DefaultClient, staticToken(testutil.FakeToken), slog.Default(), "test-agent")

	return fg, client
}

func fakeDriveID() driveid.ID {
	return driveid.New(testutil.FakeDriveID)
}
