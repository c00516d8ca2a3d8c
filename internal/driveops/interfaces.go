package driveops

import (
	"context"

	"github.com/tonimelisma/datalake-api/internal/driveid"
	"github.com/tonimelisma/datalake-api/internal/drivetree"
	"github.com/tonimelisma/datalake-api/internal/graph"
)

// Remote is the read-only slice of the Graph API the service needs.
// Satisfied by *graph.Client.
type Remote interface {
	drivetree.ChildLister
	drivetree.ItemGetter
	Search(ctx context.Context, driveID driveid.ID, query string) ([]graph.Item, error)
	FetchContent(ctx context.Context, downloadURL string, maxBytes int64) ([]byte, error)
}

// SessionSource hands out a Session for the currently configured drive.
// Satisfied by *SessionProvider.
type SessionSource interface {
	Session(ctx context.Context) (*Session, error)
}
