package drivetree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tonimelisma/datalake-api/internal/driveid"
	"github.com/tonimelisma/datalake-api/internal/graph"
)

// ItemGetter fetches single items by ID or by path. Satisfied by *graph.Client.
type ItemGetter interface {
	GetItem(ctx context.Context, driveID driveid.ID, itemID string) (*graph.Item, error)
	GetItemByPath(ctx context.Context, driveID driveid.ID, remotePath string) (*graph.Item, error)
}

// Resolver maps logical paths to drive items using Graph path addressing.
// An optional prefix (for example a document-library folder) is prepended
// to every path exactly once.
type Resolver struct {
	items   ItemGetter
	driveID driveid.ID
	prefix  []string
	logger  *slog.Logger
}

// NewResolver creates a Resolver. prefix may be empty.
func NewResolver(items ItemGetter, driveID driveid.ID, prefix string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		items:   items,
		driveID: driveID,
		prefix:  splitPath(prefix),
		logger:  logger,
	}
}

// CleanPath strips leading and trailing slashes, drops empty and
// whitespace-only segments (drive item names cannot be blank), and
// NFC-normalizes the result. "" and "/" both mean the drive root.
func CleanPath(p string) string {
	return strings.Join(splitPath(p), "/")
}

func splitPath(p string) []string {
	raw := strings.Split(norm.NFC.String(p), "/")
	segments := make([]string, 0, len(raw))

	for _, s := range raw {
		if strings.TrimSpace(s) != "" {
			segments = append(segments, s)
		}
	}

	return segments
}

// LogicalPath returns the cleaned path with the configured prefix applied.
// A path that already begins with the prefix (segment-wise, ignoring case,
// as drive paths are case-insensitive) is not prefixed again.
func (r *Resolver) LogicalPath(p string) string {
	segments := splitPath(p)
	if len(r.prefix) == 0 || hasSegmentPrefix(segments, r.prefix) {
		return strings.Join(segments, "/")
	}

	return strings.Join(append(append([]string{}, r.prefix...), segments...), "/")
}

func hasSegmentPrefix(segments, prefix []string) bool {
	if len(segments) < len(prefix) {
		return false
	}

	for i := range prefix {
		if !strings.EqualFold(segments[i], prefix[i]) {
			return false
		}
	}

	return true
}

// Resolve looks up the item at logicalPath. The returned entry's Path is the
// prefixed logical path, so resolving it again yields the same item.
func (r *Resolver) Resolve(ctx context.Context, logicalPath string) (Entry, error) {
	path := r.LogicalPath(logicalPath)

	r.logger.Debug("resolving path",
		slog.String("input", logicalPath),
		slog.String("path", path),
	)

	var (
		item *graph.Item
		err  error
	)

	if path == "" {
		item, err = r.items.GetItem(ctx, r.driveID, graph.RootRef)
	} else {
		item, err = r.items.GetItemByPath(ctx, r.driveID, path)
	}

	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return Entry{}, fmt.Errorf("%w: %q: %w", ErrNotFound, path, err)
		}

		return Entry{}, fmt.Errorf("resolving %q: %w", path, err)
	}

	return FromItem(item, path), nil
}
