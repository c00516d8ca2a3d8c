package drivetree

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tonimelisma/datalake-api/internal/driveid"
	"github.com/tonimelisma/datalake-api/internal/graph"
)

// ChildLister lists every child of a folder, following pagination.
// Satisfied by *graph.Client.
type ChildLister interface {
	ListChildren(ctx context.Context, driveID driveid.ID, folderRef string) ([]graph.Item, error)
}

// Walker enumerates a drive subtree depth-first, one child listing per
// folder visited.
type Walker struct {
	items    ChildLister
	driveID  driveid.ID
	maxDepth int // 0 = unlimited
	logger   *slog.Logger
}

// NewWalker creates a Walker over driveID. maxDepth bounds how many folder
// levels below the starting folder are listed; 0 disables the guard.
func NewWalker(items ChildLister, driveID driveid.ID, maxDepth int, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}

	return &Walker{
		items:    items,
		driveID:  driveID,
		maxDepth: maxDepth,
		logger:   logger,
	}
}

// ListTree walks the subtree under folderRef (graph.RootRef or a folder item
// ID). Every emitted path is basePath joined with the names below it. A
// folder entry is followed immediately by its own sub-listing.
func (w *Walker) ListTree(ctx context.Context, folderRef, basePath string) (Listing, error) {
	w.logger.Info("walking drive tree",
		slog.String("drive_id", w.driveID.String()),
		slog.String("folder", folderRef),
		slog.String("base_path", basePath),
	)

	ancestors := map[string]bool{folderRef: true}
	listing := Listing{}

	folders, err := w.walk(ctx, folderRef, basePath, 0, ancestors, &listing)
	if err != nil {
		return nil, err
	}

	w.logger.Info("drive tree walk complete",
		slog.String("folder", folderRef),
		slog.Int("entries", len(listing)),
		slog.Int("folders_visited", folders),
	)

	return listing, nil
}

// walk appends the subtree of folderRef to out and returns the number of
// folders whose children were listed.
func (w *Walker) walk(
	ctx context.Context,
	folderRef, basePath string,
	depth int,
	ancestors map[string]bool,
	out *Listing,
) (int, error) {
	if w.maxDepth > 0 && depth > w.maxDepth {
		return 0, fmt.Errorf("%w: %q is %d levels deep (limit %d)", ErrDepthExceeded, basePath, depth, w.maxDepth)
	}

	children, err := w.items.ListChildren(ctx, w.driveID, folderRef)
	if err != nil {
		return 0, fmt.Errorf("listing children of %q: %w", basePath, err)
	}

	visited := 1

	for i := range children {
		child := &children[i]
		childPath := JoinPath(basePath, child.Name)

		*out = append(*out, FromItem(child, childPath))

		// childCount 0 means an empty folder: its entry is the whole subtree.
		if !child.IsFolder || child.ChildCount == 0 {
			continue
		}

		if ancestors[child.ID] {
			return visited, fmt.Errorf("%w: %q (id %s)", ErrCycle, childPath, child.ID)
		}

		ancestors[child.ID] = true

		n, err := w.walk(ctx, child.ID, childPath, depth+1, ancestors, out)
		visited += n

		delete(ancestors, child.ID)

		if err != nil {
			return visited, err
		}
	}

	return visited, nil
}
