package driveops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tonimelisma/datalake-api/internal/config"
	"github.com/tonimelisma/datalake-api/internal/drivetree"
	"github.com/tonimelisma/datalake-api/internal/graph"
)

// Service answers list, metadata, download-link, and search queries for the
// configured drive. Every call reads the current config snapshot, so it is
// safe for concurrent use and follows config reloads.
type Service struct {
	sessions SessionSource
	holder   *config.Holder
	logger   *slog.Logger
}

// NewService creates a Service.
func NewService(sessions SessionSource, holder *config.Holder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sessions: sessions,
		holder:   holder,
		logger:   logger,
	}
}

// SearchResult is one search hit. Path is the hit's parent path as the
// remote API reports it (for example "/drive/root:/Reports").
type SearchResult struct {
	ID          string
	Name        string
	Path        string
	Kind        drivetree.Kind
	DownloadURL string
}

// DownloadLink is a pre-authenticated URL for one file.
type DownloadLink struct {
	FilePath string
	URL      string
}

// query bundles what one request needs: a session plus resolver and walker
// built from the same config snapshot.
type query struct {
	session  *Session
	cfg      *config.Config
	resolver *drivetree.Resolver
	walker   *drivetree.Walker
}

func (s *Service) newQuery(ctx context.Context) (*query, error) {
	session, err := s.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	cfg := s.holder.Config()

	return &query{
		session:  session,
		cfg:      cfg,
		resolver: drivetree.NewResolver(session.Remote, session.DriveID, cfg.Drive.PathPrefix, s.logger),
		walker:   drivetree.NewWalker(session.Remote, session.DriveID, cfg.Tree.MaxDepth, s.logger),
	}, nil
}

// List returns the recursive listing under folder. An empty folder lists the
// path prefix, or the whole drive when no prefix is configured. The whole
// walk shares one deadline (tree.walk_timeout).
func (s *Service) List(ctx context.Context, folder string) (drivetree.Listing, error) {
	q, err := s.newQuery(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, q.cfg.Tree.WalkTimeoutDuration())
	defer cancel()

	if q.resolver.LogicalPath(folder) == "" {
		return q.walker.ListTree(ctx, graph.RootRef, "")
	}

	entry, err := q.resolver.Resolve(ctx, folder)
	if err != nil {
		if errors.Is(err, drivetree.ErrNotFound) {
			return nil, notFound(err, "Folder '%s' not found", folder)
		}

		return nil, err
	}

	if !entry.IsFolder() {
		return nil, badRequest("'%s' is a file, not a folder", folder)
	}

	return q.walker.ListTree(ctx, entry.ID, entry.Path)
}

// DownloadLink returns the pre-authenticated download URL of the file at
// filePath. When the path lookup carries no URL the item is fetched by ID
// exactly once more.
func (s *Service) DownloadLink(ctx context.Context, filePath string) (*DownloadLink, error) {
	if drivetree.CleanPath(filePath) == "" {
		return nil, badRequest("file_path is required")
	}

	q, err := s.newQuery(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := q.resolver.Resolve(ctx, filePath)
	if err != nil {
		if errors.Is(err, drivetree.ErrNotFound) {
			return nil, notFound(err, "Item '%s' not found", filePath)
		}

		return nil, err
	}

	url, err := q.downloadURL(ctx, entry.ID, entry.DownloadURL)
	if err != nil {
		return nil, err
	}

	if url == "" {
		return nil, notFound(nil, "Download URL not available for '%s'", filePath)
	}

	return &DownloadLink{FilePath: filePath, URL: url}, nil
}

// downloadURL returns known if set, otherwise the URL from one by-ID fetch.
func (q *query) downloadURL(ctx context.Context, itemID, known string) (string, error) {
	if known != "" {
		return known, nil
	}

	item, err := q.session.Remote.GetItem(ctx, q.session.DriveID, itemID)
	if err != nil {
		return "", fmt.Errorf("refetching item %s: %w", itemID, err)
	}

	return item.DownloadURL, nil
}

// Search runs a drive-wide search. No hits is an empty slice, not an error.
func (s *Service) Search(ctx context.Context, text string) ([]SearchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, badRequest("q is required")
	}

	q, err := s.newQuery(ctx)
	if err != nil {
		return nil, err
	}

	items, err := q.session.Remote.Search(ctx, q.session.DriveID, text)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(items))
	for i := range items {
		results = append(results, searchResult(&items[i]))
	}

	s.logger.Debug("search complete",
		slog.String("query", text),
		slog.Int("hits", len(results)),
	)

	return results, nil
}

func searchResult(item *graph.Item) SearchResult {
	kind := drivetree.KindFile
	if item.IsFolder {
		kind = drivetree.KindFolder
	}

	return SearchResult{
		ID:          item.ID,
		Name:        item.Name,
		Path:        item.ParentPath,
		Kind:        kind,
		DownloadURL: item.DownloadURL,
	}
}
