package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tonimelisma/datalake-api/internal/driveid"
)

// listChildrenPageSize is the $top value for ListChildren requests.
// 200 is the maximum allowed by the Graph API for drive item collections.
const listChildrenPageSize = 200

// encodePathSegments URL-encodes each segment of a slash-separated path.
// Characters like #, ?, %, and spaces are encoded per-segment so the
// resulting path is safe for interpolation into Graph API URLs.
func encodePathSegments(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}

	return strings.Join(segments, "/")
}

// escapeSearchQuery quotes a search term for the OData search(q='...')
// function: single quotes are doubled, then the term is path-escaped.
func escapeSearchQuery(q string) string {
	return url.PathEscape(strings.ReplaceAll(q, "'", "''"))
}

// driveItemResponse mirrors the Graph API driveItem JSON.
// Unexported: callers use Item via toItem() normalization.
type driveItemResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Size            int64            `json:"size"`
	ParentReference *parentRef       `json:"parentReference"`
	File            *fileFacet       `json:"file"`
	Folder          *folderFacet     `json:"folder"`
	Package         *json.RawMessage `json:"package"`
	DownloadURL     string           `json:"@microsoft.graph.downloadUrl"` //nolint:tagliatelle // Graph API annotation key
}

type parentRef struct {
	ID      string `json:"id"`
	DriveID string `json:"driveId"`
	Path    string `json:"path"`
}

type fileFacet struct {
	MimeType string `json:"mimeType"`
}

// folderFacet.ChildCount is nil when Graph omits it, which is not the same
// as an empty folder.
type folderFacet struct {
	ChildCount *int `json:"childCount"`
}

// collectionResponse is a page of driveItems (children or search hits).
type collectionResponse struct {
	Value    []driveItemResponse `json:"value"`
	NextLink string              `json:"@odata.nextLink"` //nolint:tagliatelle // OData annotation key
}

// toItem normalizes a Graph API driveItem response into our Item type.
func (d *driveItemResponse) toItem() Item {
	item := Item{
		ID:          d.ID,
		Name:        d.Name,
		Size:        d.Size,
		IsFolder:    d.Folder != nil,
		IsPackage:   d.Package != nil,
		ChildCount:  ChildCountUnknown,
		DownloadURL: d.DownloadURL,
	}

	if d.ParentReference != nil {
		item.DriveID = d.ParentReference.DriveID
		item.ParentID = d.ParentReference.ID
		item.ParentPath = d.ParentReference.Path
	}

	if d.Folder != nil && d.Folder.ChildCount != nil {
		item.ChildCount = *d.Folder.ChildCount
	}

	if d.File != nil {
		item.MimeType = d.File.MimeType
	}

	return item
}

// fetchItem fetches a single drive item from the given API path and decodes it.
// Shared by GetItem (ID-based) and GetItemByPath (path-based) to avoid duplication.
func (c *Client) fetchItem(ctx context.Context, apiPath string) (*Item, error) {
	resp, err := c.Do(ctx, http.MethodGet, apiPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var dir driveItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&dir); err != nil {
		return nil, fmt.Errorf("graph: decoding item response: %w", err)
	}

	item := dir.toItem()
	item.Name = decodeName(item.ID, item.Name, c.logger)

	return &item, nil
}

// fetchCollection paginates through a driveItem collection starting from the
// given API path, following @odata.nextLink until the full set is retrieved.
// Shared by ListChildren and Search.
func (c *Client) fetchCollection(ctx context.Context, apiPath string) ([]Item, error) {
	var items []Item

	page := 1

	for apiPath != "" {
		pageItems, nextPath, err := c.collectionPage(ctx, apiPath, page)
		if err != nil {
			return nil, err
		}

		items = append(items, pageItems...)
		apiPath = nextPath
		page++
	}

	return normalizeCollection(items, c.logger), nil
}

// GetItem retrieves a single drive item by ID. itemID may be RootRef.
func (c *Client) GetItem(ctx context.Context, driveID driveid.ID, itemID string) (*Item, error) {
	c.logger.Debug("getting item",
		slog.String("drive_id", driveID.String()),
		slog.String("item_id", itemID),
	)

	if itemID == RootRef {
		return c.fetchItem(ctx, fmt.Sprintf("/drives/%s/root", driveID))
	}

	return c.fetchItem(ctx, fmt.Sprintf("/drives/%s/items/%s", driveID, url.PathEscape(itemID)))
}

// GetItemByPath retrieves a drive item by its path relative to the drive root.
// The path must NOT have a leading slash (caller strips it).
// For root, callers should use GetItem with RootRef instead.
func (c *Client) GetItemByPath(ctx context.Context, driveID driveid.ID, remotePath string) (*Item, error) {
	c.logger.Debug("getting item by path",
		slog.String("drive_id", driveID.String()),
		slog.String("path", remotePath),
	)

	return c.fetchItem(ctx, fmt.Sprintf("/drives/%s/root:/%s:", driveID, encodePathSegments(remotePath)))
}

// ListChildren returns all children of a folder, handling pagination
// automatically. folderRef is RootRef or an item ID.
func (c *Client) ListChildren(ctx context.Context, driveID driveid.ID, folderRef string) ([]Item, error) {
	apiPath := fmt.Sprintf("/drives/%s/items/%s/children?$top=%d", driveID, url.PathEscape(folderRef), listChildrenPageSize)
	if folderRef == RootRef {
		apiPath = fmt.Sprintf("/drives/%s/root/children?$top=%d", driveID, listChildrenPageSize)
	}

	items, err := c.fetchCollection(ctx, apiPath)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("listed children",
		slog.String("drive_id", driveID.String()),
		slog.String("folder", folderRef),
		slog.Int("total_items", len(items)),
	)

	return items, nil
}

// Search runs a drive-wide name/content search. Zero hits is an empty
// slice, not an error.
func (c *Client) Search(ctx context.Context, driveID driveid.ID, query string) ([]Item, error) {
	c.logger.Info("searching drive",
		slog.String("drive_id", driveID.String()),
		slog.String("query", query),
	)

	items, err := c.fetchCollection(ctx,
		fmt.Sprintf("/drives/%s/root/search(q='%s')", driveID, escapeSearchQuery(query)))
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []Item{}
	}

	return items, nil
}

// collectionPage fetches a single page and returns the items and the next
// page path (empty if no more pages).
func (c *Client) collectionPage(ctx context.Context, path string, page int) ([]Item, string, error) {
	resp, err := c.Do(ctx, http.MethodGet, path)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	var cr collectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, "", fmt.Errorf("graph: decoding collection response: %w", err)
	}

	items := make([]Item, 0, len(cr.Value))
	for i := range cr.Value {
		items = append(items, cr.Value[i].toItem())
	}

	c.logger.Debug("fetched collection page",
		slog.Int("page", page),
		slog.Int("count", len(items)),
	)

	var nextPath string
	if cr.NextLink != "" {
		var stripErr error

		nextPath, stripErr = c.stripBaseURL(cr.NextLink)
		if stripErr != nil {
			return nil, "", stripErr
		}
	}

	return items, nextPath, nil
}

// stripBaseURL removes the client's base URL prefix from a full URL,
// returning the path + query string for use with Do().
// Returns an error if the URL doesn't start with the expected base.
func (c *Client) stripBaseURL(fullURL string) (string, error) {
	if !strings.HasPrefix(fullURL, c.baseURL) {
		return "", fmt.Errorf("graph: nextLink URL %q does not match base URL %q", fullURL, c.baseURL)
	}

	return fullURL[len(c.baseURL):], nil
}
