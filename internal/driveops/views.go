package driveops

import (
	"math"

	"github.com/tonimelisma/datalake-api/internal/drivetree"
)

// JSON views shared by the HTTP API and the CLI's --json output.

const bytesPerMB = 1024 * 1024

// StatusResponse is the health-check body.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ListItem is one listing entry. File fields are omitted for folders.
type ListItem struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	*FileFields
}

// FileFields are the listing fields only files carry.
type FileFields struct {
	MimeType    *string `json:"mimeType"`
	Size        int64   `json:"size"`
	SizeMB      float64 `json:"size_mb"`
	DownloadURL *string `json:"downloadUrl"`
}

// ListResponse is the /list-files body.
type ListResponse struct {
	Count int        `json:"count"`
	Items []ListItem `json:"items"`
}

// MetadataResponse is the /metadata body.
type MetadataResponse struct {
	FilePath string `json:"file_path"`
	Metadata any    `json:"metadata"`
}

// DownloadResponse is the /download body.
type DownloadResponse struct {
	FilePath    string `json:"file_path"`
	DownloadURL string `json:"download_url"`
}

// SearchItem is one /search hit.
type SearchItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Path        *string `json:"path"`
	Type        string  `json:"type"`
	DownloadURL *string `json:"downloadUrl"`
}

// SearchResponse is the /search body.
type SearchResponse struct {
	Count   int          `json:"count"`
	Results []SearchItem `json:"results"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// NewListResponse converts a listing into its JSON view.
func NewListResponse(listing drivetree.Listing) ListResponse {
	items := make([]ListItem, 0, len(listing))

	for i := range listing {
		e := &listing[i]

		item := ListItem{
			Type: string(e.Kind),
			ID:   e.ID,
			Name: e.Name,
			Path: e.Path,
		}

		if !e.IsFolder() {
			item.FileFields = &FileFields{
				MimeType:    optional(e.MimeType),
				Size:        e.SizeBytes,
				SizeMB:      SizeMB(e.SizeBytes),
				DownloadURL: optional(e.DownloadURL),
			}
		}

		items = append(items, item)
	}

	return ListResponse{Count: len(items), Items: items}
}

// NewSearchResponse converts search results into their JSON view.
func NewSearchResponse(results []SearchResult) SearchResponse {
	items := make([]SearchItem, 0, len(results))

	for i := range results {
		r := &results[i]
		items = append(items, SearchItem{
			ID:          r.ID,
			Name:        r.Name,
			Path:        optional(r.Path),
			Type:        string(r.Kind),
			DownloadURL: optional(r.DownloadURL),
		})
	}

	return SearchResponse{Count: len(items), Results: items}
}

// SizeMB converts bytes to mebibytes rounded to two decimals.
func SizeMB(size int64) float64 {
	return math.Round(float64(size)/bytesPerMB*100) / 100
}

// optional maps "" to a JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
