// Package drivetree turns the Graph drive item graph into flat, path-addressed
// listings. Walker enumerates a folder recursively; Resolver maps logical
// paths to items. Both are request-scoped views over live remote state and
// hold no cache.
package drivetree

import (
	"errors"
	"strings"

	"github.com/tonimelisma/datalake-api/internal/graph"
)

var (
	// ErrNotFound is returned when no item exists at a logical path.
	ErrNotFound = errors.New("drivetree: item not found")

	// ErrDepthExceeded is returned when a walk descends past the configured
	// maximum folder depth.
	ErrDepthExceeded = errors.New("drivetree: maximum folder depth exceeded")

	// ErrCycle is returned when a folder reappears among its own ancestors.
	ErrCycle = errors.New("drivetree: folder cycle detected")
)

// Kind discriminates folders from files.
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
)

// Entry is one node of a listing. Path is slash-joined from the drive root
// with no leading slash; file-only fields are zero for folders.
type Entry struct {
	Kind        Kind
	ID          string
	Name        string
	Path        string
	MimeType    string
	SizeBytes   int64
	DownloadURL string
}

// IsFolder reports whether the entry is a folder.
func (e Entry) IsFolder() bool {
	return e.Kind == KindFolder
}

// Listing is a parent-before-children sequence of entries. Siblings keep the
// order the remote API returned them in.
type Listing []Entry

// FromItem projects a Graph item onto an Entry at the given path. Anything
// that is not a folder (including OneNote packages) is a file.
func FromItem(item *graph.Item, path string) Entry {
	if item.IsFolder {
		return Entry{
			Kind: KindFolder,
			ID:   item.ID,
			Name: item.Name,
			Path: path,
		}
	}

	return Entry{
		Kind:        KindFile,
		ID:          item.ID,
		Name:        item.Name,
		Path:        path,
		MimeType:    item.MimeType,
		SizeBytes:   item.Size,
		DownloadURL: item.DownloadURL,
	}
}

// JoinPath appends name to base. An empty base yields name alone, so paths
// never start with a slash.
func JoinPath(base, name string) string {
	return strings.TrimLeft(base+"/"+name, "/")
}
