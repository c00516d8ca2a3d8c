package driveops

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tonimelisma/datalake-api/internal/config"
	"github.com/tonimelisma/datalake-api/internal/drivetree"
	"github.com/tonimelisma/datalake-api/internal/graph"
)

// MetadataDoc is a parsed metadata document and where it came from: the
// requested path, the remote parent path of a search hit, or a local file.
type MetadataDoc struct {
	FilePath string
	Document any
}

// Metadata loads and parses a metadata document. With a filePath the file at
// that path is read. Without one, the default document named by
// metadata.file_name is located in the drive and/or read from
// metadata.local_path, in the order metadata.fallback selects.
func (s *Service) Metadata(ctx context.Context, filePath string) (*MetadataDoc, error) {
	if drivetree.CleanPath(filePath) != "" {
		q, err := s.newQuery(ctx)
		if err != nil {
			return nil, err
		}

		return q.metadataAt(ctx, filePath)
	}

	cfg := s.holder.Config()
	meta := cfg.Metadata

	switch meta.Fallback {
	case config.FallbackLocalFirst:
		doc, err := s.localMetadata(meta)
		if err == nil || !errors.Is(err, ErrNotFound) {
			return doc, err
		}

		s.logger.Debug("local metadata unavailable, searching drive", slog.String("path", meta.LocalPath))

		return s.remoteMetadata(ctx)

	case config.FallbackRemoteFirst:
		doc, err := s.remoteMetadata(ctx)
		if err == nil || !errors.Is(err, ErrNotFound) || meta.LocalPath == "" {
			return doc, err
		}

		s.logger.Info("remote metadata not found, using local copy",
			slog.String("path", meta.LocalPath),
		)

		return s.localMetadata(meta)

	default:
		return s.remoteMetadata(ctx)
	}
}

// metadataAt reads and parses the file at filePath.
func (q *query) metadataAt(ctx context.Context, filePath string) (*MetadataDoc, error) {
	entry, err := q.resolver.Resolve(ctx, filePath)
	if err != nil {
		if errors.Is(err, drivetree.ErrNotFound) {
			return nil, notFound(err, "File '%s' not found", filePath)
		}

		return nil, err
	}

	if entry.IsFolder() {
		return nil, badRequest("'%s' is a folder, not a file", filePath)
	}

	if entry.DownloadURL == "" {
		return nil, notFound(nil, "Download URL not available for the requested file.")
	}

	doc, err := q.fetchDocument(ctx, entry.Name, entry.DownloadURL)
	if err != nil {
		return nil, err
	}

	return &MetadataDoc{FilePath: filePath, Document: doc}, nil
}

// remoteMetadata finds the default metadata file through drive search.
func (s *Service) remoteMetadata(ctx context.Context) (*MetadataDoc, error) {
	q, err := s.newQuery(ctx)
	if err != nil {
		return nil, err
	}

	name := q.cfg.Metadata.FileName

	hits, err := q.session.Remote.Search(ctx, q.session.DriveID, name)
	if err != nil {
		return nil, err
	}

	hit := firstNamed(hits, name)
	if hit == nil {
		return nil, notFound(nil, "%s not found in drive", name)
	}

	url, err := q.downloadURL(ctx, hit.ID, hit.DownloadURL)
	if err != nil {
		return nil, err
	}

	if url == "" {
		return nil, notFound(nil, "Download URL missing for %s", name)
	}

	doc, err := q.fetchDocument(ctx, hit.Name, url)
	if err != nil {
		return nil, err
	}

	return &MetadataDoc{FilePath: hit.ParentPath, Document: doc}, nil
}

// firstNamed returns the first file hit whose name matches name ignoring
// case. Search is a full-text match, so "metadata.json.bak" can rank first.
func firstNamed(hits []graph.Item, name string) *graph.Item {
	for i := range hits {
		if !hits[i].IsFolder && strings.EqualFold(hits[i].Name, name) {
			return &hits[i]
		}
	}

	return nil
}

func (q *query) fetchDocument(ctx context.Context, name, url string) (any, error) {
	maxBytes := q.cfg.Metadata.MaxSizeBytes()

	data, err := q.session.Remote.FetchContent(ctx, url, maxBytes)
	if err != nil {
		if errors.Is(err, graph.ErrContentTooLarge) {
			return nil, invalidContent(err, "Requested file is larger than %d bytes", maxBytes)
		}

		return nil, err
	}

	return parseDocument(name, data)
}

// localMetadata reads the configured local metadata file. A missing or
// unconfigured file is ErrNotFound.
func (s *Service) localMetadata(meta config.MetadataConfig) (*MetadataDoc, error) {
	if meta.LocalPath == "" {
		return nil, notFound(nil, "%s not found", meta.FileName)
	}

	f, err := os.Open(meta.LocalPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFound(err, "%s not found", meta.FileName)
		}

		return nil, fmt.Errorf("opening local metadata: %w", err)
	}
	defer f.Close()

	maxBytes := meta.MaxSizeBytes()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading local metadata: %w", err)
	}

	if int64(len(data)) > maxBytes {
		return nil, invalidContent(nil, "Local metadata file is larger than %d bytes", maxBytes)
	}

	doc, err := parseDocument(meta.LocalPath, data)
	if err != nil {
		return nil, err
	}

	return &MetadataDoc{FilePath: meta.LocalPath, Document: doc}, nil
}

// parseDocument decodes data as YAML when name ends in .yaml or .yml and
// as JSON otherwise.
func parseDocument(name string, data []byte) (any, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, invalidContent(err, "Requested file is not valid YAML")
		}

		if doc == nil {
			return nil, invalidContent(nil, "Requested file is empty")
		}

		compatible, err := jsonCompatible(doc)
		if err != nil {
			return nil, invalidContent(err, "Requested file is not representable as JSON")
		}

		return compatible, nil
	default:
		var doc any

		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		if err := dec.Decode(&doc); err != nil {
			return nil, invalidContent(err, "Requested file is not valid JSON")
		}

		if dec.More() {
			return nil, invalidContent(nil, "Requested file is not valid JSON")
		}

		return doc, nil
	}
}

// jsonCompatible converts YAML maps with non-string keys into string-keyed
// maps so the document can be re-encoded as JSON. NaN and infinities have
// no JSON form and are rejected.
func jsonCompatible(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			conv, err := jsonCompatible(val)
			if err != nil {
				return nil, err
			}

			t[k] = conv
		}

		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))

		for k, val := range t {
			conv, err := jsonCompatible(val)
			if err != nil {
				return nil, err
			}

			out[fmt.Sprint(k)] = conv
		}

		return out, nil
	case []any:
		for i, val := range t {
			conv, err := jsonCompatible(val)
			if err != nil {
				return nil, err
			}

			t[i] = conv
		}

		return t, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("non-finite number %v", t)
		}

		return t, nil
	default:
		return v, nil
	}
}
