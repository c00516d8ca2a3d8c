package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrNoDownloadURL is returned when a drive item has no pre-authenticated download URL.
// This can happen for folders, OneNote packages, or zero-byte files.
var ErrNoDownloadURL = errors.New("graph: item has no download URL")

// ErrContentTooLarge is returned when fetched content exceeds the caller's limit.
var ErrContentTooLarge = errors.New("graph: content exceeds size limit")

// FetchContent reads the body behind a pre-authenticated download URL.
// The URL carries its own authorization, so no bearer token is sent, and the
// URL itself is never logged. maxBytes <= 0 disables the size limit.
func (c *Client) FetchContent(ctx context.Context, downloadURL string, maxBytes int64) ([]byte, error) {
	if downloadURL == "" {
		return nil, ErrNoDownloadURL
	}

	resp, err := c.content.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(downloadURL)
	if err != nil {
		return nil, transportError(ctx, http.MethodGet, "(download url)", err)
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= http.StatusBadRequest {
		errBody, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))

		c.logger.Warn("content download failed",
			slog.Int("status", resp.StatusCode()),
		)

		return nil, &GraphError{
			StatusCode: resp.StatusCode(),
			RequestID:  resp.Header().Get("request-id"),
			Message:    string(errBody),
			Err:        classifyStatus(resp.StatusCode()),
		}
	}

	reader := body
	if maxBytes > 0 {
		reader = io.NopCloser(io.LimitReader(body, maxBytes+1))
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("graph: reading download content: %w", transportError(ctx, http.MethodGet, "(download url)", err))
	}

	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrContentTooLarge, maxBytes)
	}

	c.logger.Debug("content downloaded",
		slog.Int("bytes", len(data)),
	)

	return data, nil
}
