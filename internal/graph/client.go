package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

const defaultUserAgent = "datalake-api/0.1"

// maxErrorBody bounds how much of an error response body is kept in a
// GraphError. Graph error payloads are small; anything larger is noise.
const maxErrorBody = 64 << 10

// TokenSource provides OAuth2 bearer tokens. Defined at the consumer
// (graph package) per Go convention "accept interfaces, return structs".
type TokenSource interface {
	Token() (string, error)
}

// Client is an HTTP client for the Microsoft Graph drive API.
// It handles request construction, authentication, and error
// classification. Every call is a single attempt: a failed remote call is a
// failed request, and callers decide whether to try again.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *slog.Logger
	userAgent  string

	// content fetches pre-authenticated download URLs, which must not carry
	// the bearer token.
	content *resty.Client
}

// NewClient creates a Graph API client.
// baseURL is typically DefaultBaseURL. The httpClient's Timeout is the
// per-call timeout.
func NewClient(baseURL string, httpClient *http.Client, token TokenSource, logger *slog.Logger, userAgent string) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	content := resty.NewWithClient(contentHTTPClient(httpClient)).
		SetHeader("User-Agent", userAgent)

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		token:      token,
		logger:     logger,
		userAgent:  userAgent,
		content:    content,
	}
}

// contentHTTPClient returns a private copy of hc for resty, which fills in
// a nil Transport on the client it is given. hc is shared across requests
// and must stay unmodified.
func contentHTTPClient(hc *http.Client) *http.Client {
	clone := *hc
	if clone.Transport == nil {
		clone.Transport = http.DefaultTransport
	}

	return &clone
}

// Do executes a request against the Graph API.
// The path is appended to the client's base URL.
// The caller is responsible for closing the response body on success.
func (c *Client) Do(ctx context.Context, method, path string) (*http.Response, error) {
	resp, err := c.doOnce(ctx, method, c.baseURL+path)
	if err != nil {
		if errors.Is(err, ErrAuth) {
			return nil, err
		}

		return nil, transportError(ctx, method, path, err)
	}

	// 2xx: success.
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Debug("request succeeded",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)

		return resp, nil
	}

	graphErr := readGraphError(resp)

	c.logger.Warn("graph request failed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", graphErr.StatusCode),
		slog.String("request_id", graphErr.RequestID),
		slog.String("body", graphErr.Message),
	)

	return nil, graphErr
}

// doOnce executes a single HTTP request.
func (c *Client) doOnce(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	tok, err := c.token.Token()
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	return c.httpClient.Do(req)
}

// readGraphError drains and closes an error response into a GraphError.
func readGraphError(resp *http.Response) *GraphError {
	defer resp.Body.Close()

	errBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		errBody = []byte("(failed to read response body)")
	}

	return &GraphError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("request-id"),
		Message:    string(errBody),
		Err:        classifyStatus(resp.StatusCode),
	}
}

// transportError classifies a failure that produced no HTTP response.
// Timeouts (client timeout or caller deadline) become ErrTimeout; caller
// cancellation keeps context.Canceled in the chain.
func transportError(ctx context.Context, method, path string, err error) error {
	if isTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("graph: %s %s: %w: %w", method, path, ErrTimeout, err)
	}

	if ctx.Err() != nil {
		return fmt.Errorf("graph: request canceled: %w", ctx.Err())
	}

	return fmt.Errorf("graph: %s %s failed: %w", method, path, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var ne net.Error

	return errors.As(err, &ne) && ne.Timeout()
}
