package driveops

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/tonimelisma/datalake-api/internal/config"
	"github.com/tonimelisma/datalake-api/internal/driveid"
	"github.com/tonimelisma/datalake-api/internal/graph"
)

// ErrNotConfigured is returned when the current config lacks credentials or
// a drive ID. Resolve rejects such configs at startup; a reload that blanks
// them is caught here.
var ErrNotConfigured = errors.New("driveops: credentials or drive ID not configured")

// Session holds an authenticated client and the drive it targets.
type Session struct {
	Remote  Remote
	DriveID driveid.ID
}

// TokenSourceFunc creates a TokenSource for one set of service credentials.
type TokenSourceFunc func(
	ctx context.Context, creds graph.Credentials, httpClient *http.Client, logger *slog.Logger,
) graph.TokenSource

// SessionProvider caches TokenSources by credentials and creates Sessions on
// demand. Requests with the same credentials share one TokenSource, so the
// access token is fetched once and reused until it nears expiry. Rotated
// credentials get a fresh TokenSource on the next request.
type SessionProvider struct {
	holder     *config.Holder
	httpClient *http.Client
	logger     *slog.Logger

	// TokenSourceFn creates a TokenSource. Exported for test injection;
	// defaults to graph.NewClientCredentials.
	TokenSourceFn TokenSourceFunc

	mu         sync.Mutex
	tokenCache map[graph.Credentials]graph.TokenSource
}

// NewSessionProvider creates a SessionProvider with default TokenSourceFn.
// httpClient's Timeout is the per-call timeout for Graph requests.
func NewSessionProvider(holder *config.Holder, httpClient *http.Client, logger *slog.Logger) *SessionProvider {
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionProvider{
		holder:        holder,
		httpClient:    httpClient,
		logger:        logger,
		TokenSourceFn: graph.NewClientCredentials,
		tokenCache:    make(map[graph.Credentials]graph.TokenSource),
	}
}

// Session creates an authenticated Session from the current config snapshot.
// No network call happens here; the token is fetched lazily by the first
// Graph request.
func (p *SessionProvider) Session(ctx context.Context) (*Session, error) {
	cfg := p.holder.Config()

	creds := graph.Credentials{
		TenantID:     cfg.Auth.TenantID,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		TokenURL:     cfg.Network.TokenURL,
	}

	if creds.TenantID == "" || creds.ClientID == "" || creds.ClientSecret == "" || cfg.Drive.DriveID.IsZero() {
		return nil, ErrNotConfigured
	}

	ts := p.getOrCreateTokenSource(ctx, creds)
	client := graph.NewClient(cfg.Network.GraphBaseURL, p.httpClient, ts, p.logger, cfg.Network.UserAgent)

	return &Session{
		Remote:  client,
		DriveID: cfg.Drive.DriveID,
	}, nil
}

// getOrCreateTokenSource returns the cached TokenSource for creds, creating
// one on cache miss. Thread-safe via mutex.
func (p *SessionProvider) getOrCreateTokenSource(ctx context.Context, creds graph.Credentials) graph.TokenSource {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ts, ok := p.tokenCache[creds]; ok {
		return ts
	}

	p.logger.Debug("creating token source",
		slog.String("tenant_id", creds.TenantID),
		slog.String("client_id", creds.ClientID),
	)

	// The TokenSource outlives this request, so it must not inherit the
	// request's cancellation.
	ts := p.TokenSourceFn(context.WithoutCancel(ctx), creds, p.httpClient, p.logger)
	p.tokenCache[creds] = ts

	return ts
}
