package driveops

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/datalake-api/internal/config"
	"github.com/tonimelisma/datalake-api/internal/driveid"
	"github.com/tonimelisma/datalake-api/internal/graph"
)

// stubTokenSource implements graph.TokenSource for tests.
type stubTokenSource struct{}

func (s *stubTokenSource) Token() (string, error) { return "test-token", nil }

func configuredHolder() *config.Holder {
	cfg := config.DefaultConfig()
	cfg.Auth = config.AuthConfig{TenantID: "t", ClientID: "c", ClientSecret: "s"}
	cfg.Drive.DriveID = driveid.New("b!drive")

	return config.NewHolder(cfg, "")
}

func countingProvider(holder *config.Holder) (*SessionProvider, *int) {
	p := NewSessionProvider(holder, &http.Client{}, discardLogger())

	var mu sync.Mutex

	calls := 0
	p.TokenSourceFn = func(_ context.Context, _ graph.Credentials, _ *http.Client, _ *slog.Logger) graph.TokenSource {
		mu.Lock()
		defer mu.Unlock()

		calls++

		return &stubTokenSource{}
	}

	return p, &calls
}

func TestNewSessionProvider(t *testing.T) {
	p := NewSessionProvider(configuredHolder(), &http.Client{}, discardLogger())

	require.NotNil(t, p)
	assert.NotNil(t, p.TokenSourceFn, "default TokenSourceFn should be set")
}

func TestSessionProvider_Session(t *testing.T) {
	p, _ := countingProvider(configuredHolder())

	s, err := p.Session(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, s.Remote)
	assert.Equal(t, "b!drive", s.DriveID.String())
}

func TestSessionProvider_NotConfigured(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"no tenant", func(c *config.Config) { c.Auth.TenantID = "" }},
		{"no client", func(c *config.Config) { c.Auth.ClientID = "" }},
		{"no secret", func(c *config.Config) { c.Auth.ClientSecret = "" }},
		{"no drive", func(c *config.Config) { c.Drive.DriveID = driveid.ID{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holder := configuredHolder()
			tt.mutate(holder.Config())

			p, calls := countingProvider(holder)

			_, err := p.Session(t.Context())
			require.ErrorIs(t, err, ErrNotConfigured)
			assert.Zero(t, *calls)
		})
	}
}

func TestSessionProvider_TokenCaching(t *testing.T) {
	p, calls := countingProvider(configuredHolder())

	for range 3 {
		_, err := p.Session(t.Context())
		require.NoError(t, err)
	}

	assert.Equal(t, 1, *calls, "TokenSourceFn should be called exactly once for the same credentials")
}

func TestSessionProvider_RotatedSecretGetsNewSource(t *testing.T) {
	holder := configuredHolder()
	p, calls := countingProvider(holder)

	_, err := p.Session(t.Context())
	require.NoError(t, err)

	rotated := *holder.Config()
	rotated.Auth.ClientSecret = "rotated"
	holder.Swap(&rotated)

	_, err = p.Session(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 2, *calls)
}

func TestSessionProvider_CanceledRequestDoesNotPoisonCache(t *testing.T) {
	holder := configuredHolder()
	p := NewSessionProvider(holder, &http.Client{}, discardLogger())

	var got context.Context

	p.TokenSourceFn = func(ctx context.Context, _ graph.Credentials, _ *http.Client, _ *slog.Logger) graph.TokenSource {
		got = ctx
		return &stubTokenSource{}
	}

	ctx, cancel := context.WithCancel(t.Context())

	_, err := p.Session(ctx)
	require.NoError(t, err)

	cancel()
	assert.NoError(t, got.Err())
}

func TestSessionProvider_ThreadSafety(t *testing.T) {
	p, calls := countingProvider(configuredHolder())

	var wg sync.WaitGroup

	errs := make([]error, 20)

	for i := range 20 {
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()

			_, errs[idx] = p.Session(context.Background())
		}(i)
	}

	wg.Wait()

	for i, e := range errs {
		assert.NoError(t, e, "goroutine %d should not error", i)
	}

	assert.Equal(t, 1, *calls)
}
