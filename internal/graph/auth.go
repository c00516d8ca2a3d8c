package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/microsoft"
)

// GraphScope requests every application permission granted to the app
// registration, which is how the client-credentials grant expresses scope.
const GraphScope = "https://graph.microsoft.com/.default"

// Credentials are the service principal inputs of the client-credentials
// exchange.
type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string

	// TokenURL overrides the tenant's public Azure AD token endpoint, for
	// national clouds. Empty uses microsoft.AzureADEndpoint(TenantID).
	TokenURL string
}

// NewClientCredentials returns a TokenSource that exchanges service
// credentials for Graph bearer tokens at the tenant's Azure AD endpoint.
//
// Tokens are cached process-wide and refreshed by the oauth2 library shortly
// before their stated expiry, under the library's own lock. ctx must outlive
// the TokenSource: it carries httpClient to every token request. Pass
// context.Background() for a long-running server.
func NewClientCredentials(
	ctx context.Context,
	creds Credentials,
	httpClient *http.Client,
	logger *slog.Logger,
) TokenSource {
	cfg := clientCredentialsConfig(creds)

	return newCredentialSource(ctx, cfg, httpClient, logger)
}

// clientCredentialsConfig builds the oauth2 client-credentials config for
// the tenant's v2.0 token endpoint.
func clientCredentialsConfig(creds Credentials) *clientcredentials.Config {
	tokenURL := creds.TokenURL
	if tokenURL == "" {
		tokenURL = microsoft.AzureADEndpoint(creds.TenantID).TokenURL
	}

	return &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{GraphScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
}

// newCredentialSource wires a pre-built config into a tokenBridge. Accepts
// the config directly so tests can point TokenURL at a mock endpoint.
func newCredentialSource(
	ctx context.Context,
	cfg *clientcredentials.Config,
	httpClient *http.Client,
	logger *slog.Logger,
) TokenSource {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	return &tokenBridge{src: cfg.TokenSource(ctx), logger: logger}
}

// tokenBridge adapts oauth2.TokenSource to graph.TokenSource.
// The identity provider's diagnostics are logged here and only the ErrAuth
// sentinel travels further, so callers never echo them to HTTP clients.
type tokenBridge struct {
	src    oauth2.TokenSource
	logger *slog.Logger
}

func (b *tokenBridge) Token() (string, error) {
	t, err := b.src.Token()
	if err != nil {
		attrs := []any{slog.String("error", err.Error())}

		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			attrs = append(attrs,
				slog.String("error_code", re.ErrorCode),
				slog.String("error_description", re.ErrorDescription),
			)

			if re.Response != nil {
				attrs = append(attrs, slog.Int("status", re.Response.StatusCode))
			}
		}

		b.logger.Error("token acquisition failed", attrs...)

		return "", fmt.Errorf("%w: %w", ErrAuth, err)
	}

	if t.AccessToken == "" {
		b.logger.Error("token response lacks an access token")

		return "", fmt.Errorf("%w: empty access token", ErrAuth)
	}

	b.logger.Debug("token acquired",
		slog.Time("expiry", t.Expiry),
	)

	return t.AccessToken, nil
}
