package google

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// PlaygroundRedirectURL is the redirect URI registered for refresh tokens
// minted through the OAuth 2.0 Playground.
const PlaygroundRedirectURL = "https://developers.google.com/oauthplayground"

// Credentials identify the OAuth client and the long-lived refresh token
// used to act on the calendar owner's behalf.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string

	// RedirectURL defaults to PlaygroundRedirectURL.
	RedirectURL string

	// Endpoint defaults to google.Endpoint.
	Endpoint oauth2.Endpoint

	// Scopes defaults to DefaultOAuthScopes.
	Scopes []string
}

// Validate reports every missing field. The refresh token is only
// required when requireToken is true; the consent flow runs without one.
func (c Credentials) Validate(requireToken bool) error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if requireToken && c.RefreshToken == "" {
		missing = append(missing, "refresh token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing Google OAuth credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// OAuthConfig returns the oauth2 configuration for c.
func (c Credentials) OAuthConfig() *oauth2.Config {
	conf := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     c.Endpoint,
		RedirectURL:  c.RedirectURL,
		Scopes:       c.Scopes,
	}
	if conf.Endpoint.TokenURL == "" {
		conf.Endpoint = google.Endpoint
	}
	if conf.RedirectURL == "" {
		conf.RedirectURL = PlaygroundRedirectURL
	}
	if len(conf.Scopes) == 0 {
		conf.Scopes = DefaultOAuthScopes
	}
	return conf
}

// AuthURL returns the consent URL that yields a refresh token for c.
func AuthURL(c Credentials, state string) string {
	return c.OAuthConfig().AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for tokens.
func Exchange(ctx context.Context, c Credentials, code string) (*oauth2.Token, error) {
	tok, err := c.OAuthConfig().Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return tok, nil
}

// TokenSource returns a token source that refreshes access tokens from
// c.RefreshToken. Tokens are cached until shortly before they expire.
func TokenSource(ctx context.Context, c Credentials) (oauth2.TokenSource, error) {
	if err := c.Validate(true); err != nil {
		return nil, err
	}
	return c.OAuthConfig().TokenSource(ctx, &oauth2.Token{
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
		// Already expired so the first call refreshes.
		Expiry: time.Unix(1, 0),
	}), nil
}

// HTTPClient returns an HTTP client authenticated with ts.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func HTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client
}
