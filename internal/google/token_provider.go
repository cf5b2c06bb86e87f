package google

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/consultcal/internal/instrumentation"
)

// TokenProvider supplies the token source used for Google API calls.
// This abstraction allows different token sources (refresh token, static token in tests, etc.)
type TokenProvider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// RefreshRecorder receives token refresh outcomes. *instrumentation.Metrics implements it.
type RefreshRecorder interface {
	RecordOAuthTokenRefresh(ctx context.Context, result string)
}

// RefreshTokenProvider mints access tokens from a stored refresh token.
type RefreshTokenProvider struct {
	creds    Credentials
	recorder RefreshRecorder
}

// NewRefreshTokenProvider creates a provider for creds. recorder may be nil.
func NewRefreshTokenProvider(creds Credentials, recorder RefreshRecorder) *RefreshTokenProvider {
	return &RefreshTokenProvider{creds: creds, recorder: recorder}
}

// TokenSource returns a caching token source that reports every refresh to
// the recorder.
func (p *RefreshTokenProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	ts, err := TokenSource(ctx, p.creds)
	if err != nil {
		return nil, err
	}
	if p.recorder == nil {
		return ts, nil
	}
	return &recordingTokenSource{ctx: ctx, base: ts, recorder: p.recorder}, nil
}

// StaticTokenProvider always returns the same token.
type StaticTokenProvider struct {
	Token *oauth2.Token
}

// TokenSource implements TokenProvider.
func (p StaticTokenProvider) TokenSource(context.Context) (oauth2.TokenSource, error) {
	return oauth2.StaticTokenSource(p.Token), nil
}

// recordingTokenSource counts refreshes by watching for a new access token.
type recordingTokenSource struct {
	ctx      context.Context
	base     oauth2.TokenSource
	recorder RefreshRecorder

	mu   sync.Mutex
	last string
}

func (s *recordingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		s.recorder.RecordOAuthTokenRefresh(s.ctx, instrumentation.OAuthResultFailure)
		return nil, err
	}

	s.mu.Lock()
	refreshed := tok.AccessToken != s.last
	s.last = tok.AccessToken
	s.mu.Unlock()

	if refreshed {
		s.recorder.RecordOAuthTokenRefresh(s.ctx, instrumentation.OAuthResultSuccess)
	}
	return tok, nil
}
