package auth

import (
	"context"

	"github.com/umesh2702/OUTLAW/provider"
)

// TokenValidator is the slice of the provider client the session source
// needs: validate an access token and revoke a session.
type TokenValidator interface {
	GetUser(ctx context.Context, accessToken string) (*provider.User, error)
	SignOut(ctx context.Context, accessToken, scope string) error
}

// providerSource answers session checks for one browsing session by pairing
// the stored token record with the provider's user endpoint.
type providerSource struct {
	client    TokenValidator
	sessions  *SessionStore
	sessionID string
}

// NewProviderSource builds a SessionSource for sessionID.
func NewProviderSource(client TokenValidator, sessions *SessionStore, sessionID string) SessionSource {
	return &providerSource{client: client, sessions: sessions, sessionID: sessionID}
}

func (p *providerSource) CurrentSession(ctx context.Context) (*Session, error) {
	rec, ok := p.sessions.Get(ctx, p.sessionID)
	if !ok {
		// No stored tokens: explicitly no session.
		return nil, nil
	}

	user, err := p.client.GetUser(ctx, rec.AccessToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Provider rejected the token: the session is gone, not erroring.
		return nil, nil
	}
	return &Session{UserID: user.ID, AccessToken: rec.AccessToken}, nil
}

func (p *providerSource) SignOutGlobal(ctx context.Context) error {
	rec, ok := p.sessions.Get(ctx, p.sessionID)
	if !ok {
		return nil
	}
	return p.client.SignOut(ctx, rec.AccessToken, provider.ScopeGlobal)
}
