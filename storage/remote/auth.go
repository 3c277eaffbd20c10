package remote

import (
	"context"

	"github.com/trezcool/assignflow/core/session"
	"github.com/trezcool/assignflow/services/supabase"
)

// auth adapts a supabase.Auth to session.AuthClient.
type auth struct {
	sb *supabase.Auth
}

var _ session.AuthClient = (*auth)(nil)

func AuthFactory(client *supabase.Client) session.AuthFactory {
	return func(refreshToken string) session.AuthClient {
		return &auth{sb: client.NewAuth(refreshToken)}
	}
}

func toRemote(s *supabase.Session) *session.RemoteSession {
	if s == nil {
		return nil
	}
	return &session.RemoteSession{
		UserID:       s.User.ID,
		Email:        s.User.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}

func (a *auth) GetSession(ctx context.Context) (*session.RemoteSession, error) {
	s, err := a.sb.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	return toRemote(s), nil
}

func (a *auth) SignInWithPassword(ctx context.Context, email, password string) (*session.RemoteSession, error) {
	s, err := a.sb.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return toRemote(s), nil
}

func (a *auth) SignOut(ctx context.Context) error {
	return a.sb.SignOut(ctx)
}

func (a *auth) OnAuthStateChange(fn func(session.AuthEvent, *session.RemoteSession)) func() {
	sub := a.sb.OnAuthStateChange(func(event supabase.AuthEvent, s *supabase.Session) {
		fn(session.AuthEvent(event), toRemote(s))
	})
	return sub.Unsubscribe
}

func (a *auth) Authorize(ctx context.Context) context.Context {
	return supabase.WithAccessToken(ctx, a.sb.AccessToken())
}
