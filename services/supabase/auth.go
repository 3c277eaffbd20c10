package supabase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
)

type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// refresh a bit before the access token actually expires
const expiryMargin = 30 * time.Second

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"-"`
	User         AuthUser  `json:"user"`
}

func (s *Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.Add(expiryMargin).After(s.ExpiresAt)
}

// Listener is notified of every auth state change.
type Listener func(event AuthEvent, session *Session)

// Subscription is returned by OnAuthStateChange.
type Subscription struct {
	auth *Auth
	id   int
}

// Unsubscribe stops the notifications. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.auth.mu.Lock()
	defer s.auth.mu.Unlock()
	delete(s.auth.listeners, s.id)
}

// Auth holds the auth state of one signed-in browser session.
type Auth struct {
	client *Client
	now    func() time.Time

	mu           sync.Mutex
	session      *Session
	refreshToken string // set when restoring a session; exchanged on the next GetSession
	listeners    map[int]Listener
	nextID       int
}

// NewAuth returns an auth handle. A non-empty refreshToken restores a previous session.
func (c *Client) NewAuth(refreshToken string) *Auth {
	return &Auth{
		client:       c,
		now:          time.Now,
		refreshToken: refreshToken,
		listeners:    make(map[int]Listener),
	}
}

// OnAuthStateChange registers fn for auth state changes. Listeners run synchronously in the goroutine
// that caused the change, after the auth state was updated.
func (a *Auth) OnAuthStateChange(fn Listener) *Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	a.listeners[a.nextID] = fn
	return &Subscription{auth: a, id: a.nextID}
}

func (a *Auth) notify(event AuthEvent, session *Session) {
	a.mu.Lock()
	fns := make([]Listener, 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(event, session)
	}
}

func (a *Auth) setSession(s *Session) {
	if s != nil && s.ExpiresIn > 0 {
		s.ExpiresAt = a.now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	a.mu.Lock()
	a.session = s
	a.refreshToken = ""
	a.mu.Unlock()
}

// GetSession returns the current session, refreshing it when expired or restored from a refresh token.
// It returns (nil, nil) when nobody is signed in.
func (a *Auth) GetSession(ctx context.Context) (*Session, error) {
	a.mu.Lock()
	sess, token := a.session, a.refreshToken
	a.mu.Unlock()

	if sess != nil && !sess.expired(a.now()) {
		cp := *sess
		return &cp, nil
	}
	if sess != nil {
		token = sess.RefreshToken
	}
	if token == "" {
		return nil, nil
	}

	refreshed, err := a.tokenGrant(ctx, "refresh_token", map[string]string{"refresh_token": token})
	if err != nil {
		a.setSession(nil)
		return nil, errors.Wrap(err, "refreshing session")
	}
	a.setSession(refreshed)
	a.notify(EventTokenRefreshed, refreshed)
	cp := *refreshed
	return &cp, nil
}

func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	sess, err := a.tokenGrant(ctx, "password", map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, errors.Wrap(err, "signing in")
	}
	a.setSession(sess)
	a.notify(EventSignedIn, sess)
	cp := *sess
	return &cp, nil
}

// SignOut revokes the session remotely. Local state is cleared and listeners notified even when that fails.
func (a *Auth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	sess := a.session
	a.mu.Unlock()

	var err error
	if sess != nil {
		err = a.client.do(ctx, rest.Request{
			Method:  rest.Post,
			BaseURL: a.client.url + "/auth/v1/logout",
			Headers: a.client.headers(sess.AccessToken),
		}, nil)
	}
	a.setSession(nil)
	a.notify(EventSignedOut, nil)
	return errors.Wrap(err, "signing out")
}

// AccessToken returns the current access token, or "" when signed out.
func (a *Auth) AccessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return ""
	}
	return a.session.AccessToken
}

func (a *Auth) tokenGrant(ctx context.Context, grantType string, payload map[string]string) (*Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	sess := new(Session)
	err = a.client.do(ctx, rest.Request{
		Method:      rest.Post,
		BaseURL:     a.client.url + "/auth/v1/token",
		Headers:     a.client.headers(""),
		QueryParams: map[string]string{"grant_type": grantType},
		Body:        body,
	}, sess)
	if err != nil {
		return nil, err
	}
	return sess, nil
}
