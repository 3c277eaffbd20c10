// Package session owns the signed-in identity and UI state of each browser session.
package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// RemoteSession is the remote auth session of a signed-in user.
type RemoteSession struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}

// AuthClient is the remote auth handle of one browser session.
type AuthClient interface {
	// GetSession returns (nil, nil) when nobody is signed in.
	GetSession(ctx context.Context) (*RemoteSession, error)
	SignInWithPassword(ctx context.Context, email, password string) (*RemoteSession, error)
	SignOut(ctx context.Context) error
	// OnAuthStateChange calls fn on every auth state change until the returned func is called.
	OnAuthStateChange(fn func(AuthEvent, *RemoteSession)) (unsubscribe func())
	// Authorize makes remote calls issued with the returned context act for the signed-in user.
	Authorize(ctx context.Context) context.Context
}

// AuthFactory returns an auth handle, restoring a previous remote session when refreshToken is set.
type AuthFactory func(refreshToken string) AuthClient

var ErrNoRecord = errors.New("session record not found")

// Record is what survives a restart of the server.
type Record struct {
	ID           string    `json:"id"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	RosterUserID string    `json:"roster_user_id,omitempty"`
	View         string    `json:"view"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Persister stores session records.
type Persister interface {
	Save(rec Record) error
	// Load returns ErrNoRecord when id is unknown.
	Load(id string) (Record, error)
	Delete(id string) error
	// Expire deletes the records last updated before t.
	Expire(t time.Time) (int, error)
}
