package inmemdb

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/assignflow/core/session"
	"github.com/trezcool/assignflow/core/user"
)

var ErrInvalidGrant = errors.New("invalid login credentials")

// AddAccount registers auth credentials for a profile id.
func (db *DB) AddAccount(userID, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	t := db.account
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.table[strings.ToLower(email)] = &account{userID: userID, email: email, hash: hash}
	return nil
}

// AddUser registers both the profile and the credentials of usr.
func (db *DB) AddUser(ctx context.Context, usr user.User, password string) error {
	if _, err := NewProfileRepository(db).CreateProfile(ctx, user.ToProfile(usr)); err != nil {
		return err
	}
	return db.AddAccount(usr.ID, usr.Email, password)
}

func (db *DB) accountByID(id string) (*account, bool) {
	for _, acc := range db.account.table {
		if acc.userID == id {
			return acc, true
		}
	}
	return nil, false
}

// issue must hold db.account.mutex
func (db *DB) issue(acc *account) *session.RemoteSession {
	refresh := uuid.New().String()
	db.account.sessions[refresh] = acc.userID
	return &session.RemoteSession{
		UserID:       acc.userID,
		Email:        acc.email,
		AccessToken:  uuid.New().String(),
		RefreshToken: refresh,
	}
}

// Auth is the auth handle of one browser session against the in-memory accounts.
type Auth struct {
	db *DB

	mu        sync.Mutex
	current   *session.RemoteSession
	refresh   string
	listeners map[int]func(session.AuthEvent, *session.RemoteSession)
	nextID    int
}

var _ session.AuthClient = (*Auth)(nil)

// AuthFactory returns a session.AuthFactory over db.
func AuthFactory(db *DB) session.AuthFactory {
	return func(refreshToken string) session.AuthClient {
		return NewAuth(db, refreshToken)
	}
}

func NewAuth(db *DB, refreshToken string) *Auth {
	return &Auth{
		db:        db,
		refresh:   refreshToken,
		listeners: make(map[int]func(session.AuthEvent, *session.RemoteSession)),
	}
}

func (a *Auth) OnAuthStateChange(fn func(session.AuthEvent, *session.RemoteSession)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.listeners, id)
			a.mu.Unlock()
		})
	}
}

// Listeners is the number of live subscriptions.
func (a *Auth) Listeners() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.listeners)
}

func (a *Auth) emit(event session.AuthEvent, rs *session.RemoteSession) {
	a.mu.Lock()
	fns := make([]func(session.AuthEvent, *session.RemoteSession), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		fn(event, rs)
	}
}

// Emit fires an auth change as if it came from the backend.
func (a *Auth) Emit(event session.AuthEvent, rs *session.RemoteSession) {
	a.mu.Lock()
	a.current = rs
	a.mu.Unlock()
	a.emit(event, rs)
}

func (a *Auth) GetSession(_ context.Context) (*session.RemoteSession, error) {
	if err := a.db.check(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	if a.current != nil {
		cur := *a.current
		a.mu.Unlock()
		return &cur, nil
	}
	refresh := a.refresh
	a.mu.Unlock()
	if refresh == "" {
		return nil, nil
	}

	t := a.db.account
	t.mutex.Lock()
	userID, ok := t.sessions[refresh]
	var rs *session.RemoteSession
	if ok {
		delete(t.sessions, refresh)
		if acc, found := a.db.accountByID(userID); found {
			rs = a.db.issue(acc)
		}
	}
	t.mutex.Unlock()
	if rs == nil {
		return nil, ErrInvalidGrant
	}

	a.mu.Lock()
	a.current, a.refresh = rs, rs.RefreshToken
	a.mu.Unlock()
	a.emit(session.EventTokenRefreshed, rs)
	return rs, nil
}

func (a *Auth) SignInWithPassword(_ context.Context, email, password string) (*session.RemoteSession, error) {
	if err := a.db.check(); err != nil {
		return nil, err
	}
	t := a.db.account
	t.mutex.Lock()
	acc, ok := t.table[strings.ToLower(strings.TrimSpace(email))]
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		t.mutex.Unlock()
		return nil, ErrInvalidGrant
	}
	rs := a.db.issue(acc)
	t.mutex.Unlock()

	a.mu.Lock()
	a.current, a.refresh = rs, rs.RefreshToken
	a.mu.Unlock()
	a.emit(session.EventSignedIn, rs)
	return rs, nil
}

// SignOut always clears the local session, even when the backend is unavailable.
func (a *Auth) SignOut(_ context.Context) error {
	err := a.db.check()
	a.mu.Lock()
	refresh := a.refresh
	a.current, a.refresh = nil, ""
	a.mu.Unlock()
	if err == nil && refresh != "" {
		a.db.account.mutex.Lock()
		delete(a.db.account.sessions, refresh)
		a.db.account.mutex.Unlock()
	}
	a.emit(session.EventSignedOut, nil)
	return err
}

func (a *Auth) Authorize(ctx context.Context) context.Context { return ctx }
