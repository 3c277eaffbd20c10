package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/metrics"
	"github.com/trezcool/assignflow/core/navigation"
	"github.com/trezcool/assignflow/core/user"
)

type SignInSource string

const (
	SourceRemote SignInSource = "remote"
	SourceRoster SignInSource = "roster"
)

// SignInResult reports a sign-in attempt. Error is a message meant for the login form.
type SignInResult struct {
	OK     bool
	Source SignInSource
	Error  string
}

// Store is the auth & UI state of one browser session.
type Store struct {
	id       string
	auth     AuthClient
	profiles user.ProfileRepository
	roster   *user.Roster
	logger   core.Logger
	timeout  time.Duration
	onChange func(*Store)

	mu          sync.RWMutex
	identity    *user.User
	fromRoster  bool
	remote      *RemoteSession
	loading     bool
	seq         uint64 // bumped on every auth change; stale profile lookups compare against it
	view        navigation.Selector
	local       map[string]interface{}
	unsubscribe func()
	lastSeen    time.Time
}

func NewStore(id string, auth AuthClient, profiles user.ProfileRepository, roster *user.Roster, logger core.Logger) *Store {
	return &Store{
		id:       id,
		auth:     auth,
		profiles: profiles,
		roster:   roster,
		logger:   logger,
		timeout:  10 * time.Second,
		loading:  true,
		view:     navigation.KeyDashboard,
		local:    make(map[string]interface{}),
		lastSeen: time.Now(),
	}
}

func (s *Store) ID() string { return s.id }

// Init subscribes to auth changes, then resolves the identity of an existing remote session.
// When an auth change arrives while that check is in flight, the check's result is dropped.
func (s *Store) Init(ctx context.Context) {
	s.mu.Lock()
	if s.unsubscribe == nil {
		s.unsubscribe = s.auth.OnAuthStateChange(s.handleAuthChange)
	}
	s.loading = true
	start := s.seq
	s.mu.Unlock()

	var usr *user.User
	remote, err := s.auth.GetSession(ctx)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("session %s: getting remote session: %v", s.id, err), err)
		remote = nil
	} else if remote != nil {
		if usr, err = s.resolve(ctx, remote); err != nil {
			s.logger.Warn(fmt.Sprintf("session %s: resolving profile: %v", s.id, err), err)
		}
	}

	s.mu.Lock()
	if s.seq == start {
		s.identity, s.remote, s.fromRoster = usr, remote, false
	}
	s.loading = false
	s.mu.Unlock()
	s.changed()
}

// Close releases the auth subscription. It is safe to call more than once.
func (s *Store) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Store) resolve(ctx context.Context, remote *RemoteSession) (*user.User, error) {
	p, err := s.profiles.GetProfile(s.auth.Authorize(ctx), remote.UserID)
	if err != nil {
		return nil, err
	}
	usr := user.FromProfile(p, remote.Email)
	return &usr, nil
}

func (s *Store) handleAuthChange(event AuthEvent, remote *RemoteSession) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	var usr *user.User
	if remote != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		var err error
		if usr, err = s.resolve(ctx, remote); err != nil {
			s.logger.Warn(fmt.Sprintf("session %s: resolving profile after %s: %v", s.id, event, err), err)
		}
	}

	s.mu.Lock()
	if s.seq == seq {
		s.identity, s.remote, s.fromRoster = usr, remote, false
	}
	s.loading = false
	s.mu.Unlock()
	s.changed()
}

// Identity returns the signed-in user, if any.
func (s *Store) Identity() (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return user.User{}, false
	}
	return *s.identity, true
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SignIn tries the remote backend first, then the demo roster. It never fails loudly:
// the result carries the outcome and a message for the login form.
func (s *Store) SignIn(ctx context.Context, email, password string, role user.Role) SignInResult {
	email = core.CleanString(email)

	if _, err := s.auth.SignInWithPassword(ctx, email, password); err == nil {
		if _, ok := s.Identity(); ok {
			s.afterSignIn()
			metrics.SignIns.WithLabelValues(string(SourceRemote)).Inc()
			return SignInResult{OK: true, Source: SourceRemote}
		}
		s.logger.Warn(fmt.Sprintf("session %s: signed in remotely but no profile for %s, trying the demo roster", s.id, email))
	} else {
		s.logger.Info(fmt.Sprintf("session %s: remote sign-in failed, trying the demo roster: %v", s.id, err))
	}

	usr, err := s.roster.Match(email, password, role)
	if err != nil {
		metrics.SignIns.WithLabelValues("failed").Inc()
		return SignInResult{Error: user.ErrInvalidCredentials.Error()}
	}

	s.mu.Lock()
	s.seq++
	s.identity, s.fromRoster = &usr, true
	s.loading = false
	s.mu.Unlock()
	s.afterSignIn()
	metrics.SignIns.WithLabelValues(string(SourceRoster)).Inc()
	return SignInResult{OK: true, Source: SourceRoster}
}

func (s *Store) afterSignIn() {
	s.mu.Lock()
	s.resetView(navigation.KeyDashboard)
	s.mu.Unlock()
	s.changed()
}

// SignOut asks the remote to end the session, ignoring failures, and always clears the local state.
func (s *Store) SignOut(ctx context.Context) {
	if err := s.auth.SignOut(ctx); err != nil {
		args := []interface{}{err}
		if usr, ok := s.Identity(); ok {
			args = append(args, usr)
		}
		s.logger.Warn(fmt.Sprintf("session %s: remote sign-out: %v", s.id, err), args...)
	}

	s.mu.Lock()
	s.seq++
	s.identity, s.remote, s.fromRoster = nil, nil, false
	s.loading = false
	s.resetView(navigation.KeyDashboard)
	s.mu.Unlock()
	s.changed()
}

// restoreRoster brings back a demo-roster identity after a restart.
func (s *Store) restoreRoster(usr user.User) {
	s.mu.Lock()
	if s.identity == nil {
		s.seq++
		s.identity, s.fromRoster = &usr, true
	}
	s.mu.Unlock()
}

// View returns the current view selector.
func (s *Store) View() navigation.Selector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Navigate switches the current view. Switching to a different view drops the page-local state,
// so the next page mounts fresh. It reports whether the view changed.
func (s *Store) Navigate(sel navigation.Selector) bool {
	s.mu.Lock()
	if s.view != nil && s.view.String() == sel.String() {
		s.mu.Unlock()
		return false
	}
	s.resetView(sel)
	s.mu.Unlock()
	s.changed()
	return true
}

// must hold s.mu
func (s *Store) resetView(sel navigation.Selector) {
	s.view = sel
	s.local = make(map[string]interface{})
}

// Local returns the page-local state stored under key, creating it with init on first use.
func (s *Store) Local(key string, init func() interface{}) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.local[key]; ok {
		return v
	}
	v := init()
	s.local[key] = v
	return v
}

// Authorize attaches the remote access token of this session to ctx.
func (s *Store) Authorize(ctx context.Context) context.Context {
	return s.auth.Authorize(ctx)
}

// Record is the persistent form of the session.
func (s *Store) Record() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := Record{ID: s.id, UpdatedAt: s.lastSeen}
	if s.view != nil {
		rec.View = s.view.String()
	}
	if s.remote != nil {
		rec.RefreshToken = s.remote.RefreshToken
	}
	if s.fromRoster && s.identity != nil {
		rec.RosterUserID = s.identity.ID
	}
	return rec
}

// touch marks the session as used. It reports whether the previous use is old enough to persist the new one.
func (s *Store) touch(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	stale := now.Sub(s.lastSeen) > time.Minute
	s.lastSeen = now
	return stale
}

func (s *Store) idleSince(t time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen.Before(t)
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange(s)
	}
}
