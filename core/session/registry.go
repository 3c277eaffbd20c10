package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/metrics"
	"github.com/trezcool/assignflow/core/navigation"
	"github.com/trezcool/assignflow/core/user"
)

type RegistryOptions struct {
	// IdleTTL is how long an untouched session is kept.
	IdleTTL time.Duration
	// Timeout bounds the profile lookups triggered by auth changes.
	Timeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Registry holds the Store of every browser session. One is built at start and shared.
type Registry struct {
	newAuth  AuthFactory
	profiles user.ProfileRepository
	roster   *user.Roster
	persist  Persister
	logger   core.Logger
	opts     RegistryOptions
	now      func() time.Time

	mu       sync.Mutex
	stores   map[string]*Store
	sweeper  *cron.Cron
	restores singleflight.Group // one restore per session id; refresh tokens are single-use
}

func NewRegistry(
	newAuth AuthFactory,
	profiles user.ProfileRepository,
	roster *user.Roster,
	persist Persister,
	logger core.Logger,
	opts RegistryOptions,
) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 24 * time.Hour
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		newAuth:  newAuth,
		profiles: profiles,
		roster:   roster,
		persist:  persist,
		logger:   logger,
		opts:     opts,
		now:      opts.Now,
		stores:   make(map[string]*Store),
	}
}

func (r *Registry) newStore(id, refreshToken string) *Store {
	s := NewStore(id, r.newAuth(refreshToken), r.profiles, r.roster, r.logger)
	s.timeout = r.opts.Timeout
	s.lastSeen = r.now()
	s.onChange = r.save
	return s
}

func (r *Registry) save(s *Store) {
	if err := r.persist.Save(s.Record()); err != nil {
		r.logger.Error(fmt.Sprintf("session %s: persisting: %v", s.ID(), err), err)
	}
}

func (r *Registry) add(s *Store) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.stores[s.ID()]; ok {
		s.Close()
		return existing
	}
	r.stores[s.ID()] = s
	metrics.ActiveSessions.Set(float64(len(r.stores)))
	return s
}

// Open starts a new browser session.
func (r *Registry) Open(ctx context.Context) *Store {
	s := r.newStore(uuid.New().String(), "")
	s.Init(ctx)
	return r.add(s)
}

// Get returns the session with the given id, restoring it from its persisted record after a restart.
func (r *Registry) Get(ctx context.Context, id string) (*Store, bool) {
	r.mu.Lock()
	s, ok := r.stores[id]
	r.mu.Unlock()
	if ok {
		if s.touch(r.now()) {
			r.save(s)
		}
		return s, true
	}

	v, _, _ := r.restores.Do(id, func() (interface{}, error) {
		return r.load(ctx, id), nil
	})
	s, _ = v.(*Store)
	return s, s != nil
}

// load restores the session id from its record. It returns nil when there is nothing to restore.
func (r *Registry) load(ctx context.Context, id string) *Store {
	// a restore that just finished may have added it
	r.mu.Lock()
	s, ok := r.stores[id]
	r.mu.Unlock()
	if ok {
		return s
	}

	rec, err := r.persist.Load(id)
	if err != nil {
		if errors.Cause(err) != ErrNoRecord {
			r.logger.Error(fmt.Sprintf("session %s: loading record: %v", id, err), err)
		}
		return nil
	}
	if rec.UpdatedAt.Before(r.now().Add(-r.opts.IdleTTL)) {
		_ = r.persist.Delete(id)
		return nil
	}

	restored := r.restore(ctx, rec)
	kept := r.add(restored)
	if kept == restored {
		r.save(kept)
	}
	return kept
}

func (r *Registry) restore(ctx context.Context, rec Record) *Store {
	s := r.newStore(rec.ID, rec.RefreshToken)
	s.onChange = nil // do not persist half-restored state
	s.Init(ctx)
	if rec.RosterUserID != "" {
		if usr, ok := r.roster.Get(rec.RosterUserID); ok {
			s.restoreRoster(usr)
		}
	}
	if rec.View != "" {
		s.Navigate(navigation.ParseSelector(rec.View))
	}
	s.onChange = r.save
	return s
}

// Close ends the session and forgets it.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	s, ok := r.stores[id]
	delete(r.stores, id)
	metrics.ActiveSessions.Set(float64(len(r.stores)))
	r.mu.Unlock()
	if ok {
		s.Close()
	}
	if err := r.persist.Delete(id); err != nil {
		r.logger.Error(fmt.Sprintf("session %s: deleting record: %v", id, err), err)
	}
}

// Sweep closes the sessions idle for longer than IdleTTL and expires their records.
func (r *Registry) Sweep() int {
	threshold := r.now().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	idle := make([]*Store, 0)
	for id, s := range r.stores {
		if s.idleSince(threshold) {
			idle = append(idle, s)
			delete(r.stores, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.stores)))
	r.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if _, err := r.persist.Expire(threshold); err != nil {
		r.logger.Error(fmt.Sprintf("expiring session records: %v", err), err)
	}
	return len(idle)
}

// StartSweeper runs Sweep on the cron spec (e.g. "@every 10m").
func (r *Registry) StartSweeper(spec string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(spec, func() {
		if n := r.Sweep(); n > 0 {
			r.logger.Info(fmt.Sprintf("closed %d idle sessions", n))
		}
	}); err != nil {
		return errors.Wrapf(err, "scheduling session sweeper %q", spec)
	}
	r.mu.Lock()
	r.sweeper = c
	r.mu.Unlock()
	c.Start()
	return nil
}

// Shutdown stops the sweeper and releases every subscription. Records are kept for the next start.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	sweeper := r.sweeper
	stores := make([]*Store, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.stores = make(map[string]*Store)
	r.mu.Unlock()

	if sweeper != nil {
		<-sweeper.Stop().Done()
	}
	for _, s := range stores {
		s.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// MemoryPersister keeps records in memory; sessions do not survive a restart with it.
type MemoryPersister struct {
	mu      sync.Mutex
	records map[string]Record
}

var _ Persister = (*MemoryPersister)(nil)

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{records: make(map[string]Record)}
}

func (p *MemoryPersister) Save(rec Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records[rec.ID] = rec
	return nil
}

func (p *MemoryPersister) Load(id string) (Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.records[id]
	if !ok {
		return Record{}, ErrNoRecord
	}
	return rec, nil
}

func (p *MemoryPersister) Delete(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.records, id)
	return nil
}

func (p *MemoryPersister) Expire(t time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var n int
	for id, rec := range p.records {
		if rec.UpdatedAt.Before(t) {
			delete(p.records, id)
			n++
		}
	}
	return n, nil
}
