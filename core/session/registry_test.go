package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/assignflow/core/navigation"
	"github.com/trezcool/assignflow/core/session"
	"github.com/trezcool/assignflow/core/user"
	inmemdb "github.com/trezcool/assignflow/storage/database/inmem"
	testutil "github.com/trezcool/assignflow/tests"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newRegistry(f fixture, persist session.Persister, clk *clock) *session.Registry {
	return session.NewRegistry(
		inmemdb.AuthFactory(f.db),
		f.profiles,
		f.roster,
		persist,
		testutil.NopLogger{},
		session.RegistryOptions{IdleTTL: 24 * time.Hour, Now: clk.Now},
	)
}

func TestRegistry_OpenGetClose(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	persist := session.NewMemoryPersister()
	clk := &clock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	reg := newRegistry(f, persist, clk)
	defer reg.Shutdown()

	s := reg.Open(ctx)
	assert.NotEmpty(t, s.ID())
	assert.False(t, s.Loading())
	assert.Equal(t, 1, reg.Len())

	got, ok := reg.Get(ctx, s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)

	rec, err := persist.Load(s.ID())
	require.NoError(t, err)
	assert.Equal(t, "dashboard", rec.View)

	reg.Close(s.ID())
	assert.Equal(t, 0, reg.Len())
	_, ok = reg.Get(ctx, s.ID())
	assert.False(t, ok)
	_, err = persist.Load(s.ID())
	assert.Equal(t, session.ErrNoRecord, err)

	_, ok = reg.Get(ctx, "unknown")
	assert.False(t, ok)
}

func TestRegistry_restore(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}

	tests := []struct {
		name     string
		email    string
		password string
		role     user.Role
		wantID   string
	}{
		{"remote session", remoteTeacher.Email, "remote-pass", user.RoleTeacher, "uid-1"},
		{"roster identity", "arjun.kumar@univ.edu", "Arjun@123", user.RoleStudent, "cse001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			persist := session.NewMemoryPersister()

			before := newRegistry(f, persist, clk)
			s := before.Open(ctx)
			require.True(t, s.SignIn(ctx, tt.email, tt.password, tt.role).OK)
			s.Navigate(navigation.ParseSelector("course-c2"))
			before.Shutdown()

			clk.Advance(time.Hour)
			after := newRegistry(f, persist, clk)
			defer after.Shutdown()

			restored, ok := after.Get(ctx, s.ID())
			require.True(t, ok)
			usr, ok := restored.Identity()
			require.True(t, ok)
			assert.Equal(t, tt.wantID, usr.ID)
			assert.Equal(t, navigation.CourseView{ID: "c2"}, restored.View())

			rec, err := persist.Load(s.ID())
			require.NoError(t, err)
			assert.Equal(t, clk.Now(), rec.UpdatedAt)
		})
	}
}

// requests racing on a session after a restart share one restore
func TestRegistry_restoreConcurrent(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	persist := session.NewMemoryPersister()
	clk := &clock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}

	before := newRegistry(f, persist, clk)
	s := before.Open(ctx)
	require.True(t, s.SignIn(ctx, remoteTeacher.Email, "remote-pass", user.RoleTeacher).OK)
	before.Shutdown()

	after := newRegistry(f, persist, clk)
	const n = 8
	got := make([]*session.Store, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = after.Get(ctx, s.ID())
		}(i)
	}
	wg.Wait()

	for i := range got {
		require.NotNil(t, got[i])
		assert.Same(t, got[0], got[i])
	}
	usr, ok := got[0].Identity()
	require.True(t, ok)
	assert.Equal(t, "uid-1", usr.ID)
	assert.Equal(t, 1, after.Len())

	rec, err := persist.Load(s.ID())
	require.NoError(t, err)
	assert.NotEmpty(t, rec.RefreshToken)
	after.Shutdown()

	// the persisted record still restores the remote session
	again := newRegistry(f, persist, clk)
	defer again.Shutdown()
	restored, ok := again.Get(ctx, s.ID())
	require.True(t, ok)
	usr, ok = restored.Identity()
	require.True(t, ok)
	assert.Equal(t, "uid-1", usr.ID)
}

func TestRegistry_restoreExpired(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	persist := session.NewMemoryPersister()
	clk := &clock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}

	s := newRegistry(f, persist, clk).Open(ctx)
	clk.Advance(25 * time.Hour)

	_, ok := newRegistry(f, persist, clk).Get(ctx, s.ID())
	assert.False(t, ok)
	_, err := persist.Load(s.ID())
	assert.Equal(t, session.ErrNoRecord, err)
}

func TestRegistry_Sweep(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	persist := session.NewMemoryPersister()
	clk := &clock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	reg := newRegistry(f, persist, clk)
	defer reg.Shutdown()

	idle := reg.Open(ctx)
	clk.Advance(20 * time.Hour)
	active := reg.Open(ctx)
	clk.Advance(5 * time.Hour)
	_, ok := reg.Get(ctx, active.ID())
	require.True(t, ok)

	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 1, reg.Len())

	_, err := persist.Load(idle.ID())
	assert.Equal(t, session.ErrNoRecord, err)
	_, ok = reg.Get(ctx, idle.ID())
	assert.False(t, ok)
	_, ok = reg.Get(ctx, active.ID())
	assert.True(t, ok)
}

func TestRegistry_StartSweeper(t *testing.T) {
	f := setup(t)
	reg := newRegistry(f, session.NewMemoryPersister(), &clock{now: time.Now()})
	assert.Error(t, reg.StartSweeper("every now and then"))
	require.NoError(t, reg.StartSweeper("@every 1h"))
	reg.Shutdown()
}
