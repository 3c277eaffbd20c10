package assignment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/metrics"
)

const localPrefix = "local-"

// Source loads the assignment list, falling back to fixtures when the remote fails.
type Source struct {
	repo     Repository
	fallback func() []Assignment
	logger   core.Logger
}

func NewSource(repo Repository, fallback func() []Assignment, logger core.Logger) *Source {
	return &Source{repo: repo, fallback: fallback, logger: logger}
}

// List never fails: on remote errors the fixture list is returned and fromFallback is set.
func (src *Source) List(ctx context.Context) (items []Assignment, fromFallback bool) {
	items, err := src.repo.QueryAll(ctx)
	if err != nil {
		src.logger.Warn(fmt.Sprintf("fetching assignments, using fixtures: %v", err), err)
		metrics.RemoteFallbacks.WithLabelValues("assignments.query").Inc()
		return src.fallback(), true
	}
	return items, false
}

// Board is the page state of the teacher's assignment management view.
type Board struct {
	src *Source
	now func() time.Time

	mu       sync.RWMutex
	items    []Assignment
	loaded   bool
	fallback bool
}

func NewBoard(src *Source) *Board {
	return &Board{src: src, now: time.Now}
}

// Mount loads the list the first time the view is entered.
func (b *Board) Mount(ctx context.Context) {
	b.mu.RLock()
	loaded := b.loaded
	b.mu.RUnlock()
	if !loaded {
		b.refetch(ctx)
	}
}

func (b *Board) refetch(ctx context.Context) {
	items, fallback := b.src.List(ctx)
	b.mu.Lock()
	b.items, b.fallback, b.loaded = items, fallback, true
	b.mu.Unlock()
}

func (b *Board) Items() []Assignment {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Assignment(nil), b.items...)
}

// FromFallback tells whether the list currently shows fixture data.
func (b *Board) FromFallback() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fallback
}

func (b *Board) Get(id string) (Assignment, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, a := range b.items {
		if a.ID == id {
			return a, true
		}
	}
	return Assignment{}, false
}

// Create writes the new assignment to the remote first. On success the list is refetched;
// on failure a local record is put at the top of the list so the teacher still sees it.
func (b *Board) Create(ctx context.Context, na NewAssignment, teacherID string) core.WriteResult {
	a := na.Assignment(teacherID, b.now())

	return core.RemoteWrite(ctx,
		func(ctx context.Context) error {
			_, err := b.src.repo.Create(ctx, a)
			return errors.Wrap(err, "creating assignment")
		},
		func(ctx context.Context) core.Reconcile {
			b.refetch(ctx)
			return core.ReconcileRefetch
		},
		func(ctx context.Context) core.Reconcile {
			b.src.logger.Warn(fmt.Sprintf("creating assignment %q remotely, keeping it locally", a.Title))
			metrics.RemoteFallbacks.WithLabelValues("assignments.create").Inc()
			a.ID = localPrefix + uuid.New().String()
			b.mu.Lock()
			b.items = append([]Assignment{a}, b.items...)
			b.mu.Unlock()
			return core.ReconcileLocal
		},
	)
}

// Delete removes the assignment locally, then remotely. A failed remote delete refetches the list.
func (b *Board) Delete(ctx context.Context, id string) core.WriteResult {
	b.mu.Lock()
	kept := make([]Assignment, 0, len(b.items))
	for _, a := range b.items {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	b.items = kept
	b.mu.Unlock()

	if strings.HasPrefix(id, localPrefix) { // never reached the remote
		return core.WriteResult{}
	}

	return core.RemoteWrite(ctx,
		func(ctx context.Context) error {
			return errors.Wrap(b.src.repo.Delete(ctx, id), "deleting assignment")
		},
		nil,
		func(ctx context.Context) core.Reconcile {
			metrics.RemoteFallbacks.WithLabelValues("assignments.delete").Inc()
			b.refetch(ctx)
			return core.ReconcileRefetch
		},
	)
}
