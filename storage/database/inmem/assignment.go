package inmemdb

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/assignment"
)

type assignmentRepository struct {
	db  *DB
	now func() time.Time
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db, now: time.Now}
}

func (repo *assignmentRepository) QueryAll(_ context.Context) ([]assignment.Assignment, error) {
	if err := repo.db.check(); err != nil {
		return nil, err
	}
	t := repo.db.assignment
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	rows := make([]assignment.Row, 0, len(t.table))
	for _, r := range t.table {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { // newest first
		ci, cj := *rows[i].CreatedAt, *rows[j].CreatedAt
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		ni, _ := strconv.Atoi(rows[i].ID)
		nj, _ := strconv.Atoi(rows[j].ID)
		return ni > nj
	})

	res := make([]assignment.Assignment, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.Assignment())
	}
	return res, nil
}

func (repo *assignmentRepository) Create(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	if err := repo.db.check(); err != nil {
		return assignment.Assignment{}, err
	}
	t := repo.db.assignment
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.seq++
	r := assignment.RowFrom(a)
	r.ID = strconv.Itoa(t.seq)
	created := repo.now()
	r.CreatedAt = &created
	t.table[r.ID] = &r
	return r.Assignment(), nil
}

func (repo *assignmentRepository) Delete(_ context.Context, id string) error {
	if err := repo.db.check(); err != nil {
		return err
	}
	t := repo.db.assignment
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.table[id]; !ok {
		return core.ErrNotFound
	}
	delete(t.table, id)
	return nil
}

// SeedAssignments stores all, keeping their order as the newest-first order.
func (db *DB) SeedAssignments(all []assignment.Assignment, now time.Time) {
	t := db.assignment
	t.mutex.Lock()
	defer t.mutex.Unlock()
	for i, a := range all {
		r := assignment.RowFrom(a)
		if r.ID == "" {
			t.seq++
			r.ID = strconv.Itoa(t.seq)
		}
		created := now.Add(-time.Duration(i) * time.Minute)
		r.CreatedAt = &created
		t.table[r.ID] = &r
	}
}
