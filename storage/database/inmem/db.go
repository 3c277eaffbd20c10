// Package inmemdb is a process-local stand-in for the remote backend: profiles, assignments and auth accounts.
package inmemdb

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/assignflow/core/assignment"
	"github.com/trezcool/assignflow/core/user"
)

// ErrUnavailable is returned by every call while the database is switched off.
var ErrUnavailable = errors.New("backend unavailable")

type (
	DB struct {
		profile    *profileTable
		assignment *assignmentTable
		account    *accountTable

		mu        sync.RWMutex
		available bool
	}

	profileTable struct {
		table map[string]*user.Profile
		mutex sync.RWMutex
	}

	assignmentTable struct {
		table map[string]*assignment.Row
		seq   int
		mutex sync.RWMutex
	}

	accountTable struct {
		table    map[string]*account // by lower-cased email
		sessions map[string]string   // refresh token -> user id
		mutex    sync.RWMutex
	}

	account struct {
		userID string
		email  string
		hash   []byte
	}
)

func Open() *DB {
	return &DB{
		profile:    &profileTable{table: make(map[string]*user.Profile)},
		assignment: &assignmentTable{table: make(map[string]*assignment.Row)},
		account:    &accountTable{table: make(map[string]*account), sessions: make(map[string]string)},
		available:  true,
	}
}

// SetAvailable switches the database on or off, to exercise the fixture fallbacks.
func (db *DB) SetAvailable(ok bool) {
	db.mu.Lock()
	db.available = ok
	db.mu.Unlock()
}

func (db *DB) check() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if !db.available {
		return ErrUnavailable
	}
	return nil
}
