package inmemdb

import (
	"context"

	"github.com/trezcool/assignflow/core/user"
)

type profileRepository struct {
	db *DB
}

var _ user.ProfileRepository = (*profileRepository)(nil)

func NewProfileRepository(db *DB) user.ProfileRepository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) GetProfile(_ context.Context, id string) (user.Profile, error) {
	if err := repo.db.check(); err != nil {
		return user.Profile{}, err
	}
	t := repo.db.profile
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if p, ok := t.table[id]; ok {
		return *p, nil
	}
	return user.Profile{}, user.ErrNotFound
}

func (repo *profileRepository) CreateProfile(_ context.Context, p user.Profile) (user.Profile, error) {
	if err := repo.db.check(); err != nil {
		return user.Profile{}, err
	}
	t := repo.db.profile
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.table[p.ID] = &p
	return p, nil
}
