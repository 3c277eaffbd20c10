// Package remote implements the repositories and the auth handle over the Supabase client.
package remote

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/assignflow/core/user"
	"github.com/trezcool/assignflow/services/supabase"
)

const (
	profilesTable    = "profiles"
	assignmentsTable = "assignments"
)

type profileRepository struct {
	client *supabase.Client
}

var _ user.ProfileRepository = (*profileRepository)(nil)

func NewProfileRepository(client *supabase.Client) user.ProfileRepository {
	return &profileRepository{client: client}
}

func (repo *profileRepository) GetProfile(ctx context.Context, id string) (user.Profile, error) {
	var p user.Profile
	err := repo.client.From(profilesTable).Select("*").Eq("id", id).Single().Execute(ctx, &p)
	if err == supabase.ErrNoRows {
		return user.Profile{}, user.ErrNotFound
	}
	if err != nil {
		return user.Profile{}, errors.Wrapf(err, "getting profile %s", id)
	}
	return p, nil
}

func (repo *profileRepository) CreateProfile(ctx context.Context, p user.Profile) (user.Profile, error) {
	var rows []user.Profile
	if err := repo.client.From(profilesTable).Insert(p).Execute(ctx, &rows); err != nil {
		return user.Profile{}, errors.Wrapf(err, "creating profile %s", p.ID)
	}
	if len(rows) == 0 {
		return p, nil
	}
	return rows[0], nil
}
