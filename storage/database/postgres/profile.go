// Package pgrepos reads and writes the `profiles` and `assignments` tables directly in Postgres.
package pgrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/assignflow/core/user"
)

const profileColumns = "id, full_name, role, avatar_url, department, student_id, semester, section, cgpa"

type profileRepository struct {
	db *sqlx.DB
}

var _ user.ProfileRepository = (*profileRepository)(nil)

func NewProfileRepository(db *sqlx.DB) user.ProfileRepository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) GetProfile(ctx context.Context, id string) (user.Profile, error) {
	var p user.Profile
	err := repo.db.GetContext(ctx, &p, "SELECT "+profileColumns+" FROM profiles WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return user.Profile{}, user.ErrNotFound
	}
	if err != nil {
		return user.Profile{}, errors.Wrapf(err, "selecting profile %s", id)
	}
	return p, nil
}

func (repo *profileRepository) CreateProfile(ctx context.Context, p user.Profile) (user.Profile, error) {
	q := `INSERT INTO profiles (` + profileColumns + `)
		VALUES (:id, :full_name, :role, :avatar_url, :department, :student_id, :semester, :section, :cgpa)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name, role = EXCLUDED.role, avatar_url = EXCLUDED.avatar_url,
			department = EXCLUDED.department, student_id = EXCLUDED.student_id, semester = EXCLUDED.semester,
			section = EXCLUDED.section, cgpa = EXCLUDED.cgpa`
	if _, err := repo.db.NamedExecContext(ctx, q, p); err != nil {
		return user.Profile{}, errors.Wrapf(err, "inserting profile %s", p.ID)
	}
	return p, nil
}
