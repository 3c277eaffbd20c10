package pgrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/assignment"
)

const assignmentColumns = `id, title, course_code, course_name, subject, due_date, total_points, status, description,
	attachment_url, submission_count, total_students, allowed_file_types, teacher_id, created_at`

// assignmentRow adds the array column the shared row type leaves out.
type assignmentRow struct {
	assignment.Row
	FileTypes pq.StringArray `db:"allowed_file_types"`
}

func (r assignmentRow) assignment() assignment.Assignment {
	r.Row.AllowedFileTypes = r.FileTypes
	return r.Row.Assignment()
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) QueryAll(ctx context.Context) ([]assignment.Assignment, error) {
	var rows []assignmentRow
	q := "SELECT " + assignmentColumns + " FROM assignments ORDER BY " + assignment.Ordering.String() + ", id DESC"
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting assignments")
	}
	res := make([]assignment.Assignment, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.assignment())
	}
	return res, nil
}

func (repo *assignmentRepository) Create(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	r := assignmentRow{Row: assignment.RowFrom(a), FileTypes: pq.StringArray(a.AllowedFileTypes)}
	if r.FileTypes == nil {
		r.FileTypes = pq.StringArray{}
	}
	q := `INSERT INTO assignments (title, course_code, course_name, subject, due_date, total_points, status,
			description, attachment_url, submission_count, total_students, allowed_file_types, teacher_id)
		VALUES (:title, :course_code, :course_name, :subject, :due_date, :total_points, :status,
			:description, :attachment_url, :submission_count, :total_students, :allowed_file_types, :teacher_id)
		RETURNING ` + assignmentColumns

	rows, err := repo.db.NamedQueryContext(ctx, q, r)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	defer func() { _ = rows.Close() }()

	var created assignmentRow
	if rows.Next() {
		if err = rows.StructScan(&created); err != nil {
			return assignment.Assignment{}, errors.Wrap(err, "scanning assignment")
		}
	}
	if err = rows.Err(); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return created.assignment(), nil
}

func (repo *assignmentRepository) Delete(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = $1", id)
	if err != nil {
		return errors.Wrapf(err, "deleting assignment %s", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}
