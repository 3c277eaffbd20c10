package remote

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/assignflow/core/assignment"
	"github.com/trezcool/assignflow/services/supabase"
)

type assignmentRepository struct {
	client *supabase.Client
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(client *supabase.Client) assignment.Repository {
	return &assignmentRepository{client: client}
}

func (repo *assignmentRepository) QueryAll(ctx context.Context) ([]assignment.Assignment, error) {
	var rows []assignment.Row
	err := repo.client.From(assignmentsTable).
		Select("*").
		Order(assignment.Ordering.Field, assignment.Ordering.Ascending).
		Execute(ctx, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	res := make([]assignment.Assignment, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.Assignment())
	}
	return res, nil
}

// Create lets the backend assign the id and creation time.
func (repo *assignmentRepository) Create(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	row := assignment.RowFrom(a)
	row.ID, row.CreatedAt = "", nil

	var rows []assignment.Row
	if err := repo.client.From(assignmentsTable).Insert(row).Execute(ctx, &rows); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	if len(rows) == 0 {
		return a, nil
	}
	return rows[0].Assignment(), nil
}

func (repo *assignmentRepository) Delete(ctx context.Context, id string) error {
	if err := repo.client.From(assignmentsTable).Eq("id", id).Delete().Execute(ctx, nil); err != nil {
		return errors.Wrapf(err, "deleting assignment %s", id)
	}
	return nil
}
