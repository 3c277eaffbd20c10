package pgrepos

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/assignment"
	"github.com/trezcool/assignflow/core/user"
	"github.com/trezcool/assignflow/storage/database"
)

// Runs against TEST_DATABASE_URL when set, e.g. postgres://postgres@localhost:5432/assignflow_test?sslmode=disable
func openTestDB(t *testing.T) *sqlx.DB {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Ping(context.Background(), db, 5))
	require.NoError(t, database.Migrate(db, "up"))
	_, err = db.Exec("TRUNCATE assignments, profiles RESTART IDENTITY CASCADE")
	require.NoError(t, err)
	return db
}

func TestProfileRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	_, err := repo.GetProfile(ctx, "nobody")
	assert.Equal(t, user.ErrNotFound, err)

	p := user.Profile{
		ID:        "cse001",
		FullName:  null.StringFrom("Arjun Kumar"),
		Role:      user.RoleStudent,
		StudentID: null.StringFrom("CSE21A001"),
		Semester:  null.IntFrom(6),
		CGPA:      null.Float64From(8.9),
	}
	_, err = repo.CreateProfile(ctx, p)
	require.NoError(t, err)

	got, err := repo.GetProfile(ctx, "cse001")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestAssignmentRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	now := time.Now()
	for _, title := range []string{"first", "Quiz 1"} {
		na := assignment.NewAssignment{Title: title, CourseCode: "CS100", DueDate: "2024-01-01", TotalPoints: 50}
		created, err := repo.Create(ctx, na.Assignment("", now))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, assignment.StatusOpen, created.Status)
		assert.Equal(t, 0, created.SubmissionCount)
	}

	all, err := repo.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Quiz 1", all[0].Title, "newest first")
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), all[0].DueDate.UTC())
	assert.Empty(t, all[0].AllowedFileTypes)

	require.NoError(t, repo.Delete(ctx, all[0].ID))
	assert.Equal(t, core.ErrNotFound, repo.Delete(ctx, all[0].ID))
}
