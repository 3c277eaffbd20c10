package fixtures

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/assignflow/core/assignment"
	"github.com/trezcool/assignflow/core/resource"
	"github.com/trezcool/assignflow/core/submission"
	"github.com/trezcool/assignflow/core/user"
)

func TestDefault(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	assert.Len(t, set.Roster.Users(), 9)
	assert.Len(t, set.Roster.Students(), 6)
	assert.Len(t, set.Assignments(), 4)
	assert.Len(t, set.Submissions(), 5)
	assert.Len(t, set.Courses, 4)
	assert.Len(t, set.Resources, 14)
	assert.Equal(t, 78.5, set.Stats.AverageGrade)
	assert.Len(t, set.Stats.DailySubmissions, 7)

	usr, err := set.Roster.Match("ARJUN.KUMAR@univ.edu", "Arjun@123", user.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "CSE21A001", usr.StudentID.String)
	assert.Equal(t, 6, usr.Semester.Int)
	assert.Equal(t, 8.9, usr.CGPA.Float64)

	teacher, ok := set.Roster.Get("u1")
	require.True(t, ok)
	assert.False(t, teacher.StudentID.Valid, "absent fields stay absent")
	assert.False(t, teacher.Semester.Valid)

	s5 := set.Submissions()[4]
	assert.Equal(t, submission.StatusGraded, s5.Status)
	assert.Equal(t, 45, s5.Grade.Int)
	s3 := set.Submissions()[2]
	assert.False(t, s3.SubmittedAt.Valid)
	assert.False(t, s3.Grade.Valid)

	assert.Equal(t, resource.CategoryLabManual, set.Resources[1].Category)
}

func TestLoad_relativeDueDates(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	fsys := fstest.MapFS{
		"fixtures/accounts.yaml":    {Data: []byte("[]")},
		"fixtures/submissions.yaml": {Data: []byte("[]")},
		"fixtures/courses.yaml":     {Data: []byte("[]")},
		"fixtures/resources.yaml":   {Data: []byte("[]")},
		"fixtures/stats.yaml":       {Data: []byte("{}")},
		"fixtures/assignments.yaml": {Data: []byte(`
- {id: a1, title: T, courseCode: CS1, dueIn: 48h, status: open, totalStudents: 60}
- {id: a2, title: T, courseCode: CS1, dueDate: "2023-11-10T23:59:00", status: closed}
- {id: a4, title: T, courseCode: CS1, dueIn: -24h, status: open}
`)},
	}
	loaded, err := Load(fsys, now)
	require.NoError(t, err)
	all := loaded.Assignments()
	require.Len(t, all, 3)
	assert.Equal(t, now.Add(48*time.Hour), all[0].DueDate)
	assert.Equal(t, time.Date(2023, 11, 10, 23, 59, 0, 0, time.UTC), all[1].DueDate)
	assert.True(t, all[2].PastDue(now))
	assert.Equal(t, assignment.StatusOpen, all[2].Status)

	// copies, not shared slices
	all[0].Title = "changed"
	assert.NotEqual(t, "changed", loaded.Assignments()[0].Title)
	assert.NotNil(t, set)
}

func TestLoad_errors(t *testing.T) {
	base := func() fstest.MapFS {
		return fstest.MapFS{
			"fixtures/accounts.yaml":    {Data: []byte("[]")},
			"fixtures/assignments.yaml": {Data: []byte("[]")},
			"fixtures/submissions.yaml": {Data: []byte("[]")},
			"fixtures/courses.yaml":     {Data: []byte("[]")},
			"fixtures/resources.yaml":   {Data: []byte("[]")},
			"fixtures/stats.yaml":       {Data: []byte("{}")},
		}
	}
	tests := []struct {
		name string
		file string
		data string
	}{
		{"missing file", "fixtures/stats.yaml", ""},
		{"bad yaml", "fixtures/courses.yaml", "{{"},
		{"bad role", "fixtures/accounts.yaml", "[{id: x, role: janitor, password: p}]"},
		{"no due date", "fixtures/assignments.yaml", "[{id: a9}]"},
		{"bad due offset", "fixtures/assignments.yaml", "[{id: a9, dueIn: soon}]"},
		{"bad submitted at", "fixtures/submissions.yaml", "[{id: s9, submittedAt: yesterday}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := base()
			if tt.data == "" {
				delete(fsys, tt.file)
			} else {
				fsys[tt.file] = &fstest.MapFile{Data: []byte(tt.data)}
			}
			_, err := Load(fsys, time.Now())
			assert.Error(t, err)
		})
	}
}
