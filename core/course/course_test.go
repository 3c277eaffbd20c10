package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/assignflow/core/assignment"
	"github.com/trezcool/assignflow/core/resource"
	"github.com/trezcool/assignflow/core/submission"
)

func TestCourse_Attendance(t *testing.T) {
	tests := []struct {
		name    string
		course  Course
		rate    int
		lowFlag bool
	}{
		{"high", Course{Attendance: 92, TotalClasses: 24, AttendedClasses: 22}, 92, false},
		{"low", Course{Attendance: 65, TotalClasses: 24, AttendedClasses: 15}, 63, true},
		{"boundary", Course{Attendance: 75, TotalClasses: 4, AttendedClasses: 3}, 75, false},
		{"no classes", Course{}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rate, tt.course.AttendanceRate())
			assert.Equal(t, tt.lowFlag, tt.course.LowAttendance())
		})
	}
}

func TestParseTab(t *testing.T) {
	assert.Equal(t, TabResources, ParseTab("resources"))
	assert.Equal(t, TabOverview, ParseTab(""))
	assert.Equal(t, TabOverview, ParseTab("grades"))
}

func TestDisplayStatus(t *testing.T) {
	subs := []submission.Submission{
		{ID: "s1", StudentID: DemoStudentID, AssignmentID: "a1", Status: submission.StatusSubmitted},
		{ID: "s5", StudentID: "st005", AssignmentID: "a2", Status: submission.StatusGraded},
	}
	tests := []struct {
		name string
		a    assignment.Assignment
		want string
	}{
		{"own submission", assignment.Assignment{ID: "a1", Status: assignment.StatusOpen}, "submitted"},
		{"closed without submission", assignment.Assignment{ID: "a2", Status: assignment.StatusClosed}, StatusMissed},
		{"open without submission", assignment.Assignment{ID: "a3", Status: assignment.StatusOpen}, "pending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayStatus(tt.a, subs, DemoStudentID))
		})
	}
}

func TestBuildDetail(t *testing.T) {
	courses := []Course{{ID: "c1", Code: "CS401"}, {ID: "c2", Code: "CS302"}}
	all := []assignment.Assignment{
		{ID: "a1", CourseCode: "CS401", Status: assignment.StatusOpen},
		{ID: "a2", CourseCode: "CS302", Status: assignment.StatusClosed},
	}
	res := []resource.Resource{{ID: "r1", CourseCode: "CS401"}, {ID: "r3", CourseCode: "CS302"}, {ID: "r6", CourseCode: "CS401"}}

	c, ok := Find(courses, "c1")
	require.True(t, ok)
	d := BuildDetail(c, TabAssignments, all, nil, res)
	require.Len(t, d.Assignments, 1)
	assert.Equal(t, "a1", d.Assignments[0].Assignment.ID)
	assert.Equal(t, "pending", d.Assignments[0].Status)
	assert.Len(t, d.Resources, 2)
	assert.Len(t, d.Latest(), 1)
	assert.Equal(t, TabAssignments, d.Tab)

	_, ok = Find(courses, "c9")
	assert.False(t, ok)
}
