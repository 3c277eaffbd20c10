// Package student backs the teacher's student directory.
package student

import (
	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/user"
)

const (
	AllDepartments    = "All"
	DefaultDepartment = "General"
)

// Departments lists "All" followed by the distinct departments in roster order.
func Departments(students []user.User) []string {
	seen := make(map[string]bool)
	deps := []string{AllDepartments}
	for _, s := range students {
		d := department(s)
		if !seen[d] {
			seen[d] = true
			deps = append(deps, d)
		}
	}
	return deps
}

func department(s user.User) string {
	if !s.Department.Valid || s.Department.String == "" {
		return DefaultDepartment
	}
	return s.Department.String
}

// Filter keeps the students whose name or student number contains query (case-insensitive)
// and whose department equals dept. AllDepartments matches every student.
func Filter(students []user.User, query, dept string) []user.User {
	res := make([]user.User, 0, len(students))
	for _, s := range students {
		matchesSearch := core.ContainsFold(s.Name.String, query) || core.ContainsFold(s.StudentID.String, query)
		matchesDept := dept == "" || dept == AllDepartments || department(s) == dept
		if matchesSearch && matchesDept {
			res = append(res, s)
		}
	}
	return res
}

// Find returns the student to show in the detail panel.
func Find(students []user.User, id string) (user.User, bool) {
	for _, s := range students {
		if s.ID == id {
			return s, true
		}
	}
	return user.User{}, false
}
