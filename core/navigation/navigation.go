// Package navigation resolves which page a signed-in user sees for a view selector.
package navigation

import (
	"strings"

	"github.com/trezcool/assignflow/core/user"
)

// view keys
const (
	KeyDashboard     Key = "dashboard"
	KeyAssignments   Key = "assignments"
	KeySubmissions   Key = "submissions"
	KeyStudents      Key = "students"
	KeyMyCourses     Key = "my-courses"
	KeyMyAssignments Key = "my-assignments"
	KeyResources     Key = "resources"
	KeySupport       Key = "support"
)

const coursePrefix = "course-"

// Selector is what the user asked to see: a plain view Key or a CourseView.
type Selector interface {
	selector()
	String() string
}

// Key is a plain view key.
type Key string

func (Key) selector()        {}
func (k Key) String() string { return string(k) }

type CourseID string

// CourseView selects the detail page of one course.
type CourseView struct {
	ID CourseID
}

func (CourseView) selector()        {}
func (v CourseView) String() string { return coursePrefix + string(v.ID) }

// ParseSelector translates a raw view string. `course-<id>` selects a course, with everything after the prefix as its id.
func ParseSelector(s string) Selector {
	if strings.HasPrefix(s, coursePrefix) {
		return CourseView{ID: CourseID(strings.TrimPrefix(s, coursePrefix))}
	}
	return Key(s)
}

type Page int

const (
	PageLogin Page = iota
	PageDashboard
	PageAssignments
	PageSubmissions
	PageStudents
	PageStudentDashboard
	PageMyCourses
	PageMyAssignments
	PageResources
	PageSupport
	PageCourseDetail
)

var pageNames = map[Page]string{
	PageLogin:            "login",
	PageDashboard:        "dashboard",
	PageAssignments:      "assignments",
	PageSubmissions:      "submissions",
	PageStudents:         "students",
	PageStudentDashboard: "student_dashboard",
	PageMyCourses:        "my_courses",
	PageMyAssignments:    "my_assignments",
	PageResources:        "resources",
	PageSupport:          "support",
	PageCourseDetail:     "course_detail",
}

// String is also the name of the page's template.
func (p Page) String() string {
	return pageNames[p]
}

// Route is the resolved page. CourseID and Back are only set for PageCourseDetail.
type Route struct {
	Page     Page
	CourseID CourseID
	Back     Selector
}

var (
	staffPages = map[Key]Page{
		KeyDashboard:   PageDashboard,
		KeyAssignments: PageAssignments,
		KeySubmissions: PageSubmissions,
		KeyStudents:    PageStudents,
	}
	studentPages = map[Key]Page{
		KeyDashboard:     PageStudentDashboard,
		KeyMyCourses:     PageMyCourses,
		KeyMyAssignments: PageMyAssignments,
		KeyResources:     PageResources,
		KeySupport:       PageSupport,
	}
)

// Resolve maps (identity, selector) to a page. A nil identity always gets the login page.
func Resolve(usr *user.User, sel Selector) Route {
	if usr == nil {
		return Route{Page: PageLogin}
	}

	switch {
	case usr.Role.IsStaff():
		if k, ok := sel.(Key); ok {
			if page, ok := staffPages[k]; ok {
				return Route{Page: page}
			}
		}
		return Route{Page: PageDashboard}

	case usr.Role == user.RoleStudent:
		switch s := sel.(type) {
		case CourseView:
			return Route{Page: PageCourseDetail, CourseID: s.ID, Back: KeyMyCourses}
		case Key:
			if page, ok := studentPages[s]; ok {
				return Route{Page: page}
			}
		}
		return Route{Page: PageStudentDashboard}
	}

	return Route{Page: PageLogin}
}

// Known tells whether sel names a view of any role, or a course.
// Other selectors are never stored as the current view.
func Known(sel Selector) bool {
	switch s := sel.(type) {
	case CourseView:
		return true
	case Key:
		_, staff := staffPages[s]
		_, student := studentPages[s]
		return staff || student
	}
	return false
}

// Allowed tells whether usr may act on the view k, i.e. k resolves to its own page for usr.
func Allowed(usr *user.User, k Key) bool {
	if usr == nil {
		return false
	}
	var pages map[Key]Page
	switch {
	case usr.Role.IsStaff():
		pages = staffPages
	case usr.Role == user.RoleStudent:
		pages = studentPages
	default:
		return false
	}
	page, ok := pages[k]
	return ok && Resolve(usr, k).Page == page
}

type MenuItem struct {
	Key   Key
	Label string
}

var (
	staffMenu = []MenuItem{
		{Key: KeyDashboard, Label: "Dashboard"},
		{Key: KeyAssignments, Label: "Assignments"},
		{Key: KeySubmissions, Label: "Submissions"},
		{Key: KeyStudents, Label: "Students"},
	}
	studentMenu = []MenuItem{
		{Key: KeyDashboard, Label: "Dashboard"},
		{Key: KeyMyCourses, Label: "My Courses"},
		{Key: KeyMyAssignments, Label: "Assignments"},
		{Key: KeyResources, Label: "Resources"},
		{Key: KeySupport, Label: "Ask Faculty"},
	}
)

// Menu returns the sidebar entries offered to role.
func Menu(role user.Role) []MenuItem {
	switch {
	case role.IsStaff():
		return append([]MenuItem(nil), staffMenu...)
	case role == user.RoleStudent:
		return append([]MenuItem(nil), studentMenu...)
	}
	return nil
}

// Active tells whether the menu entry should be highlighted for the current selector.
// Course pages highlight their back target.
func (m MenuItem) Active(sel Selector) bool {
	if _, ok := sel.(CourseView); ok {
		return m.Key == KeyMyCourses
	}
	return sel != nil && sel.String() == string(m.Key)
}
