package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/assignflow/core/assignment"
	"github.com/trezcool/assignflow/core/course"
	"github.com/trezcool/assignflow/core/dashboard"
	"github.com/trezcool/assignflow/core/navigation"
	"github.com/trezcool/assignflow/core/resource"
	"github.com/trezcool/assignflow/core/session"
	"github.com/trezcool/assignflow/core/student"
	"github.com/trezcool/assignflow/core/submission"
	"github.com/trezcool/assignflow/core/support"
	"github.com/trezcool/assignflow/core/user"
)

// page-local state keys
const (
	localBoard         = "assignments.board"
	localDesk          = "submissions.desk"
	localMySubmissions = "my-assignments.desk"
)

// current shows the view the session is on.
func (s *server) current(ctx echo.Context) error {
	store, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return s.show(ctx, store, http.StatusOK)
}

// view switches the session to the requested view, then shows it.
// Paths that name no view are 404s and leave the session untouched.
func (s *server) view(ctx echo.Context) error {
	sel := navigation.ParseSelector(ctx.Param("view"))
	if !navigation.Known(sel) {
		return errHttpNotFound
	}
	store, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	store.Navigate(sel)
	return s.show(ctx, store, http.StatusOK)
}

func (s *server) show(ctx echo.Context, store *session.Store, code int) error {
	if store.Loading() {
		return render(ctx, code, "loading", nil)
	}

	var q viewQuery
	if err := q.Bind(ctx); err != nil {
		return err
	}

	var usr *user.User
	if u, ok := store.Identity(); ok {
		usr = &u
	}
	route := navigation.Resolve(usr, store.View())

	switch route.Page {
	case navigation.PageLogin:
		return render(ctx, code, "login", loginData{})
	case navigation.PageDashboard:
		return render(ctx, code, route.Page.String(), s.opts.Fixtures.Stats)
	case navigation.PageAssignments:
		return render(ctx, code, route.Page.String(), s.assignmentsData(ctx, store, q, assignmentForm{}))
	case navigation.PageSubmissions:
		return render(ctx, code, route.Page.String(), s.submissionsData(store, q.Grade, gradeForm{}))
	case navigation.PageStudents:
		return render(ctx, code, route.Page.String(), s.studentsData(q))
	case navigation.PageStudentDashboard:
		return render(ctx, code, route.Page.String(), s.studentDashboardData(*usr))
	case navigation.PageMyCourses:
		return render(ctx, code, route.Page.String(), s.opts.Fixtures.Courses)
	case navigation.PageMyAssignments:
		return render(ctx, code, route.Page.String(), s.myAssignmentsData(store, q))
	case navigation.PageResources:
		return render(ctx, code, route.Page.String(), s.resourcesData(q))
	case navigation.PageSupport:
		return render(ctx, code, route.Page.String(), supportData{Sent: q.Sent})
	case navigation.PageCourseDetail:
		c, ok := course.Find(s.opts.Fixtures.Courses, string(route.CourseID))
		if !ok {
			return errHttpCourseNotFound
		}
		detail := course.BuildDetail(c, course.ParseTab(q.Tab), s.opts.Fixtures.Assignments(), s.opts.Fixtures.Submissions(), s.opts.Fixtures.Resources)
		return render(ctx, code, route.Page.String(), courseDetailData{Detail: detail, Tabs: course.Tabs, Back: route.Back})
	}
	return errors.Errorf("no page for route %v", route.Page)
}

type loginData struct {
	Email string
	Role  user.Role
	Error string
}

func (s *server) loginPage(ctx echo.Context) error {
	if getContextUser(ctx) != nil {
		return ctx.Redirect(http.StatusSeeOther, "/")
	}
	return render(ctx, http.StatusOK, "login", loginData{Role: user.RoleTeacher})
}

// Assignments

type assignmentForm struct {
	Open   bool
	Values assignment.NewAssignment
	Errors map[string]string
}

type assignmentsData struct {
	Items        []assignment.Assignment
	FromFallback bool
	SavedLocally bool
	Form         assignmentForm
}

func (s *server) board(store *session.Store) *assignment.Board {
	return store.Local(localBoard, func() interface{} {
		return assignment.NewBoard(s.opts.Assignments)
	}).(*assignment.Board)
}

func (s *server) assignmentsData(ctx echo.Context, store *session.Store, q viewQuery, form assignmentForm) assignmentsData {
	b := s.board(store)
	b.Mount(store.Authorize(ctx.Request().Context()))
	if form.Values.TotalPoints == 0 && len(form.Errors) == 0 {
		form.Values.TotalPoints = assignment.DefaultTotalPoints
	}
	return assignmentsData{
		Items:        b.Items(),
		FromFallback: b.FromFallback(),
		SavedLocally: q.Saved == "local",
		Form:         form,
	}
}

// Submissions

type gradeForm struct {
	Values submission.Grade
	Errors map[string]string
}

type statusCounts struct {
	Pending, Submitted, Late, Graded int
}

type submissionsData struct {
	Items   []submission.Submission
	Counts  statusCounts
	Titles  map[string]string
	Grading *submission.Submission
	Form    gradeForm
}

func (s *server) desk(store *session.Store) *submission.Desk {
	return store.Local(localDesk, func() interface{} {
		return submission.NewDesk(s.opts.Fixtures.Submissions())
	}).(*submission.Desk)
}

func (s *server) submissionsData(store *session.Store, gradeID string, form gradeForm) submissionsData {
	d := s.desk(store)
	items := d.Items()

	titles := make(map[string]string)
	for _, a := range s.opts.Fixtures.Assignments() {
		titles[a.ID] = a.Title
	}

	counts := submission.Counts(items)
	data := submissionsData{
		Items: items,
		Counts: statusCounts{
			Pending:   counts[submission.StatusPending],
			Submitted: counts[submission.StatusSubmitted],
			Late:      counts[submission.StatusLate],
			Graded:    counts[submission.StatusGraded],
		},
		Titles: titles,
		Form:   form,
	}
	if gradeID != "" {
		if sub, ok := d.Get(gradeID); ok {
			data.Grading = &sub
			// pre-fill with what is already recorded
			if form.Errors == nil {
				data.Form.Values = submission.Grade{Grade: int(sub.Grade.Int), Remarks: sub.Remarks.String}
			}
		}
	}
	return data
}

// Students

type studentsData struct {
	Students    []user.User
	Departments []string
	Search      string
	Dept        string
	Selected    *user.User
}

func (s *server) studentsData(q viewQuery) studentsData {
	all := s.opts.Fixtures.Roster.Students()
	dept := q.Dept
	if dept == "" {
		dept = student.AllDepartments
	}
	data := studentsData{
		Students:    student.Filter(all, q.Search, dept),
		Departments: student.Departments(all),
		Search:      q.Search,
		Dept:        dept,
	}
	if q.Student != "" {
		if st, ok := student.Find(all, q.Student); ok {
			data.Selected = &st
		}
	}
	return data
}

// Student pages

type studentDashboardData struct {
	User     user.User
	Overview dashboard.StudentOverview
}

func (s *server) studentDashboardData(usr user.User) studentDashboardData {
	return studentDashboardData{
		User:     usr,
		Overview: dashboard.NewStudentOverview(s.opts.Fixtures.Assignments(), s.opts.Fixtures.Courses),
	}
}

type myAssignmentsData struct {
	Entries []submission.Entry
	Filter  submission.Filter
	Filters []submission.Filter
}

func (s *server) myDesk(store *session.Store) *submission.Desk {
	return store.Local(localMySubmissions, func() interface{} {
		return submission.NewDesk(s.opts.Fixtures.Submissions())
	}).(*submission.Desk)
}

func (s *server) myAssignmentsData(store *session.Store, q viewQuery) myAssignmentsData {
	f := submission.ParseFilter(q.Filter)
	return myAssignmentsData{
		Entries: submission.ForStudent(s.opts.Fixtures.Assignments(), s.myDesk(store).Items(), course.DemoStudentID, f),
		Filter:  f,
		Filters: submission.Filters,
	}
}

type resourcesData struct {
	Items      []resource.Resource
	Featured   []resource.Resource
	Search     string
	Category   resource.Category
	Categories []resource.Category
}

func (s *server) resourcesData(q viewQuery) resourcesData {
	cat := resource.ParseCategory(q.Category)
	return resourcesData{
		Items:      resource.Filter(s.opts.Fixtures.Resources, q.Search, cat),
		Featured:   resource.Featured(s.opts.Fixtures.Resources),
		Search:     q.Search,
		Category:   cat,
		Categories: resource.Categories,
	}
}

type supportData struct {
	Sent   bool
	Values support.Query
	Errors map[string]string
}

type courseDetailData struct {
	course.Detail
	Tabs []course.Tab
	Back navigation.Selector
}
