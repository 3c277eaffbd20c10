package assignment

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/assignflow/core"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// defaults of assignments created from the teacher form
const (
	DefaultCourseName    = "New Course"
	DefaultSubject       = "General"
	DefaultDescription   = "New assignment created by teacher."
	DefaultTotalStudents = 60
	DefaultTotalPoints   = 100
)

var (
	// Ordering is how assignment lists are sorted everywhere: newest first.
	Ordering = core.DBOrdering{Field: "created_at", Ascending: false}

	dueLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", core.DateLayout}
)

type Assignment struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	CourseCode       string      `json:"courseCode"`
	CourseName       string      `json:"courseName"`
	Subject          string      `json:"subject"`
	DueDate          time.Time   `json:"dueDate"`
	TotalPoints      int         `json:"totalPoints"`
	Status           Status      `json:"status"`
	Description      string      `json:"description"`
	AttachmentURL    null.String `json:"attachmentUrl"`
	SubmissionCount  int         `json:"submissionCount"`
	TotalStudents    int         `json:"totalStudents"`
	AllowedFileTypes []string    `json:"allowedFileTypes"`
	TeacherID        null.String `json:"teacherId"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// Progress is the share of students who submitted, in percent.
func (a Assignment) Progress() int {
	if a.TotalStudents <= 0 {
		return 0
	}
	return int(math.Round(float64(a.SubmissionCount) / float64(a.TotalStudents) * 100))
}

func (a Assignment) IsOpen() bool { return a.Status == StatusOpen }

// PastDue tells whether the due date is behind now.
func (a Assignment) PastDue(now time.Time) bool {
	return now.After(a.DueDate)
}

// Row is the remote `assignments` row.
type Row struct {
	ID               string      `json:"id,omitempty" db:"id"`
	Title            string      `json:"title" db:"title"`
	CourseCode       string      `json:"course_code" db:"course_code"`
	CourseName       string      `json:"course_name" db:"course_name"`
	Subject          string      `json:"subject" db:"subject"`
	DueDate          string      `json:"due_date" db:"due_date"`
	TotalPoints      int         `json:"total_points" db:"total_points"`
	Status           Status      `json:"status" db:"status"`
	Description      string      `json:"description" db:"description"`
	AttachmentURL    null.String `json:"attachment_url" db:"attachment_url"`
	SubmissionCount  int         `json:"submission_count" db:"submission_count"`
	TotalStudents    int         `json:"total_students" db:"total_students"`
	AllowedFileTypes []string    `json:"allowed_file_types" db:"-"`
	TeacherID        null.String `json:"teacher_id" db:"teacher_id"`
	CreatedAt        *time.Time  `json:"created_at,omitempty" db:"created_at"`
}

func parseDue(s string) time.Time {
	for _, layout := range dueLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (r Row) Assignment() Assignment {
	a := Assignment{
		ID:               r.ID,
		Title:            r.Title,
		CourseCode:       r.CourseCode,
		CourseName:       r.CourseName,
		Subject:          r.Subject,
		DueDate:          parseDue(r.DueDate),
		TotalPoints:      r.TotalPoints,
		Status:           r.Status,
		Description:      r.Description,
		AttachmentURL:    r.AttachmentURL,
		SubmissionCount:  r.SubmissionCount,
		TotalStudents:    r.TotalStudents,
		AllowedFileTypes: r.AllowedFileTypes,
		TeacherID:        r.TeacherID,
	}
	if r.CreatedAt != nil {
		a.CreatedAt = *r.CreatedAt
	}
	return a
}

func RowFrom(a Assignment) Row {
	r := Row{
		ID:               a.ID,
		Title:            a.Title,
		CourseCode:       a.CourseCode,
		CourseName:       a.CourseName,
		Subject:          a.Subject,
		DueDate:          a.DueDate.UTC().Format(time.RFC3339),
		TotalPoints:      a.TotalPoints,
		Status:           a.Status,
		Description:      a.Description,
		AttachmentURL:    a.AttachmentURL,
		SubmissionCount:  a.SubmissionCount,
		TotalStudents:    a.TotalStudents,
		AllowedFileTypes: a.AllowedFileTypes,
		TeacherID:        a.TeacherID,
	}
	if !a.CreatedAt.IsZero() {
		created := a.CreatedAt
		r.CreatedAt = &created
	}
	return r
}

// NewAssignment is the teacher's create form.
type NewAssignment struct {
	Title       string `form:"title" json:"title" validate:"required,notblank"`
	CourseCode  string `form:"courseCode" json:"courseCode" validate:"required,notblank"`
	DueDate     string `form:"dueDate" json:"dueDate" validate:"required,date"`
	TotalPoints int    `form:"totalPoints" json:"totalPoints" validate:"required,min=1,max=1000"`
}

func (na *NewAssignment) Clean() {
	na.Title = core.CleanString(na.Title)
	na.CourseCode = strings.ToUpper(core.CleanString(na.CourseCode))
	na.DueDate = core.CleanString(na.DueDate)
}

// Assignment fills in the defaults of a freshly created assignment.
func (na NewAssignment) Assignment(teacherID string, now time.Time) Assignment {
	a := Assignment{
		Title:           na.Title,
		CourseCode:      na.CourseCode,
		CourseName:      DefaultCourseName,
		Subject:         DefaultSubject,
		DueDate:         parseDue(na.DueDate),
		TotalPoints:     na.TotalPoints,
		Status:          StatusOpen,
		Description:     DefaultDescription,
		SubmissionCount: 0,
		TotalStudents:   DefaultTotalStudents,
		CreatedAt:       now,
	}
	if teacherID != "" {
		a.TeacherID = null.StringFrom(teacherID)
	}
	return a
}

// Repository reads and writes the `assignments` table.
type Repository interface {
	QueryAll(ctx context.Context) ([]Assignment, error)
	Create(ctx context.Context, a Assignment) (Assignment, error)
	Delete(ctx context.Context, id string) error
}

// ByCourse returns the assignments of the given course code.
func ByCourse(all []Assignment, courseCode string) []Assignment {
	res := make([]Assignment, 0)
	for _, a := range all {
		if a.CourseCode == courseCode {
			res = append(res, a)
		}
	}
	return res
}

// Open returns the open assignments.
func Open(all []Assignment) []Assignment {
	res := make([]Assignment, 0)
	for _, a := range all {
		if a.IsOpen() {
			res = append(res, a)
		}
	}
	return res
}
