// Package fixtures loads the demo data the pages fall back on.
package fixtures

import (
	"io/fs"
	"path"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/assignflow/core/assignment"
	"github.com/trezcool/assignflow/core/course"
	"github.com/trezcool/assignflow/core/dashboard"
	"github.com/trezcool/assignflow/core/resource"
	"github.com/trezcool/assignflow/core/submission"
	"github.com/trezcool/assignflow/core/user"
	appfs "github.com/trezcool/assignflow/fs"
)

const dir = "fixtures"

// Set is the whole fixture data set.
type Set struct {
	Roster      *user.Roster
	assignments []assignment.Assignment
	submissions []submission.Submission
	Courses     []course.Course
	Resources   []resource.Resource
	Stats       dashboard.Stats
}

// Assignments returns a fresh copy of the fixture assignments.
func (s *Set) Assignments() []assignment.Assignment {
	return append([]assignment.Assignment(nil), s.assignments...)
}

// Submissions returns a fresh copy of the fixture submissions.
func (s *Set) Submissions() []submission.Submission {
	return append([]submission.Submission(nil), s.submissions...)
}

var (
	defaultSet *Set
	defaultErr error
	loadOnce   sync.Once
)

// Default loads the embedded fixtures once; passwords are hashed on that first call.
func Default() (*Set, error) {
	loadOnce.Do(func() {
		defaultSet, defaultErr = Load(appfs.FS, time.Now())
	})
	return defaultSet, defaultErr
}

// MustDefault is Default for process start-up.
func MustDefault() *Set {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

type accountFixture struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Email      string   `yaml:"email"`
	Password   string   `yaml:"password"`
	Role       string   `yaml:"role"`
	AvatarURL  *string  `yaml:"avatarUrl"`
	Department *string  `yaml:"department"`
	StudentID  *string  `yaml:"studentId"`
	Semester   *int     `yaml:"semester"`
	Section    *string  `yaml:"section"`
	CGPA       *float64 `yaml:"cgpa"`
}

func (f accountFixture) account() (user.Account, error) {
	acc := user.Account{User: user.User{
		ID:         f.ID,
		Name:       null.StringFrom(f.Name),
		Email:      f.Email,
		Role:       user.Role(f.Role),
		AvatarURL:  null.StringFromPtr(f.AvatarURL),
		Department: null.StringFromPtr(f.Department),
		StudentID:  null.StringFromPtr(f.StudentID),
		Semester:   null.IntFromPtr(f.Semester),
		Section:    null.StringFromPtr(f.Section),
		CGPA:       null.Float64FromPtr(f.CGPA),
	}}
	if !acc.Role.Valid() {
		return acc, errors.Errorf("account %s: invalid role %q", f.ID, f.Role)
	}
	if err := acc.SetPassword(f.Password); err != nil {
		return acc, errors.Wrapf(err, "hashing password of %s", f.ID)
	}
	return acc, nil
}

type assignmentFixture struct {
	ID               string   `yaml:"id"`
	Title            string   `yaml:"title"`
	CourseCode       string   `yaml:"courseCode"`
	CourseName       string   `yaml:"courseName"`
	Subject          string   `yaml:"subject"`
	DueDate          string   `yaml:"dueDate"`
	DueIn            string   `yaml:"dueIn"`
	TotalPoints      int      `yaml:"totalPoints"`
	Status           string   `yaml:"status"`
	Description      string   `yaml:"description"`
	AttachmentURL    *string  `yaml:"attachmentUrl"`
	SubmissionCount  int      `yaml:"submissionCount"`
	TotalStudents    int      `yaml:"totalStudents"`
	AllowedFileTypes []string `yaml:"allowedFileTypes"`
}

func (f assignmentFixture) assignment(now time.Time) (assignment.Assignment, error) {
	row := assignment.Row{
		ID:               f.ID,
		Title:            f.Title,
		CourseCode:       f.CourseCode,
		CourseName:       f.CourseName,
		Subject:          f.Subject,
		DueDate:          f.DueDate,
		TotalPoints:      f.TotalPoints,
		Status:           assignment.Status(f.Status),
		Description:      f.Description,
		AttachmentURL:    null.StringFromPtr(f.AttachmentURL),
		SubmissionCount:  f.SubmissionCount,
		TotalStudents:    f.TotalStudents,
		AllowedFileTypes: f.AllowedFileTypes,
	}
	a := row.Assignment()
	if f.DueIn != "" {
		d, err := time.ParseDuration(f.DueIn)
		if err != nil {
			return a, errors.Wrapf(err, "assignment %s: dueIn", f.ID)
		}
		a.DueDate = now.Add(d).UTC()
	}
	if a.DueDate.IsZero() {
		return a, errors.Errorf("assignment %s: no due date", f.ID)
	}
	return a, nil
}

type submissionFixture struct {
	ID              string  `yaml:"id"`
	StudentName     string  `yaml:"studentName"`
	StudentID       string  `yaml:"studentId"`
	AssignmentID    string  `yaml:"assignmentId"`
	SubmittedAt     *string `yaml:"submittedAt"`
	Status          string  `yaml:"status"`
	Grade           *int    `yaml:"grade"`
	Remarks         *string `yaml:"remarks"`
	PlagiarismScore *int    `yaml:"plagiarismScore"`
	FileURL         *string `yaml:"fileUrl"`
}

func (f submissionFixture) submission() (submission.Submission, error) {
	s := submission.Submission{
		ID:              f.ID,
		StudentName:     f.StudentName,
		StudentID:       f.StudentID,
		AssignmentID:    f.AssignmentID,
		Status:          submission.Status(f.Status),
		Grade:           null.IntFromPtr(f.Grade),
		Remarks:         null.StringFromPtr(f.Remarks),
		PlagiarismScore: null.IntFromPtr(f.PlagiarismScore),
		FileURL:         null.StringFromPtr(f.FileURL),
	}
	if f.SubmittedAt != nil {
		t, err := time.Parse("2006-01-02T15:04:05", *f.SubmittedAt)
		if err != nil {
			return s, errors.Wrapf(err, "submission %s: submittedAt", f.ID)
		}
		s.SubmittedAt = null.TimeFrom(t)
	}
	return s, nil
}

func decode(fsys fs.FS, name string, dest interface{}) error {
	data, err := fs.ReadFile(fsys, path.Join(dir, name))
	if err != nil {
		return errors.Wrapf(err, "reading %s", name)
	}
	if err := yaml.Unmarshal(data, dest); err != nil {
		return errors.Wrapf(err, "decoding %s", name)
	}
	return nil
}

// Load reads the fixtures under `fixtures/` of fsys. Relative due dates are resolved against now.
func Load(fsys fs.FS, now time.Time) (*Set, error) {
	var (
		accFx  []accountFixture
		asgFx  []assignmentFixture
		subFx  []submissionFixture
		set    = new(Set)
		inputs = []struct {
			name string
			dest interface{}
		}{
			{"accounts.yaml", &accFx},
			{"assignments.yaml", &asgFx},
			{"submissions.yaml", &subFx},
			{"courses.yaml", &set.Courses},
			{"resources.yaml", &set.Resources},
			{"stats.yaml", &set.Stats},
		}
	)
	for _, in := range inputs {
		if err := decode(fsys, in.name, in.dest); err != nil {
			return nil, err
		}
	}

	accounts := make([]user.Account, 0, len(accFx))
	for _, f := range accFx {
		acc, err := f.account()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	set.Roster = user.NewRoster(accounts...)

	for _, f := range asgFx {
		a, err := f.assignment(now)
		if err != nil {
			return nil, err
		}
		set.assignments = append(set.assignments, a)
	}
	for _, f := range subFx {
		s, err := f.submission()
		if err != nil {
			return nil, err
		}
		set.submissions = append(set.submissions, s)
	}
	return set, nil
}
