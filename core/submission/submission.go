package submission

import (
	"sync"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/assignment"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusLate      Status = "late"
	StatusGraded    Status = "graded"
)

type Submission struct {
	ID              string      `json:"id"`
	StudentName     string      `json:"studentName"`
	StudentID       string      `json:"studentId"`
	AssignmentID    string      `json:"assignmentId"`
	SubmittedAt     null.Time   `json:"submittedAt"`
	Status          Status      `json:"status"`
	Grade           null.Int    `json:"grade"`
	Remarks         null.String `json:"remarks"`
	PlagiarismScore null.Int    `json:"plagiarismScore"`
	FileURL         null.String `json:"fileUrl"`
}

// Grade is the grading form.
type Grade struct {
	Grade   int    `form:"grade" json:"grade" validate:"min=0,max=100"`
	Remarks string `form:"remarks" json:"remarks"`
}

// Desk is the page state of the grading view: a local copy of the submissions.
type Desk struct {
	mu    sync.RWMutex
	items []Submission
}

func NewDesk(seed []Submission) *Desk {
	return &Desk{items: append([]Submission(nil), seed...)}
}

func (d *Desk) Items() []Submission {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Submission(nil), d.items...)
}

// Get returns the submission, e.g. to pre-fill the grading form.
func (d *Desk) Get(id string) (Submission, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.items {
		if s.ID == id {
			return s, true
		}
	}
	return Submission{}, false
}

// SaveGrade records the grade & remarks and marks the submission graded.
// Any prior status is accepted, pending included: teachers may grade work handed in outside the app.
func (d *Desk) SaveGrade(id string, g Grade) (Submission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.items {
		if d.items[i].ID != id {
			continue
		}
		d.items[i].Grade = null.IntFrom(g.Grade)
		d.items[i].Remarks = null.StringFrom(core.CleanString(g.Remarks))
		d.items[i].Status = StatusGraded
		return d.items[i], nil
	}
	return Submission{}, core.ErrNotFound
}

// Submit records an upload by the student: submitted when on time, late after the due date.
func (d *Desk) Submit(a assignment.Assignment, studentID, studentName string, now time.Time) Submission {
	status := StatusSubmitted
	if a.PastDue(now) {
		status = StatusLate
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.items {
		s := &d.items[i]
		if s.AssignmentID == a.ID && s.StudentID == studentID {
			if s.Status == StatusGraded {
				return *s
			}
			s.Status = status
			s.SubmittedAt = null.TimeFrom(now)
			return *s
		}
	}
	s := Submission{
		ID:           "sub-" + a.ID + "-" + studentID,
		StudentName:  studentName,
		StudentID:    studentID,
		AssignmentID: a.ID,
		SubmittedAt:  null.TimeFrom(now),
		Status:       status,
	}
	d.items = append(d.items, s)
	return s
}

// Find returns the submission of a student for an assignment.
func Find(subs []Submission, assignmentID, studentID string) (Submission, bool) {
	for _, s := range subs {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			return s, true
		}
	}
	return Submission{}, false
}

// Counts tallies submissions per status.
func Counts(subs []Submission) map[Status]int {
	counts := make(map[Status]int, 4)
	for _, s := range subs {
		counts[s.Status]++
	}
	return counts
}
