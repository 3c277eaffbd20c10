package submission

import (
	"github.com/trezcool/assignflow/core/assignment"
)

// Filter is the status filter of the student's assignment list.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterOpen      Filter = "open"
	FilterSubmitted Filter = "submitted"
	FilterLate      Filter = "late"
)

var Filters = []Filter{FilterAll, FilterOpen, FilterSubmitted, FilterLate}

func ParseFilter(s string) Filter {
	for _, f := range Filters {
		if string(f) == s {
			return f
		}
	}
	return FilterAll
}

// Entry is an assignment as seen by one student.
type Entry struct {
	Assignment assignment.Assignment
	Submission *Submission
}

// Graded tells whether feedback is available.
func (e Entry) Graded() bool {
	return e.Submission != nil && e.Submission.Status == StatusGraded
}

func (f Filter) match(e Entry) bool {
	switch f {
	case FilterOpen:
		return e.Assignment.IsOpen()
	case FilterSubmitted:
		return e.Submission != nil && (e.Submission.Status == StatusSubmitted || e.Submission.Status == StatusGraded)
	case FilterLate:
		return e.Submission != nil && e.Submission.Status == StatusLate
	}
	return true
}

// ForStudent pairs each assignment with the student's submission and keeps those matching f.
func ForStudent(all []assignment.Assignment, subs []Submission, studentID string, f Filter) []Entry {
	entries := make([]Entry, 0, len(all))
	for _, a := range all {
		e := Entry{Assignment: a}
		if s, ok := Find(subs, a.ID, studentID); ok {
			s := s
			e.Submission = &s
		}
		if f.match(e) {
			entries = append(entries, e)
		}
	}
	return entries
}
