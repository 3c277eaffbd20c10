package course

import (
	"math"

	"github.com/trezcool/assignflow/core/assignment"
	"github.com/trezcool/assignflow/core/resource"
	"github.com/trezcool/assignflow/core/submission"
)

// DemoStudentID is the student whose submissions the course pages show.
const DemoStudentID = "st001"

// LowAttendance is the attendance percentage under which a course is flagged.
const LowAttendance = 75

type Course struct {
	ID              string `json:"id" yaml:"id"`
	Code            string `json:"code" yaml:"code"`
	Name            string `json:"name" yaml:"name"`
	Instructor      string `json:"instructor" yaml:"instructor"`
	Credits         int    `json:"credits" yaml:"credits"`
	Schedule        string `json:"schedule" yaml:"schedule"`
	Attendance      int    `json:"attendance" yaml:"attendance"`
	TotalClasses    int    `json:"totalClasses" yaml:"totalClasses"`
	AttendedClasses int    `json:"attendedClasses" yaml:"attendedClasses"`
	Color           string `json:"color" yaml:"color"`
}

func (c Course) LowAttendance() bool { return c.Attendance < LowAttendance }

// AttendanceRate is attended/total in percent, 0 without classes.
func (c Course) AttendanceRate() int {
	if c.TotalClasses <= 0 {
		return 0
	}
	return int(math.Round(float64(c.AttendedClasses) / float64(c.TotalClasses) * 100))
}

type Tab string

const (
	TabOverview    Tab = "overview"
	TabAssignments Tab = "assignments"
	TabResources   Tab = "resources"
)

var Tabs = []Tab{TabOverview, TabAssignments, TabResources}

// ParseTab defaults to the overview.
func ParseTab(s string) Tab {
	for _, t := range Tabs {
		if string(t) == s {
			return t
		}
	}
	return TabOverview
}

func Find(courses []Course, id string) (Course, bool) {
	for _, c := range courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}

// StatusMissed is shown for closed assignments the student never handed in.
const StatusMissed = "missed"

// DisplayStatus is the status a student sees next to an assignment.
func DisplayStatus(a assignment.Assignment, subs []submission.Submission, studentID string) string {
	if s, ok := submission.Find(subs, a.ID, studentID); ok {
		return string(s.Status)
	}
	if a.Status == assignment.StatusClosed {
		return StatusMissed
	}
	return string(submission.StatusPending)
}

type AssignmentEntry struct {
	Assignment assignment.Assignment
	Status     string
}

// Detail is what the course detail page renders.
type Detail struct {
	Course      Course
	Tab         Tab
	Assignments []AssignmentEntry
	Resources   []resource.Resource
}

// Upcoming is the overview excerpt of the course assignments.
func (d Detail) Upcoming() []AssignmentEntry {
	if len(d.Assignments) > 2 {
		return d.Assignments[:2]
	}
	return d.Assignments
}

// Latest is the overview excerpt of the course resources.
func (d Detail) Latest() []resource.Resource {
	if len(d.Resources) > 1 {
		return d.Resources[:1]
	}
	return d.Resources
}

// BuildDetail gathers the assignments and resources of the course by code.
func BuildDetail(c Course, tab Tab, all []assignment.Assignment, subs []submission.Submission, res []resource.Resource) Detail {
	d := Detail{Course: c, Tab: tab}
	for _, a := range assignment.ByCourse(all, c.Code) {
		d.Assignments = append(d.Assignments, AssignmentEntry{Assignment: a, Status: DisplayStatus(a, subs, DemoStudentID)})
	}
	d.Resources = resource.ByCourse(res, c.Code)
	return d
}
