package dashboard

import (
	"github.com/trezcool/assignflow/core/assignment"
	"github.com/trezcool/assignflow/core/course"
)

type DailyCount struct {
	Day   string `json:"day" yaml:"day"`
	Count int    `json:"count" yaml:"count"`
}

type Slice struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
	Color string `json:"color" yaml:"color"`
}

// Stats are the teacher dashboard figures. They come from fixtures as is.
type Stats struct {
	TotalStudents      int          `json:"totalStudents" yaml:"totalStudents"`
	SubmissionRate     int          `json:"submissionRate" yaml:"submissionRate"`
	PendingAssignments int          `json:"pendingAssignments" yaml:"pendingAssignments"`
	AverageGrade       float64      `json:"averageGrade" yaml:"averageGrade"`
	DailySubmissions   []DailyCount `json:"dailySubmissions" yaml:"dailySubmissions"`
	StatusDistribution []Slice      `json:"statusDistribution" yaml:"statusDistribution"`
}

// MaxDaily is the tallest bar of the daily chart.
func (s Stats) MaxDaily() int {
	var max int
	for _, d := range s.DailySubmissions {
		if d.Count > max {
			max = d.Count
		}
	}
	return max
}

// Slot is an entry of the student's schedule for today.
type Slot struct {
	Course   course.Course
	Time     string
	Duration string
	Kind     string
}

var (
	slotTimes = []string{"09:00 AM", "11:30 AM", "02:00 PM"}
	slotKinds = []string{"Lecture", "Lab", "Tutorial"}
)

const slotDuration = "1h 30m"

// Schedule lays the first three courses on today's fixed slots.
func Schedule(courses []course.Course) []Slot {
	n := len(courses)
	if n > len(slotTimes) {
		n = len(slotTimes)
	}
	slots := make([]Slot, 0, n)
	for i := 0; i < n; i++ {
		slots = append(slots, Slot{Course: courses[i], Time: slotTimes[i], Duration: slotDuration, Kind: slotKinds[i]})
	}
	return slots
}

// StudentOverview is what the student dashboard renders.
type StudentOverview struct {
	Pending  []assignment.Assignment
	Schedule []Slot
	Courses  []course.Course
}

// NextUp is the short list of pending assignments.
func (o StudentOverview) NextUp() []assignment.Assignment {
	if len(o.Pending) > 3 {
		return o.Pending[:3]
	}
	return o.Pending
}

func NewStudentOverview(all []assignment.Assignment, courses []course.Course) StudentOverview {
	return StudentOverview{
		Pending:  assignment.Open(all),
		Schedule: Schedule(courses),
		Courses:  courses,
	}
}
