package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/assignflow/core/assignment"
	"github.com/trezcool/assignflow/core/course"
)

func TestSchedule(t *testing.T) {
	courses := []course.Course{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}, {ID: "c4"}}

	slots := Schedule(courses)
	assert.Len(t, slots, 3)
	assert.Equal(t, []string{"09:00 AM", "11:30 AM", "02:00 PM"}, []string{slots[0].Time, slots[1].Time, slots[2].Time})
	assert.Equal(t, []string{"Lecture", "Lab", "Tutorial"}, []string{slots[0].Kind, slots[1].Kind, slots[2].Kind})
	assert.Equal(t, "1h 30m", slots[2].Duration)
	assert.Equal(t, "c3", slots[2].Course.ID)

	assert.Len(t, Schedule(courses[:1]), 1)
	assert.Empty(t, Schedule(nil))
}

func TestStudentOverview(t *testing.T) {
	all := []assignment.Assignment{
		{ID: "a1", Status: assignment.StatusOpen},
		{ID: "a2", Status: assignment.StatusClosed},
		{ID: "a3", Status: assignment.StatusOpen},
	}
	o := NewStudentOverview(all, nil)
	assert.Len(t, o.Pending, 2)
	assert.Len(t, o.NextUp(), 2)
}

func TestStats_MaxDaily(t *testing.T) {
	s := Stats{DailySubmissions: []DailyCount{{"Mon", 12}, {"Fri", 30}, {"Sun", 5}}}
	assert.Equal(t, 30, s.MaxDaily())
	assert.Equal(t, 0, Stats{}.MaxDaily())
}
