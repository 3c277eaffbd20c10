package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var library = []Resource{
	{ID: "r1", Title: "Lecture 5: React Hooks Deep Dive", CourseCode: "CS401", Category: CategoryNotes},
	{ID: "r2", Title: "Lab Manual: AWS Deployment", CourseCode: "CS401", Category: CategoryLabManual},
	{ID: "r3", Title: "2022 Mid-Term Question Paper", CourseCode: "CS302", Category: CategoryPaper},
	{ID: "r4", Title: "Understanding B-Trees Visualization", CourseCode: "CS302", Category: CategoryReference},
	{ID: "r7", Title: "Advanced Sorting Algorithms", CourseCode: "ALG101", Category: CategoryNotes},
}

func ids(rs []Resource) []string {
	res := make([]string, 0, len(rs))
	for _, r := range rs {
		res = append(res, r.ID)
	}
	return res
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		cat   Category
		want  []string
	}{
		{name: "everything", query: "", cat: CategoryAll, want: []string{"r1", "r2", "r3", "r4", "r7"}},
		{name: "by course code", query: "cs302", cat: CategoryAll, want: []string{"r3", "r4"}},
		{name: "by title", query: "HOOKS", cat: CategoryAll, want: []string{"r1"}},
		{name: "title or code", query: "a", cat: CategoryNotes, want: []string{"r1", "r7"}},
		{name: "category only", query: "", cat: CategoryPaper, want: []string{"r3"}},
		{name: "search and category", query: "cs401", cat: CategoryLabManual, want: []string{"r2"}},
		{name: "no match", query: "quantum", cat: CategoryAll, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(library, tt.query, tt.cat)))
		})
	}
}

func TestFilter_isIntersection(t *testing.T) {
	for _, q := range []string{"", "cs", "lab", "x"} {
		all := Filter(library, q, CategoryAll)
		for _, cat := range Categories[1:] {
			got := Filter(library, q, cat)
			want := make([]Resource, 0)
			for _, r := range all {
				if r.Category == cat {
					want = append(want, r)
				}
			}
			assert.Equal(t, ids(want), ids(got), "query %q category %q", q, cat)
		}
	}
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryLabManual, ParseCategory("Lab Manual"))
	assert.Equal(t, CategoryAll, ParseCategory("lab manual"))
	assert.Equal(t, CategoryAll, ParseCategory(""))
}

func TestFeaturedAndByCourse(t *testing.T) {
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(Featured(library)))
	assert.Equal(t, []string{"r1"}, ids(Featured(library[:1])))
	assert.Equal(t, []string{"r7"}, ids(ByCourse(library, "ALG101")))
}
