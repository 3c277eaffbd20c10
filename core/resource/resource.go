package resource

import (
	"github.com/trezcool/assignflow/core"
)

type Type string

const (
	TypePDF     Type = "pdf"
	TypeVideo   Type = "video"
	TypeLink    Type = "link"
	TypeArchive Type = "archive"
	TypeDoc     Type = "doc"
)

type Category string

const (
	CategoryAll       Category = "All"
	CategoryNotes     Category = "Notes"
	CategoryLabManual Category = "Lab Manual"
	CategoryPaper     Category = "Paper"
	CategoryReference Category = "Reference"
)

var Categories = []Category{CategoryAll, CategoryNotes, CategoryLabManual, CategoryPaper, CategoryReference}

// ParseCategory defaults to All.
func ParseCategory(s string) Category {
	for _, c := range Categories {
		if string(c) == s {
			return c
		}
	}
	return CategoryAll
}

type Resource struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Type        Type     `json:"type" yaml:"type"`
	CourseCode  string   `json:"courseCode" yaml:"courseCode"`
	Author      string   `json:"author" yaml:"author"`
	Date        string   `json:"date" yaml:"date"`
	Size        string   `json:"size" yaml:"size"`
	Downloads   int      `json:"downloads" yaml:"downloads"`
	Category    Category `json:"category" yaml:"category"`
}

// Filter keeps the resources whose title or course code contains query (case-insensitive)
// and whose category matches. CategoryAll matches every category.
func Filter(all []Resource, query string, cat Category) []Resource {
	res := make([]Resource, 0, len(all))
	for _, r := range all {
		matchesSearch := core.ContainsFold(r.Title, query) || core.ContainsFold(r.CourseCode, query)
		matchesCategory := cat == CategoryAll || r.Category == cat
		if matchesSearch && matchesCategory {
			res = append(res, r)
		}
	}
	return res
}

// Featured returns the first three resources.
func Featured(all []Resource) []Resource {
	if len(all) > 3 {
		return all[:3]
	}
	return all
}

func ByCourse(all []Resource, courseCode string) []Resource {
	res := make([]Resource, 0)
	for _, r := range all {
		if r.CourseCode == courseCode {
			res = append(res, r)
		}
	}
	return res
}
