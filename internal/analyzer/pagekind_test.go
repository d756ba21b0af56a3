// File: internal/analyzer/pagekind_test.go
package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
)

func TestClassify(t *testing.T) {
	c := NewClassifier("https://portal.example")

	tests := []struct {
		name  string
		url   string
		title string
		want  schemas.PageKind
	}{
		{"course by url", "https://portal.example/course/123", "Course: Algebra", schemas.PageKindCourses},
		{"course by japanese title", "https://portal.example/view?id=9", "担当科目一覧", schemas.PageKindCourses},
		{"assignment by url", "https://portal.example/assignment/42", "", schemas.PageKindAssignments},
		{"assignment by title", "https://portal.example/view", "課題の提出", schemas.PageKindAssignments},
		{"syllabus", "https://portal.example/syllabus", "", schemas.PageKindSyllabus},
		{"grades by title", "https://portal.example/view", "成績照会", schemas.PageKindGrades},
		{"announcements", "https://portal.example/announcement", "", schemas.PageKindAnnouncements},
		{"announcements by contact title", "https://portal.example/view", "連絡事項", schemas.PageKindAnnouncements},
		{"timetable", "https://portal.example/timetable", "", schemas.PageKindTimetable},
		{"top by exact base url", "https://portal.example", "Home", schemas.PageKindTop},
		{"top by base url with slash", "https://portal.example/", "Home", schemas.PageKindTop},
		{"top by path", "https://portal.example/top", "", schemas.PageKindTop},
		{"top by title", "https://portal.example/view", "ホーム", schemas.PageKindTop},
		{"no match", "https://portal.example/somewhere", "Untitled", schemas.PageKindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.url, tt.title))
		})
	}
}

func TestClassifyOrderIsFirstMatchWins(t *testing.T) {
	c := NewClassifier("https://portal.example")

	// A course URL whose title mentions grades still classifies as courses:
	// the course rule sits earlier in the table.
	got := c.Classify("https://portal.example/course/1", "成績")
	assert.Equal(t, schemas.PageKindCourses, got)

	// Title keywords for an earlier rule beat URL fragments of a later one.
	got = c.Classify("https://portal.example/timetable", "課題")
	assert.Equal(t, schemas.PageKindAssignments, got)
}
