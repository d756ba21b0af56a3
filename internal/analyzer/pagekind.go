// File: internal/analyzer/pagekind.go
package analyzer

import (
	"strings"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
)

// classificationRules is the ordered page-kind table. First match wins: a
// rule fires when the URL contains one of its fragments or the title
// contains one of its keywords. Downstream formatting keys off these kinds,
// so both the rule contents and their order are contract.
var classificationRules = []struct {
	kind          schemas.PageKind
	urlFragments  []string
	titleKeywords []string
}{
	{schemas.PageKindCourses, []string{"/course/"}, []string{"科目", "Course"}},
	{schemas.PageKindAssignments, []string{"/assignment"}, []string{"課題", "Assignment"}},
	{schemas.PageKindSyllabus, []string{"/syllabus"}, []string{"シラバス", "Syllabus"}},
	{schemas.PageKindGrades, []string{"/grade"}, []string{"成績", "Grade"}},
	{schemas.PageKindAnnouncements, []string{"/announcement"}, []string{"お知らせ", "連絡"}},
	{schemas.PageKindTimetable, []string{"/timetable"}, []string{"時間割", "Time"}},
	{schemas.PageKindTop, []string{"/top"}, []string{"ホーム"}},
}

// Classifier derives a page kind from a target URL and document title.
type Classifier struct {
	baseURL string
}

// NewClassifier creates a classifier anchored at the portal base URL. A URL
// equal to the base URL classifies as the top page even when no fragment or
// keyword matches.
func NewClassifier(baseURL string) *Classifier {
	return &Classifier{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Classify walks the rule table in order and returns the first matching
// kind, or PageOther when nothing matches.
func (c *Classifier) Classify(url, title string) schemas.PageKind {
	for _, rule := range classificationRules {
		if rule.kind == schemas.PageKindTop && (url == c.baseURL || url == c.baseURL+"/") {
			return schemas.PageKindTop
		}
		for _, fragment := range rule.urlFragments {
			if strings.Contains(url, fragment) {
				return rule.kind
			}
		}
		for _, keyword := range rule.titleKeywords {
			if strings.Contains(title, keyword) {
				return rule.kind
			}
		}
	}
	return schemas.PageKindOther
}
