package schemas

import (
	"time"
)

// -- Credentials & Session --

// Credentials holds the identity/secret pair submitted to the portal's
// federated login form. Credentials are never persisted; they are supplied
// per login attempt, either explicitly or from the environment at the moment
// authentication is attempted.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Cookie is the serializable subset of a browser cookie needed to restore an
// authenticated browsing context.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"` // unix seconds; <= 0 means session cookie
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
}

// SessionState is the opaque, serializable proof of a prior successful
// authentication. It is owned by the session manager while live; the
// persisted copy is owned by the session store.
type SessionState struct {
	Cookies []Cookie  `json:"cookies"`
	SavedAt time.Time `json:"savedAt"`
}

// Empty reports whether the state carries no authentication material.
func (s *SessionState) Empty() bool {
	return s == nil || len(s.Cookies) == 0
}

// -- Targets & Classification --

// PageTarget identifies a page to analyze. Immutable, supplied by the caller.
type PageTarget struct {
	URL string `json:"url"`
	// Kind optionally declares the page kind up front, skipping
	// classification.
	Kind PageKind `json:"kind,omitempty"`
}

// PageKind is a coarse classification of a portal page's purpose, derived
// from URL and title heuristics.
type PageKind string

const (
	PageKindTop           PageKind = "top"
	PageKindCourses       PageKind = "courses"
	PageKindAssignments   PageKind = "assignments"
	PageKindSyllabus      PageKind = "syllabus"
	PageKindGrades        PageKind = "grades"
	PageKindAnnouncements PageKind = "announcements"
	PageKindTimetable     PageKind = "timetable"
	PageKindOther         PageKind = "other"
)

// -- Page Structure --

// ActionKind enumerates the supported kinds of actionable controls.
type ActionKind string

const (
	ActionClick      ActionKind = "click"
	ActionFormSubmit ActionKind = "form"
	ActionNavigate   ActionKind = "navigation"
)

// Action describes one actionable control on a page (clickable or
// submittable) with a positional selector.
type Action struct {
	Kind        ActionKind `json:"type"`
	Selector    string     `json:"selector"`
	Description string     `json:"description"`
	Required    bool       `json:"required"`
}

// DataElementKind enumerates the supported kinds of data-bearing elements.
type DataElementKind string

const (
	DataText  DataElementKind = "text"
	DataList  DataElementKind = "list"
	DataTable DataElementKind = "table"
	DataLink  DataElementKind = "link"
	DataDate  DataElementKind = "date"
)

// DataElement describes one data-bearing element (heading, table, list) with
// an example of its current text.
type DataElement struct {
	Kind        DataElementKind `json:"type"`
	Selector    string          `json:"selector"`
	Description string          `json:"description"`
	Example     string          `json:"example,omitempty"`
}

// NavigationLink describes one anchor inside a recognized navigation
// container.
type NavigationLink struct {
	Label       string `json:"label"`
	Selector    string `json:"selector"`
	TargetURL   string `json:"url,omitempty"`
	Description string `json:"description"`
}

// PageStructure is the structural fingerprint derived from one page's
// content. It is a pure function of that content: byte-identical input
// yields byte-identical structure, and a new extraction always produces a
// new value rather than mutating an old one.
type PageStructure struct {
	Selectors       map[string]string `json:"selectors"`
	Actions         []Action          `json:"actions"`
	DataElements    []DataElement     `json:"dataElements"`
	NavigationLinks []NavigationLink  `json:"navigation"`
}

// -- Analysis --

// NetworkLog records one response observed by a page scope during its
// lifetime.
type NetworkLog struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	Status    int64     `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalyzeOptions tunes a single analysis call.
type AnalyzeOptions struct {
	// IncludeHTML attaches the captured DOM content to the result.
	IncludeHTML bool
	// IncludeScreenshot attaches a full-page PNG to the result.
	IncludeScreenshot bool
	// IncludeNetworkLogs attaches the page scope's observed responses.
	IncludeNetworkLogs bool
	// FailFast propagates lower-layer failures as errors instead of
	// converting them into a structured failure result.
	FailFast bool
}

// AnalysisResult is the externally visible outcome of one analyze call.
// Immutable once produced. Success distinguishes "could not complete
// analysis" from "nothing matched": a successful result may still carry an
// empty structure.
type AnalysisResult struct {
	Success     bool          `json:"success"`
	Message     string        `json:"message,omitempty"`
	Target      PageTarget    `json:"target"`
	PageKind    PageKind      `json:"pageType"`
	Title       string        `json:"title"`
	Structure   PageStructure `json:"structure"`
	CapturedAt  time.Time     `json:"timestamp"`
	RawContent  string        `json:"domContent,omitempty"`
	Screenshot  []byte        `json:"screenshot,omitempty"`
	NetworkLogs []NetworkLog  `json:"networkLogs,omitempty"`
}

// -- Requirements generation (downstream collaborator) --

// DocInput is the input handed to the requirements-document generator.
type DocInput struct {
	URL         string
	DOMContent  string
	NetworkLogs []NetworkLog
}
