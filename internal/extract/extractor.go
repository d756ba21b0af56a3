// File: internal/extract/extractor.go

// Package extract derives interaction structure from rendered portal markup.
// It is a pure transformation over an HTML string: no browser, no network,
// no clock. Same markup in, same structure out.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
)

// Output truncation policy. Descriptions stay scannable, examples stay
// representative. Counted in runes so multibyte text is not cut mid-character.
const (
	descriptionLimit = 50
	exampleLimit     = 100
)

// regionCandidates maps a named page region to the probe selectors that
// detect it and the combined expression emitted when any probe matches.
// Emitting the combined expression rather than the probe that hit keeps the
// output stable across markup variants of the same region.
var regionCandidates = []struct {
	name     string
	probes   []string
	combined string
}{
	{"navigation", []string{"nav", ".navigation"}, "nav, .navigation, .nav-menu"},
	{"header", []string{"header", ".header"}, "header, .header, .page-header"},
	{"mainContent", []string{"main", ".main-content"}, "main, .main-content, .content-area"},
	{"footer", []string{"footer", ".footer"}, "footer, .footer"},
	{"forms", []string{"form"}, "form"},
	{"buttons", []string{`button, input[type="button"], input[type="submit"]`}, `button, input[type="button"], input[type="submit"]`},
	{"links", []string{"a[href]"}, "a[href]"},
}

const (
	submitButtonSelector = `button[type="submit"], input[type="submit"]`
	headingSelector      = "h1, h2, h3"
	navLinkSelector      = "nav a, .navigation a, .nav-menu a"
)

// Extractor implements schemas.Extractor over goquery documents.
type Extractor struct {
	logger *zap.Logger
}

var _ schemas.Extractor = (*Extractor)(nil)

// New creates an extractor.
func New(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger.Named("extractor")}
}

// Extract parses the markup and derives its page structure. The page kind is
// accepted for parity with callers that classify first; the common rules
// below apply to every kind. Only a parse fault is an error: a page with no
// recognized regions yields an empty, valid structure.
func (e *Extractor) Extract(content string, kind schemas.PageKind) (schemas.PageStructure, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return schemas.PageStructure{}, &schemas.ExtractionError{Err: err}
	}

	structure := schemas.PageStructure{
		Selectors:       e.regions(doc),
		Actions:         e.actions(doc),
		DataElements:    e.dataElements(doc),
		NavigationLinks: e.navigationLinks(doc),
	}

	e.logger.Debug("Structure extracted.",
		zap.String("kind", string(kind)),
		zap.Int("regions", len(structure.Selectors)),
		zap.Int("actions", len(structure.Actions)),
		zap.Int("data_elements", len(structure.DataElements)),
		zap.Int("navigation_links", len(structure.NavigationLinks)))
	return structure, nil
}

func (e *Extractor) regions(doc *goquery.Document) map[string]string {
	selectors := make(map[string]string)
	for _, region := range regionCandidates {
		for _, probe := range region.probes {
			if doc.Find(probe).Length() > 0 {
				selectors[region.name] = region.combined
				break
			}
		}
	}
	return selectors
}

// actions enumerates submit controls. The selector indexes into the combined
// button/input sequence, matching how the discovered controls are addressed
// downstream.
func (e *Extractor) actions(doc *goquery.Document) []schemas.Action {
	var actions []schemas.Action
	doc.Find(submitButtonSelector).Each(func(i int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			text = fmt.Sprintf("Submit button %d", i+1)
		}
		actions = append(actions, schemas.Action{
			Kind:        schemas.ActionClick,
			Selector:    fmt.Sprintf(`button[type="submit"]:nth-of-type(%d), input[type="submit"]:nth-of-type(%d)`, i+1, i+1),
			Description: "Submit action: " + text,
			Required:    true,
		})
	})
	return actions
}

// dataElements enumerates the page headings. The nth-of-type index counts the
// heading's position in the combined h1/h2/h3 sequence, not among its own
// tag; consumers resolve against the same combined enumeration.
func (e *Extractor) dataElements(doc *goquery.Document) []schemas.DataElement {
	var elements []schemas.DataElement
	doc.Find(headingSelector).Each(func(i int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		elements = append(elements, schemas.DataElement{
			Kind:        schemas.DataText,
			Selector:    fmt.Sprintf("%s:nth-of-type(%d)", goquery.NodeName(sel), i+1),
			Description: "Page heading: " + truncate(text, descriptionLimit),
			Example:     truncate(text, exampleLimit),
		})
	})
	return elements
}

// navigationLinks enumerates anchors inside the recognized navigation
// regions. Links without visible text or an href are skipped; repeated hrefs
// keep only the first occurrence.
func (e *Extractor) navigationLinks(doc *goquery.Document) []schemas.NavigationLink {
	var links []schemas.NavigationLink
	seen := make(map[string]bool)
	doc.Find(navLinkSelector).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		if text == "" || href == "" || seen[href] {
			return
		}
		seen[href] = true
		links = append(links, schemas.NavigationLink{
			Label:       text,
			Selector:    fmt.Sprintf("a[href=%q]", href),
			TargetURL:   href,
			Description: "Navigate to " + text,
		})
	})
	return links
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
