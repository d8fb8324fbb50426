// Package analyzer inspects converted source documents and produces the
// Analysis a plan is generated from.
package analyzer

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pders01/extraction-plan/internal/models"
)

const (
	// MaxSummaryLength bounds the content summary, ellipsis included
	MaxSummaryLength = 300
	// MaxKeyElements caps the key element list
	MaxKeyElements = 5

	summaryScanLines = 10
	summaryMaxLines  = 3
	summaryMinChars  = 20
)

// typeRule maps marker phrases to a document type. Rules are checked in
// order and the first match wins.
type typeRule struct {
	docType models.DocumentType
	match   func(content string) bool
}

var typeRules = []typeRule{
	{models.DocRequirements, func(c string) bool {
		return strings.Contains(c, "requirements") || strings.Contains(c, "shall")
	}},
	{models.DocArchitecture, func(c string) bool {
		return strings.Contains(c, "architecture") || strings.Contains(c, "system design")
	}},
	{models.DocUserStories, func(c string) bool {
		return strings.Contains(c, "user story") || strings.Contains(c, "acceptance criteria")
	}},
	{models.DocAPI, func(c string) bool {
		return strings.Contains(c, "api") && (strings.Contains(c, "endpoint") || strings.Contains(c, "method"))
	}},
	{models.DocTest, func(c string) bool {
		return strings.Contains(c, "test") && (strings.Contains(c, "case") || strings.Contains(c, "scenario"))
	}},
}

// elementRule contributes one label when its signal is present
type elementRule struct {
	label string
	match func(raw, lower string) bool
}

var elementRules = []elementRule{
	{"Structured headings and sections", func(raw, _ string) bool {
		return strings.Contains(raw, "# ") || strings.Contains(raw, "## ")
	}},
	{"Requirements specifications", func(_, c string) bool {
		return strings.Contains(c, "requirement")
	}},
	{"Feature descriptions", func(_, c string) bool {
		return strings.Contains(c, "feature")
	}},
	{"User stories and acceptance criteria", func(_, c string) bool {
		return strings.Contains(c, "user") && strings.Contains(c, "story")
	}},
	{"API specifications", func(_, c string) bool {
		return strings.Contains(c, "api") || strings.Contains(c, "endpoint")
	}},
	{"Testing procedures and cases", func(_, c string) bool {
		return strings.Contains(c, "test")
	}},
	{"System architecture and design patterns", func(_, c string) bool {
		return strings.Contains(c, "architecture") || strings.Contains(c, "design")
	}},
	{"Data models and schemas", func(_, c string) bool {
		return strings.Contains(c, "data") && (strings.Contains(c, "model") || strings.Contains(c, "schema"))
	}},
}

// GenericElements is emitted when no content signal triggers
var GenericElements = []string{
	"Textual content for documentation",
	"Structured information for organization",
	"Reference material for development",
}

// Analyze inspects content read from sourcePath. It is a pure function of
// its inputs; sourcePath is only used for the extension fallback.
func Analyze(sourcePath, content string) models.Analysis {
	return models.Analysis{
		DocumentType:  DetectType(sourcePath, content),
		Summary:       Summarize(content),
		KeyElements:   KeyElements(content),
		Sections:      SplitSections(content),
		ContentLength: len(content),
		LineCount:     len(strings.Split(content, "\n")),
	}
}

// DetectType classifies content by marker phrases, falling back to the
// file extension and finally to DocUnknown.
func DetectType(sourcePath, content string) models.DocumentType {
	lower := strings.ToLower(content)
	for _, rule := range typeRules {
		if rule.match(lower) {
			return rule.docType
		}
	}

	switch strings.ToLower(filepath.Ext(sourcePath)) {
	case ".md":
		return models.DocMarkdown
	case ".txt", ".doc", ".docx":
		return models.DocText
	default:
		return models.DocUnknown
	}
}

// Summarize joins up to three meaningful lines from the start of content
func Summarize(content string) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	scan := lines
	if len(scan) > summaryScanLines {
		scan = scan[:summaryScanLines]
	}

	var picked []string
	for _, line := range scan {
		if utf8.RuneCountInString(line) > summaryMinChars && !strings.HasPrefix(line, "#") {
			picked = append(picked, line)
			if len(picked) == summaryMaxLines {
				break
			}
		}
	}

	if len(picked) == 0 {
		return fmt.Sprintf("Document contains %d lines of content for analysis and extraction.", len(lines))
	}
	return Truncate(strings.Join(picked, " "), MaxSummaryLength)
}

// Truncate shortens s to at most max runes, ending in "..." when cut
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// KeyElements returns the labels of every content signal present, capped
// at MaxKeyElements
func KeyElements(content string) []string {
	lower := strings.ToLower(content)

	var elements []string
	for _, rule := range elementRules {
		if rule.match(content, lower) {
			elements = append(elements, rule.label)
		}
	}

	if len(elements) == 0 {
		elements = append(elements, GenericElements...)
	}
	if len(elements) > MaxKeyElements {
		elements = elements[:MaxKeyElements]
	}
	return elements
}

// SplitSections starts a section at every heading line and collects the
// following lines as its body. Ranges are contiguous: the first section
// starts at line 0 and the last ends at the line count.
func SplitSections(content string) []models.Section {
	lines := strings.Split(content, "\n")

	var sections []models.Section
	var current *models.Section
	var body []string

	flush := func(end int) {
		if current == nil {
			return
		}
		current.Content = strings.Join(body, "\n")
		current.LineEnd = end
		sections = append(sections, *current)
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			flush(i)
			start := i
			if len(sections) == 0 {
				start = 0
			}
			current = &models.Section{
				Title:     strings.TrimSpace(strings.TrimLeft(trimmed, "#")),
				LineStart: start,
			}
			body = nil
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush(len(lines))

	return sections
}
