package analyzer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"pgregory.net/rapid"
)

func genDocument(t *rapid.T) string {
	n := rapid.IntRange(0, 30).Draw(t, "lines")
	lines := make([]string, n)
	for i := range lines {
		if rapid.Bool().Draw(t, "heading") {
			lines[i] = strings.Repeat("#", rapid.IntRange(1, 3).Draw(t, "level")) + " " +
				rapid.StringMatching(`[a-z ]{0,20}`).Draw(t, "title")
		} else {
			lines[i] = rapid.StringMatching(`[a-zA-Z .]{0,60}`).Draw(t, "body")
		}
	}
	return strings.Join(lines, "\n")
}

// Sections never overlap and cover the document end to end
func TestSectionsAreContiguous(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		content := genDocument(t)
		sections := SplitSections(content)
		if len(sections) == 0 {
			return
		}

		lineCount := len(strings.Split(content, "\n"))
		if sections[0].LineStart != 0 {
			t.Fatalf("first section starts at %d", sections[0].LineStart)
		}
		for i := 1; i < len(sections); i++ {
			if sections[i].LineStart != sections[i-1].LineEnd {
				t.Fatalf("gap or overlap between section %d and %d", i-1, i)
			}
		}
		if last := sections[len(sections)-1]; last.LineEnd != lineCount {
			t.Fatalf("last section ends at %d, want %d", last.LineEnd, lineCount)
		}
	})
}

func TestSummaryIsBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		summary := Summarize(genDocument(t))
		if utf8.RuneCountInString(summary) > MaxSummaryLength {
			t.Fatalf("summary has %d runes", utf8.RuneCountInString(summary))
		}
	})
}

func TestKeyElementsBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := len(KeyElements(genDocument(t)))
		if n < 1 || n > MaxKeyElements {
			t.Fatalf("got %d key elements", n)
		}
	})
}
