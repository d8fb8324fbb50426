package plan

import (
	"regexp"
	"strconv"
	"strings"
)

type lineKind int

const (
	lineText lineKind = iota
	lineFenceOpen
	lineFenceBody
	lineFenceClose
)

// docLine is one line of a plan document with its fence classification
type docLine struct {
	raw    string // as read, including any trailing \r
	text   string
	kind   lineKind
	indent int // leading spaces of an opening fence line
}

// document is a plan split into classified lines. Headings and labeled
// fields are only recognized on lineText lines, so fenced content can hold
// anything, including other plans.
type document struct {
	lines []docLine
}

var (
	headingPattern = regexp.MustCompile(`^ {0,3}(#{1,6})(?:\s+(.*?))?\s*#*\s*$`)
	fieldPattern   = regexp.MustCompile(`^\s*(?:[-*+]\s+|\d+\.\s+)?\*\*([^*\n]+)\*\*:[ \t]*(.*?)\s*$`)
	markerPattern  = regexp.MustCompile(`(?i)^\s*(\d+)\.\s*\*\*Target Location\*\*:[ \t]*(.*?)\s*$`)
)

func scan(text string) *document {
	rawLines := strings.Split(text, "\n")
	d := &document{lines: make([]docLine, len(rawLines))}

	open := 0
	for i, raw := range rawLines {
		line := strings.TrimSuffix(raw, "\r")
		l := docLine{raw: raw, text: line}

		if open > 0 {
			if n, rest, _ := backtickRun(line); n >= open && strings.TrimSpace(rest) == "" {
				l.kind = lineFenceClose
				open = 0
			} else {
				l.kind = lineFenceBody
			}
			d.lines[i] = l
			continue
		}

		if n, rest, indent := backtickRun(line); n >= 3 && !closesInline(rest, n) {
			open = n
			l.kind = lineFenceOpen
			l.indent = indent
		}
		d.lines[i] = l
	}
	return d
}

// backtickRun returns the length of the backtick run a line starts with
// (after indentation), the remainder, and the indentation width.
func backtickRun(line string) (int, string, int) {
	trimmed := strings.TrimLeft(line, " \t")
	indent := len(line) - len(trimmed)
	n := 0
	for n < len(trimmed) && trimmed[n] == '`' {
		n++
	}
	return n, trimmed[n:], indent
}

// closesInline reports whether rest ends with a fence of at least n
// backticks, as in "```content```" written on one line.
func closesInline(rest string, n int) bool {
	rest = strings.TrimRight(rest, " \t")
	return len(rest) > n && strings.HasSuffix(rest, strings.Repeat("`", n))
}

// heading returns the level and text of a heading line
func (l docLine) heading() (int, string, bool) {
	if l.kind != lineText {
		return 0, "", false
	}
	m := headingPattern.FindStringSubmatch(l.text)
	if m == nil {
		return 0, "", false
	}
	return len(m[1]), m[2], true
}

// field returns the label and inline value of a labeled field line
func (l docLine) field() (string, string, bool) {
	if l.kind != lineText {
		return "", "", false
	}
	m := fieldPattern.FindStringSubmatch(l.text)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}

// section locates the body of the section whose heading starts with marker.
// The body ends at the next heading of the same or a higher level.
func (d *document) section(marker string) (int, int, bool) {
	marker = strings.ToUpper(marker)
	for i, l := range d.lines {
		level, title, ok := l.heading()
		if !ok || !strings.HasPrefix(strings.ToUpper(title), marker) {
			continue
		}
		end := len(d.lines)
		for j := i + 1; j < len(d.lines); j++ {
			if lv, _, ok := d.lines[j].heading(); ok && lv <= level {
				end = j
				break
			}
		}
		return i + 1, end, true
	}
	return 0, 0, false
}

// block is the line range of one numbered operation
type block struct {
	number int
	target string
	start  int // marker line
	end    int
}

// blocks splits a section body on numbered Target Location markers.
// Text before the first marker is dropped.
func (d *document) blocks(start, end int) []block {
	var out []block
	for i := start; i < end; i++ {
		l := d.lines[i]
		if l.kind != lineText {
			continue
		}
		m := markerPattern.FindStringSubmatch(l.text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if len(out) > 0 {
			out[len(out)-1].end = i
		}
		out = append(out, block{number: n, target: m[2], start: i, end: end})
	}
	return out
}

// fenced reads the fenced value of the field declared on line i. The fence
// either opens on a following line (blank lines allowed in between) or is
// written inline after the label. The opening fence's indentation is
// removed from every content line. Content keeps its carriage returns
// unless the opening fence line itself ends in \r, in which case that one
// terminator is dropped from every line.
func (d *document) fenced(i, end int, inline string) (string, bool) {
	if n, rest, _ := backtickRun(inline); n >= 3 && closesInline(rest, n) {
		rest = strings.TrimRight(rest, " \t")
		return strings.TrimSpace(rest[:len(rest)-n]), true
	}
	if inline != "" {
		return "", false
	}

	j := i + 1
	for j < end && d.lines[j].kind == lineText && strings.TrimSpace(d.lines[j].text) == "" {
		j++
	}
	if j >= end || d.lines[j].kind != lineFenceOpen {
		return "", false
	}

	indent := d.lines[j].indent
	crlf := strings.HasSuffix(d.lines[j].raw, "\r")
	var content []string
	for k := j + 1; k < len(d.lines); k++ {
		l := d.lines[k]
		if l.kind == lineFenceClose {
			return strings.Join(content, "\n"), true
		}
		line := l.raw
		if crlf {
			line = strings.TrimSuffix(line, "\r")
		}
		content = append(content, dedent(line, indent))
	}
	return "", false
}

func dedent(line string, indent int) string {
	i := 0
	for i < indent && i < len(line) && line[i] == ' ' {
		i++
	}
	return line[i:]
}

// fenceFor picks a backtick fence longer than any run inside content
func fenceFor(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}
