// Package execlog records the steps of a single execution run and renders
// them into the execution-log artifact.
package execlog

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// EntryTimeFormat is used for every rendered log line
const EntryTimeFormat = "2006-01-02 15:04:05"

// Entry is one timestamped log line
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

// String renders the entry as it appears in the artifact
func (e Entry) String() string {
	prefix := ""
	switch e.Level {
	case LevelWarn:
		prefix = "⚠ "
	case LevelError:
		prefix = "✗ "
	}
	return fmt.Sprintf("[%s] %s%s", e.Time.Format(EntryTimeFormat), prefix, e.Message)
}

// Log is the append-only buffer of one run. It is owned by that run and
// passed explicitly to every component the run invokes; it is not safe
// for concurrent use.
type Log struct {
	entries []Entry
	out     io.Writer
	now     func() time.Time
}

// New creates a log. Entries are mirrored to out when it is non-nil.
func New(out io.Writer) *Log {
	return &Log{out: out, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (l *Log) WithClock(now func() time.Time) *Log {
	l.now = now
	return l
}

func (l *Log) add(level Level, format string, args ...any) {
	if l == nil {
		return
	}
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	e := Entry{Time: l.now(), Level: level, Message: msg}
	l.entries = append(l.entries, e)
	if l.out != nil {
		fmt.Fprintln(l.out, e.String())
	}
}

// Infof appends an informational entry
func (l *Log) Infof(format string, args ...any) {
	l.add(LevelInfo, format, args...)
}

// Warnf appends a warning
func (l *Log) Warnf(format string, args ...any) {
	l.add(LevelWarn, format, args...)
}

// Errorf appends an error entry. It does not stop the run.
func (l *Log) Errorf(format string, args ...any) {
	l.add(LevelError, format, args...)
}

// Entries returns a copy of the recorded entries
func (l *Log) Entries() []Entry {
	if l == nil {
		return nil
	}
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Count returns the number of entries at the given level
func (l *Log) Count(level Level) int {
	if l == nil {
		return 0
	}
	n := 0
	for _, e := range l.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}
