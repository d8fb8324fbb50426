package execlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestLogMirrorsEntries(t *testing.T) {
	var out bytes.Buffer
	l := New(&out).WithClock(fixedClock())

	l.Infof("parsed plan with %d safe operations", 3)
	l.Warnf("target directory does not exist: %s", "docs/x")
	l.Errorf("operation %d failed", 2)

	entries := l.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[1].Level != LevelWarn {
		t.Errorf("expected WARN, got %s", entries[1].Level)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 mirrored lines, got %d", len(lines))
	}
	if lines[0] != "[2026-03-14 09:30:00] parsed plan with 3 safe operations" {
		t.Errorf("unexpected line: %q", lines[0])
	}
	if !strings.Contains(lines[2], "✗ operation 2 failed") {
		t.Errorf("expected error marker, got %q", lines[2])
	}
	if l.Count(LevelError) != 1 {
		t.Errorf("expected 1 error entry, got %d", l.Count(LevelError))
	}
}

func TestNilLogIsNoop(t *testing.T) {
	var l *Log
	l.Infof("ignored")
	if l.Entries() != nil {
		t.Error("nil log should have no entries")
	}
}

func TestReportSave(t *testing.T) {
	l := New(nil).WithClock(fixedClock())
	l.Infof("Starting execution")
	l.Infof("Operation 1 completed successfully")

	r := Report{
		PlanFile:        "plans/x-extraction-plan.md",
		ExecutionID:     "x-extraction-plan_20260314_093000",
		BackupDirectory: ".ai/backups/20260314_093000_01ABC",
		Status:          "done",
		FinishedAt:      time.Date(2026, 3, 14, 9, 31, 0, 0, time.UTC),
		SafeTotal:       3,
		SafeSucceeded:   2,
		RiskyTotal:      1,
		RiskySucceeded:  1,
	}

	path := filepath.Join(t.TempDir(), "logs", "x-execution-log.md")
	if err := r.Save(path, l.Entries()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"- **Plan File**: plans/x-extraction-plan.md",
		"- **Execution ID**: x-extraction-plan_20260314_093000",
		"- **Safe Operations**: 3 (2 successful)",
		"- **Risky Operations**: 1 (1 successful)",
		"[2026-03-14 09:30:00] Starting execution",
		"- Total operations executed: 3",
		"- Safe operations success rate: 2/3 (67%)",
		"- Risky operations success rate: 1/1 (100%)",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log artifact missing %q", want)
		}
	}

	// Header precedes entries, entries precede summary
	if strings.Index(content, "## Execution Details") > strings.Index(content, "## Execution Log") ||
		strings.Index(content, "## Execution Log") > strings.Index(content, "## Summary") {
		t.Error("artifact sections out of order")
	}
}

func TestReportWithoutBackupOrOperations(t *testing.T) {
	r := Report{PlanFile: "p.md", ExecutionID: "p_1", Status: "rejected", Issues: []string{"Operation 1 requires approval (Status: PENDING)"}}
	out := r.Render(nil)
	if !strings.Contains(out, "- **Backup Directory**: (none)") {
		t.Error("expected placeholder backup directory")
	}
	if !strings.Contains(out, "- Safe operations success rate: 0/0") {
		t.Error("expected 0/0 rate for empty list")
	}
	if !strings.Contains(out, "## Blocking Issues\n- Operation 1 requires approval") {
		t.Error("expected blocking issues section")
	}
}
