package execlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Report holds the header and summary values of an execution-log artifact
type Report struct {
	PlanFile        string
	ExecutionID     string
	BackupDirectory string
	Status          string
	FinishedAt      time.Time
	SafeTotal       int
	SafeSucceeded   int
	RiskyTotal      int
	RiskySucceeded  int
	Issues          []string
}

// Render formats the report followed by every log entry
func (r Report) Render(entries []Entry) string {
	var b strings.Builder

	backupDir := r.BackupDirectory
	if backupDir == "" {
		backupDir = "(none)"
	}

	b.WriteString("# Extraction Plan Execution Log\n\n")
	b.WriteString("## Execution Details\n")
	fmt.Fprintf(&b, "- **Plan File**: %s\n", r.PlanFile)
	fmt.Fprintf(&b, "- **Execution ID**: %s\n", r.ExecutionID)
	fmt.Fprintf(&b, "- **Backup Directory**: %s\n", backupDir)
	fmt.Fprintf(&b, "- **Execution Time**: %s\n", r.FinishedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Status**: %s\n\n", r.Status)

	b.WriteString("## Plan Summary\n")
	fmt.Fprintf(&b, "- **Safe Operations**: %d (%d successful)\n", r.SafeTotal, r.SafeSucceeded)
	fmt.Fprintf(&b, "- **Risky Operations**: %d (%d successful)\n", r.RiskyTotal, r.RiskySucceeded)

	if len(r.Issues) > 0 {
		b.WriteString("\n## Blocking Issues\n")
		for _, issue := range r.Issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}

	b.WriteString("\n## Execution Log\n")
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteString("\n")
	}

	b.WriteString("\n## Summary\n")
	fmt.Fprintf(&b, "- Total operations executed: %d\n", r.SafeSucceeded+r.RiskySucceeded)
	fmt.Fprintf(&b, "- Safe operations success rate: %s\n", rate(r.SafeSucceeded, r.SafeTotal))
	fmt.Fprintf(&b, "- Risky operations success rate: %s\n", rate(r.RiskySucceeded, r.RiskyTotal))

	return b.String()
}

// Save writes the rendered artifact to path, creating parent directories
func (r Report) Save(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(r.Render(entries)), 0644); err != nil {
		return fmt.Errorf("failed to write execution log: %w", err)
	}
	return nil
}

func rate(ok, total int) string {
	if total == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d (%.0f%%)", ok, total, float64(ok)*100/float64(total))
}
