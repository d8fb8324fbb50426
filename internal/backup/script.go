package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pders01/extraction-plan/internal/models"
)

// Script renders the rollback script of a backup set: one restore command
// per entry, in entry order. Running it twice has the same effect as
// running it once.
func Script(set *models.BackupSet) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "# Rollback for execution %s\n", set.ExecutionID)
	fmt.Fprintf(&b, "# Backup created %s\n", set.CreatedAt.Format(time.RFC3339))
	b.WriteString("set -e\n\n")

	for _, e := range set.Entries {
		fmt.Fprintf(&b, "mkdir -p %s && cp -p %s %s\n",
			quote(filepath.Dir(e.OriginalPath)), quote(e.BackupPath), quote(e.OriginalPath))
	}

	fmt.Fprintf(&b, "\necho %s\n", quote(fmt.Sprintf("Restored %d file(s) from %s", len(set.Entries), set.Root)))
	return b.String()
}

// WriteScript writes the rollback script into the backup root with
// owner-execute permission and records its path on the set
func WriteScript(set *models.BackupSet) error {
	path := filepath.Join(set.Root, ScriptName)
	if err := os.WriteFile(path, []byte(Script(set)), 0755); err != nil {
		return fmt.Errorf("failed to write rollback script: %w", err)
	}
	// WriteFile leaves the mode of an existing file and is subject to umask
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("failed to make rollback script executable: %w", err)
	}
	set.RollbackScript = path
	return nil
}

// quote wraps s in single quotes for sh
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
