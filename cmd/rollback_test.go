package cmd

import (
	"testing"

	"github.com/pders01/extraction-plan/internal/backup"
	"github.com/pders01/extraction-plan/internal/config"
)

// executedWorkspace runs the approved test plan and returns its backup root
func executedWorkspace(t *testing.T) string {
	t.Helper()
	resetExecuteFlags()
	if err := runExecute(nil, []string{"plan.md"}); err != nil {
		t.Fatalf("execute command failed: %v", err)
	}

	infos, err := backup.List(config.GetBackupDir())
	if err != nil {
		t.Fatalf("failed to list backups: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 backup root, got %d", len(infos))
	}
	return infos[0].Path
}

func TestRollbackRestoresFiles(t *testing.T) {
	ws := setupPlanWorkspace(t, "APPROVED")
	root := executedWorkspace(t)
	rollbackDryRun = false

	if err := runRollback(nil, []string{root}); err != nil {
		t.Fatalf("rollback command failed: %v", err)
	}
	if got := ws.ReadFile("docs/prd.md"); got != "A" {
		t.Errorf("expected restored content, got %q", got)
	}
	// Created files are left alone
	if !ws.FileExists("docs/extracted-content/prd.md") {
		t.Error("rollback removed a created file")
	}
}

func TestRollbackDryRun(t *testing.T) {
	ws := setupPlanWorkspace(t, "APPROVED")
	root := executedWorkspace(t)
	rollbackDryRun = true
	defer func() { rollbackDryRun = false }()

	if err := runRollback(nil, []string{root}); err != nil {
		t.Fatalf("rollback command failed: %v", err)
	}
	if got := ws.ReadFile("docs/prd.md"); got != "B" {
		t.Errorf("dry run restored files: %q", got)
	}
}

func TestRollbackWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	rollbackDryRun = false

	if err := runRollback(nil, []string{dir}); err == nil {
		t.Error("expected error for a directory without manifest")
	}
}
