package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/pders01/extraction-plan/internal/plan"
	"github.com/pders01/extraction-plan/internal/testutil"
)

func testPlan(status string) string {
	return "# prd Extraction Plan\n\n" +
		"### SAFE OPERATIONS (Auto-Approved)\n\n" +
		"1. **Target Location**: docs/extracted-content/prd.md\n" +
		"   **Operation**: CREATE\n" +
		"   **Content to Add**:\n" +
		"   ```\n" +
		"   # Extracted\n" +
		"   ```\n\n" +
		"### REQUIRES USER APPROVAL\n\n" +
		"1. **Target Location**: docs/prd.md\n" +
		"   **Operation**: MODIFY\n" +
		"   **Current Content**:\n" +
		"   ```\n" +
		"   A\n" +
		"   ```\n" +
		"   **Proposed Content**:\n" +
		"   ```\n" +
		"   B\n" +
		"   ```\n" +
		"   **Approval Status**: " + status + "\n"
}

// setupPlanWorkspace creates a workspace holding docs/prd.md and a plan
// at plan.md, and switches into it
func setupPlanWorkspace(t *testing.T, status string) *testutil.Workspace {
	t.Helper()
	ws := testutil.NewWorkspace(t)
	ws.CreateFile("docs/prd.md", "A")
	ws.CreateFile("plan.md", testPlan(status))
	ws.Chdir()
	return ws
}

func resetExecuteFlags() {
	executeDryRun = false
	executeNoLock = false
	executeJSON = false
	executeToon = false
}

func TestExecuteApprovedPlan(t *testing.T) {
	ws := setupPlanWorkspace(t, "APPROVED")
	resetExecuteFlags()

	if err := runExecute(nil, []string{"plan.md"}); err != nil {
		t.Fatalf("execute command failed: %v", err)
	}

	if got := ws.ReadFile("docs/prd.md"); got != "B" {
		t.Errorf("expected modified target, got %q", got)
	}
	if got := ws.ReadFile("docs/extracted-content/prd.md"); got != "# Extracted" {
		t.Errorf("unexpected created content %q", got)
	}

	logs := ws.Files(".ai/execution-logs")
	if len(logs) != 1 || !strings.HasSuffix(logs[0], "-execution-log.md") {
		t.Errorf("expected one execution log, got %v", logs)
	}
	if !ws.FileExists(".ai/extraction-history.db") {
		t.Error("run was not recorded")
	}

	var scripts int
	for _, f := range ws.Files(".ai/backups") {
		if strings.HasSuffix(f, "/rollback.sh") {
			scripts++
		}
	}
	if scripts != 1 {
		t.Errorf("expected one rollback script, got %d", scripts)
	}
}

func TestExecutePendingPlanIsBlocked(t *testing.T) {
	ws := setupPlanWorkspace(t, "PENDING")
	resetExecuteFlags()

	err := runExecute(nil, []string{"plan.md"})
	if !errors.Is(err, errBlocked) {
		t.Fatalf("expected errBlocked, got %v", err)
	}

	if got := ws.ReadFile("docs/prd.md"); got != "A" {
		t.Errorf("target changed despite rejection: %q", got)
	}
	if ws.FileExists("docs/extracted-content/prd.md") {
		t.Error("safe operation ran despite rejection")
	}
	if ws.FileExists(".ai") {
		t.Errorf("rejected run wrote artifacts: %v", ws.Files(".ai"))
	}
}

func TestExecuteDryRun(t *testing.T) {
	ws := setupPlanWorkspace(t, "APPROVED")
	resetExecuteFlags()
	executeDryRun = true
	defer resetExecuteFlags()

	if err := runExecute(nil, []string{"plan.md"}); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}

	if got := ws.ReadFile("docs/prd.md"); got != "A" {
		t.Errorf("dry run modified target: %q", got)
	}
	if ws.FileExists(".ai") {
		t.Error("dry run should not write anything")
	}
}

func TestExecuteDryRunReportsIssues(t *testing.T) {
	setupPlanWorkspace(t, "REJECTED")
	resetExecuteFlags()
	executeDryRun = true
	defer resetExecuteFlags()

	if err := runExecute(nil, []string{"plan.md"}); !errors.Is(err, errBlocked) {
		t.Fatalf("expected errBlocked, got %v", err)
	}
}

func TestExecuteJSONOutput(t *testing.T) {
	ws := setupPlanWorkspace(t, "APPROVED")
	resetExecuteFlags()
	executeJSON = true
	defer resetExecuteFlags()

	if err := runExecute(nil, []string{"plan.md"}); err != nil {
		t.Fatalf("execute command failed: %v", err)
	}
	if got := ws.ReadFile("docs/prd.md"); got != "B" {
		t.Errorf("expected modified target, got %q", got)
	}
}

func TestExecuteMissingPlan(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.Chdir()
	resetExecuteFlags()

	err := runExecute(nil, []string{"missing.md"})
	if !errors.Is(err, plan.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ws.FileExists(".ai") {
		t.Error("missing plan should not write anything")
	}
}
