package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/pders01/extraction-plan/internal/models"
	"github.com/pders01/extraction-plan/internal/plan"
	"github.com/pders01/extraction-plan/internal/testutil"
)

func resetApproveFlags() {
	approveOps = nil
	approveAll = false
	approveReject = false
	approvePending = false
	approveInteractive = false
}

func riskyStatus(t *testing.T, ws *testutil.Workspace, name string) models.ApprovalStatus {
	t.Helper()
	p, err := plan.Parse(ws.ReadFile(name))
	if err != nil {
		t.Fatalf("plan no longer parses: %v", err)
	}
	if len(p.RiskyOperations) != 1 {
		t.Fatalf("expected 1 risky operation, got %d", len(p.RiskyOperations))
	}
	return p.RiskyOperations[0].Approval()
}

func TestApproveOperation(t *testing.T) {
	ws := setupPlanWorkspace(t, "PENDING")
	resetApproveFlags()
	approveOps = []int{1}
	defer resetApproveFlags()

	if err := runApprove(nil, []string{"plan.md"}); err != nil {
		t.Fatalf("approve command failed: %v", err)
	}
	if got := riskyStatus(t, ws, "plan.md"); got != models.StatusApproved {
		t.Errorf("expected APPROVED, got %q", got)
	}
}

func TestApproveAllReject(t *testing.T) {
	ws := setupPlanWorkspace(t, "APPROVED")
	resetApproveFlags()
	approveAll = true
	approveReject = true
	defer resetApproveFlags()

	if err := runApprove(nil, []string{"plan.md"}); err != nil {
		t.Fatalf("approve command failed: %v", err)
	}
	if got := riskyStatus(t, ws, "plan.md"); got != models.StatusRejected {
		t.Errorf("expected REJECTED, got %q", got)
	}
	if !strings.Contains(ws.ReadFile("plan.md"), "   A\n") {
		t.Error("operation content was changed")
	}
}

func TestApproveThenExecute(t *testing.T) {
	ws := setupPlanWorkspace(t, "PENDING")
	resetApproveFlags()
	resetExecuteFlags()
	approveOps = []int{1}
	defer resetApproveFlags()

	if err := runApprove(nil, []string{"plan.md"}); err != nil {
		t.Fatalf("approve command failed: %v", err)
	}
	if err := runExecute(nil, []string{"plan.md"}); err != nil {
		t.Fatalf("execute command failed: %v", err)
	}
	if got := ws.ReadFile("docs/prd.md"); got != "B" {
		t.Errorf("expected modified target, got %q", got)
	}
}

func TestApproveErrors(t *testing.T) {
	ws := setupPlanWorkspace(t, "PENDING")
	defer resetApproveFlags()

	resetApproveFlags()
	if err := runApprove(nil, []string{"plan.md"}); err == nil {
		t.Error("expected error without a mode flag")
	}

	resetApproveFlags()
	approveAll = true
	approveReject = true
	approvePending = true
	if err := runApprove(nil, []string{"plan.md"}); err == nil {
		t.Error("expected error for --reject with --pending")
	}

	resetApproveFlags()
	approveOps = []int{7}
	if err := runApprove(nil, []string{"plan.md"}); err == nil {
		t.Error("expected error for unknown operation")
	}
	if got := riskyStatus(t, ws, "plan.md"); got != models.StatusPending {
		t.Errorf("failed approval changed the plan: %q", got)
	}

	resetApproveFlags()
	approveAll = true
	if err := runApprove(nil, []string{"missing.md"}); !errors.Is(err, plan.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
