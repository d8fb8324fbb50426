package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pders01/extraction-plan/internal/models"
	"github.com/pders01/extraction-plan/internal/testutil"
)

func resetBackupsFlags() {
	backupsJSON = false
	backupsToon = false
	pruneForce = false
	pruneDays = 0
	pruneKeep = -1
	archiveOutput = ""
}

// createBackupRoots creates one root dated today and two from 2020
func createBackupRoots(ws *testutil.Workspace) []string {
	names := []string{
		models.BackupDirName(time.Now(), "RECENT"),
		"20200301_120000_OLDER",
		"20200101_120000_OLDEST",
	}
	for _, name := range names {
		ws.CreateFile(filepath.ToSlash(filepath.Join(".ai/backups", name, "files", "rel", "docs", "prd.md")), "A")
	}
	return names
}

func TestBackupsList(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.Chdir()
	resetBackupsFlags()
	defer resetBackupsFlags()

	if err := runBackupsList(nil, nil); err != nil {
		t.Fatalf("list without backups failed: %v", err)
	}

	createBackupRoots(ws)
	if err := runBackupsList(nil, nil); err != nil {
		t.Fatalf("list command failed: %v", err)
	}
	backupsJSON = true
	if err := runBackupsList(nil, nil); err != nil {
		t.Fatalf("list --json failed: %v", err)
	}
}

func TestBackupsPruneDryRun(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.Chdir()
	names := createBackupRoots(ws)
	resetBackupsFlags()
	pruneKeep = 0
	defer resetBackupsFlags()

	if err := runBackupsPrune(nil, nil); err != nil {
		t.Fatalf("prune command failed: %v", err)
	}
	for _, name := range names {
		if !ws.FileExists(".ai/backups/" + name) {
			t.Errorf("dry run removed %s", name)
		}
	}
}

func TestBackupsPruneForce(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.Chdir()
	names := createBackupRoots(ws)
	resetBackupsFlags()
	pruneForce = true
	pruneDays = 30
	pruneKeep = 1
	defer resetBackupsFlags()

	if err := runBackupsPrune(nil, nil); err != nil {
		t.Fatalf("prune command failed: %v", err)
	}

	if !ws.FileExists(".ai/backups/" + names[0]) {
		t.Error("recent backup was pruned")
	}
	for _, name := range names[1:] {
		if ws.FileExists(".ai/backups/" + name) {
			t.Errorf("expected %s to be pruned", name)
		}
	}
}

func TestBackupsPruneKeepsLatest(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.Chdir()
	names := createBackupRoots(ws)
	resetBackupsFlags()
	pruneForce = true
	pruneDays = 30
	pruneKeep = 2
	defer resetBackupsFlags()

	if err := runBackupsPrune(nil, nil); err != nil {
		t.Fatalf("prune command failed: %v", err)
	}

	if !ws.FileExists(".ai/backups/"+names[0]) || !ws.FileExists(".ai/backups/"+names[1]) {
		t.Error("the two newest roots must be kept")
	}
	if ws.FileExists(".ai/backups/" + names[2]) {
		t.Error("oldest root should be pruned")
	}
}

func TestBackupsArchive(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.Chdir()
	createBackupRoots(ws)
	resetBackupsFlags()
	defer resetBackupsFlags()

	if err := runBackupsArchive(nil, []string{"2020"}); err != nil {
		t.Fatalf("archive command failed: %v", err)
	}
	if !ws.FileExists("extraction-backups-2020.tar.gz") {
		t.Error("archive was not created")
	}

	archiveOutput = "all.tar.gz"
	if err := runBackupsArchive(nil, []string{"all"}); err != nil {
		t.Fatalf("archive command failed: %v", err)
	}
	if !ws.FileExists("all.tar.gz") {
		t.Error("archive with --output was not created")
	}

	// No match is not an error
	if err := runBackupsArchive(nil, []string{"1999"}); err != nil {
		t.Fatalf("archive without matches failed: %v", err)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{time.Hour, "< 1 day"},
		{25 * time.Hour, "1 day"},
		{72 * time.Hour, "3 days"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
