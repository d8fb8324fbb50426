package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pders01/extraction-plan/internal/execlog"
	"github.com/pders01/extraction-plan/internal/models"
)

func safeOp(kind models.OperationKind, target string, content *string) models.Operation {
	return models.Operation{Number: 1, Kind: kind, Target: models.Ptr(target), Safe: &models.SafeFields{ContentToAdd: content}}
}

func modifyOp(target string, current, proposed *string) models.Operation {
	return models.Operation{
		Number: 1,
		Kind:   models.KindModify,
		Target: models.Ptr(target),
		Risky:  &models.RiskyFields{CurrentContent: current, ProposedContent: proposed, ApprovalStatus: models.Ptr("APPROVED")},
	}
}

func setup(t *testing.T, files map[string]string) (string, *Executor, *execlog.Log) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	log := execlog.New(nil)
	return dir, New(dir, log), log
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestCreate(t *testing.T) {
	dir, ex, _ := setup(t, nil)

	if !ex.Execute(safeOp(models.KindCreate, "docs/extracted/x.md", models.Ptr("# X\n\nbody"))) {
		t.Fatal("create failed")
	}
	if got := read(t, filepath.Join(dir, "docs/extracted/x.md")); got != "# X\n\nbody" {
		t.Errorf("unexpected content %q", got)
	}

	if ex.Execute(safeOp(models.KindCreate, "empty.md", models.Ptr(""))) {
		t.Error("create with empty content should fail")
	}
	if ex.Execute(safeOp(models.KindCreate, "nil.md", nil)) {
		t.Error("create without content should fail")
	}
	if _, err := os.Stat(filepath.Join(dir, "nil.md")); !os.IsNotExist(err) {
		t.Error("failed create left a file behind")
	}
}

func TestAdd(t *testing.T) {
	dir, ex, _ := setup(t, map[string]string{"index.md": "- first"})

	if !ex.Execute(safeOp(models.KindAdd, "index.md", models.Ptr("- second"))) {
		t.Fatal("add failed")
	}
	if got := read(t, filepath.Join(dir, "index.md")); got != "- first\n- second" {
		t.Errorf("unexpected content %q", got)
	}

	if !ex.Execute(safeOp(models.KindAdd, "new/index.md", models.Ptr("- only"))) {
		t.Fatal("add to a missing file failed")
	}
	if got := read(t, filepath.Join(dir, "new/index.md")); got != "- only" {
		t.Errorf("add to a missing file should create it, got %q", got)
	}
}

func TestModify(t *testing.T) {
	dir, ex, log := setup(t, map[string]string{"prd.md": "A and A"})

	if !ex.Execute(modifyOp("prd.md", models.Ptr("A"), models.Ptr("B"))) {
		t.Fatalf("modify failed: %v", log.Entries())
	}
	if got := read(t, filepath.Join(dir, "prd.md")); got != "B and B" {
		t.Errorf("every occurrence should be replaced, got %q", got)
	}

	if ex.Execute(modifyOp("prd.md", models.Ptr("A"), models.Ptr("C"))) {
		t.Error("modify with drifted content should fail")
	}
	if got := read(t, filepath.Join(dir, "prd.md")); got != "B and B" {
		t.Errorf("failed modify changed the file: %q", got)
	}

	if ex.Execute(modifyOp("missing.md", models.Ptr("A"), models.Ptr("B"))) {
		t.Error("modify of a missing file should fail")
	}
	if ex.Execute(modifyOp("prd.md", models.Ptr(""), models.Ptr("B"))) {
		t.Error("modify with empty current content should fail")
	}
	if ex.Execute(modifyOp("prd.md", nil, models.Ptr("B"))) {
		t.Error("modify without current content should fail")
	}
}

func TestModifyKeepsPermissions(t *testing.T) {
	dir, ex, _ := setup(t, map[string]string{"run.sh": "echo A"})
	path := filepath.Join(dir, "run.sh")
	if err := os.Chmod(path, 0755); err != nil {
		t.Fatal(err)
	}

	if !ex.Execute(modifyOp("run.sh", models.Ptr("A"), models.Ptr("B"))) {
		t.Fatal("modify failed")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("mode changed to %v", info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary file left behind: %v", entries)
	}
}

func TestDelete(t *testing.T) {
	dir, ex, _ := setup(t, map[string]string{"old.md": "x", "tree/a/b.md": "y"})

	del := func(target string) models.Operation {
		return models.Operation{Number: 2, Kind: models.KindDelete, Target: models.Ptr(target), Risky: &models.RiskyFields{}}
	}

	if !ex.Execute(del("old.md")) {
		t.Error("delete of a file failed")
	}
	if !ex.Execute(del("tree")) {
		t.Error("delete of a directory failed")
	}
	if _, err := os.Stat(filepath.Join(dir, "tree")); !os.IsNotExist(err) {
		t.Error("directory still exists")
	}
	if ex.Execute(del("old.md")) {
		t.Error("delete of an absent target should fail")
	}
}

func TestRestructureIsNotImplemented(t *testing.T) {
	dir, ex, log := setup(t, map[string]string{"docs/a.md": "a"})

	op := models.Operation{Number: 3, Kind: models.KindRestructure, Target: models.Ptr("docs/"), Risky: &models.RiskyFields{}}
	if ex.Execute(op) {
		t.Error("restructure should always fail")
	}
	if log.Count(execlog.LevelWarn) != 1 {
		t.Errorf("expected a warning, got %v", log.Entries())
	}
	if got := read(t, filepath.Join(dir, "docs/a.md")); got != "a" {
		t.Error("restructure touched the tree")
	}
}

func TestDispatchFailures(t *testing.T) {
	_, ex, log := setup(t, nil)

	if ex.Execute(models.Operation{Number: 1, Kind: "MERGE", Target: models.Ptr("a.md")}) {
		t.Error("unknown kind should fail")
	}
	if ex.Execute(models.Operation{Number: 2, Kind: models.KindCreate, Safe: &models.SafeFields{ContentToAdd: models.Ptr("x")}}) {
		t.Error("missing target should fail")
	}
	if log.Count(execlog.LevelError) != 2 {
		t.Errorf("expected both failures logged, got %v", log.Entries())
	}
}

func TestRiskyCreateUsesProposedContent(t *testing.T) {
	dir, ex, _ := setup(t, nil)
	op := models.Operation{
		Number: 1,
		Kind:   models.KindCreate,
		Target: models.Ptr("new.md"),
		Risky:  &models.RiskyFields{ProposedContent: models.Ptr("proposed")},
	}
	if !ex.Execute(op) {
		t.Fatal("risky create failed")
	}
	if got := read(t, filepath.Join(dir, "new.md")); got != "proposed" {
		t.Errorf("unexpected content %q", got)
	}
}
