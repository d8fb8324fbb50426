package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Workspace is a temporary project directory for tests
type Workspace struct {
	Path string
	T    *testing.T
}

// NewWorkspace creates an empty workspace that is removed when the test ends
func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return &Workspace{Path: t.TempDir(), T: t}
}

// Abs returns the absolute path of name inside the workspace
func (w *Workspace) Abs(name string) string {
	return filepath.Join(w.Path, filepath.FromSlash(name))
}

// CreateFile creates a file in the workspace
func (w *Workspace) CreateFile(name, content string) {
	w.T.Helper()
	path := w.Abs(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		w.T.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		w.T.Fatalf("failed to create file: %v", err)
	}
}

// ReadFile returns the content of a workspace file
func (w *Workspace) ReadFile(name string) string {
	w.T.Helper()
	data, err := os.ReadFile(w.Abs(name))
	if err != nil {
		w.T.Fatalf("failed to read file: %v", err)
	}
	return string(data)
}

// FileExists checks if a file or directory exists in the workspace
func (w *Workspace) FileExists(name string) bool {
	_, err := os.Stat(w.Abs(name))
	return err == nil
}

// Files returns the slash-separated paths of every regular file below
// dir, sorted
func (w *Workspace) Files(dir string) []string {
	w.T.Helper()
	root := w.Abs(dir)

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if info.Mode().IsRegular() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		w.T.Fatalf("failed to list files: %v", err)
	}
	sort.Strings(files)
	return files
}

// Chdir switches into the workspace for the rest of the test
func (w *Workspace) Chdir() {
	w.T.Helper()
	orig, err := os.Getwd()
	if err != nil {
		w.T.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(w.Path); err != nil {
		w.T.Fatalf("failed to change directory: %v", err)
	}
	w.T.Cleanup(func() { os.Chdir(orig) })
}
