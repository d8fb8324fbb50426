// Package backup snapshots every file an execution run is about to touch
// and generates the artifacts that undo the run.
package backup

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pders01/extraction-plan/internal/execlog"
	"github.com/pders01/extraction-plan/internal/models"
	"github.com/pders01/extraction-plan/internal/plan"
)

const (
	// FilesDir holds the mirrored snapshots inside a backup root
	FilesDir = "files"
	// RelDir and AbsDir split FilesDir into files inside the working
	// directory and files outside it, so the two never share a name
	RelDir = "rel"
	AbsDir = "abs"
	// ScriptName is the rollback script written into every backup root
	ScriptName = "rollback.sh"
	// ManifestName is the machine-readable record of a backup root
	ManifestName = "manifest.yaml"
)

// Run identifies the execution a snapshot belongs to
type Run struct {
	ID          string
	ExecutionID string
	Started     time.Time
}

// Manager creates per-run backup roots below a base directory
type Manager struct {
	workdir string
	baseDir string
	log     *execlog.Log
}

// NewManager returns a manager for targets relative to workdir. A relative
// baseDir is resolved against workdir too.
func NewManager(workdir, baseDir string, log *execlog.Log) *Manager {
	return &Manager{
		workdir: workdir,
		baseDir: plan.Resolve(workdir, baseDir),
		log:     log,
	}
}

// BaseDir returns the directory holding all backup roots
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Snapshot copies every existing target of ops into a new backup root and
// writes the rollback script and manifest. Targets that do not exist yet
// are skipped. A failed copy is logged and the file is left out of the set;
// failing to create the root or its artifacts aborts the snapshot.
func (m *Manager) Snapshot(run Run, ops []models.Operation) (*models.BackupSet, error) {
	base, err := filepath.Abs(m.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backup directory: %w", err)
	}
	workdir, err := filepath.Abs(m.workdir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	root := filepath.Join(base, models.BackupDirName(run.Started, run.ID))
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup root: %w", err)
	}
	m.log.Infof("Created backup directory: %s", root)

	set := &models.BackupSet{
		RunID:       run.ID,
		ExecutionID: run.ExecutionID,
		Root:        root,
		Timestamp:   run.Started.Format(models.BackupTimestampFormat),
		CreatedAt:   run.Started,
	}

	seen := map[string]bool{}
	for _, op := range ops {
		target := op.TargetPath()
		if target == "" {
			continue
		}
		path := filepath.Clean(plan.Resolve(workdir, target))

		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			m.log.Infof("No backup needed for new file: %s", target)
			continue
		}
		if err != nil {
			m.log.Errorf("Failed to backup %s: %v", target, err)
			continue
		}

		if !info.IsDir() {
			m.add(set, workdir, base, path, seen)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				m.log.Errorf("Failed to backup %s: %v", p, err)
				return nil
			}
			if d.IsDir() {
				if within(base, p) {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				m.add(set, workdir, base, p, seen)
			}
			return nil
		})
		if err != nil {
			m.log.Errorf("Failed to backup %s: %v", target, err)
		}
	}

	if err := WriteScript(set); err != nil {
		return nil, err
	}
	if err := WriteManifest(set); err != nil {
		return nil, err
	}
	m.log.Infof("Backup complete: %d file(s), rollback script %s", len(set.Entries), set.RollbackScript)

	return set, nil
}

func (m *Manager) add(set *models.BackupSet, workdir, base, path string, seen map[string]bool) {
	if seen[path] || within(base, path) {
		return
	}
	seen[path] = true

	dst := filepath.Join(set.Root, FilesDir, mirror(workdir, path))
	if err := copyFile(path, dst); err != nil {
		m.log.Errorf("Failed to backup %s: %v", path, err)
		return
	}
	set.Entries = append(set.Entries, models.BackupEntry{OriginalPath: path, BackupPath: dst})
	m.log.Infof("Backed up: %s -> %s", path, dst)
}

// mirror returns the relative path a file is stored under. Files inside
// workdir keep their workdir-relative path below RelDir; anything else
// keeps its absolute path, filesystem root stripped, below AbsDir.
func mirror(workdir, path string) string {
	if rel, err := filepath.Rel(workdir, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Join(RelDir, rel)
	}
	path = strings.TrimPrefix(path, filepath.VolumeName(path))
	return filepath.Join(AbsDir, strings.TrimLeft(path, string(filepath.Separator)))
}

// within reports whether path is dir or below it
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// copyFile copies src to dst, keeping the permission bits and
// modification time
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
