package backup

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pders01/extraction-plan/internal/models"
)

// Info describes one backup root found in the base directory
type Info struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	ExecutionID string    `json:"execution_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Files       int       `json:"files"`
	Size        int64     `json:"size_bytes"`
	// Manifest is false for roots without a readable manifest.yaml
	Manifest bool `json:"has_manifest"`
}

// List returns the backup roots below baseDir, newest first. A missing
// base directory yields no roots.
func List(baseDir string) ([]Info, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		created, ok := parseRootTime(entry.Name())
		if !ok {
			continue
		}

		path := filepath.Join(baseDir, entry.Name())
		info := Info{Name: entry.Name(), Path: path, CreatedAt: created}
		if set, err := LoadManifest(path); err == nil {
			info.Manifest = true
			info.ExecutionID = set.ExecutionID
			info.Files = len(set.Entries)
			if !set.CreatedAt.IsZero() {
				info.CreatedAt = set.CreatedAt
			}
		}
		info.Size = dirSize(filepath.Join(path, FilesDir))
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// parseRootTime reads the timestamp prefix of a backup root name
func parseRootTime(name string) (time.Time, bool) {
	n := len(models.BackupTimestampFormat)
	if len(name) < n {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(models.BackupTimestampFormat, name[:n], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func dirSize(dir string) int64 {
	var size int64
	filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err == nil && info.Mode().IsRegular() {
			size += info.Size()
		}
		return nil
	})
	return size
}

// PruneCandidate is a backup root with the reason it is kept or removed
type PruneCandidate struct {
	Info
	Prune  bool
	Reason string
}

// SelectPrune applies the retention policy to infos, which must be sorted
// newest first. The keepLatest newest roots are always kept; of the rest,
// those older than days are pruned.
func SelectPrune(infos []Info, days, keepLatest int, now time.Time) []PruneCandidate {
	cutoff := now.AddDate(0, 0, -days)

	candidates := make([]PruneCandidate, len(infos))
	for i, info := range infos {
		c := PruneCandidate{Info: info}
		switch {
		case i < keepLatest:
			c.Reason = fmt.Sprintf("among the %d most recent", keepLatest)
		case info.CreatedAt.Before(cutoff):
			c.Prune = true
			c.Reason = fmt.Sprintf("older than %d days", days)
		default:
			c.Reason = "within retention period"
		}
		candidates[i] = c
	}
	return candidates
}

// Remove deletes a backup root
func Remove(info Info) error {
	if err := os.RemoveAll(info.Path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", info.Name, err)
	}
	return nil
}

// Archive bundles backup roots into a tar.gz file. Each root is stored
// under its own name.
func Archive(filename string, infos []Info) error {
	outFile, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer outFile.Close()

	gzWriter := gzip.NewWriter(outFile)
	defer gzWriter.Close()

	tarWriter := tar.NewWriter(gzWriter)
	defer tarWriter.Close()

	for _, info := range infos {
		err := filepath.Walk(info.Path, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			relPath, err := filepath.Rel(info.Path, path)
			if err != nil {
				return err
			}

			header, err := tar.FileInfoHeader(fi, "")
			if err != nil {
				return err
			}
			header.Name = filepath.ToSlash(filepath.Join(info.Name, relPath))
			if fi.IsDir() && !strings.HasSuffix(header.Name, "/") {
				header.Name += "/"
			}

			if err := tarWriter.WriteHeader(header); err != nil {
				return err
			}

			if fi.Mode().IsRegular() {
				file, err := os.Open(path)
				if err != nil {
					return err
				}
				defer file.Close()

				if _, err := io.Copy(tarWriter, file); err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to archive %s: %w", info.Name, err)
		}
	}

	return nil
}
