package backup

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pders01/extraction-plan/internal/execlog"
	"github.com/pders01/extraction-plan/internal/models"
)

// WriteManifest records the backup set as manifest.yaml in its root
func WriteManifest(set *models.BackupSet) error {
	data, err := yaml.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to encode backup manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(set.Root, ManifestName), data, 0644); err != nil {
		return fmt.Errorf("failed to write backup manifest: %w", err)
	}
	return nil
}

// LoadManifest reads the manifest of the backup root at dir
func LoadManifest(dir string) (*models.BackupSet, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read backup manifest: %w", err)
	}

	var set models.BackupSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse backup manifest: %w", err)
	}
	return &set, nil
}

// Restore copies every snapshot of set back to its original location, in
// entry order. It continues past individual failures and returns how many
// files were restored.
func Restore(set *models.BackupSet, log *execlog.Log) (int, error) {
	restored := 0
	var failed int
	for _, e := range set.Entries {
		if err := copyFile(e.BackupPath, e.OriginalPath); err != nil {
			log.Errorf("Failed to restore %s: %v", e.OriginalPath, err)
			failed++
			continue
		}
		log.Infof("Restored: %s", e.OriginalPath)
		restored++
	}

	if failed > 0 {
		return restored, fmt.Errorf("%d of %d file(s) could not be restored", failed, len(set.Entries))
	}
	return restored, nil
}
