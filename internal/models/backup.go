package models

import (
	"fmt"
	"time"
)

// BackupTimestampFormat names per-run backup roots and execution ids
const BackupTimestampFormat = "20060102_150405"

// BackupEntry maps a snapshotted file to its copy
type BackupEntry struct {
	OriginalPath string `json:"original_path" yaml:"original_path"`
	BackupPath   string `json:"backup_path" yaml:"backup_path"`
}

// BackupSet is the immutable record of one run's snapshots
type BackupSet struct {
	RunID          string        `json:"run_id" yaml:"run_id"`
	ExecutionID    string        `json:"execution_id" yaml:"execution_id"`
	Root           string        `json:"backup_root" yaml:"backup_root"`
	Timestamp      string        `json:"timestamp" yaml:"timestamp"`
	CreatedAt      time.Time     `json:"created_at" yaml:"created_at"`
	Entries        []BackupEntry `json:"entries" yaml:"entries"`
	RollbackScript string        `json:"rollback_script" yaml:"rollback_script"`
}

// ExecutionID builds the id of a run from the plan name and start time.
// Format: <plan-stem>_YYYYmmdd_HHMMSS
func ExecutionID(planStem string, started time.Time) string {
	return fmt.Sprintf("%s_%s", planStem, started.Format(BackupTimestampFormat))
}

// BackupDirName names the backup root of a run.
// Format: YYYYmmdd_HHMMSS_<run-id>
func BackupDirName(started time.Time, runID string) string {
	return fmt.Sprintf("%s_%s", started.Format(BackupTimestampFormat), runID)
}

// ExecutionLogName returns the file name of a run's execution log
func ExecutionLogName(executionID string) string {
	return fmt.Sprintf("%s-execution-log.md", executionID)
}
