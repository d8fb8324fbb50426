package config

import (
	"github.com/spf13/viper"
)

// Defaults for every configuration key
const (
	DefaultPlansDir   = ".ai/extraction-plans"
	DefaultBackupDir  = ".ai/backups"
	DefaultLogsDir    = ".ai/execution-logs"
	DefaultHistoryDB  = ".ai/extraction-history.db"
	DefaultRetention  = 30
	DefaultKeepLatest = 5
)

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("paths.plans_dir", DefaultPlansDir)
	v.SetDefault("paths.backup_dir", DefaultBackupDir)
	v.SetDefault("paths.logs_dir", DefaultLogsDir)
	v.SetDefault("paths.history_db", DefaultHistoryDB)
	v.SetDefault("retention.days", DefaultRetention)
	v.SetDefault("retention.keep_latest", DefaultKeepLatest)
	v.SetDefault("summary.ollama_enabled", false)
	v.SetDefault("summary.model", "llama3.2")
	v.SetDefault("summary.ollama_url", "http://localhost:11434")
	v.SetDefault("execute.lock", true)
	v.SetDefault("execute.record_history", true)
}

// GetPlansDir returns the directory generated plans are written to
func GetPlansDir() string {
	return viper.GetString("paths.plans_dir")
}

// GetBackupDir returns the directory holding per-run backup roots
func GetBackupDir() string {
	return viper.GetString("paths.backup_dir")
}

// GetLogsDir returns the directory execution logs are written to
func GetLogsDir() string {
	return viper.GetString("paths.logs_dir")
}

// GetHistoryDB returns the path of the run history database
func GetHistoryDB() string {
	return viper.GetString("paths.history_db")
}

// GetRetentionDays returns the retention period in days
func GetRetentionDays() int {
	return viper.GetInt("retention.days")
}

// GetKeepLatest returns how many backup roots are never pruned
func GetKeepLatest() int {
	return viper.GetInt("retention.keep_latest")
}

// IsSummaryEnabled reports whether plans use an LLM content summary
func IsSummaryEnabled() bool {
	return viper.GetBool("summary.ollama_enabled")
}

// GetSummaryModel returns the Ollama model used for summaries
func GetSummaryModel() string {
	return viper.GetString("summary.model")
}

// GetOllamaURL returns the Ollama API endpoint
func GetOllamaURL() string {
	return viper.GetString("summary.ollama_url")
}

// IsLockEnabled reports whether execution runs take the run lock
func IsLockEnabled() bool {
	return viper.GetBool("execute.lock")
}

// IsHistoryEnabled reports whether execution runs are recorded
func IsHistoryEnabled() bool {
	return viper.GetBool("execute.record_history")
}
