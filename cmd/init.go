package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/pders01/extraction-plan/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize extraction workspace and default config",
	Long: `Create the working directories and a default config file.

This command:
  - Creates the plans, backups and execution log directories in the current directory
  - Creates a default config file if it doesn't exist

Run this once per project.`,
	RunE: runInit,
}

type pathsConfig struct {
	PlansDir  string `toml:"plans_dir"`
	BackupDir string `toml:"backup_dir"`
	LogsDir   string `toml:"logs_dir"`
	HistoryDB string `toml:"history_db"`
}

type retentionConfig struct {
	Days       int `toml:"days"`
	KeepLatest int `toml:"keep_latest"`
}

type summaryConfig struct {
	OllamaEnabled bool   `toml:"ollama_enabled"`
	Model         string `toml:"model"`
	OllamaURL     string `toml:"ollama_url"`
}

type executeConfig struct {
	Lock          bool `toml:"lock"`
	RecordHistory bool `toml:"record_history"`
}

type fileConfig struct {
	Paths     pathsConfig     `toml:"paths"`
	Retention retentionConfig `toml:"retention"`
	Summary   summaryConfig   `toml:"summary"`
	Execute   executeConfig   `toml:"execute"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Paths: pathsConfig{
			PlansDir:  config.DefaultPlansDir,
			BackupDir: config.DefaultBackupDir,
			LogsDir:   config.DefaultLogsDir,
			HistoryDB: config.DefaultHistoryDB,
		},
		Retention: retentionConfig{
			Days:       config.DefaultRetention,
			KeepLatest: config.DefaultKeepLatest,
		},
		Summary: summaryConfig{
			Model:     "llama3.2",
			OllamaURL: "http://localhost:11434",
		},
		Execute: executeConfig{
			Lock:          true,
			RecordHistory: true,
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	for _, dir := range []string{config.GetPlansDir(), config.GetBackupDir(), config.GetLogsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		fmt.Printf("✓ Directory ready: %s\n", dir)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := configDir(home)
	configPath := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		f, err := os.OpenFile(configPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		if err := toml.NewEncoder(f).Encode(defaultFileConfig()); err != nil {
			f.Close()
			return fmt.Errorf("failed to write config file: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		fmt.Printf("✓ Created default config: %s\n", configPath)
	} else {
		fmt.Printf("Config already exists: %s\n", configPath)
	}

	fmt.Println("\n✓ Workspace initialized successfully!")
	fmt.Println("  You can now use: extract generate <source-file>")

	return nil
}
