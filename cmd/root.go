package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pders01/extraction-plan/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "extract",
	Short: "Two-phase, approval-gated document extraction",
	Long: `extract turns a source document into a reviewable extraction plan and
executes that plan against the project:
  - generate writes a plan of safe and risky operations
  - risky operations only run once marked APPROVED in the plan
  - every touched file is backed up first, with a rollback script
  - every run leaves an execution log

Typical flow:
  extract generate docs/requirements.md
  extract approve .ai/extraction-plans/requirements-extraction-plan.md --interactive
  extract execute --dry-run .ai/extraction-plans/requirements-extraction-plan.md
  extract execute .ai/extraction-plans/requirements-extraction-plan.md`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/extract/config.toml)")

	config.SetDefaults(viper.GetViper())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(configDir(home))
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("EXTRACT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func configDir(home string) string {
	return filepath.Join(home, ".config", "extract")
}

// commandContext returns the command's context; tests call RunE
// functions with a nil command
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
