package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/extraction-plan/internal/backup"
	"github.com/pders01/extraction-plan/internal/config"
)

var (
	backupsJSON bool
	backupsToon bool

	pruneForce bool
	pruneDays   int
	pruneKeep   int

	archiveOutput string
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Manage per-run backup roots",
}

var backupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup roots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBackupsList,
}

var backupsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old backup roots based on retention policy",
	Long: `Remove backup roots older than the retention period. The newest
roots are always kept.

The retention policy is configured in ~/.config/extract/config.toml:
  [retention]
  days = 30
  keep_latest = 5

Example:
  extract backups prune              # Show what would be pruned
  extract backups prune --force      # Actually prune`,
	Args: cobra.NoArgs,
	RunE: runBackupsPrune,
}

var backupsArchiveCmd = &cobra.Command{
	Use:   "archive <YYYY|YYYYMM|YYYYMMDD|all>",
	Short: "Bundle backup roots for external storage",
	Long: `Create a tar.gz archive of backup roots.

Examples:
  extract backups archive 2025          # Archive all roots from 2025
  extract backups archive 202511        # Archive roots from November 2025
  extract backups archive all --output backups.tar.gz`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupsArchive,
}

func init() {
	rootCmd.AddCommand(backupsCmd)
	backupsCmd.AddCommand(backupsListCmd, backupsPruneCmd, backupsArchiveCmd)

	backupsListCmd.Flags().BoolVar(&backupsJSON, "json", false, "Output as JSON")
	backupsListCmd.Flags().BoolVar(&backupsToon, "toon", false, "Output in LLM-friendly toon format")

	backupsPruneCmd.Flags().BoolVar(&pruneForce, "force", false, "Actually delete backup roots")
	backupsPruneCmd.Flags().IntVar(&pruneDays, "days", 0, "Retention period in days (default: retention.days)")
	backupsPruneCmd.Flags().IntVar(&pruneKeep, "keep", -1, "Number of newest roots to keep (default: retention.keep_latest)")

	backupsArchiveCmd.Flags().StringVar(&archiveOutput, "output", "", "Output file path (default: extraction-backups-<period>.tar.gz)")
}

func runBackupsList(cmd *cobra.Command, args []string) error {
	infos, err := backup.List(config.GetBackupDir())
	if err != nil {
		return err
	}

	if done, err := emit(infos, backupsJSON, backupsToon); done {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("No backups found")
		return nil
	}

	for _, info := range infos {
		fmt.Printf("%s  %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"), info.Name)
		if info.Manifest {
			fmt.Printf("    Execution: %s\n", info.ExecutionID)
		} else {
			fmt.Printf("    Execution: %s\n", dimStyle.Render("(no manifest)"))
		}
		fmt.Printf("    Files:     %d (%.2f KB)\n", info.Files, float64(info.Size)/1024)
	}
	fmt.Printf("\nTotal: %d backup(s)\n", len(infos))
	return nil
}

func runBackupsPrune(cmd *cobra.Command, args []string) error {
	days := pruneDays
	if days <= 0 {
		days = config.GetRetentionDays()
	}
	keep := pruneKeep
	if keep < 0 {
		keep = config.GetKeepLatest()
	}

	fmt.Printf("Retention policy: %d days, keep latest %d\n", days, keep)
	fmt.Printf("Cutoff date: %s\n\n", time.Now().AddDate(0, 0, -days).Format("2006-01-02"))

	infos, err := backup.List(config.GetBackupDir())
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No backups found")
		return nil
	}

	var toPrune []backup.PruneCandidate
	for _, c := range backup.SelectPrune(infos, days, keep, time.Now()) {
		if c.Prune {
			toPrune = append(toPrune, c)
		}
	}

	if len(toPrune) == 0 {
		fmt.Println("No backups to prune")
		return nil
	}

	fmt.Printf("Backups to prune (%d):\n\n", len(toPrune))
	for _, c := range toPrune {
		fmt.Printf("  %s\n", c.Name)
		fmt.Printf("    Age:    %s\n", formatAge(time.Since(c.CreatedAt)))
		fmt.Printf("    Reason: %s\n", c.Reason)
	}

	if !pruneForce {
		fmt.Println("\nThis is a dry run. Use --force to actually prune backups.")
		return nil
	}

	fmt.Println("\nPruning backups...")
	removed := 0
	for _, c := range toPrune {
		if err := backup.Remove(c.Info); err != nil {
			fmt.Fprintf(os.Stderr, "    Error: %v\n", err)
			continue
		}
		removed++
	}
	success("Pruned %d backup(s)", removed)
	return nil
}

func runBackupsArchive(cmd *cobra.Command, args []string) error {
	period := args[0]

	infos, err := backup.List(config.GetBackupDir())
	if err != nil {
		return err
	}

	var selected []backup.Info
	for _, info := range infos {
		if period == "all" || strings.HasPrefix(info.Name, period) {
			selected = append(selected, info)
		}
	}

	if len(selected) == 0 {
		fmt.Println("No backups match the filter criteria")
		return nil
	}

	outputFile := archiveOutput
	if outputFile == "" {
		outputFile = fmt.Sprintf("extraction-backups-%s.tar.gz", period)
	}

	fmt.Printf("Archiving %d backup(s) to: %s\n", len(selected), outputFile)
	if err := backup.Archive(outputFile, selected); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	if fileInfo, err := os.Stat(outputFile); err == nil {
		success("Archive created: %s (%.2f KB)", outputFile, float64(fileInfo.Size())/1024)
	} else {
		success("Archive created: %s", outputFile)
	}
	for _, info := range selected {
		fmt.Printf("  - %s\n", info.Name)
	}
	return nil
}

func formatAge(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days == 0 {
		return "< 1 day"
	}
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
