package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/extraction-plan/internal/backup"
	"github.com/pders01/extraction-plan/internal/execlog"
)

var rollbackDryRun bool

var rollbackCmd = &cobra.Command{
	Use:   "rollback <backup-dir>",
	Short: "Restore the files backed up by an execution run",
	Long: `Copy every snapshot in a backup root back to its original location,
in the order it was taken. This is the native equivalent of running the
root's rollback.sh.

Files created by the run are not removed.

Examples:
  extract rollback .ai/backups/20250101_120000_01JABC...
  extract rollback .ai/backups/20250101_120000_01JABC... --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runRollback,
}

func init() {
	rootCmd.AddCommand(rollbackCmd)

	rollbackCmd.Flags().BoolVar(&rollbackDryRun, "dry-run", false, "List what would be restored")
}

func runRollback(cmd *cobra.Command, args []string) error {
	set, err := backup.LoadManifest(args[0])
	if err != nil {
		return err
	}

	if len(set.Entries) == 0 {
		fmt.Println("Backup contains no files")
		return nil
	}

	if rollbackDryRun {
		fmt.Printf("Would restore %d file(s) from execution %s:\n", len(set.Entries), set.ExecutionID)
		for _, e := range set.Entries {
			fmt.Printf("  %s\n", e.OriginalPath)
		}
		return nil
	}

	n, err := backup.Restore(set, execlog.New(os.Stdout))
	if err != nil {
		return err
	}
	success("Restored %d file(s) from %s", n, set.Root)
	return nil
}
