package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/extraction-plan/internal/config"
	"github.com/pders01/extraction-plan/internal/history"
	"github.com/pders01/extraction-plan/internal/models"
	"github.com/pders01/extraction-plan/internal/plan"
	"github.com/pders01/extraction-plan/internal/runner"
)

var (
	executeDryRun bool
	executeNoLock bool
	executeJSON   bool
	executeToon   bool
)

// errBlocked makes the process exit non-zero when a plan has blocking issues
var errBlocked = errors.New("execution blocked")

var executeCmd = &cobra.Command{
	Use:   "execute <plan-file>",
	Short: "Validate and apply an extraction plan",
	Long: `Execute an extraction plan.

The plan is parsed and validated first. Any risky operation that is not
APPROVED blocks the whole run: nothing is backed up or changed. Otherwise
every target is backed up, safe operations run, then approved risky
operations, and an execution log is written.

Examples:
  extract execute --dry-run .ai/extraction-plans/prd-extraction-plan.md
  extract execute .ai/extraction-plans/prd-extraction-plan.md
  extract execute plan.md --json`,
	Args: cobra.ExactArgs(1),
	RunE: runExecute,
}

func init() {
	rootCmd.AddCommand(executeCmd)

	executeCmd.Flags().BoolVar(&executeDryRun, "dry-run", false, "Validate only, without writing anything")
	executeCmd.Flags().BoolVar(&executeNoLock, "no-lock", false, "Skip the run lock in the backup directory")
	executeCmd.Flags().BoolVar(&executeJSON, "json", false, "Output the result as JSON")
	executeCmd.Flags().BoolVar(&executeToon, "toon", false, "Output the result in LLM-friendly toon format")
}

func runExecute(cmd *cobra.Command, args []string) error {
	planPath := args[0]

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	var out io.Writer = os.Stdout
	if executeJSON || executeToon {
		out = nil
	}

	opts := runner.Options{
		Workdir:   wd,
		BackupDir: config.GetBackupDir(),
		LogsDir:   config.GetLogsDir(),
		Out:       out,
		Lock:      config.IsLockEnabled() && !executeNoLock,
	}

	if !executeDryRun && config.IsHistoryEnabled() {
		rec := &historyRecorder{path: plan.Resolve(wd, config.GetHistoryDB())}
		defer rec.Close()
		opts.Recorder = rec
	}

	r := runner.New(opts)

	var res *models.ExecutionResult
	if executeDryRun {
		res, err = r.DryRun(planPath)
	} else {
		res, err = r.Run(commandContext(cmd), planPath)
	}
	if err != nil {
		if res != nil && res.LogPath != "" {
			fmt.Fprintf(os.Stderr, "Execution log: %s\n", res.LogPath)
		}
		return err
	}

	if done, err := emit(res, executeJSON, executeToon); done {
		if err != nil {
			return err
		}
		return blockedError(res)
	}

	fmt.Println()
	printResult(res, executeDryRun)
	return blockedError(res)
}

func printResult(res *models.ExecutionResult, dryRun bool) {
	if res.Rejected() {
		failure("Execution blocked by %d issue(s):", len(res.Issues))
		for _, issue := range res.Issues {
			fmt.Printf("  - %s\n", issue)
		}
		fmt.Println()
		fmt.Println("Mark risky operations APPROVED in the plan, for example:")
		fmt.Printf("  extract approve %s --interactive\n", res.PlanFile)
		return
	}

	if dryRun {
		success("Dry run passed: %d safe and %d risky operation(s) ready", res.SafeTotal, res.RiskyTotal)
		return
	}

	heading("Execution Summary")
	fmt.Printf("Safe operations:  %d/%d succeeded\n", res.SafeExecuted, res.SafeTotal)
	fmt.Printf("Risky operations: %d/%d succeeded\n", res.RiskyExecuted, res.RiskyTotal)
	fmt.Printf("Backup:           %s\n", res.BackupDirectory)
	fmt.Printf("Rollback script:  %s\n", res.RollbackScript)
	fmt.Printf("Execution log:    %s\n", res.LogPath)

	if failed := len(res.Outcomes) - res.SafeExecuted - res.RiskyExecuted; failed > 0 {
		warn("%d operation(s) failed, see the execution log", failed)
	} else {
		success("Execution completed")
	}
}

func blockedError(res *models.ExecutionResult) error {
	if len(res.Issues) > 0 {
		return fmt.Errorf("%w: %d issue(s) in %s", errBlocked, len(res.Issues), res.PlanFile)
	}
	return nil
}

// historyRecorder opens the history database on the first recorded run,
// so runs that never get past validation leave no database behind
type historyRecorder struct {
	path  string
	store *history.SQLiteStore
}

func (h *historyRecorder) RecordRun(ctx context.Context, run history.Run) error {
	if h.store == nil {
		store, err := history.NewSQLiteStore(h.path)
		if err != nil {
			return fmt.Errorf("run history disabled: %w", err)
		}
		h.store = store
	}
	return h.store.RecordRun(ctx, run)
}

func (h *historyRecorder) Close() error {
	if h.store == nil {
		return nil
	}
	return h.store.Close()
}
