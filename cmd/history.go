package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/extraction-plan/internal/config"
	"github.com/pders01/extraction-plan/internal/history"
	"github.com/pders01/extraction-plan/internal/models"
	"github.com/pders01/extraction-plan/internal/plan"
)

var (
	historyPlan  string
	historyState string
	historyLimit int
	historyJSON  bool
	historyToon  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded execution runs",
	Long: `List recorded execution runs, newest first, or show one run with the
outcome of every operation.

Examples:
  extract history
  extract history --state rejected
  extract history --plan .ai/extraction-plans/prd-extraction-plan.md
  extract history 01JABCDEF... --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyPlan, "plan", "", "Filter by plan file")
	historyCmd.Flags().StringVar(&historyState, "state", "", "Filter by final state (done, rejected, ...)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	historyCmd.Flags().BoolVar(&historyToon, "toon", false, "Output in LLM-friendly toon format")
}

func runHistory(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	dbPath := plan.Resolve(wd, config.GetHistoryDB())
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No runs recorded")
		return nil
	}

	store, err := history.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := commandContext(cmd)

	if len(args) == 1 {
		run, err := store.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		if done, err := emit(run, historyJSON, historyToon); done {
			return err
		}
		printRun(*run)
		fmt.Println()
		for _, o := range run.Outcomes {
			list := "risky"
			if o.Safe {
				list = "safe"
			}
			mark := successStyle.Render("✓")
			if !o.Success {
				mark = errorStyle.Render("✗")
			}
			fmt.Printf("  %s %s %d. %s %s\n", mark, list, o.Number, o.Kind, o.Target)
		}
		return nil
	}

	runs, err := store.ListRuns(ctx, history.ListParams{
		PlanFile: historyPlan,
		State:    models.RunState(historyState),
		Limit:    historyLimit,
	})
	if err != nil {
		return err
	}

	if done, err := emit(runs, historyJSON, historyToon); done {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}
	for _, run := range runs {
		printRun(run)
	}
	fmt.Printf("\nTotal: %d run(s)\n", len(runs))
	return nil
}

func printRun(run history.Run) {
	state := string(run.State)
	switch run.State {
	case models.StateDone:
		state = successStyle.Render(state)
	case models.StateRejected:
		state = errorStyle.Render(state)
	default:
		state = warnStyle.Render(state)
	}

	fmt.Printf("%s  %s  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.ID, state)
	fmt.Printf("    Plan:  %s\n", run.PlanFile)
	fmt.Printf("    Safe:  %d/%d  Risky: %d/%d\n", run.SafeExecuted, run.SafeTotal, run.RiskyExecuted, run.RiskyTotal)
	for _, issue := range run.Issues {
		fmt.Printf("    - %s\n", issue)
	}
}
