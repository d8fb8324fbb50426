package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/extraction-plan/internal/approval"
	"github.com/pders01/extraction-plan/internal/models"
	"github.com/pders01/extraction-plan/internal/plan"
)

var (
	approveOps         []int
	approveAll         bool
	approveReject      bool
	approvePending     bool
	approveInteractive bool
)

var approveCmd = &cobra.Command{
	Use:   "approve <plan-file>",
	Short: "Set the approval status of risky operations",
	Long: `Rewrite the Approval Status of risky operations in a plan file.
Only the REQUIRES USER APPROVAL section is changed.

Examples:
  extract approve plan.md --op 1            # approve operation 1
  extract approve plan.md --op 1 --op 2 --reject
  extract approve plan.md --all
  extract approve plan.md --interactive     # review each operation`,
	Args: cobra.ExactArgs(1),
	RunE: runApprove,
}

func init() {
	rootCmd.AddCommand(approveCmd)

	approveCmd.Flags().IntSliceVar(&approveOps, "op", nil, "Risky operation number (repeatable)")
	approveCmd.Flags().BoolVar(&approveAll, "all", false, "Apply to every risky operation")
	approveCmd.Flags().BoolVar(&approveReject, "reject", false, "Mark as REJECTED instead of APPROVED")
	approveCmd.Flags().BoolVar(&approvePending, "pending", false, "Reset to PENDING")
	approveCmd.Flags().BoolVarP(&approveInteractive, "interactive", "i", false, "Review operations in an interactive screen")
}

func runApprove(cmd *cobra.Command, args []string) error {
	planPath := args[0]

	info, err := os.Stat(planPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("plan file %s: %w", planPath, plan.ErrNotFound)
		}
		return err
	}
	data, err := os.ReadFile(planPath)
	if err != nil {
		return fmt.Errorf("failed to read plan file: %w", err)
	}
	text := string(data)

	if approveReject && approvePending {
		return fmt.Errorf("--reject and --pending are mutually exclusive")
	}
	status := models.StatusApproved
	if approveReject {
		status = models.StatusRejected
	} else if approvePending {
		status = models.StatusPending
	}

	var updated string
	switch {
	case approveInteractive:
		p, err := plan.Parse(text)
		if err != nil {
			return err
		}
		m, err := approval.Run(p.RiskyOperations)
		if err != nil {
			return err
		}
		if !m.Saved() || len(m.Changes()) == 0 {
			fmt.Println("No changes saved")
			return nil
		}
		if updated, err = m.Apply(text); err != nil {
			return err
		}
		for number, s := range m.Changes() {
			fmt.Printf("  Operation %d: %s\n", number, s)
		}

	case approveAll:
		var n int
		if updated, n, err = plan.SetAllApprovals(text, status); err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("No risky operations in plan")
			return nil
		}
		fmt.Printf("  %d operation(s): %s\n", n, status)

	case len(approveOps) > 0:
		updated = text
		for _, number := range approveOps {
			if updated, err = plan.SetApproval(updated, number, status); err != nil {
				return err
			}
			fmt.Printf("  Operation %d: %s\n", number, status)
		}

	default:
		return fmt.Errorf("specify --op, --all or --interactive")
	}

	if err := os.WriteFile(planPath, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to save plan file: %w", err)
	}
	success("Updated %s", planPath)
	return nil
}
