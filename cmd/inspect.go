package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/extraction-plan/internal/execlog"
	"github.com/pders01/extraction-plan/internal/models"
	"github.com/pders01/extraction-plan/internal/plan"
)

var (
	inspectJSON bool
	inspectToon bool
)

// planReport is the parsed view of a plan file
type planReport struct {
	PlanFile        string             `json:"plan_file"`
	Metadata        map[string]string  `json:"metadata"`
	SafeOperations  []models.Operation `json:"safe_operations"`
	RiskyOperations []models.Operation `json:"risky_operations"`
	Issues          []string           `json:"issues"`
	Warnings        []string           `json:"warnings"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <plan-file>",
	Short: "Show the operations of a plan and what blocks it",
	Long: `Parse a plan file and show its operations, approval state and
validation issues without executing anything.

Examples:
  extract inspect plan.md
  extract inspect plan.md --json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output as JSON")
	inspectCmd.Flags().BoolVar(&inspectToon, "toon", false, "Output in LLM-friendly toon format")
}

func runInspect(cmd *cobra.Command, args []string) error {
	planPath := args[0]

	p, err := plan.ParseFile(planPath)
	if err != nil {
		return err
	}

	log := execlog.New(nil)
	report := planReport{
		PlanFile:        planPath,
		Metadata:        p.Metadata,
		SafeOperations:  p.SafeOperations,
		RiskyOperations: p.RiskyOperations,
		Issues:          plan.Validate(p, ".", log),
		Warnings:        []string{},
	}
	if report.Issues == nil {
		report.Issues = []string{}
	}
	for _, e := range log.Entries() {
		report.Warnings = append(report.Warnings, e.Message)
	}

	if done, err := emit(report, inspectJSON, inspectToon); done {
		return err
	}

	heading(planPath)
	if docType := p.Metadata[models.MetaDocumentType]; docType != "" {
		fmt.Printf("Document type: %s\n", docType)
	}
	if estimate := p.Metadata[models.MetaEstimatedTime]; estimate != "" {
		fmt.Printf("Estimated:     %s\n", estimate)
	}

	fmt.Printf("\nSafe operations (%d):\n", len(p.SafeOperations))
	for _, op := range models.InOrder(p.SafeOperations) {
		fmt.Printf("  %d. %-12s %s\n", op.Number, op.Kind, displayTarget(op))
	}

	fmt.Printf("\nRisky operations (%d):\n", len(p.RiskyOperations))
	for _, op := range models.InOrder(p.RiskyOperations) {
		status := op.Approval()
		if status == "" {
			status = "MISSING"
		}
		fmt.Printf("  %d. %-12s %-30s [%s]\n", op.Number, op.Kind, displayTarget(op), status)
	}

	if len(report.Warnings) > 0 {
		fmt.Println()
		for _, w := range report.Warnings {
			warn("%s", w)
		}
	}

	fmt.Println()
	if len(report.Issues) == 0 {
		success("Ready to execute")
		return nil
	}
	failure("%d blocking issue(s):", len(report.Issues))
	for _, issue := range report.Issues {
		fmt.Printf("  - %s\n", issue)
	}
	return nil
}

func displayTarget(op models.Operation) string {
	if target := op.TargetPath(); target != "" {
		return target
	}
	return "(no target)"
}
