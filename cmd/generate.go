package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/extraction-plan/internal/config"
	"github.com/pders01/extraction-plan/internal/ollama"
	"github.com/pders01/extraction-plan/internal/plan"
)

var (
	generateTargetDir  string
	generateLLMSummary bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <source-document>",
	Short: "Analyze a document and write its extraction plan",
	Long: `Analyze a source document and write an extraction plan proposing
safe operations (auto-approved) and risky operations (PENDING approval).

Nothing besides the plan file is written.

Examples:
  extract generate docs/requirements.md
  extract generate notes.txt --target-dir plans
  extract generate docs/prd.md --llm-summary   # summarize with Ollama`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateTargetDir, "target-dir", "", "Directory for the plan file (default: paths.plans_dir)")
	generateCmd.Flags().BoolVar(&generateLLMSummary, "llm-summary", false, "Summarize the document with Ollama, falling back to the heuristic summary")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	targetDir := generateTargetDir
	if targetDir == "" {
		targetDir = config.GetPlansDir()
	}

	g := &plan.Generator{TargetDir: targetDir, Warnings: os.Stderr}

	if generateLLMSummary || config.IsSummaryEnabled() {
		url := config.GetOllamaURL()
		if !ollama.IsAvailable(url) {
			fmt.Fprintf(os.Stderr, "Warning: Ollama is not available at %s, using heuristic summary\n", url)
		} else {
			client, err := ollama.NewClient(url, config.GetSummaryModel())
			if err == nil {
				err = client.CheckModel(commandContext(cmd))
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v, using heuristic summary\n", err)
			} else {
				fmt.Printf("Summarizing with %s\n", client.GetModel())
				g.Summarizer = client
			}
		}
	}

	out, err := g.Generate(commandContext(cmd), args[0])
	if err != nil {
		return err
	}

	success("Generated extraction plan: %s", out.PlanPath)
	fmt.Println()
	fmt.Printf("Document type:    %s\n", out.Analysis.DocumentType)
	fmt.Printf("Lines analyzed:   %d\n", out.Analysis.LineCount)
	fmt.Printf("Safe operations:  %d\n", len(out.Plan.SafeOperations))
	fmt.Printf("Needs approval:   %d\n", len(out.Plan.RiskyOperations))

	fmt.Println()
	fmt.Println(dimStyle.Render("Next steps:"))
	fmt.Println(dimStyle.Render("  extract approve " + out.PlanPath + " --interactive"))
	fmt.Println(dimStyle.Render("  extract execute --dry-run " + out.PlanPath))

	return nil
}
