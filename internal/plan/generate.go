package plan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pders01/extraction-plan/internal/analyzer"
	"github.com/pders01/extraction-plan/internal/models"
)

// DefaultTargetDir is where plans are written unless configured otherwise
const DefaultTargetDir = ".ai/extraction-plans"

// Summarizer produces an alternative content summary, e.g. from an LLM
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Generator turns source documents into plan files
type Generator struct {
	TargetDir  string
	Summarizer Summarizer
	// Warnings receives non-fatal problems such as a failed summarizer call
	Warnings io.Writer
}

// Generated is the outcome of a Generate call
type Generated struct {
	PlanPath string
	Analysis models.Analysis
	Plan     models.Plan
}

// PlanPath returns where the plan for sourcePath is written
func (g *Generator) PlanPath(sourcePath string) string {
	dir := g.TargetDir
	if dir == "" {
		dir = DefaultTargetDir
	}
	return filepath.Join(dir, stem(sourcePath)+"-extraction-plan.md")
}

// Generate analyzes the source document and writes its plan. No file other
// than the plan is touched.
func (g *Generator) Generate(ctx context.Context, sourcePath string) (*Generated, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("source document %s: %w", sourcePath, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read source document: %w", err)
	}
	content := string(data)

	analysis := analyzer.Analyze(sourcePath, content)
	if g.Summarizer != nil {
		summary, err := g.Summarizer.Summarize(ctx, content)
		if err != nil {
			g.warnf("summarizer failed, using heuristic summary: %v", err)
		} else {
			analysis.Summary = analyzer.Truncate(summary, analyzer.MaxSummaryLength)
		}
	}

	p := BuildPlan(sourcePath, analysis)
	planPath := g.PlanPath(sourcePath)

	text := Render(Document{
		SourceName:  filepath.Base(sourcePath),
		KeyElements: analysis.KeyElements,
		Plan:        p,
		PlanPath:    filepath.ToSlash(planPath),
	})

	if err := os.MkdirAll(filepath.Dir(planPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create plan directory: %w", err)
	}
	if err := os.WriteFile(planPath, []byte(text), 0644); err != nil {
		return nil, fmt.Errorf("failed to save plan file: %w", err)
	}

	return &Generated{PlanPath: planPath, Analysis: analysis, Plan: p}, nil
}

func (g *Generator) warnf(format string, args ...any) {
	if g.Warnings != nil {
		fmt.Fprintf(g.Warnings, "Warning: "+format+"\n", args...)
	}
}

// BuildPlan proposes the safe and risky operations for an analyzed
// document. It is deterministic given its inputs.
func BuildPlan(sourcePath string, a models.Analysis) models.Plan {
	safe := safeOperations(sourcePath, a)
	risky := riskyOperations(a)

	return models.Plan{
		SafeOperations:  safe,
		RiskyOperations: risky,
		Metadata: map[string]string{
			models.MetaDocumentType:     string(a.DocumentType),
			models.MetaContentSummary:   a.Summary,
			models.MetaSafeCount:        countString(len(safe)),
			models.MetaApprovalRequired: countString(len(risky)),
			models.MetaEstimatedTime:    EstimateCompletionTime(len(safe), len(risky)),
		},
	}
}

func safeOperations(sourcePath string, a models.Analysis) []models.Operation {
	name := filepath.Base(sourcePath)
	base := stem(sourcePath)

	ops := []models.Operation{
		safeOp(models.KindCreate,
			fmt.Sprintf("docs/extracted-content/%s.md", base),
			fmt.Sprintf("# Extracted Content from %s\n\n[Extracted content would be placed here]", name),
			"Create new file with extracted content without modifying existing documentation",
			"docs/extracted-content/ directory must exist"),
		safeOp(models.KindAdd,
			"docs/document-index.md",
			fmt.Sprintf("- [%s](%s) - %s", name, filepath.ToSlash(sourcePath), a.DocumentType),
			"Add document reference to project index for better navigation",
			"Document index file existence"),
	}

	if len(a.KeyElements) > 0 {
		var items []string
		for _, element := range a.KeyElements {
			items = append(items, "- "+element)
		}
		ops = append(ops, safeOp(models.KindCreate,
			fmt.Sprintf("docs/project-data/%s-elements.md", base),
			fmt.Sprintf("# Key Elements from %s\n\n%s", name, strings.Join(items, "\n")),
			"Create structured catalog of key data elements for reference",
			"docs/project-data/ directory must exist"))
	}

	for i := range ops {
		ops[i].Number = i + 1
	}
	return ops
}

func riskyOperations(a models.Analysis) []models.Operation {
	var ops []models.Operation

	if a.DocumentType == models.DocRequirements {
		ops = append(ops, riskyOp(models.KindModify,
			"docs/prd.md",
			"[Existing PRD content would be analyzed here]",
			"[Merged content with new requirements]",
			"Integrate new requirements with existing PRD structure",
			"MEDIUM - Could overwrite existing requirements or create conflicts"))
	}

	ops = append(ops, riskyOp(models.KindRestructure,
		"docs/",
		"[Current documentation structure]",
		"[New structure incorporating extracted content]",
		"Reorganize documentation to better integrate extracted information",
		"HIGH - Could disrupt existing documentation organization"))

	for i := range ops {
		ops[i].Number = i + 1
	}
	return ops
}

func safeOp(kind models.OperationKind, target, content, rationale, deps string) models.Operation {
	return models.Operation{
		Kind:      kind,
		Target:    models.Ptr(target),
		Rationale: models.Ptr(rationale),
		Safe: &models.SafeFields{
			ContentToAdd: models.Ptr(content),
			Dependencies: models.Ptr(deps),
		},
	}
}

func riskyOp(kind models.OperationKind, target, current, proposed, rationale, risk string) models.Operation {
	return models.Operation{
		Kind:      kind,
		Target:    models.Ptr(target),
		Rationale: models.Ptr(rationale),
		Risky: &models.RiskyFields{
			CurrentContent:  models.Ptr(current),
			ProposedContent: models.Ptr(proposed),
			RiskAssessment:  models.Ptr(risk),
			ApprovalStatus:  models.Ptr(string(models.StatusPending)),
		},
	}
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
