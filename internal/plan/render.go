package plan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pders01/extraction-plan/internal/models"
)

const fieldIndent = "   "

// Document is everything rendered into a plan file
type Document struct {
	SourceName  string
	KeyElements []string
	Plan        models.Plan
	PlanPath    string
}

// Render writes the canonical plan text. Field order is fixed; absent
// optional fields are omitted. Fenced content is indented with the field
// and written verbatim otherwise.
func Render(doc Document) string {
	var b strings.Builder
	meta := doc.Plan.Metadata

	fmt.Fprintf(&b, "# %s Extraction Plan\n\n", doc.SourceName)
	b.WriteString("## Source Document Analysis\n")
	fmt.Fprintf(&b, "- **%s**: %s\n", LabelDocumentType, meta[models.MetaDocumentType])
	fmt.Fprintf(&b, "- **%s**: %s\n", LabelContentSummary, oneLine(meta[models.MetaContentSummary]))
	fmt.Fprintf(&b, "- **%s**:\n", LabelKeyElements)
	for _, element := range doc.KeyElements {
		fmt.Fprintf(&b, "  - %s\n", element)
	}

	b.WriteString("\n## Proposed Extractions\n\n")

	fmt.Fprintf(&b, "### %s (Auto-Approved)\n", SafeSection)
	b.WriteString("#### Information Aggregations\n")
	for _, op := range doc.Plan.SafeOperations {
		renderOperation(&b, op)
	}

	fmt.Fprintf(&b, "\n### %s\n", RiskySection)
	b.WriteString("#### Information Modifications\n")
	for _, op := range doc.Plan.RiskyOperations {
		renderOperation(&b, op)
	}

	b.WriteString("\n## Execution Summary\n")
	fmt.Fprintf(&b, "- **%s**: %d additions/aggregations\n", LabelSafeCount, len(doc.Plan.SafeOperations))
	fmt.Fprintf(&b, "- **%s**: %d modifications/deletions\n", LabelApprovalCount, len(doc.Plan.RiskyOperations))
	fmt.Fprintf(&b, "- **%s**: %s\n", LabelEstimatedTime, meta[models.MetaEstimatedTime])

	b.WriteString("\n## Execution Commands\n")
	b.WriteString("```bash\n")
	b.WriteString("# Commands to execute this plan (generated automatically)\n")
	fmt.Fprintf(&b, "extract execute --dry-run %s\n", doc.PlanPath)
	fmt.Fprintf(&b, "extract execute %s\n", doc.PlanPath)
	b.WriteString("```\n")

	return b.String()
}

func renderOperation(b *strings.Builder, op models.Operation) {
	fmt.Fprintf(b, "\n%d. **%s**: %s\n", op.Number, LabelTarget, oneLine(op.TargetPath()))
	if op.Kind != "" {
		lineField(b, LabelOperation, models.Ptr(string(op.Kind)))
	}

	if op.Safe != nil {
		fencedField(b, LabelContentToAdd, op.Safe.ContentToAdd)
		lineField(b, LabelRationale, op.Rationale)
		lineField(b, LabelDependencies, op.Safe.Dependencies)
		return
	}

	if op.Risky != nil {
		fencedField(b, LabelCurrentContent, op.Risky.CurrentContent)
		fencedField(b, LabelProposedContent, op.Risky.ProposedContent)
		lineField(b, LabelRationale, op.Rationale)
		lineField(b, LabelRiskAssessment, op.Risky.RiskAssessment)
		lineField(b, LabelApprovalStatus, op.Risky.ApprovalStatus)
		return
	}

	lineField(b, LabelRationale, op.Rationale)
}

func lineField(b *strings.Builder, label string, value *string) {
	if value == nil {
		return
	}
	fmt.Fprintf(b, "%s**%s**: %s\n", fieldIndent, label, oneLine(*value))
}

func fencedField(b *strings.Builder, label string, value *string) {
	if value == nil {
		return
	}
	fence := fenceFor(*value)
	fmt.Fprintf(b, "%s**%s**:\n", fieldIndent, label)
	fmt.Fprintf(b, "%s%s\n", fieldIndent, fence)
	for _, line := range strings.Split(*value, "\n") {
		if line != "" {
			b.WriteString(fieldIndent)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "%s%s\n", fieldIndent, fence)
}

// oneLine flattens a value for a single-line field
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// EstimateCompletionTime buckets the total operation count
func EstimateCompletionTime(safe, risky int) string {
	total := safe + risky
	switch {
	case total <= 3:
		return "2-5 minutes"
	case total <= 6:
		return "5-10 minutes"
	case total <= 10:
		return "10-20 minutes"
	default:
		return "20+ minutes"
	}
}

func countString(n int) string {
	return strconv.Itoa(n)
}
