package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pders01/extraction-plan/internal/execlog"
	"github.com/pders01/extraction-plan/internal/models"
)

// Validate returns the issues that block execution. Only risky operations
// produce issues: every one must be explicitly APPROVED and fully
// specified. Safe operations whose parent directory is missing and
// duplicate operation numbers are logged as warnings.
//
// Relative targets are resolved against workdir. Validate performs no
// writes.
func Validate(p *models.Plan, workdir string, log *execlog.Log) []string {
	var issues []string

	for _, op := range p.RiskyOperations {
		if !op.Approved() {
			status := string(op.Approval())
			if op.Risky == nil || op.Risky.ApprovalStatus == nil {
				status = "MISSING"
			}
			issues = append(issues, fmt.Sprintf("Risky operation %d requires approval (Status: %s)", op.Number, status))
		}
		issues = append(issues, completeness(op)...)
	}

	for _, op := range p.SafeOperations {
		target := op.TargetPath()
		if target == "" {
			continue
		}
		parent := filepath.Dir(target)
		if parent == "." {
			continue
		}
		if _, err := os.Stat(Resolve(workdir, parent)); os.IsNotExist(err) {
			log.Warnf("Target directory does not exist: %s (created on demand)", parent)
		}
	}

	warnDuplicates(p.SafeOperations, "safe", log)
	warnDuplicates(p.RiskyOperations, "risky", log)

	return issues
}

// completeness fails closed on risky operations whose fields could not be located
func completeness(op models.Operation) []string {
	var issues []string
	if op.TargetPath() == "" {
		issues = append(issues, fmt.Sprintf("Risky operation %d has no target location", op.Number))
	}
	if !op.Kind.Valid() {
		issues = append(issues, fmt.Sprintf("Risky operation %d has unsupported operation type %q", op.Number, op.Kind))
	}
	if op.Kind == models.KindModify && op.Risky != nil {
		if op.Risky.CurrentContent == nil {
			issues = append(issues, fmt.Sprintf("Risky operation %d (MODIFY) is missing current content", op.Number))
		}
		if op.Risky.ProposedContent == nil {
			issues = append(issues, fmt.Sprintf("Risky operation %d (MODIFY) is missing proposed content", op.Number))
		}
	}
	return issues
}

func warnDuplicates(ops []models.Operation, list string, log *execlog.Log) {
	seen := map[int]bool{}
	for _, op := range ops {
		if seen[op.Number] {
			log.Warnf("Duplicate %s operation number %d; document order is kept", list, op.Number)
		}
		seen[op.Number] = true
	}
}

// Resolve joins a relative target onto workdir
func Resolve(workdir, target string) string {
	if filepath.IsAbs(target) || workdir == "" {
		return target
	}
	return filepath.Join(workdir, target)
}
