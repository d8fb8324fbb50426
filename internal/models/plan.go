package models

import "sort"

// Metadata keys extracted from a plan document
const (
	MetaDocumentType     = "document_type"
	MetaContentSummary   = "content_summary"
	MetaSafeCount        = "safe_operations_count"
	MetaApprovalRequired = "approval_required_count"
	MetaEstimatedTime    = "estimated_time"
)

// Plan is a set of proposed mutations split into safe and risky lists
type Plan struct {
	SafeOperations  []Operation       `json:"safe_operations"`
	RiskyOperations []Operation       `json:"risky_operations"`
	Metadata        map[string]string `json:"metadata"`
}

// ApprovedRisky returns the risky operations marked APPROVED
func (p *Plan) ApprovedRisky() []Operation {
	var ops []Operation
	for _, op := range p.RiskyOperations {
		if op.Approved() {
			ops = append(ops, op)
		}
	}
	return ops
}

// InOrder returns a copy of ops sorted by ascending operation number.
// Operations sharing a number keep their document order.
func InOrder(ops []Operation) []Operation {
	sorted := make([]Operation, len(ops))
	copy(sorted, ops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})
	return sorted
}
