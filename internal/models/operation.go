package models

import (
	"strings"
)

// OperationKind is the mutation an operation performs
type OperationKind string

const (
	KindCreate      OperationKind = "CREATE"
	KindAdd         OperationKind = "ADD"
	KindModify      OperationKind = "MODIFY"
	KindDelete      OperationKind = "DELETE"
	KindRestructure OperationKind = "RESTRUCTURE"
)

// ParseKind normalizes a kind as written in a plan document.
// Unknown kinds are returned upper-cased so they can be reported.
func ParseKind(s string) OperationKind {
	return OperationKind(strings.ToUpper(strings.TrimSpace(s)))
}

// Valid reports whether k is one of the known operation kinds
func (k OperationKind) Valid() bool {
	switch k {
	case KindCreate, KindAdd, KindModify, KindDelete, KindRestructure:
		return true
	default:
		return false
	}
}

// DefaultSafe is the default list policy for a kind. List membership in a
// parsed plan is authoritative, not this.
func (k OperationKind) DefaultSafe() bool {
	return k == KindCreate || k == KindAdd
}

// ApprovalStatus gates execution of risky operations
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// ParseApproval normalizes an approval status (case-insensitive)
func ParseApproval(s string) ApprovalStatus {
	return ApprovalStatus(strings.ToUpper(strings.TrimSpace(s)))
}

// SafeFields holds the fields only safe operations carry.
// A nil pointer means the field was absent from the plan.
type SafeFields struct {
	ContentToAdd *string `json:"content_to_add,omitempty"`
	Dependencies *string `json:"dependencies,omitempty"`
}

// RiskyFields holds the fields only risky operations carry.
type RiskyFields struct {
	CurrentContent  *string `json:"current_content,omitempty"`
	ProposedContent *string `json:"proposed_content,omitempty"`
	RiskAssessment  *string `json:"risk_assessment,omitempty"`
	ApprovalStatus  *string `json:"approval_status,omitempty"`
}

// Operation is a single proposed mutation. Exactly one of Safe and Risky is
// set, matching the plan list the operation belongs to.
type Operation struct {
	Number    int           `json:"operation_number"`
	Kind      OperationKind `json:"operation,omitempty"`
	Target    *string       `json:"target_location,omitempty"`
	Rationale *string       `json:"rationale,omitempty"`
	Safe      *SafeFields   `json:"safe,omitempty"`
	Risky     *RiskyFields  `json:"risky,omitempty"`
}

// IsSafe reports whether the operation belongs to the safe list
func (o Operation) IsSafe() bool {
	return o.Safe != nil
}

// TargetPath returns the target location or "" when absent
func (o Operation) TargetPath() string {
	return Value(o.Target)
}

// Approval returns the normalized approval status of a risky operation.
// Safe operations and missing statuses yield "".
func (o Operation) Approval() ApprovalStatus {
	if o.Risky == nil {
		return ""
	}
	return ParseApproval(Value(o.Risky.ApprovalStatus))
}

// Approved reports whether a risky operation is explicitly approved
func (o Operation) Approved() bool {
	return o.Approval() == StatusApproved
}

// Ptr returns a pointer to s
func Ptr(s string) *string {
	return &s
}

// Value dereferences an optional field, returning "" when absent
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
