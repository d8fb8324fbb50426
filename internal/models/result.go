package models

// RunState is a step of the execution state machine. States only move forward.
type RunState string

const (
	StateParsed        RunState = "parsed"
	StateValidated     RunState = "validated"
	StateBackedUp      RunState = "backed_up"
	StateSafeExecuted  RunState = "safe_executed"
	StateRiskyExecuted RunState = "risky_executed"
	StateLogged        RunState = "logged"
	StateDone          RunState = "done"
	StateRejected      RunState = "rejected"
)

// OperationOutcome records how a single operation fared
type OperationOutcome struct {
	Number  int           `json:"operation_number"`
	Kind    OperationKind `json:"operation"`
	Target  string        `json:"target_location"`
	Safe    bool          `json:"is_safe"`
	Success bool          `json:"success"`
}

// ExecutionResult is the terminal value of a run
type ExecutionResult struct {
	RunID           string             `json:"run_id"`
	ExecutionID     string             `json:"execution_id"`
	PlanFile        string             `json:"plan_file"`
	State           RunState           `json:"state"`
	SafeTotal       int                `json:"safe_total"`
	RiskyTotal      int                `json:"risky_total"`
	SafeExecuted    int                `json:"safe_executed"`
	RiskyExecuted   int                `json:"risky_executed"`
	Issues          []string           `json:"issues,omitempty"`
	BackupDirectory string             `json:"backup_directory,omitempty"`
	RollbackScript  string             `json:"rollback_script,omitempty"`
	LogPath         string             `json:"log_path,omitempty"`
	Outcomes        []OperationOutcome `json:"outcomes,omitempty"`
}

// Rejected reports whether the run stopped at the approval gate
func (r *ExecutionResult) Rejected() bool {
	return r.State == StateRejected
}
