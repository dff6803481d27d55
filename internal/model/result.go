package model

// RunStatus is the terminal state of one orchestrator run. Exactly one
// value is ever written to result.status.txt.
type RunStatus string

const (
	StatusSuccess          RunStatus = "SUCCESS"
	StatusRollback         RunStatus = "ROLLBACK"
	StatusFailedValidation RunStatus = "FAILED_VALIDATION"
	StatusInvalidPlan      RunStatus = "INVALID_PLAN"
)

// Result is what process_document returns to its caller.
type Result struct {
	Status        RunStatus `json:"status"`
	OutputPath    string    `json:"output_path,omitempty"`
	AuditDir      string    `json:"audit_directory"`
	Errors        []string  `json:"errors,omitempty"`
	Warnings      []string  `json:"warnings,omitempty"`
}

// ValidationResult is the Validator's aggregated verdict across all
// assertion families. A failure in any family sets IsValid false and
// triggers rollback; Warnings alone never do.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Failures []string `json:"failures,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// OperationResult is the per-operation outcome the Executor reports for
// each entry in a plan, in plan order. Outcome is redundant with the
// presence of Warning by design: callers that only care about applied vs
// not-applied don't need to string-match a warning message.
type OperationResult struct {
	Index     int    `json:"index"`
	Operation OpKind `json:"operation"`
	Outcome   string `json:"outcome"` // "applied" or "noop"
	Warning   string `json:"warning,omitempty"`
}
