package planner

import "fmt"

// InvalidPlanError carries a JSON-pointer-style path to the offending field
// alongside the human-readable reason, satisfying the "precise error path"
// requirement on every validation stage.
type InvalidPlanError struct {
	Path   string
	Reason string
}

func (e *InvalidPlanError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func invalid(path, format string, args ...any) *InvalidPlanError {
	return &InvalidPlanError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
