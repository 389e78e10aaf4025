package harness

import (
	"github.com/lazyanubis/ic-canister-kit/internal/compiler"
)

// Snapshot is the deterministic, comparable record of one scenario run.
type Snapshot struct {
	ScenarioName   string             `json:"scenario_name"`
	Hash           string             `json:"hash,omitempty"`
	Canonical      string             `json:"canonical,omitempty"`
	Methods        map[string]string  `json:"methods,omitempty"`
	Aliases        []string           `json:"aliases,omitempty"`
	RecursionCount int                `json:"recursion_count"`
	Warnings       []compiler.Warning `json:"warnings,omitempty"`
	ErrorKind      string             `json:"error_kind,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and built-in checks hold.
	Pass bool `json:"pass"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Snapshot is used for golden comparison.
	Snapshot Snapshot `json:"snapshot"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Pass:     true,
		Errors:   []string{},
		Snapshot: Snapshot{ScenarioName: name},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
