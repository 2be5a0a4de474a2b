package harness

import (
	"github.com/roach88/reqgraph/internal/diagnose"
)

// Result is the outcome of one scenario run.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Errors lists the failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Report is the pipeline report the expectations were checked against.
	Report *diagnose.Report `json:"-"`
}

// NewResult creates a passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
