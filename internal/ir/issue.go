package ir

import "fmt"

// IssueCode identifies a recoverable diagnostic condition.
type IssueCode string

// Issue codes. None of these abort a pipeline run; they are reported as data.
const (
	// IssueLookupFailure: a class, property or individual referenced by the
	// query is unknown to the ontology.
	IssueLookupFailure IssueCode = "LOOKUP_FAILURE"

	// IssueEmptyResult: the query produced no rows; the graph was left as is.
	IssueEmptyResult IssueCode = "EMPTY_RESULT"

	// IssueUnroutable: solve found no anchor or no path for a missing edge.
	IssueUnroutable IssueCode = "UNROUTABLE_REQUIREMENT"

	// IssueStructural: an edge classified as warn.
	IssueStructural IssueCode = "STRUCTURAL_INCONSISTENCY"
)

// Issue is a recoverable condition attached to a report. Subject,
// Predicate and Object locate the offending edge when there is one.
type Issue struct {
	Code      IssueCode `json:"code"`
	Message   string    `json:"message"`
	Subject   string    `json:"subject,omitempty"`
	Predicate string    `json:"predicate,omitempty"`
	Object    string    `json:"object,omitempty"`
}

// String renders the issue for text output.
func (i Issue) String() string {
	if i.Predicate == "" {
		return fmt.Sprintf("[%s] %s", i.Code, i.Message)
	}
	return fmt.Sprintf("[%s] %s -%s-> %s: %s", i.Code, i.Subject, i.Predicate, i.Object, i.Message)
}
