package engine

import "fmt"

// EvalError represents an error detected while evaluating a query.
//
// Evaluation errors include:
//   - Unsupported query: the query falls outside the evaluable subset
//   - Compile failure: the query could not be turned into SQL
//   - Execute failure: the database rejected or aborted the statement
//
// EvalError includes structured fields for diagnostics.
type EvalError struct {
	// Code identifies the error category.
	Code EvalErrorCode

	// Message is a human-readable description.
	Message string

	// Seq is the evaluation's logical clock value.
	Seq int64

	// Err is the underlying cause, if any.
	Err error
}

// EvalErrorCode categorizes evaluation errors.
type EvalErrorCode string

const (
	// ErrCodeUnsupported indicates a construct the evaluator cannot handle.
	ErrCodeUnsupported EvalErrorCode = "UNSUPPORTED_QUERY"

	// ErrCodeCompile indicates SQL compilation failed.
	ErrCodeCompile EvalErrorCode = "COMPILE_FAILED"

	// ErrCodeExecute indicates the SQL statement failed.
	ErrCodeExecute EvalErrorCode = "EXECUTE_FAILED"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Seq != 0 {
		msg += fmt.Sprintf(" (seq=%d)", e.Seq)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *EvalError) Unwrap() error {
	return e.Err
}
