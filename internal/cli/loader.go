package cli

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/roach88/reqgraph/internal/compiler"
	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/ontology"
)

// LoadResult is a loaded ontology directory.
type LoadResult struct {
	Spec      *ir.OntologySpec
	Ontology  *ontology.Ontology
	FileCount int

	// Problems are referential-integrity errors found by compiler.Validate.
	// The ontology is still built when there are none.
	Problems []compiler.ValidationError

	// Cycles lists subclass cycles; they do not prevent loading.
	Cycles []compiler.CycleWarning
}

// LoadError represents an error that occurred while loading an ontology.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadOntology loads, compiles and validates the CUE ontology in dir.
// opts configure the reasoner built from it.
//
// A *LoadError is returned when the directory cannot be compiled. Validation
// problems are returned in the result with a nil Ontology; callers decide
// whether they are fatal.
func LoadOntology(dir string, opts ...ontology.Option) (*LoadResult, error) {
	loaded, err := compiler.LoadOntologyDir(dir)
	if err != nil {
		return nil, convertLoadError(err)
	}

	res := &LoadResult{
		Spec:      loaded.Spec,
		FileCount: loaded.FileCount,
		Problems:  compiler.Validate(loaded.Spec),
		Cycles:    compiler.AnalyzeClassCycles(loaded.Spec),
	}
	if len(res.Problems) > 0 {
		return res, nil
	}

	res.Ontology, err = ontology.New(loaded.Spec, opts...)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	return res, nil
}

// loadReasoner loads dir and fails on validation problems.
func loadReasoner(dir string, opts ...ontology.Option) (*LoadResult, error) {
	res, err := LoadOntology(dir, opts...)
	if err != nil {
		return nil, err
	}
	if len(res.Problems) > 0 {
		return nil, &LoadError{
			Code:    res.Problems[0].Code,
			Message: fmt.Sprintf("ontology has %d validation error(s), first: %s", len(res.Problems), res.Problems[0].Message),
		}
	}
	return res, nil
}

// convertLoadError maps loader failures to CLI error codes.
func convertLoadError(err error) *LoadError {
	var loadErr *compiler.LoadError
	if !errors.As(err, &loadErr) {
		return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}

	code := ErrCodeGeneric
	switch loadErr.Stage {
	case compiler.StageNotFound:
		code = ErrCodeNotFound
	case compiler.StageScan:
		code = ErrCodeScanError
	case compiler.StageNoFiles:
		code = ErrCodeNoFiles
	case compiler.StageLoad:
		code = ErrCodeLoadFailed
	case compiler.StageBuild:
		code = ErrCodeBuildFailed
	}

	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		if loadErr.Stage == compiler.StageCompile {
			code = MapFieldToErrorCode(compileErr.Field)
		}
		return &LoadError{Code: code, Message: compileErr.Message, Pos: compileErr.Pos}
	}
	if loadErr.Stage == compiler.StageNotFound {
		return &LoadError{Code: code, Message: fmt.Sprintf("ontology directory not found: %s", loadErr.Dir)}
	}
	return &LoadError{Code: code, Message: loadErr.Err.Error()}
}

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error

	// Ontology compile errors
	ErrCodeMissingClass = "E008" // Individual without a class
	ErrCodeInvalidKind  = "E009" // Property kind is neither object nor data
	ErrCodeInvalidData  = "E010" // Unsupported data value

	// Query errors
	ErrCodeQuerySyntax      = "E201" // Query does not parse
	ErrCodeQueryUnsupported = "E202" // Query uses constructs outside the supported subset
	ErrCodeEvaluation       = "E203" // Query evaluation failed
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "class":
		return ErrCodeMissingClass
	case "kind":
		return ErrCodeInvalidKind
	case "data":
		return ErrCodeInvalidData
	default:
		return ErrCodeGeneric
	}
}
