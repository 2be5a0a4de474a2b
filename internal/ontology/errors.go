package ontology

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/agext/levenshtein"
)

// LookupKind names what a failed lookup was looking for.
type LookupKind string

const (
	KindClass      LookupKind = "class"
	KindProperty   LookupKind = "property"
	KindIndividual LookupKind = "individual"
	KindVariable   LookupKind = "variable"
	KindPartition  LookupKind = "partition"
)

// LookupError reports a name the ontology (or a result set) does not know.
//
// Suggestions holds the closest known names by edit distance, nearest
// first, when any are close enough to be useful.
type LookupError struct {
	Kind        LookupKind
	Name        string
	Suggestions []string
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	msg := fmt.Sprintf("LOOKUP_FAILURE: unknown %s %q", e.Kind, e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// IsLookupError returns true if err is or wraps a LookupError.
// Uses errors.As to handle wrapped errors.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}

// NewLookupError builds a LookupError with suggestions drawn from known.
func NewLookupError(kind LookupKind, name string, known []string) *LookupError {
	return &LookupError{Kind: kind, Name: name, Suggestions: Suggest(name, known)}
}

// maxSuggestions caps how many names a LookupError proposes.
const maxSuggestions = 3

// Suggest returns up to three names from known within edit distance
// max(2, len(name)/3) of name, nearest first, ties broken by name.
func Suggest(name string, known []string) []string {
	type candidate struct {
		name string
		dist int
	}

	limit := max(2, len([]rune(name))/3)
	var candidates []candidate
	for _, k := range known {
		if k == name {
			continue
		}
		if d := levenshtein.Distance(name, k, nil); d <= limit {
			candidates = append(candidates, candidate{k, d})
		}
	}
	slices.SortFunc(candidates, func(a, b candidate) int {
		if a.dist != b.dist {
			return a.dist - b.dist
		}
		return strings.Compare(a.name, b.name)
	})

	var out []string
	for i := 0; i < len(candidates) && i < maxSuggestions; i++ {
		out = append(out, candidates[i].name)
	}
	return out
}
