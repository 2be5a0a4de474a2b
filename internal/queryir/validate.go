package queryir

import (
	"fmt"
)

// ValidationResult reports constructs outside the supported query subset.
type ValidationResult struct {
	// Supported is true when the query can be turned into a query graph
	// and evaluated.
	Supported bool

	// Warnings lists unsupported or suspicious constructs.
	Warnings []string
}

// Validate checks a query against the supported subset:
//  1. Predicates must be IRIs or prefixed names (no predicate variables)
//  2. Subjects must not be literals
//  3. The WHERE group must contain at least one triple
//  4. Every projected variable must occur in the WHERE group
//
// Validate is a pure function with no side effects.
func Validate(q *Query) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateQuery(q)

	return ValidationResult{
		Supported: len(v.warnings) == 0,
		Warnings:  v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q *Query) {
	if q == nil {
		v.addWarning("nil query")
		return
	}

	used := make(map[string]bool)
	n := 0
	Walk(q.Where, func(t Triple, _ bool) {
		n++
		v.validateTriple(n, t)
		for _, term := range [3]Term{t.Subject, t.Predicate, t.Object} {
			if term.IsVariable() {
				used[term.Value] = true
			}
		}
	})
	if n == 0 {
		v.addWarning("WHERE clause contains no triple patterns")
	}

	for _, name := range q.Projection {
		if !used[name] {
			v.addWarning("projected variable %s does not occur in the WHERE clause", name)
		}
	}
	v.validateGroup(q.Where)
}

func (v *validator) validateTriple(n int, t Triple) {
	switch t.Predicate.Kind {
	case TermVariable:
		v.addWarning("triple %d: predicate variable %s is not supported", n, t.Predicate.Value)
	case TermLiteral:
		v.addWarning("triple %d: literal predicate %s is not supported", n, t.Predicate)
	}
	if t.Subject.Kind == TermLiteral {
		v.addWarning("triple %d: literal subject %s is not supported", n, t.Subject)
	}
}

// validateGroup flags empty NOT EXISTS blocks, which always fail to match.
func (v *validator) validateGroup(g Group) {
	for _, p := range g.Patterns {
		switch pat := p.(type) {
		case Group:
			v.validateGroup(pat)
		case NotExists:
			if countTriples(pat.Group) == 0 {
				v.addWarning("empty NOT EXISTS block")
			}
			v.validateGroup(pat.Group)
		}
	}
}

func countTriples(g Group) int {
	n := 0
	Walk(g, func(Triple, bool) { n++ })
	return n
}
