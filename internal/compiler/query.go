package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/queryir"
)

// XSD datatypes attached to unquoted literals.
const (
	xsdInteger = "xsd:integer"
	xsdDecimal = "xsd:decimal"
	xsdDouble  = "xsd:double"
	xsdBoolean = "xsd:boolean"
)

// ParseError reports a query syntax error at a 1-based line and column.
type ParseError struct {
	Line    int
	Col     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Col, e.Message)
}

func newParseError(line, col int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Col: col, Message: fmt.Sprintf(format, args...)}
}

// ParseQuery parses a requirement query into its syntax tree.
//
// Supported grammar (keywords are case-insensitive):
//
//	query    := prologue SELECT [DISTINCT|REDUCED] ('*' | var+) [WHERE] group
//	prologue := (PREFIX pname: <iri> | BASE <iri>)*
//	group    := '{' (triples | group | FILTER [(] NOT EXISTS group [)] | '.')* '}'
//	triples  := term verb objects (';' verb objects)*
//	objects  := term (',' term)*
//	verb     := 'a' | <iri> | pname | var
//
// Anything else (OPTIONAL, UNION, MINUS, other filters, solution
// modifiers, blank nodes) is rejected with a ParseError.
func ParseQuery(text string) (*queryir.Query, error) {
	toks, err := lexQuery(text)
	if err != nil {
		return nil, err
	}
	p := &queryParser{
		toks: toks,
		q:    &queryir.Query{Prefixes: map[string]string{}},
	}
	if err := p.parseQuery(); err != nil {
		return nil, err
	}
	return p.q, nil
}

type queryParser struct {
	toks []qtoken
	pos  int
	q    *queryir.Query
}

func (p *queryParser) peek() qtoken {
	return p.toks[p.pos]
}

func (p *queryParser) next() qtoken {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *queryParser) errorf(tok qtoken, format string, args ...any) *ParseError {
	return newParseError(tok.line, tok.col, format, args...)
}

func isKeyword(tok qtoken, kw string) bool {
	return tok.kind == tokIdent && strings.EqualFold(tok.text, kw)
}

func isPunct(tok qtoken, s string) bool {
	return tok.kind == tokPunct && tok.text == s
}

func describe(tok qtoken) string {
	if tok.kind == tokEOF {
		return tok.kind.String()
	}
	return fmt.Sprintf("%s %q", tok.kind, tok.text)
}

func (p *queryParser) expectKeyword(kw string) error {
	tok := p.next()
	if !isKeyword(tok, kw) {
		return p.errorf(tok, "expected %s, found %s", kw, describe(tok))
	}
	return nil
}

func (p *queryParser) expectPunct(s string) error {
	tok := p.next()
	if !isPunct(tok, s) {
		return p.errorf(tok, "expected %q, found %s", s, describe(tok))
	}
	return nil
}

func (p *queryParser) parseQuery() error {
	if err := p.parsePrologue(); err != nil {
		return err
	}

	tok := p.next()
	switch {
	case isKeyword(tok, "SELECT"):
	case isKeyword(tok, "ASK"), isKeyword(tok, "CONSTRUCT"), isKeyword(tok, "DESCRIBE"):
		return p.errorf(tok, "unsupported query form %s: only SELECT is supported", strings.ToUpper(tok.text))
	default:
		return p.errorf(tok, "expected SELECT, found %s", describe(tok))
	}

	if t := p.peek(); isKeyword(t, "DISTINCT") || isKeyword(t, "REDUCED") {
		p.next()
		p.q.Distinct = isKeyword(t, "DISTINCT")
	}

	if err := p.parseProjection(); err != nil {
		return err
	}

	if isKeyword(p.peek(), "WHERE") {
		p.next()
	}

	where, err := p.parseGroup()
	if err != nil {
		return err
	}
	p.q.Where = where

	if tok := p.peek(); tok.kind != tokEOF {
		return p.errorf(tok, "unexpected %s after WHERE clause: solution modifiers are not supported", describe(tok))
	}
	return nil
}

func (p *queryParser) parsePrologue() error {
	for {
		tok := p.peek()
		switch {
		case isKeyword(tok, "PREFIX"):
			p.next()
			label := p.next()
			if label.kind != tokPName || !strings.HasSuffix(label.text, ":") || strings.Count(label.text, ":") != 1 {
				return p.errorf(label, "expected prefix label ending in ':', found %s", describe(label))
			}
			iri := p.next()
			if iri.kind != tokIRI {
				return p.errorf(iri, "expected IRI for prefix %s, found %s", label.text, describe(iri))
			}
			p.q.Prefixes[strings.TrimSuffix(label.text, ":")] = p.resolve(iri.text)
		case isKeyword(tok, "BASE"):
			p.next()
			iri := p.next()
			if iri.kind != tokIRI {
				return p.errorf(iri, "expected IRI after BASE, found %s", describe(iri))
			}
			p.q.Base = iri.text
		default:
			return nil
		}
	}
}

// resolve joins a relative IRI onto BASE. IRIs with a scheme are absolute.
func (p *queryParser) resolve(iri string) string {
	if p.q.Base == "" || strings.Contains(iri, ":") {
		return iri
	}
	return p.q.Base + iri
}

func (p *queryParser) parseProjection() error {
	if isPunct(p.peek(), "*") {
		p.next()
		p.q.Star = true
		return nil
	}
	for p.peek().kind == tokVar {
		p.q.Projection = append(p.q.Projection, p.next().text)
	}
	if len(p.q.Projection) == 0 {
		tok := p.peek()
		if isPunct(tok, "(") {
			return p.errorf(tok, "projection expressions are not supported")
		}
		return p.errorf(tok, "expected '*' or variables after SELECT, found %s", describe(tok))
	}
	return nil
}

var unsupportedPatterns = []string{"OPTIONAL", "UNION", "MINUS", "BIND", "VALUES", "GRAPH", "SERVICE"}

func (p *queryParser) parseGroup() (queryir.Group, error) {
	var g queryir.Group
	if err := p.expectPunct("{"); err != nil {
		return g, err
	}

	for {
		tok := p.peek()
		switch {
		case tok.kind == tokEOF:
			return g, p.errorf(tok, "unterminated group: expected '}'")
		case isPunct(tok, "}"):
			p.next()
			return g, nil
		case isPunct(tok, "."):
			p.next()
		case isPunct(tok, "{"):
			sub, err := p.parseGroup()
			if err != nil {
				return g, err
			}
			g.Patterns = append(g.Patterns, sub)
		case isKeyword(tok, "FILTER"):
			neg, err := p.parseFilter()
			if err != nil {
				return g, err
			}
			g.Patterns = append(g.Patterns, neg)
		default:
			for _, kw := range unsupportedPatterns {
				if isKeyword(tok, kw) {
					return g, p.errorf(tok, "%s is not supported", kw)
				}
			}
			triples, err := p.parseTriples()
			if err != nil {
				return g, err
			}
			for _, t := range triples {
				g.Patterns = append(g.Patterns, t)
			}
			after := p.peek()
			if !isPunct(after, ".") && !isPunct(after, "}") && !isPunct(after, "{") && !isKeyword(after, "FILTER") {
				return g, p.errorf(after, "expected '.' or '}' after triple pattern, found %s", describe(after))
			}
		}
	}
}

func (p *queryParser) parseFilter() (queryir.NotExists, error) {
	p.next() // FILTER
	paren := false
	if isPunct(p.peek(), "(") {
		p.next()
		paren = true
	}
	if tok := p.peek(); !isKeyword(tok, "NOT") {
		return queryir.NotExists{}, p.errorf(tok, "only FILTER NOT EXISTS is supported")
	}
	p.next()
	if err := p.expectKeyword("EXISTS"); err != nil {
		return queryir.NotExists{}, err
	}
	g, err := p.parseGroup()
	if err != nil {
		return queryir.NotExists{}, err
	}
	if paren {
		if err := p.expectPunct(")"); err != nil {
			return queryir.NotExists{}, err
		}
	}
	return queryir.NotExists{Group: g}, nil
}

// parseTriples reads one subject with its property list.
func (p *queryParser) parseTriples() ([]queryir.Triple, error) {
	subject, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	var out []queryir.Triple
	for {
		verb, err := p.parseVerb()
		if err != nil {
			return nil, err
		}
		for {
			object, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			out = append(out, queryir.Triple{Subject: subject, Predicate: verb, Object: object})
			if !isPunct(p.peek(), ",") {
				break
			}
			p.next()
		}

		if !isPunct(p.peek(), ";") {
			return out, nil
		}
		for isPunct(p.peek(), ";") {
			p.next()
		}
		if t := p.peek(); isPunct(t, ".") || isPunct(t, "}") {
			return out, nil
		}
	}
}

func (p *queryParser) parseVerb() (queryir.Term, error) {
	tok := p.peek()
	if tok.kind == tokIdent && tok.text == "a" {
		p.next()
		return queryir.IRI(ir.RDFTypeIRI), nil
	}
	return p.parseTerm()
}

func (p *queryParser) parseTerm() (queryir.Term, error) {
	tok := p.next()
	switch tok.kind {
	case tokVar:
		return queryir.Var(tok.text), nil
	case tokIRI:
		return queryir.IRI(p.resolve(tok.text)), nil
	case tokPName:
		if strings.HasPrefix(tok.text, "_:") {
			return queryir.Term{}, p.errorf(tok, "blank nodes are not supported")
		}
		return queryir.Prefixed(tok.text), nil
	case tokNumber:
		dt := xsdInteger
		switch {
		case strings.ContainsAny(tok.text, "eE"):
			dt = xsdDouble
		case strings.Contains(tok.text, "."):
			dt = xsdDecimal
		}
		return queryir.Term{Kind: queryir.TermLiteral, Value: tok.text, Datatype: dt}, nil
	case tokString:
		lit := queryir.Literal(tok.text)
		switch next := p.peek(); {
		case next.kind == tokLangTag:
			p.next()
			lit.Lang = next.text
		case isPunct(next, "^^"):
			p.next()
			dt := p.next()
			switch dt.kind {
			case tokIRI:
				lit.Datatype = p.resolve(dt.text)
			case tokPName:
				lit.Datatype = dt.text
			default:
				return queryir.Term{}, p.errorf(dt, "expected datatype after '^^', found %s", describe(dt))
			}
		}
		return lit, nil
	case tokIdent:
		if strings.EqualFold(tok.text, "true") || strings.EqualFold(tok.text, "false") {
			return queryir.Term{Kind: queryir.TermLiteral, Value: strings.ToLower(tok.text), Datatype: xsdBoolean}, nil
		}
	case tokPunct:
		if tok.text == "[" {
			return queryir.Term{}, p.errorf(tok, "blank nodes are not supported")
		}
	}
	return queryir.Term{}, p.errorf(tok, "expected a term, found %s", describe(tok))
}
