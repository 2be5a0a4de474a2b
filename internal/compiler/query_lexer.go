package compiler

import (
	"strings"
	"unicode"
)

// tokenKind classifies query tokens.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIRI
	tokPName
	tokVar
	tokString
	tokNumber
	tokIdent
	tokLangTag
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of query"
	case tokIRI:
		return "IRI"
	case tokPName:
		return "prefixed name"
	case tokVar:
		return "variable"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokIdent:
		return "keyword"
	case tokLangTag:
		return "language tag"
	default:
		return "punctuation"
	}
}

// qtoken is a lexed query token. For IRIs text excludes the brackets, for
// strings it is the unescaped content, for variables it includes "?".
type qtoken struct {
	kind tokenKind
	text string
	line int
	col  int
}

// queryLexer splits query text into tokens, tracking 1-based positions.
type queryLexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

func lexQuery(src string) ([]qtoken, error) {
	lx := &queryLexer{src: []rune(src), line: 1, col: 1}
	var toks []qtoken
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

func (lx *queryLexer) peekRune(off int) rune {
	if lx.pos+off >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos+off]
}

func (lx *queryLexer) advance() rune {
	r := lx.src[lx.pos]
	lx.pos++
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r
}

func (lx *queryLexer) errorf(line, col int, format string, args ...any) error {
	return newParseError(line, col, format, args...)
}

func (lx *queryLexer) next() (qtoken, error) {
	lx.skipSpaceAndComments()
	line, col := lx.line, lx.col
	if lx.pos >= len(lx.src) {
		return qtoken{kind: tokEOF, line: line, col: col}, nil
	}

	r := lx.peekRune(0)
	switch {
	case r == '<':
		lx.advance()
		var b strings.Builder
		for {
			if lx.pos >= len(lx.src) || lx.peekRune(0) == '\n' {
				return qtoken{}, lx.errorf(line, col, "unterminated IRI")
			}
			c := lx.advance()
			if c == '>' {
				break
			}
			if c == ' ' || c == '\t' {
				return qtoken{}, lx.errorf(line, col, "whitespace in IRI")
			}
			b.WriteRune(c)
		}
		return qtoken{kind: tokIRI, text: b.String(), line: line, col: col}, nil

	case r == '?' || r == '$':
		lx.advance()
		name := lx.readWhile(isVarChar)
		if name == "" {
			return qtoken{}, lx.errorf(line, col, "empty variable name")
		}
		return qtoken{kind: tokVar, text: "?" + name, line: line, col: col}, nil

	case r == '"' || r == '\'':
		s, err := lx.readString(line, col)
		if err != nil {
			return qtoken{}, err
		}
		return qtoken{kind: tokString, text: s, line: line, col: col}, nil

	case r == '@':
		lx.advance()
		tag := lx.readWhile(func(c rune) bool { return isLetter(c) || c == '-' || unicode.IsDigit(c) })
		if tag == "" {
			return qtoken{}, lx.errorf(line, col, "empty language tag")
		}
		return qtoken{kind: tokLangTag, text: tag, line: line, col: col}, nil

	case unicode.IsDigit(r) || ((r == '+' || r == '-') && unicode.IsDigit(lx.peekRune(1))):
		var b strings.Builder
		b.WriteRune(lx.advance())
		b.WriteString(lx.readWhile(unicode.IsDigit))
		if lx.peekRune(0) == '.' && unicode.IsDigit(lx.peekRune(1)) {
			b.WriteRune(lx.advance())
			b.WriteString(lx.readWhile(unicode.IsDigit))
		}
		if e := lx.peekRune(0); e == 'e' || e == 'E' {
			b.WriteRune(lx.advance())
			if s := lx.peekRune(0); s == '+' || s == '-' {
				b.WriteRune(lx.advance())
			}
			b.WriteString(lx.readWhile(unicode.IsDigit))
		}
		return qtoken{kind: tokNumber, text: b.String(), line: line, col: col}, nil

	case r == '^' && lx.peekRune(1) == '^':
		lx.advance()
		lx.advance()
		return qtoken{kind: tokPunct, text: "^^", line: line, col: col}, nil

	case strings.ContainsRune("{}.;,*()[]", r):
		lx.advance()
		return qtoken{kind: tokPunct, text: string(r), line: line, col: col}, nil

	case isLetter(r) || r == '_' || r == ':':
		word := lx.readName()
		if strings.Contains(word, ":") {
			return qtoken{kind: tokPName, text: word, line: line, col: col}, nil
		}
		return qtoken{kind: tokIdent, text: word, line: line, col: col}, nil
	}

	return qtoken{}, lx.errorf(line, col, "unexpected character %q", r)
}

func (lx *queryLexer) skipSpaceAndComments() {
	for lx.pos < len(lx.src) {
		r := lx.peekRune(0)
		switch {
		case unicode.IsSpace(r):
			lx.advance()
		case r == '#':
			for lx.pos < len(lx.src) && lx.peekRune(0) != '\n' {
				lx.advance()
			}
		default:
			return
		}
	}
}

func (lx *queryLexer) readWhile(ok func(rune) bool) string {
	var b strings.Builder
	for lx.pos < len(lx.src) && ok(lx.peekRune(0)) {
		b.WriteRune(lx.advance())
	}
	return b.String()
}

// readName reads a keyword or prefixed name. Dots are allowed inside local
// names but a trailing dot terminates the triple instead.
func (lx *queryLexer) readName() string {
	var b strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.peekRune(0)
		if c == '.' {
			n := lx.peekRune(1)
			if !(isLetter(n) || unicode.IsDigit(n) || n == '_' || n == '-') {
				break
			}
		} else if !(isLetter(c) || unicode.IsDigit(c) || c == '_' || c == '-' || c == ':') {
			break
		}
		b.WriteRune(lx.advance())
	}
	return b.String()
}

func (lx *queryLexer) readString(line, col int) (string, error) {
	quote := lx.advance()
	var b strings.Builder
	for {
		if lx.pos >= len(lx.src) || lx.peekRune(0) == '\n' {
			return "", lx.errorf(line, col, "unterminated string literal")
		}
		c := lx.advance()
		if c == quote {
			return b.String(), nil
		}
		if c != '\\' {
			b.WriteRune(c)
			continue
		}
		if lx.pos >= len(lx.src) {
			return "", lx.errorf(line, col, "unterminated string literal")
		}
		esc := lx.advance()
		switch esc {
		case 'n':
			b.WriteRune('\n')
		case 't':
			b.WriteRune('\t')
		case 'r':
			b.WriteRune('\r')
		case '"', '\'', '\\':
			b.WriteRune(esc)
		default:
			return "", lx.errorf(lx.line, lx.col-2, "unknown escape \\%c", esc)
		}
	}
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isVarChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
