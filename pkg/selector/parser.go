package selector

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse parses a selector list. It never consults a tree.
func Parse(src string) (List, error) {
	p := &parser{src: src}

	list, err := p.parseList(false)
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.eof() {
		if p.peek() == ')' {
			return nil, p.fail(ErrUnbalanced, "unmatched ')'")
		}
		return nil, p.fail(ErrUnexpected, fmt.Sprintf("unexpected %q", p.peek()))
	}

	return list, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) fail(err error, detail string) *SyntaxError {
	return &SyntaxError{Selector: p.src, Pos: p.pos, Err: err, Detail: detail}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *parser) next() rune {
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return r
}

func (p *parser) skipSpace() bool {
	start := p.pos
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.next()
	}
	return p.pos > start
}

func (p *parser) accept(r rune) bool {
	if !p.eof() && p.peek() == r {
		p.next()
		return true
	}
	return false
}

// acceptWord consumes word when it appears at the cursor as a whole identifier.
func (p *parser) acceptWord(word string) bool {
	if !strings.HasPrefix(p.src[p.pos:], word) {
		return false
	}
	rest := p.src[p.pos+len(word):]
	if r, _ := utf8.DecodeRuneInString(rest); rest != "" && isIdentRune(r) {
		return false
	}
	p.pos += len(word)
	return true
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || r == '-' || unicode.IsDigit(r)
}

func (p *parser) ident() (string, bool) {
	if p.eof() || !isIdentStart(p.peek()) {
		return "", false
	}
	start := p.pos
	for !p.eof() && isIdentRune(p.peek()) {
		p.next()
	}
	return p.src[start:p.pos], true
}

// path parses ident ('.' ident)*.
func (p *parser) path() ([]string, bool) {
	first, ok := p.ident()
	if !ok {
		return nil, false
	}
	segs := []string{first}
	for p.peek() == '.' {
		save := p.pos
		p.next()
		seg, ok := p.ident()
		if !ok {
			p.pos = save
			return nil, false
		}
		segs = append(segs, seg)
	}
	return segs, true
}

// parseList parses alternatives separated by commas. Inside :has, relative allows an
// alternative to open with a combinator.
func (p *parser) parseList(relative bool) (List, error) {
	var list List
	for {
		alt, err := p.parseAlternative(relative)
		if err != nil {
			return nil, err
		}
		list = append(list, alt)

		p.skipSpace()
		if !p.accept(',') {
			return list, nil
		}
	}
}

func (p *parser) parseAlternative(relative bool) (Alternative, error) {
	var alt Alternative

	p.skipSpace()
	if relative {
		if rel, ok := p.combinator(); ok {
			alt.Components = append(alt.Components, Combinator{Rel: rel})
			p.skipSpace()
		}
	}

	for {
		compound, err := p.parseCompound()
		if err != nil {
			return Alternative{}, err
		}
		alt.Components = append(alt.Components, compound...)

		spaced := p.skipSpace()
		if p.eof() || p.peek() == ',' || p.peek() == ')' {
			return alt, nil
		}

		rel, ok := p.combinator()
		switch {
		case ok:
			p.skipSpace()
		case spaced:
			rel = Descendant
		default:
			return Alternative{}, p.fail(ErrUnexpected, fmt.Sprintf("unexpected %q", p.peek()))
		}
		alt.Components = append(alt.Components, Combinator{Rel: rel})
	}
}

func (p *parser) combinator() (Relation, bool) {
	switch p.peek() {
	case '>':
		p.next()
		return Child, true
	case '+':
		p.next()
		return Adjacent, true
	case '~':
		p.next()
		return Sibling, true
	}
	return Descendant, false
}

func (p *parser) parseCompound() ([]Component, error) {
	var out []Component
	for !p.eof() {
		r := p.peek()
		switch {
		case r == '*':
			p.next()
			out = append(out, Wildcard{})
		case isIdentStart(r):
			name, _ := p.ident()
			out = append(out, Type{Name: name})
		case r == '.':
			p.next()
			segs, ok := p.path()
			if !ok {
				return nil, p.fail(ErrUnexpected, "expected field name after '.'")
			}
			out = append(out, Field{Path: segs})
		case r == '[':
			c, err := p.parseAttribute()
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		case r == ':':
			c, err := p.parsePseudo()
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		default:
			if len(out) == 0 {
				return nil, p.fail(ErrUnexpected, fmt.Sprintf("expected selector, found %q", r))
			}
			return out, nil
		}
	}

	if len(out) == 0 {
		return nil, p.fail(ErrUnexpected, "expected selector, found end of input")
	}
	return out, nil
}

func (p *parser) parsePseudo() (Component, error) {
	start := p.pos
	p.next()

	name, ok := p.ident()
	if !ok {
		return nil, p.fail(ErrUnexpected, "expected pseudo-class name after ':'")
	}
	name = strings.ToLower(name)

	switch name {
	case "first-child", "last-child":
		if p.peek() == '(' {
			return nil, p.fail(ErrUnexpected, ":"+name+" takes no argument")
		}
		if name == "first-child" {
			return FirstChild{}, nil
		}
		return LastChild{}, nil

	case "has", "is", "matches", "not":
		if !p.accept('(') {
			return nil, p.fail(ErrUnbalanced, "expected '(' after :"+name)
		}
		list, err := p.parseList(name == "has")
		if err != nil {
			return nil, err
		}
		if err := p.closeParen(); err != nil {
			return nil, err
		}
		switch name {
		case "has":
			return Has{List: list}, nil
		case "not":
			return Not{List: list}, nil
		default:
			return Is{List: list}, nil
		}

	case "nth-child", "nth-last-child":
		if !p.accept('(') {
			return nil, p.fail(ErrUnbalanced, "expected '(' after :"+name)
		}
		nth, err := p.parseNth()
		if err != nil {
			return nil, err
		}
		nth.FromEnd = name == "nth-last-child"
		return nth, nil

	default:
		p.pos = start
		return nil, p.fail(ErrUnknownPseudo, ":"+name)
	}
}

func (p *parser) closeParen() error {
	p.skipSpace()
	if p.eof() {
		return p.fail(ErrUnbalanced, "missing ')'")
	}
	if !p.accept(')') {
		return p.fail(ErrUnexpected, fmt.Sprintf("expected ')', found %q", p.peek()))
	}
	return nil
}

func (p *parser) digits() (int, bool) {
	start := p.pos
	for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
		p.next()
	}
	if p.pos == start {
		return 0, false
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, false
	}
	return n, true
}

// maxNthArg bounds both A and B of An+B so position arithmetic cannot overflow.
const maxNthArg = math.MaxInt32

// parseNth parses "odd", "even", "An+B", "-n+B", "B", each optionally followed by
// "of <list>", and the closing paren.
func (p *parser) parseNth() (NthChild, error) {
	var nth NthChild

	p.skipSpace()
	switch {
	case p.acceptWord("odd"):
		nth.Step, nth.Offset = 2, 1
	case p.acceptWord("even"):
		nth.Step, nth.Offset = 2, 0
	default:
		sign := 1
		if p.accept('-') {
			sign = -1
		} else {
			p.accept('+')
		}
		coeff, hasCoeff := p.digits()

		if p.peek() == 'n' || p.peek() == 'N' {
			p.next()
			if !hasCoeff {
				coeff = 1
			}
			nth.Step = sign * coeff

			p.skipSpace()
			switch {
			case p.accept('+'):
				p.skipSpace()
				off, ok := p.digits()
				if !ok {
					return nth, p.fail(ErrBadNth, "expected offset after '+'")
				}
				nth.Offset = off
			case p.accept('-'):
				p.skipSpace()
				off, ok := p.digits()
				if !ok {
					return nth, p.fail(ErrBadNth, "expected offset after '-'")
				}
				nth.Offset = -off
			}
		} else {
			if !hasCoeff {
				return nth, p.fail(ErrBadNth, "expected An+B, odd or even")
			}
			nth.Offset = sign * coeff
		}
	}

	if max(nth.Step, -nth.Step) > maxNthArg || max(nth.Offset, -nth.Offset) > maxNthArg {
		return nth, p.fail(ErrBadNth, fmt.Sprintf("argument out of range (limit %d)", maxNthArg))
	}

	p.skipSpace()
	if p.acceptWord("of") {
		if !p.skipSpace() {
			return nth, p.fail(ErrBadNth, "expected space after 'of'")
		}
		of, err := p.parseList(false)
		if err != nil {
			return nth, err
		}
		nth.Of = of
		p.skipSpace()
	}

	if p.eof() {
		return nth, p.fail(ErrUnbalanced, "missing ')'")
	}
	if !p.accept(')') {
		return nth, p.fail(ErrBadNth, fmt.Sprintf("unexpected %q", p.peek()))
	}
	return nth, nil
}

func (p *parser) parseAttribute() (Component, error) {
	p.next() // '['
	p.skipSpace()

	path, ok := p.path()
	if !ok {
		return nil, p.fail(ErrBadAttribute, "expected attribute path")
	}
	attr := Attribute{Path: path}

	p.skipSpace()
	if p.eof() {
		return nil, p.fail(ErrUnbalanced, "missing ']'")
	}
	if p.accept(']') {
		return attr, nil
	}

	op, ok := p.operator()
	if !ok {
		return nil, p.fail(ErrBadAttribute, fmt.Sprintf("expected operator, found %q", p.peek()))
	}
	attr.Op = op

	p.skipSpace()
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	attr.Value = lit

	if lit.Kind == LitRegexp || lit.Kind == LitType || lit.Kind == LitBool || lit.Kind == LitNull {
		if op != OpEq && op != OpNe {
			return nil, p.fail(ErrBadAttribute, "operator "+op.String()+" needs a string or number")
		}
	}

	p.skipSpace()
	if p.eof() {
		return nil, p.fail(ErrUnbalanced, "missing ']'")
	}
	if !p.accept(']') {
		return nil, p.fail(ErrBadAttribute, fmt.Sprintf("expected ']', found %q", p.peek()))
	}
	return attr, nil
}

func (p *parser) operator() (Operator, bool) {
	rest := p.src[p.pos:]
	for _, cand := range []struct {
		text string
		op   Operator
	}{
		{"!=", OpNe}, {"<=", OpLe}, {">=", OpGe}, {"=", OpEq}, {"<", OpLt}, {">", OpGt},
	} {
		if strings.HasPrefix(rest, cand.text) {
			p.pos += len(cand.text)
			return cand.op, true
		}
	}
	return 0, false
}

func (p *parser) parseLiteral() (Literal, error) {
	r := p.peek()
	switch {
	case r == '"' || r == '\'':
		s, err := p.quoted(r)
		if err != nil {
			return Literal{}, err
		}
		return Literal{Kind: LitString, Str: s}, nil

	case r == '/':
		return p.regexpLiteral()

	case r == '-' || r == '+' || r == '.' || (r >= '0' && r <= '9'):
		start := p.pos
		p.next()
		for !p.eof() && strings.ContainsRune("0123456789.eE", p.peek()) {
			p.next()
		}
		n, err := strconv.ParseFloat(p.src[start:p.pos], 64)
		if err != nil {
			p.pos = start
			return Literal{}, p.fail(ErrBadAttribute, "malformed number")
		}
		return Literal{Kind: LitNumber, Num: n}, nil

	case isIdentStart(r):
		start := p.pos
		if p.acceptWord("type") && p.peek() == '(' {
			p.next()
			p.skipSpace()
			name, ok := p.ident()
			if !ok {
				return Literal{}, p.fail(ErrBadAttribute, "expected name in type()")
			}
			p.skipSpace()
			if !p.accept(')') {
				return Literal{}, p.fail(ErrUnbalanced, "missing ')' in type()")
			}
			return Literal{Kind: LitType, Str: name}, nil
		}

		p.pos = start
		for !p.eof() && (isIdentRune(p.peek()) || p.peek() == '.') {
			p.next()
		}
		word := p.src[start:p.pos]
		switch word {
		case "true", "false":
			return Literal{Kind: LitBool, Bool: word == "true"}, nil
		case "null":
			return Literal{Kind: LitNull}, nil
		}
		return Literal{Kind: LitString, Str: word}, nil
	}

	if p.eof() {
		return Literal{}, p.fail(ErrUnbalanced, "missing attribute value and ']'")
	}
	return Literal{}, p.fail(ErrBadAttribute, fmt.Sprintf("unexpected %q in attribute value", r))
}

func (p *parser) quoted(quote rune) (string, error) {
	p.next()
	var sb strings.Builder
	for !p.eof() {
		r := p.next()
		switch r {
		case quote:
			return sb.String(), nil
		case '\\':
			if p.eof() {
				return "", p.fail(ErrBadAttribute, "unterminated string")
			}
			switch esc := p.next(); esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteRune(esc)
			}
		default:
			sb.WriteRune(r)
		}
	}
	return "", p.fail(ErrBadAttribute, "unterminated string")
}

func (p *parser) regexpLiteral() (Literal, error) {
	start := p.pos
	p.next() // '/'

	var body strings.Builder
	closed := false
	for !p.eof() {
		r := p.next()
		if r == '\\' && !p.eof() {
			body.WriteRune(r)
			body.WriteRune(p.next())
			continue
		}
		if r == '/' {
			closed = true
			break
		}
		body.WriteRune(r)
	}
	if !closed {
		p.pos = start
		return Literal{}, p.fail(ErrBadAttribute, "unterminated regular expression")
	}

	flagStart := p.pos
	var goFlags strings.Builder
	for !p.eof() && strings.ContainsRune("imsu", p.peek()) {
		if f := p.next(); f != 'u' {
			goFlags.WriteRune(f)
		}
	}
	flags := p.src[flagStart:p.pos]

	expr := body.String()
	if goFlags.Len() > 0 {
		expr = "(?" + goFlags.String() + ")" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		p.pos = start
		return Literal{}, p.fail(ErrBadAttribute, err.Error())
	}

	return Literal{Kind: LitRegexp, Str: body.String(), Regexp: re, Flags: flags}, nil
}
