package ruleexpr

import (
	"sort"
	"strings"
)

type tokenKind int8

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNumber is a numeric literal, optionally unit-suffixed.
	tokenNumber
	// tokenString is a quoted string literal.
	tokenString
	// tokenIdent is a variable, function, or field name.
	tokenIdent
	// tokenOp is an operator; the op field holds its opcode.
	tokenOp
	// tokenOpen and tokenClose are parentheses.
	tokenOpen
	tokenClose
	// tokenComma separates call arguments.
	tokenComma
	// tokenDot is the struct-reference operator.
	tokenDot
	// tokenAssign is the reserved assignment operator. The grammar rejects
	// it; expressions have no assignment semantics.
	tokenAssign
)

type token struct {
	kind tokenKind
	text string
	unit string
	op   Opcode
	pos  int
}

type lexerState int8

const (
	lsDefault lexerState = iota
	lsString
)

// twoByteOps are matched before the single-byte operator set.
var twoByteOps = [...]struct {
	lit string
	op  Opcode
}{
	{"<=", OpLessEqual},
	{">=", OpGreaterEqual},
	{"==", OpEqual},
	{"!=", OpNotEqual},
	{"&&", OpBoolAnd},
	{"||", OpBoolOr},
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func isIdentStart(b byte) bool {
	return b == '_' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

// getToken produces the next token from the input string.
func (c *Compiler) getToken() (token, error) {
	if c.lexerState == lsString {
		return c.lexString()
	}
	return c.lexDefault()
}

func (c *Compiler) lexDefault() (token, error) {
	t := &c.tokenizer
	for !t.Done() && isSpace(t.GetChar()) {
		t.NextChar(1)
	}
	pos := t.GetPos()
	c.sourcePos = pos
	if t.Done() {
		return token{kind: tokenEOF, pos: pos}, nil
	}
	ch := t.GetChar()
	switch {
	case isDigit(ch):
		return c.lexNumber(pos)
	case isIdentStart(ch):
		return token{kind: tokenIdent, text: t.GetChars(isIdentChar), pos: pos}, nil
	case ch == '"':
		t.NextChar(1)
		c.lexerState = lsString
		c.stringStart = pos
		return c.lexString()
	}
	for _, cand := range twoByteOps {
		if t.MatchAhead(cand.lit, func(byte) bool { return true }) {
			t.NextChar(2)
			return token{kind: tokenOp, text: cand.lit, op: cand.op, pos: pos}, nil
		}
	}
	t.NextChar(1)
	switch ch {
	case '*':
		return token{kind: tokenOp, text: "*", op: OpMul, pos: pos}, nil
	case '/':
		return token{kind: tokenOp, text: "/", op: OpDiv, pos: pos}, nil
	case '+':
		return token{kind: tokenOp, text: "+", op: OpAdd, pos: pos}, nil
	case '-':
		return token{kind: tokenOp, text: "-", op: OpSub, pos: pos}, nil
	case '<':
		return token{kind: tokenOp, text: "<", op: OpLess, pos: pos}, nil
	case '>':
		return token{kind: tokenOp, text: ">", op: OpGreater, pos: pos}, nil
	case '!':
		return token{kind: tokenOp, text: "!", op: OpBoolNot, pos: pos}, nil
	case '(':
		return token{kind: tokenOpen, text: "(", pos: pos}, nil
	case ')':
		return token{kind: tokenClose, text: ")", pos: pos}, nil
	case ',':
		return token{kind: tokenComma, text: ",", pos: pos}, nil
	case '.':
		return token{kind: tokenDot, text: ".", pos: pos}, nil
	case '=':
		return token{kind: tokenAssign, text: "=", pos: pos}, nil
	}
	return token{}, &LexError{Text: string(ch), Offset: pos}
}

// lexNumber scans an integer or decimal literal with an optional unit
// suffix. The configured decimal separator is normalized to '.' in the
// token text before numeric parsing.
func (c *Compiler) lexNumber(pos int) (token, error) {
	t := &c.tokenizer
	text := t.GetChars(isDigit)
	if t.GetChar() == c.decimalSep {
		t.NextChar(1)
		frac := t.GetChars(isDigit)
		if frac == "" {
			return token{}, &LexError{Text: text + string(c.decimalSep), Kind: "number", Offset: pos}
		}
		text += "." + frac
	}
	tok := token{kind: tokenNumber, text: text, pos: pos}
	if isIdentStart(t.GetChar()) {
		// Unit suffixes take the longest match; a suffix that matches no
		// supported unit lexes as a separate identifier and fails in the
		// grammar instead.
		for _, u := range c.units {
			if t.MatchAhead(u, func(b byte) bool { return !isIdentChar(b) }) {
				t.NextChar(len(u))
				tok.unit = u
				break
			}
		}
	}
	return tok, nil
}

// lexString scans the remainder of a quoted string. Backslash escapes pass
// the following byte through verbatim.
func (c *Compiler) lexString() (token, error) {
	t := &c.tokenizer
	var b strings.Builder
	for !t.Done() {
		ch := t.GetChar()
		t.NextChar(1)
		switch ch {
		case '\\':
			if t.Done() {
				break
			}
			b.WriteByte(t.GetChar())
			t.NextChar(1)
		case '"':
			c.lexerState = lsDefault
			return token{kind: tokenString, text: b.String(), pos: c.stringStart}, nil
		default:
			b.WriteByte(ch)
		}
	}
	return token{}, &LexError{Text: b.String(), Kind: "string", Offset: c.stringStart}
}

// supportedUnits copies the resolver's unit list sorted longest first, the
// order the lexer needs for longest-match-first suffix scanning.
func supportedUnits(r UnitResolver) []string {
	src := r.GetSupportedUnits()
	if len(src) == 0 {
		return nil
	}
	units := append([]string(nil), src...)
	sort.SliceStable(units, func(i, j int) bool {
		return len(units[i]) > len(units[j])
	})
	return units
}
