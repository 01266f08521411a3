package ruleexpr

// Expr   = Or
// Or     = And { '||' And }
// And    = Cmp { '&&' Cmp }
// Cmp    = Rel { ('==' | '!=') Rel }
// Rel    = Sum { ('<' | '>' | '<=' | '>=') Sum }
// Sum    = Prod { ('+' | '-') Prod }
// Prod   = Unary { ('*' | '/') Unary }
// Unary  = '!' Unary | Primary
// Primary = number | string | Ref | Ref '(' Args ')' | '(' Expr ')'
// Ref    = ident | ident '.' ident
// Args   = [ Expr { ',' Expr } ]
//
// The grammar is implemented by precedence climbing over the token stream
// rather than by the table above literally; the table documents shape and
// binding order.

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the opcode emitted when this operator is selected.
	op Opcode
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets the binary operator for an opcode. If the opcode is not a
// binary operator, the result has an op of OpNone.
func binop(op Opcode) operator {
	switch op {
	case OpMul, OpDiv:
		return operator{6, false, op}
	case OpAdd, OpSub:
		return operator{5, false, op}
	case OpLess, OpGreater, OpLessEqual, OpGreaterEqual:
		return operator{4, false, op}
	case OpEqual, OpNotEqual:
		return operator{3, false, op}
	case OpBoolAnd:
		return operator{2, false, op}
	case OpBoolOr:
		return operator{1, false, op}
	default:
		return operator{}
	}
}

// exprprec is the precedence required to parse an entire subexpression.
var exprprec = operator{-128, true, OpNone}

// parser owns the state of one parse: the compiler it pulls tokens from
// and a single-token pushback slot.
type parser struct {
	c *Compiler
	p token
}

// next returns the pushed-back token if there is one, or the next token
// from the lexer.
func (p *parser) next() (token, error) {
	if p.p.kind != tokenNone {
		tok := p.p
		p.p = token{}
		return tok, nil
	}
	return p.c.getToken()
}

// push unreads a token so that it is the next token returned from next.
// Panics if there is already a pushed token.
func (p *parser) push(tok token) {
	if p.p.kind != tokenNone {
		panic("ruleexpr: double push")
	}
	p.p = tok
}

// parse parses a complete expression and requires the input to be fully
// consumed.
func (p *parser) parse() (*node, error) {
	n, err := p.parseExpr(exprprec)
	if err != nil {
		return nil, err
	}
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenEOF {
		return nil, &SyntaxError{Offset: tok.pos, Token: tok.text}
	}
	return n, nil
}

// parseExpr parses a subexpression whose binary operators all bind more
// tightly than until. It pushes back the token that ends the
// subexpression.
func (p *parser) parseExpr(until operator) (*node, error) {
	n, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenOp:
			prec := binop(tok.op)
			if prec.op == OpNone {
				return nil, &SyntaxError{Offset: tok.pos, Token: tok.text}
			}
			if !prec.moreBinding(until) {
				p.push(tok)
				return n, nil
			}
			rhs, err := p.parseExpr(prec)
			if err != nil {
				return nil, err
			}
			n = &node{kind: nodeOp, op: prec.op, pos: tok.pos, left: n, right: rhs}
		case tokenEOF, tokenClose, tokenComma:
			p.push(tok)
			return n, nil
		default:
			return nil, &SyntaxError{Offset: tok.pos, Token: tok.text}
		}
	}
}

// parseUnary parses the first component of a term: a literal, a variable
// or struct reference, a call, a parenthesized subexpression, or a unary
// operator applied to one of those.
func (p *parser) parseUnary() (*node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNumber:
		return &node{kind: nodeNumber, text: tok.text, unit: tok.unit, pos: tok.pos}, nil
	case tokenString:
		return &node{kind: nodeString, text: tok.text, pos: tok.pos}, nil
	case tokenIdent:
		return p.parseRef(tok)
	case tokenOp:
		if tok.op != OpBoolNot {
			return nil, &SyntaxError{Offset: tok.pos, Token: tok.text, Expect: "expression"}
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeOp, op: OpBoolNot, pos: tok.pos, left: operand}, nil
	case tokenOpen:
		inner, err := p.parseExpr(exprprec)
		if err != nil {
			return nil, err
		}
		end, err := p.next()
		if err != nil {
			return nil, err
		}
		if end.kind != tokenClose {
			return nil, &SyntaxError{Offset: end.pos, Token: end.text, Expect: `")"`}
		}
		return inner, nil
	case tokenEOF:
		return nil, &SyntaxError{Offset: tok.pos, Expect: "expression"}
	default:
		return nil, &SyntaxError{Offset: tok.pos, Token: tok.text, Expect: "expression"}
	}
}

// parseRef parses what follows an identifier: an optional struct field and
// an optional call argument list.
func (p *parser) parseRef(ident token) (*node, error) {
	n := &node{kind: nodeIdent, text: ident.text, pos: ident.pos}
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokenDot {
		field, err := p.next()
		if err != nil {
			return nil, err
		}
		if field.kind != tokenIdent {
			return nil, &SyntaxError{Offset: field.pos, Token: field.text, Expect: "field name"}
		}
		n = &node{kind: nodeStructRef, text: ident.text, field: field.text, pos: ident.pos}
		tok, err = p.next()
		if err != nil {
			return nil, err
		}
	}
	if tok.kind != tokenOpen {
		p.push(tok)
		return n, nil
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	return &node{kind: nodeCall, pos: ident.pos, left: n, right: args}, nil
}

// parseArgs parses a parenthesized, comma-separated argument list into a
// chain of arg nodes. The opening parenthesis has been consumed.
func (p *parser) parseArgs() (*node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokenClose {
		return nil, nil
	}
	p.push(tok)
	var head node
	l := &head
	for {
		arg, err := p.parseExpr(exprprec)
		if err != nil {
			return nil, err
		}
		l.right = &node{kind: nodeArg, pos: arg.pos, left: arg}
		l = l.right
		end, err := p.next()
		if err != nil {
			return nil, err
		}
		switch end.kind {
		case tokenClose:
			return head.right, nil
		case tokenComma:
			// next argument
		case tokenEOF:
			return nil, &SyntaxError{Offset: end.pos, Expect: `")"`}
		default:
			return nil, &SyntaxError{Offset: end.pos, Token: end.text, Expect: `"," or ")"`}
		}
	}
}
