package ruleexpr

import "strconv"

// generate walks the AST post-order (children before parent, left before
// right) and emits instructions into code. The first unresolvable name
// aborts generation; the remaining tree is not visited.
func (c *Compiler) generate(code *Ucode, env Env, n *node) error {
	switch n.kind {
	case nodeNumber:
		v, err := strconv.ParseFloat(n.text, 64)
		if err != nil {
			return &LexError{Text: n.text, Kind: "number", Offset: n.pos}
		}
		if n.unit != "" {
			// Units fold into the literal here, once, so execution never
			// pays for conversion.
			v *= c.unitResolver.Convert(n.unit, c.unitContext)
		}
		n.uop = newValueUop(NumericValue(v))
		code.AddOp(n.uop)
	case nodeString:
		n.uop = newValueUop(StringValue(n.text))
		code.AddOp(n.uop)
	case nodeIdent, nodeStructRef:
		ref := env.CreateVarRef(n.text, n.field)
		if ref == nil {
			return &ResolveError{Offset: n.pos, Name: n.text, Field: n.field}
		}
		n.uop = &Uop{op: OpPushVar, ref: ref}
		code.AddOp(n.uop)
	case nodeCall:
		return c.generateCall(code, env, n)
	case nodeOp:
		if err := c.generate(code, env, n.left); err != nil {
			return err
		}
		if n.right != nil {
			if err := c.generate(code, env, n.right); err != nil {
				return err
			}
		}
		n.uop = &Uop{op: n.op}
		code.AddOp(n.uop)
	default:
		panic("ruleexpr: cannot generate code for node " + n.String())
	}
	return nil
}

// generateCall emits a function or method call. A method call pushes its
// receiver as argument zero, so the callback's arity includes it.
func (c *Compiler) generateCall(code *Ucode, env Env, n *node) error {
	callee := n.left
	method := callee.kind == nodeStructRef
	name := callee.text
	if method {
		name = callee.field
	}
	fn := env.CreateFuncCall(name)
	if fn == nil {
		err := &ResolveError{Offset: callee.pos, Name: callee.text, Call: true}
		if method {
			err.Field = callee.field
		}
		return err
	}
	nargs := 0
	if method {
		recv := env.CreateVarRef(callee.text, "")
		if recv == nil {
			return &ResolveError{Offset: callee.pos, Name: callee.text}
		}
		code.AddOp(&Uop{op: OpPushVar, ref: recv})
		nargs++
	}
	for a := n.right; a != nil; a = a.right {
		if err := c.generate(code, env, a.left); err != nil {
			return err
		}
		nargs++
	}
	op := OpFuncCall
	if method {
		op = OpMethodCall
	}
	n.uop = &Uop{op: op, fn: fn, nargs: nargs}
	code.AddOp(n.uop)
	return nil
}
