package ruleexpr

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression. Terminal
// nodes carry literal text; operator nodes carry the opcode emitted for
// them. Call nodes link their callee on the left and a chain of arg nodes
// on the right.
type node struct {
	kind nodeKind

	// op is the operator for nodeOp nodes.
	op Opcode
	// text is the literal text, identifier, or struct-ref object name.
	text string
	// field is the field of a struct reference.
	field string
	// unit is the unit suffix of a numeric literal, if any.
	unit string
	// pos is the byte offset of the node's token, for error reporting.
	pos int
	// uop is the instruction emitted for this node, set during codegen.
	uop *Uop

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNumber    // numeric literal, optionally unit-suffixed
	nodeString    // string literal
	nodeIdent     // variable reference
	nodeStructRef // field-qualified variable reference
	nodeCall      // left is callee, right is arg chain
	nodeArg       // left is argument expression, right is next arg
	nodeOp        // operator; unary ops use left only
)

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

func (n *node) fmt(b *strings.Builder) {
	switch n.kind {
	case nodeNumber:
		b.WriteString(n.text)
		b.WriteString(n.unit)
	case nodeString:
		b.WriteString(strconv.Quote(n.text))
	case nodeIdent:
		b.WriteString(n.text)
	case nodeStructRef:
		b.WriteString(n.text)
		b.WriteByte('.')
		b.WriteString(n.field)
	case nodeCall:
		n.left.fmt(b)
		b.WriteByte('(')
		for a := n.right; a != nil; a = a.right {
			if a != n.right {
				b.WriteString(", ")
			}
			a.left.fmt(b)
		}
		b.WriteByte(')')
	case nodeOp:
		b.WriteByte('(')
		if n.right == nil {
			b.WriteString(n.op.token())
			n.left.fmt(b)
		} else {
			n.left.fmt(b)
			b.WriteByte(' ')
			b.WriteString(n.op.token())
			b.WriteByte(' ')
			n.right.fmt(b)
		}
		b.WriteByte(')')
	default:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
	}
}
