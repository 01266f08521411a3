package ruleexpr

import "strconv"

// Opcode identifies a micro-operation. The values mirror the historical
// instruction table: binary operators occupy the 0x200 block and boolean
// not is 0x100. Dispatch is always by explicit opcode, never by mask
// arithmetic, so the blocks are documentation rather than encoding.
type Opcode int

const (
	OpNone Opcode = 0

	OpPushVar   Opcode = 0x01
	OpPushValue Opcode = 0x02

	OpFuncCall   Opcode = 0x18
	OpMethodCall Opcode = 0x19

	OpBoolNot Opcode = 0x100

	OpMul Opcode = 0x201
	OpDiv Opcode = 0x202
	OpAdd Opcode = 0x203
	OpSub Opcode = 0x204
	// OpLess keeps its legacy value from the original instruction table,
	// outside the block its siblings occupy.
	OpLess         Opcode = 0x25
	OpGreater      Opcode = 0x206
	OpLessEqual    Opcode = 0x207
	OpGreaterEqual Opcode = 0x208
	OpEqual        Opcode = 0x209
	OpNotEqual     Opcode = 0x20a
	OpBoolAnd      Opcode = 0x20b
	OpBoolOr       Opcode = 0x20c
)

func (op Opcode) String() string {
	switch op {
	case OpPushVar:
		return "PUSH_VAR"
	case OpPushValue:
		return "PUSH_VALUE"
	case OpFuncCall:
		return "FUNC_CALL"
	case OpMethodCall:
		return "METHOD_CALL"
	case OpBoolNot:
		return "NOT"
	case OpMul:
		return "MUL"
	case OpDiv:
		return "DIV"
	case OpAdd:
		return "ADD"
	case OpSub:
		return "SUB"
	case OpLess:
		return "LESS"
	case OpGreater:
		return "GREATER"
	case OpLessEqual:
		return "LESS_EQUAL"
	case OpGreaterEqual:
		return "GREATER_EQUAL"
	case OpEqual:
		return "EQUAL"
	case OpNotEqual:
		return "NOT_EQUAL"
	case OpBoolAnd:
		return "AND"
	case OpBoolOr:
		return "OR"
	default:
		return "op(0x" + strconv.FormatInt(int64(op), 16) + ")"
	}
}

// token returns the source spelling of an operator opcode.
func (op Opcode) token() string {
	switch op {
	case OpBoolNot:
		return "!"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpLess:
		return "<"
	case OpGreater:
		return ">"
	case OpLessEqual:
		return "<="
	case OpGreaterEqual:
		return ">="
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpBoolAnd:
		return "&&"
	case OpBoolOr:
		return "||"
	default:
		return op.String()
	}
}

// Uop is one micro-operation: an opcode plus its operand, which is a
// literal value, a variable reference, or a host callback with an
// argument count. A Uop is immutable after construction.
type Uop struct {
	op    Opcode
	value *Value
	ref   VarRef
	fn    Func
	nargs int
}

func newValueUop(v Value) *Uop {
	val := v
	return &Uop{op: OpPushValue, value: &val}
}

// Op returns the instruction's opcode.
func (u *Uop) Op() Opcode {
	return u.op
}

// Exec executes the instruction against a context. Operand faults and
// failing host callbacks return a *FaultError; the caller records it in
// the context's error status.
func (u *Uop) Exec(ctx *Context, code *Ucode) error {
	switch u.op {
	case OpPushValue:
		v, err := ctx.AllocValue()
		if err != nil {
			return err
		}
		v.Set(*u.value)
		return ctx.Push(v)
	case OpPushVar:
		v, err := ctx.AllocValue()
		if err != nil {
			return err
		}
		v.Set(u.ref.GetValue(ctx, code))
		return ctx.Push(v)
	case OpFuncCall, OpMethodCall:
		args := make([]*Value, u.nargs)
		for i := u.nargs - 1; i >= 0; i-- {
			a, err := ctx.Pop()
			if err != nil {
				return err
			}
			args[i] = a
		}
		r, err := u.fn.Call(ctx, code, args)
		if err != nil {
			return &FaultError{Msg: "call failed", Err: err}
		}
		v, aerr := ctx.AllocValue()
		if aerr != nil {
			return aerr
		}
		if r != nil {
			v.Set(*r)
		}
		return ctx.Push(v)
	case OpBoolNot:
		a, err := ctx.Pop()
		if err != nil {
			return err
		}
		v, aerr := ctx.AllocValue()
		if aerr != nil {
			return aerr
		}
		v.SetDouble(b2d(!a.truthy()))
		return ctx.Push(v)
	}

	b, err := ctx.Pop()
	if err != nil {
		return err
	}
	a, err := ctx.Pop()
	if err != nil {
		return err
	}
	v, err := ctx.AllocValue()
	if err != nil {
		return err
	}
	switch u.op {
	case OpMul, OpDiv, OpAdd, OpSub:
		if a.Type() != TypeNumeric || b.Type() != TypeNumeric {
			return &FaultError{Msg: u.op.token() + " on non-numeric value"}
		}
		switch u.op {
		case OpMul:
			v.SetDouble(a.AsDouble() * b.AsDouble())
		case OpDiv:
			v.SetDouble(a.AsDouble() / b.AsDouble())
		case OpAdd:
			v.SetDouble(a.AsDouble() + b.AsDouble())
		case OpSub:
			v.SetDouble(a.AsDouble() - b.AsDouble())
		}
	case OpLess:
		v.SetDouble(b2d(bothNumeric(a, b) && a.AsDouble() < b.AsDouble()))
	case OpGreater:
		v.SetDouble(b2d(bothNumeric(a, b) && a.AsDouble() > b.AsDouble()))
	case OpLessEqual:
		v.SetDouble(b2d(bothNumeric(a, b) && a.AsDouble() <= b.AsDouble()))
	case OpGreaterEqual:
		v.SetDouble(b2d(bothNumeric(a, b) && a.AsDouble() >= b.AsDouble()))
	case OpEqual:
		v.SetDouble(b2d(a.EqualTo(b)))
	case OpNotEqual:
		v.SetDouble(b2d(!a.EqualTo(b)))
	case OpBoolAnd:
		v.SetDouble(b2d(a.truthy() && b.truthy()))
	case OpBoolOr:
		v.SetDouble(b2d(a.truthy() || b.truthy()))
	default:
		panic("ruleexpr: unknown opcode " + u.op.String())
	}
	return ctx.Push(v)
}

// Format renders the instruction for Ucode.Dump.
func (u *Uop) Format() string {
	switch u.op {
	case OpPushValue:
		return "PUSH VALUE " + u.value.String()
	case OpPushVar:
		return "PUSH VAR"
	case OpFuncCall:
		return "CALL FUNC nargs=" + strconv.Itoa(u.nargs)
	case OpMethodCall:
		return "CALL METHOD nargs=" + strconv.Itoa(u.nargs)
	default:
		return u.op.String()
	}
}

func bothNumeric(a, b *Value) bool {
	return a.Type() == TypeNumeric && b.Type() == TypeNumeric
}

func b2d(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
