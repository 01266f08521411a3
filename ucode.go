package ruleexpr

import (
	"strconv"
	"strings"
)

// Env is the binding layer a host supplies to Compile. It resolves
// identifiers and call names once, during code generation; values flow
// through the returned VarRef and Func on every run.
type Env interface {
	// CreateVarRef resolves an identifier, optionally with a struct field,
	// to a value accessor. A nil result means the variable is unknown and
	// fails the compilation.
	CreateVarRef(name, field string) VarRef

	// CreateFuncCall resolves a call name to an invocable. A nil result
	// means the function is unknown and fails the compilation.
	CreateFuncCall(name string) Func
}

// VarRef is a host capability resolving a named variable to a value. It is
// invoked each time the referencing instruction executes, so the value may
// change between runs of the same compiled code.
type VarRef interface {
	// Type reports the type the reference currently resolves to.
	Type() ValueType
	// GetValue fetches the current value.
	GetValue(ctx *Context, code *Ucode) Value
}

// Func is a host function or method invocable from an expression. For
// method calls the receiver is args[0]. The returned value is pushed as
// the call's result; nil pushes an undefined value.
type Func interface {
	Call(ctx *Context, code *Ucode, args []*Value) (*Value, error)
}

// emptyEnv resolves nothing. It is the binding layer used when Compile is
// given a nil Env.
type emptyEnv struct{}

func (emptyEnv) CreateVarRef(name, field string) VarRef { return nil }
func (emptyEnv) CreateFuncCall(name string) Func        { return nil }

// Ucode is a compiled expression: an ordered sequence of micro-operations
// whose insertion order is the execution order. A Ucode is immutable once
// compilation succeeds and may be shared by concurrent runs as long as the
// host bindings it references are themselves safe to share.
type Ucode struct {
	ops []*Uop
}

// AddOp appends an instruction.
func (code *Ucode) AddOp(u *Uop) {
	code.ops = append(code.ops, u)
}

// Len returns the number of instructions.
func (code *Ucode) Len() int {
	return len(code.ops)
}

// Run executes the code on a fresh context of default capacity and returns
// the value of the expression.
func (code *Ucode) Run() (*Value, error) {
	return code.RunContext(NewContext())
}

// RunContext executes the code on ctx and returns the value of the
// expression. On failure the error is also recorded in ctx's error status.
// The context must be fresh; a context cannot be reused across runs.
func (code *Ucode) RunContext(ctx *Context) (*Value, error) {
	for _, u := range code.ops {
		if err := u.Exec(ctx, code); err != nil {
			ctx.ReportError(err.Error())
			return nil, err
		}
	}
	if ctx.SP() != 1 {
		// Not a user error: the generator emitted unbalanced code.
		err := &FaultError{Msg: "inconsistent stack: " + strconv.Itoa(ctx.SP()) + " items at end of program"}
		ctx.ReportError(err.Msg)
		return nil, err
	}
	return ctx.Pop()
}

// Dump returns a line-per-instruction listing of the code.
func (code *Ucode) Dump() string {
	var b strings.Builder
	for _, u := range code.ops {
		b.WriteString(u.Format())
		b.WriteByte('\n')
	}
	return b.String()
}
