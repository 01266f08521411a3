package ruleexpr

// DefaultContextSize is the capacity of a context's value arena and
// operand stack unless overridden with ContextSize.
const DefaultContextSize = 128

// Context holds the transient state of one execution: a bump-allocated
// arena of values for intermediate results and a pointer stack for operand
// passing. A context is single-use; create a fresh one per run. Exceeding
// either capacity is reported as an explicit runtime fault, never a silent
// overflow.
type Context struct {
	heap   []Value
	stack  []*Value
	memPos int
	sp     int
	status ErrorStatus
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type sizeopt int

func (sizeopt) ctxOption() {}

// ContextSize sets the capacity of the context's value arena and operand
// stack. Deeply nested expressions need roughly one slot per literal and
// one per operator.
func ContextSize(n int) ContextOption {
	return sizeopt(n)
}

// NewContext creates an execution context. The default capacity is
// DefaultContextSize slots.
func NewContext(opts ...ContextOption) *Context {
	size := DefaultContextSize
	for _, opt := range opts {
		switch opt := opt.(type) {
		case sizeopt:
			size = int(opt)
		default:
			panic("ruleexpr: unknown context option")
		}
	}
	return &Context{
		heap:  make([]Value, size),
		stack: make([]*Value, size),
	}
}

// AllocValue hands out the next free slot from the arena. The slot stays
// valid until the context is discarded.
func (ctx *Context) AllocValue() (*Value, error) {
	if ctx.memPos >= len(ctx.heap) {
		return nil, &FaultError{Msg: "value heap exhausted"}
	}
	v := &ctx.heap[ctx.memPos]
	ctx.memPos++
	return v, nil
}

// Push puts a value on the operand stack.
func (ctx *Context) Push(v *Value) error {
	if ctx.sp >= len(ctx.stack) {
		return &FaultError{Msg: "operand stack exhausted"}
	}
	ctx.stack[ctx.sp] = v
	ctx.sp++
	return nil
}

// Pop removes and returns the top of the operand stack.
func (ctx *Context) Pop() (*Value, error) {
	if ctx.sp == 0 {
		return nil, &FaultError{Msg: "operand stack underflow"}
	}
	ctx.sp--
	return ctx.stack[ctx.sp], nil
}

// SP returns the operand stack depth.
func (ctx *Context) SP() int {
	return ctx.sp
}

// ReportError records a runtime-stage error in the context's status.
func (ctx *Context) ReportError(msg string) {
	ctx.status = ErrorStatus{Pending: true, Stage: StageRuntime, Message: msg, SrcPos: -1}
}

// GetErrorStatus returns the status of the most recent run.
func (ctx *Context) GetErrorStatus() ErrorStatus {
	return ctx.status
}
