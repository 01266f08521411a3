package ruleexpr

// FuncN adapts a plain function to the Func interface for callbacks that
// do not need the executing Ucode.
type FuncN func(ctx *Context, args []*Value) (*Value, error)

func (f FuncN) Call(ctx *Context, code *Ucode, args []*Value) (*Value, error) {
	return f(ctx, args)
}

// SimpleEnv is a map-backed Env for hosts whose bindings fit in memory:
// tests, the command-line tool, anything without a live object model.
// Struct references are keyed "name.field". Variable values are read at
// run time, so updating the map between runs changes what compiled code
// sees.
//
// A SimpleEnv must not be mutated while a compiled expression that uses it
// is running.
type SimpleEnv struct {
	vars  map[string]Value
	funcs map[string]Func
}

// NewSimpleEnv creates an empty environment.
func NewSimpleEnv() *SimpleEnv {
	return &SimpleEnv{
		vars:  make(map[string]Value),
		funcs: make(map[string]Func),
	}
}

// SetVar defines or updates a variable. name may be field-qualified
// ("A.clearance").
func (e *SimpleEnv) SetVar(name string, v Value) *SimpleEnv {
	e.vars[name] = v
	return e
}

// SetFunc defines or updates a function.
func (e *SimpleEnv) SetFunc(name string, fn Func) *SimpleEnv {
	e.funcs[name] = fn
	return e
}

// CreateVarRef resolves a name to a late-bound reference into the map.
// Unknown names resolve to nil, failing the compilation.
func (e *SimpleEnv) CreateVarRef(name, field string) VarRef {
	key := name
	if field != "" {
		key += "." + field
	}
	if _, ok := e.vars[key]; !ok {
		return nil
	}
	return &mapVarRef{env: e, key: key}
}

// CreateFuncCall resolves a call name. Unknown names resolve to nil.
func (e *SimpleEnv) CreateFuncCall(name string) Func {
	return e.funcs[name]
}

type mapVarRef struct {
	env *SimpleEnv
	key string
}

func (r *mapVarRef) Type() ValueType {
	v, ok := r.env.vars[r.key]
	if !ok {
		return TypeUndefined
	}
	return v.Type()
}

func (r *mapVarRef) GetValue(ctx *Context, code *Ucode) Value {
	return r.env.vars[r.key]
}

var (
	_ Env    = (*SimpleEnv)(nil)
	_ VarRef = (*mapVarRef)(nil)
	_ Func   = FuncN(nil)
)
