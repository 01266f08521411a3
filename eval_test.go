package ruleexpr_test

import (
	"strings"
	"testing"

	"ruleexpr"
)

func compile(t *testing.T, comp *ruleexpr.Compiler, src string, env ruleexpr.Env) *ruleexpr.Ucode {
	t.Helper()
	var code ruleexpr.Ucode
	if err := comp.Compile(src, &code, env); err != nil {
		t.Fatalf("compiling %q: %v", src, err)
	}
	if !comp.IsValid() {
		t.Fatalf("compiling %q: IsValid false after successful compile", src)
	}
	return &code
}

func run(t *testing.T, code *ruleexpr.Ucode) *ruleexpr.Value {
	t.Helper()
	v, err := code.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return v
}

func TestEvalArithmetic(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want float64
	}{
		{"num", "1", 1},
		{"precedence", "1+2*3", 7},
		{"precedence-2", "2*3+1", 7},
		{"parens", "(1+2)*3", 9},
		{"div", "10/4", 2.5},
		{"left-assoc", "8-4-2", 2},
		{"mixed", "1+2-3*4/6", 1},
		{"less", "3 < 4", 1},
		{"less-false", "4 < 3", 0},
		{"greater", "4 > 3", 1},
		{"le", "3 <= 3", 1},
		{"ge", "3 >= 4", 0},
		{"eq", "2 == 2", 1},
		{"ne", "2 != 3", 1},
		{"and", "1 && 0", 0},
		{"and-true", "2 && 3", 1},
		{"or", "1 || 0", 1},
		{"or-false", "0 || 0", 0},
		{"not-zero", "!0", 1},
		{"not-one", "!1", 0},
		{"not-not", "!!5", 1},
		{"rel-into-bool", "1+1 == 2 && 2*2 > 3", 1},
	}
	comp := ruleexpr.NewCompiler()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code := compile(t, comp, c.src, nil)
			v := run(t, code)
			if v.Type() != ruleexpr.TypeNumeric {
				t.Fatalf("%q: result type %v, want numeric", c.src, v.Type())
			}
			if got := v.AsDouble(); got != c.want {
				t.Errorf("%q: got %g, want %g", c.src, got, c.want)
			}
		})
	}
}

func TestEvalCrossType(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want float64
	}{
		{"str-eq-num", `"a" == 1`, 0},
		{"num-eq-str", `1 == "a"`, 0},
		{"str-ne-num", `"a" != 1`, 1},
		{"str-eq-str", `"a" == "a"`, 1},
		{"str-ne-str", `"a" != "b"`, 1},
		{"str-lt-num", `"a" < 1`, 0},
		{"num-gt-str", `1 > "a"`, 0},
		{"str-truthy", `"a" && 1`, 0},
	}
	comp := ruleexpr.NewCompiler()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := run(t, compile(t, comp, c.src, nil))
			if got := v.AsDouble(); got != c.want {
				t.Errorf("%q: got %g, want %g", c.src, got, c.want)
			}
		})
	}
}

func TestEvalStringResult(t *testing.T) {
	comp := ruleexpr.NewCompiler()
	v := run(t, compile(t, comp, `"outer layer"`, nil))
	if v.Type() != ruleexpr.TypeString || v.AsString() != "outer layer" {
		t.Errorf("got %v, want string \"outer layer\"", v)
	}
}

func TestEvalVariables(t *testing.T) {
	env := ruleexpr.NewSimpleEnv().
		SetVar("width", ruleexpr.NumericValue(3)).
		SetVar("A.clearance", ruleexpr.NumericValue(0.5))
	comp := ruleexpr.NewCompiler()
	code := compile(t, comp, "width + A.clearance", env)
	if got := run(t, code).AsDouble(); got != 3.5 {
		t.Errorf("got %g, want 3.5", got)
	}

	// Variables bind late: the same compiled code sees updates.
	env.SetVar("width", ruleexpr.NumericValue(10))
	if got := run(t, code).AsDouble(); got != 10.5 {
		t.Errorf("after update: got %g, want 10.5", got)
	}
}

func TestEvalFuncCall(t *testing.T) {
	env := ruleexpr.NewSimpleEnv()
	env.SetFunc("max", ruleexpr.FuncN(func(ctx *ruleexpr.Context, args []*ruleexpr.Value) (*ruleexpr.Value, error) {
		r := args[0].AsDouble()
		for _, a := range args[1:] {
			if a.AsDouble() > r {
				r = a.AsDouble()
			}
		}
		v := ruleexpr.NumericValue(r)
		return &v, nil
	}))
	env.SetFunc("two", ruleexpr.FuncN(func(ctx *ruleexpr.Context, args []*ruleexpr.Value) (*ruleexpr.Value, error) {
		v := ruleexpr.NumericValue(2)
		return &v, nil
	}))
	comp := ruleexpr.NewCompiler()
	cases := []struct {
		src  string
		want float64
	}{
		{"max(2, 3)", 3},
		{"max(1+1, 2*3, 4)", 6},
		{"two()", 2},
		{"max(two(), 1) + 1", 3},
	}
	for _, c := range cases {
		if got := run(t, compile(t, comp, c.src, env)).AsDouble(); got != c.want {
			t.Errorf("%q: got %g, want %g", c.src, got, c.want)
		}
	}
}

func TestEvalMethodCall(t *testing.T) {
	// The receiver arrives as argument zero.
	env := ruleexpr.NewSimpleEnv().
		SetVar("A", ruleexpr.NumericValue(4)).
		SetVar("A.layer", ruleexpr.StringValue("top"))
	env.SetFunc("scaled", ruleexpr.FuncN(func(ctx *ruleexpr.Context, args []*ruleexpr.Value) (*ruleexpr.Value, error) {
		v := ruleexpr.NumericValue(args[0].AsDouble() * args[1].AsDouble())
		return &v, nil
	}))
	comp := ruleexpr.NewCompiler()
	if got := run(t, compile(t, comp, "A.scaled(3)", env)).AsDouble(); got != 12 {
		t.Errorf("A.scaled(3): got %g, want 12", got)
	}
}

func TestEvalUnits(t *testing.T) {
	// Canonical unit is µm: mm scales by 1000, m by 1e6.
	resolver := ruleexpr.NewTableUnitResolver(map[string]float64{
		"mm": 1e3,
		"m":  1e6,
	})
	comp := ruleexpr.NewCompiler(ruleexpr.WithUnitResolver(resolver))

	suffixed := compile(t, comp, "1mm", nil)
	scaled := compile(t, comp, "1000", nil)
	if a, b := run(t, suffixed).AsDouble(), run(t, scaled).AsDouble(); a != b {
		t.Errorf("1mm = %g, 1000 = %g; want equal", a, b)
	}
	if a, b := suffixed.Dump(), scaled.Dump(); a != b {
		t.Errorf("dumps differ:\n%s\n%s", a, b)
	}

	// Longest match wins: mm, not m followed by a stray m.
	if got := run(t, compile(t, comp, "2mm + 1m", nil)).AsDouble(); got != 1002000 {
		t.Errorf("2mm + 1m: got %g, want 1002000", got)
	}
}

func TestCompileIdempotent(t *testing.T) {
	env := ruleexpr.NewSimpleEnv().SetVar("gap", ruleexpr.NumericValue(7))
	comp := ruleexpr.NewCompiler()
	const src = "gap * 2 + 1 > 10 && !(gap == 7)"
	first := compile(t, comp, src, env)
	comp.Clear()
	second := compile(t, comp, src, env)
	if first.Len() != second.Len() {
		t.Errorf("lengths differ: %d vs %d", first.Len(), second.Len())
	}
	if first.Dump() != second.Dump() {
		t.Errorf("dumps differ:\n%s\n%s", first.Dump(), second.Dump())
	}
}

func TestUnknownVariable(t *testing.T) {
	comp := ruleexpr.NewCompiler()
	var code ruleexpr.Ucode
	err := comp.Compile("nope + 1", &code, ruleexpr.NewSimpleEnv())
	if err == nil {
		t.Fatal("no error for unknown variable")
	}
	if comp.IsValid() {
		t.Error("IsValid true after failed compile")
	}
	st := comp.GetErrorStatus()
	if !st.Pending || st.Stage != ruleexpr.StageCodegen {
		t.Errorf("status %+v, want pending codegen error", st)
	}
	if st.SrcPos != 0 {
		t.Errorf("error offset %d, want 0", st.SrcPos)
	}
	if !strings.Contains(st.Message, "unknown variable") {
		t.Errorf("message %q does not name the failure", st.Message)
	}
}

func TestUnknownFunction(t *testing.T) {
	comp := ruleexpr.NewCompiler()
	var code ruleexpr.Ucode
	err := comp.Compile("1 + mystery(2)", &code, ruleexpr.NewSimpleEnv())
	if err == nil {
		t.Fatal("no error for unknown function")
	}
	st := comp.GetErrorStatus()
	if st.Stage != ruleexpr.StageCodegen || !strings.Contains(st.Message, "unknown function") {
		t.Errorf("status %+v, want codegen unknown function", st)
	}
	if st.SrcPos != 4 {
		t.Errorf("error offset %d, want 4", st.SrcPos)
	}
}

func TestParseErrorStatus(t *testing.T) {
	comp := ruleexpr.NewCompiler()
	var code ruleexpr.Ucode
	if err := comp.Compile("1 + $", &code, nil); err == nil {
		t.Fatal("no error for bad input")
	}
	st := comp.GetErrorStatus()
	if st.Stage != ruleexpr.StageParse || st.SrcPos != 4 {
		t.Errorf("status %+v, want parse error at offset 4", st)
	}

	// Clear resets the status.
	comp.Clear()
	if !comp.IsValid() {
		t.Error("IsValid false after Clear")
	}
}

func TestRuntimeTypeFault(t *testing.T) {
	comp := ruleexpr.NewCompiler()
	code := compile(t, comp, `1 + "a"`, nil)
	ctx := ruleexpr.NewContext()
	if _, err := code.RunContext(ctx); err == nil {
		t.Fatal("no error adding a string")
	}
	st := ctx.GetErrorStatus()
	if !st.Pending || st.Stage != ruleexpr.StageRuntime {
		t.Errorf("status %+v, want pending runtime fault", st)
	}
}

func TestCapacityFault(t *testing.T) {
	comp := ruleexpr.NewCompiler()

	// Deeper nesting than the context has slots for.
	depth := 12
	src := strings.Repeat("1+(", depth) + "1" + strings.Repeat(")", depth)
	code := compile(t, comp, src, nil)
	ctx := ruleexpr.NewContext(ruleexpr.ContextSize(8))
	if _, err := code.RunContext(ctx); err == nil {
		t.Fatal("no fault with an exhausted context")
	}
	st := ctx.GetErrorStatus()
	if !st.Pending || st.Stage != ruleexpr.StageRuntime {
		t.Errorf("status %+v, want pending runtime fault", st)
	}
	if !strings.Contains(st.Message, "exhausted") {
		t.Errorf("message %q does not describe exhaustion", st.Message)
	}

	// The same program fits a default-size context.
	if got := run(t, code).AsDouble(); got != float64(depth+1) {
		t.Errorf("got %g, want %d", got, depth+1)
	}
}

func TestDumpDeterminism(t *testing.T) {
	env := ruleexpr.NewSimpleEnv().SetVar("x", ruleexpr.NumericValue(1))
	comp := ruleexpr.NewCompiler()
	const src = "x * 2 + 1"
	want := compile(t, comp, src, env).Dump()
	for i := 0; i < 5; i++ {
		got := compile(t, comp, src, env).Dump()
		if got != want {
			t.Fatalf("dump changed between compiles:\n%s\n%s", want, got)
		}
	}
	if !strings.Contains(want, "PUSH VAR") || !strings.Contains(want, "MUL") {
		t.Errorf("dump does not list instructions:\n%s", want)
	}
}

func TestDecimalSeparator(t *testing.T) {
	comp := ruleexpr.NewCompiler(ruleexpr.WithDecimalSeparator(','))
	if got := run(t, compile(t, comp, "1,5 + 1", nil)).AsDouble(); got != 2.5 {
		t.Errorf("got %g, want 2.5", got)
	}
}

func TestValueEquality(t *testing.T) {
	n1 := ruleexpr.NumericValue(1)
	n2 := ruleexpr.NumericValue(1)
	s1 := ruleexpr.StringValue("1")
	var undef ruleexpr.Value
	if !n1.EqualTo(&n2) {
		t.Error("equal numerics not equal")
	}
	if n1.EqualTo(&s1) || s1.EqualTo(&n1) {
		t.Error("numeric equals string")
	}
	if undef.EqualTo(&undef) {
		t.Error("undefined equals undefined")
	}
	n1.SetString("1")
	if !n1.EqualTo(&s1) {
		t.Error("Set did not retag the value")
	}
}
