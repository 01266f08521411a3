package ruleexpr

import "testing"

// parseString runs just the front half of a compilation and returns the
// AST root.
func parseString(c *Compiler, src string) (*node, error) {
	c.Clear()
	c.units = supportedUnits(c.unitResolver)
	c.tokenizer.Restart(src)
	p := parser{c: c}
	return p.parse()
}

func TestParsePrecedence(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"num", "1", "1"},
		{"ident", "x", "x"},
		{"struct-ref", "A.clearance", "A.clearance"},
		{"string", `"a"`, `"a"`},
		{"mul-over-add", "1+2*3", "(1 + (2 * 3))"},
		{"mul-over-add-2", "1*2+3", "((1 * 2) + 3)"},
		{"left-assoc-sub", "1-2-3", "((1 - 2) - 3)"},
		{"left-assoc-div", "8/4/2", "((8 / 4) / 2)"},
		{"parens", "(1+2)*3", "((1 + 2) * 3)"},
		{"arith-over-rel", "1+2<3*4", "((1 + 2) < (3 * 4))"},
		{"rel-over-eq", "1<2==3<4", "((1 < 2) == (3 < 4))"},
		{"eq-over-and", "1==1&&2==2", "((1 == 1) && (2 == 2))"},
		{"and-over-or", "a||b&&c", "(a || (b && c))"},
		{"not-tightest", "!a&&b", "((!a) && b)"},
		{"not-vs-compare", "!a==b", "((!a) == b)"},
		{"double-not", "!!a", "(!(!a))"},
		{"call", "f(1,2)", "f(1, 2)"},
		{"call-empty", "f()", "f()"},
		{"method-call", `A.inside("zone")`, `A.inside("zone")`},
		{"call-expr-args", "f(1+2, g(3))", "f((1 + 2), g(3))"},
		{"call-in-expr", "1 + f(2) * 3", "(1 + (f(2) * 3))"},
		{"ge-le", "a>=b&&a<=c", "((a >= b) && (a <= c))"},
		{"ne", "a!=b", "(a != b)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			comp := NewCompiler()
			n, err := parseString(comp, c.src)
			if err != nil {
				t.Fatalf("parsing %q: %v", c.src, err)
			}
			if got := n.String(); got != c.want {
				t.Errorf("parsing %q: got %s, want %s", c.src, got, c.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		pos  int
	}{
		{"empty", "", 0},
		{"trailing-op", "1+", 2},
		{"leading-binary", "*1", 0},
		{"double-op", "1+*2", 2},
		{"unclosed-paren", "(1+2", 4},
		{"stray-close", "1)", 1},
		{"assignment", "a = 1", 2},
		{"bad-field", "A.1", 2},
		{"stray-comma", "1,2", 1},
		{"unclosed-args", "f(1", 3},
		{"empty-subexpr", "()", 1},
		{"adjacent-terms", "1 2", 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			comp := NewCompiler()
			_, err := parseString(comp, c.src)
			if err == nil {
				t.Fatalf("parsing %q: no error", c.src)
			}
			ie, ok := err.(InputError)
			if !ok {
				t.Fatalf("parsing %q: error %T does not carry a position", c.src, err)
			}
			if ie.Pos() != c.pos {
				t.Errorf("parsing %q: error at %d, want %d: %v", c.src, ie.Pos(), c.pos, err)
			}
		})
	}
}

func TestParseIdenticalTrees(t *testing.T) {
	// Recompiling the same text must produce the same structure; the
	// compiler keeps no state across Clear.
	const src = `A.gap + 2.5 > min_gap && !excluded("top")`
	comp := NewCompiler()
	first, err := parseString(comp, src)
	if err != nil {
		t.Fatal(err)
	}
	second, err := parseString(comp, src)
	if err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("trees differ:\n%s\n%s", first, second)
	}
}
