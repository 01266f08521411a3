package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"gopkg.in/yaml.v3"

	"ruleexpr"
)

const (
	historyFile = ".ruleexpr_history"
	promptMain  = "==> "
)

func main() {
	log.SetFlags(0)
	var (
		unitsFile string
		verb      string
		dump      bool
	)
	env := ruleexpr.NewSimpleEnv()
	addGiven := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		name := strings.TrimSpace(d[0])
		val := strings.TrimSpace(d[1])
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			env.SetVar(name, ruleexpr.NumericValue(f))
		} else {
			env.SetVar(name, ruleexpr.StringValue(val))
		}
		return nil
	}
	flag.StringVar(&unitsFile, "units", "", "YAML file mapping unit suffixes to scale factors")
	flag.StringVar(&verb, "fmt", "%g", "numeric result formatting string")
	flag.BoolVar(&dump, "dump", false, "print the instruction listing before evaluating")
	flag.Func("given", "name=value variable definition (any number of times)", addGiven)
	flag.Parse()

	var opts []ruleexpr.CompilerOption
	if unitsFile != "" {
		table, err := loadUnits(unitsFile)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, ruleexpr.WithUnitResolver(ruleexpr.NewTableUnitResolver(table)))
	}
	comp := ruleexpr.NewCompiler(opts...)
	registerBuiltins(env)

	if flag.NArg() > 0 {
		ok := true
		for _, arg := range flag.Args() {
			if !evalOne(comp, env, arg, verb, dump) {
				ok = false
			}
		}
		if !ok {
			os.Exit(1)
		}
		return
	}
	repl(comp, env, verb, dump)
}

// evalOne compiles and runs one expression, printing the result or the
// error with its source offset. It reports whether evaluation succeeded.
func evalOne(comp *ruleexpr.Compiler, env *ruleexpr.SimpleEnv, src, verb string, dump bool) bool {
	var code ruleexpr.Ucode
	if err := comp.Compile(src, &code, env); err != nil {
		fmt.Fprintln(os.Stderr, comp.GetErrorStatus())
		return false
	}
	if dump {
		fmt.Print(code.Dump())
	}
	v, err := code.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "runtime error:", err)
		return false
	}
	switch v.Type() {
	case ruleexpr.TypeNumeric:
		fmt.Printf(verb+"\n", v.AsDouble())
	case ruleexpr.TypeString:
		fmt.Println(v.AsString())
	default:
		fmt.Println("undefined")
	}
	return true
}

func repl(comp *ruleexpr.Compiler, env *ruleexpr.SimpleEnv, verb string, dump bool) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Println("ruleexpr REPL. Ctrl+D exits; :dump toggles instruction listings.")
loop:
	for {
		src, err := line.Prompt(promptMain)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println()
				break loop
			}
			fmt.Fprintln(os.Stderr, err)
			break loop
		}
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		line.AppendHistory(src)
		switch src {
		case ":quit":
			break loop
		case ":dump":
			dump = !dump
			continue
		}
		evalOne(comp, env, src, verb, dump)
	}
	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
}

// loadUnits reads a YAML mapping of unit suffix to scale factor, e.g.
//
//	mm: 1000
//	um: 1
//	in: 25400
func loadUnits(path string) (map[string]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	table := make(map[string]float64)
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func registerBuiltins(env *ruleexpr.SimpleEnv) {
	numeric := func(name string, args []*ruleexpr.Value) error {
		for i, a := range args {
			if a.Type() != ruleexpr.TypeNumeric {
				return fmt.Errorf("%s: argument %d is not numeric", name, i+1)
			}
		}
		return nil
	}
	env.SetFunc("min", ruleexpr.FuncN(func(ctx *ruleexpr.Context, args []*ruleexpr.Value) (*ruleexpr.Value, error) {
		if len(args) == 0 {
			return nil, errors.New("min: no arguments")
		}
		if err := numeric("min", args); err != nil {
			return nil, err
		}
		r := args[0].AsDouble()
		for _, a := range args[1:] {
			r = math.Min(r, a.AsDouble())
		}
		v := ruleexpr.NumericValue(r)
		return &v, nil
	}))
	env.SetFunc("max", ruleexpr.FuncN(func(ctx *ruleexpr.Context, args []*ruleexpr.Value) (*ruleexpr.Value, error) {
		if len(args) == 0 {
			return nil, errors.New("max: no arguments")
		}
		if err := numeric("max", args); err != nil {
			return nil, err
		}
		r := args[0].AsDouble()
		for _, a := range args[1:] {
			r = math.Max(r, a.AsDouble())
		}
		v := ruleexpr.NumericValue(r)
		return &v, nil
	}))
	env.SetFunc("abs", ruleexpr.FuncN(func(ctx *ruleexpr.Context, args []*ruleexpr.Value) (*ruleexpr.Value, error) {
		if len(args) != 1 {
			return nil, errors.New("abs: want one argument")
		}
		if err := numeric("abs", args); err != nil {
			return nil, err
		}
		v := ruleexpr.NumericValue(math.Abs(args[0].AsDouble()))
		return &v, nil
	}))
}
