package ruleexpr

// Compiler turns expression text into executable Ucode. It owns the
// tokenizer, the lexer state, and the AST of the current compilation. A
// Compiler may be reused for any number of compilations but not from
// multiple goroutines at once.
type Compiler struct {
	tokenizer   Tokenizer
	lexerState  lexerState
	stringStart int

	decimalSep   byte
	unitResolver UnitResolver
	unitContext  int
	units        []string

	sourcePos int
	status    ErrorStatus
	state     compileState
	tree      *node
}

type compileState int8

const (
	stateIdle compileState = iota
	stateTokenizing
	stateParsing
	stateCodegen
	stateDone
	stateError
)

// CompilerOption is an option used when creating a compiler.
type CompilerOption interface {
	apply(*Compiler)
}

type compilerOptionFunc func(*Compiler)

func (f compilerOptionFunc) apply(c *Compiler) { f(c) }

// WithUnitResolver sets the resolver used for unit-suffixed numeric
// literals. The default resolver supports no units.
func WithUnitResolver(r UnitResolver) CompilerOption {
	return compilerOptionFunc(func(c *Compiler) {
		c.unitResolver = r
	})
}

// WithDecimalSeparator sets the locale decimal separator recognized in
// numeric literals. It is normalized to '.' before parsing. The default
// is '.'.
func WithDecimalSeparator(sep byte) CompilerOption {
	return compilerOptionFunc(func(c *Compiler) {
		c.decimalSep = sep
	})
}

// WithUnitContext sets the unit type passed to UnitResolver.Convert, for
// resolvers that distinguish unit classes (distance, time, ...). The
// default is 0.
func WithUnitContext(unitType int) CompilerOption {
	return compilerOptionFunc(func(c *Compiler) {
		c.unitContext = unitType
	})
}

// NewCompiler creates a compiler. The given options are applied in order.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		decimalSep:   '.',
		unitResolver: nullUnitResolver{},
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

// Clear resets the compiler for a new input string, discarding the current
// AST and error status. Configuration (unit resolver, separator) is kept;
// variable and function bindings live in the host's Env, not here.
func (c *Compiler) Clear() {
	c.tokenizer.Clear()
	c.lexerState = lsDefault
	c.stringStart = 0
	c.sourcePos = 0
	c.status = ErrorStatus{}
	c.state = stateIdle
	c.tree = nil
}

// IsValid reports whether the previous Compile succeeded.
func (c *Compiler) IsValid() bool {
	return !c.status.Pending
}

// GetErrorStatus returns the status of the most recent compilation.
func (c *Compiler) GetErrorStatus() ErrorStatus {
	return c.status
}

// GetSourcePos returns the byte offset of the token most recently
// consumed by the lexer.
func (c *Compiler) GetSourcePos() int {
	return c.sourcePos
}

// Compile tokenizes, parses, and generates code for src into code,
// resolving names through env. It stops at the first lex, parse, or
// codegen error; on failure code may be partially populated and must be
// discarded. A nil env resolves no names, so any identifier or call fails
// the compilation.
func (c *Compiler) Compile(src string, code *Ucode, env Env) error {
	c.Clear()
	if env == nil {
		env = emptyEnv{}
	}
	c.state = stateTokenizing
	c.units = supportedUnits(c.unitResolver)
	c.tokenizer.Restart(src)

	c.state = stateParsing
	p := parser{c: c}
	root, err := p.parse()
	if err != nil {
		c.reportError(StageParse, err)
		return err
	}
	c.tree = root

	c.state = stateCodegen
	if err := c.generate(code, env, root); err != nil {
		c.reportError(StageCodegen, err)
		return err
	}
	c.state = stateDone
	return nil
}

func (c *Compiler) reportError(stage Stage, err error) {
	pos := -1
	if ie, ok := err.(InputError); ok {
		pos = ie.Pos()
	}
	c.status = ErrorStatus{Pending: true, Stage: stage, Message: err.Error(), SrcPos: pos}
	c.state = stateError
}
