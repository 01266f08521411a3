package ruleexpr

import "strconv"

// Stage identifies the phase that produced an error.
type Stage int

const (
	StageParse Stage = iota
	StageCodegen
	StageRuntime
)

func (s Stage) String() string {
	switch s {
	case StageParse:
		return "parse"
	case StageCodegen:
		return "codegen"
	case StageRuntime:
		return "runtime"
	default:
		return "stage(" + strconv.Itoa(int(s)) + ")"
	}
}

// ErrorStatus describes the most recent failure of a compile or run. It is
// overwritten by each new error, never accumulated.
type ErrorStatus struct {
	// Pending reports whether an error has been recorded and not cleared.
	Pending bool
	// Stage is the phase that failed.
	Stage Stage
	// Message is the human-readable description.
	Message string
	// SrcPos is the byte offset of the offending input, or -1 when the
	// error has no source location (runtime faults).
	SrcPos int
}

func (e ErrorStatus) String() string {
	if !e.Pending {
		return "ok"
	}
	s := e.Stage.String() + " error: " + e.Message
	if e.SrcPos >= 0 {
		s += " (offset " + strconv.Itoa(e.SrcPos) + ")"
	}
	return s
}

// InputError is an error with source position information. Every error
// produced from invalid expression text implements InputError.
type InputError interface {
	error
	// Pos returns the byte offset of the token that caused the error.
	Pos() int
}

// LexError indicates a malformed or unrecognized token.
type LexError struct {
	// Text is what the lexer was scanning when it failed.
	Text string
	// Kind is the sort of token being scanned, e.g. "number" or "string",
	// or empty if no token kind had been decided.
	Kind string
	// Offset is the byte offset of the token.
	Offset int
}

func (err *LexError) Error() string {
	if err.Kind == "" {
		return errpos(err.Offset, "unrecognized token "+strconv.Quote(err.Text))
	}
	return errpos(err.Offset, "malformed "+err.Kind+" "+strconv.Quote(err.Text))
}

func (err *LexError) Pos() int { return err.Offset }

// SyntaxError indicates a grammar violation.
type SyntaxError struct {
	// Offset is the byte offset of the unexpected token.
	Offset int
	// Token is the text of the unexpected token, or empty at end of input.
	Token string
	// Expect describes what the parser wanted, e.g. "expression" or ")".
	Expect string
}

func (err *SyntaxError) Error() string {
	got := "end of expression"
	if err.Token != "" {
		got = strconv.Quote(err.Token)
	}
	if err.Expect == "" {
		return errpos(err.Offset, "unexpected "+got)
	}
	return errpos(err.Offset, "expected "+err.Expect+", got "+got)
}

func (err *SyntaxError) Pos() int { return err.Offset }

// ResolveError indicates an identifier or call name the host's Env could
// not bind during code generation.
type ResolveError struct {
	// Offset is the byte offset of the name.
	Offset int
	// Name is the identifier, or the object name of a struct reference.
	Name string
	// Field is the field of a struct reference, if any.
	Field string
	// Call reports whether the name was used as a function or method.
	Call bool
}

func (err *ResolveError) Error() string {
	name := err.Name
	if err.Field != "" {
		name += "." + err.Field
	}
	if err.Call {
		return errpos(err.Offset, "unknown function "+strconv.Quote(name))
	}
	return errpos(err.Offset, "unknown variable "+strconv.Quote(name))
}

func (err *ResolveError) Pos() int { return err.Offset }

// FaultError indicates a fault during execution: an exhausted value arena
// or operand stack, an operand of the wrong type, or a failing host
// callback.
type FaultError struct {
	// Msg describes the fault.
	Msg string
	// Err is the underlying host callback error, if any.
	Err error
}

func (err *FaultError) Error() string {
	if err.Err != nil {
		return err.Msg + ": " + err.Err.Error()
	}
	return err.Msg
}

func (err *FaultError) Unwrap() error { return err.Err }

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*SyntaxError)(nil)
	_ InputError = (*ResolveError)(nil)
)
