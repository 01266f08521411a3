// Package ruleexpr implements a small expression compiler and stack machine.
//
// An expression like "A.clearance + 0.25mm > min_gap" is compiled to a
// linear sequence of micro-operations (a Ucode) which can be executed many
// times against host-supplied variable and function bindings. The host
// provides an Env that resolves identifiers and call names at compile time;
// variable values themselves are fetched late, on every run, so a compiled
// expression can be reused as the underlying data changes.
//
// Numeric literals may carry a unit suffix. Units are resolved through a
// pluggable UnitResolver and folded into the literal during code
// generation, so execution never pays for conversion.
//
// Expressions have no loops, assignment, or user-defined functions. The
// value model is a tagged union of float64 and string.
package ruleexpr
