package ruleexpr

import "strconv"

// ValueType tags the payload carried by a Value.
type ValueType int8

const (
	TypeString ValueType = iota + 1
	TypeNumeric
	TypeUndefined
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumeric:
		return "numeric"
	case TypeUndefined:
		return "undefined"
	default:
		return "valuetype(" + strconv.Itoa(int(t)) + ")"
	}
}

// Value is a tagged runtime datum: a float64, a string, or undefined.
// The zero Value is undefined.
type Value struct {
	typ ValueType
	num float64
	str string
}

// NumericValue returns a numeric Value.
func NumericValue(v float64) Value {
	return Value{typ: TypeNumeric, num: v}
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{typ: TypeString, str: s}
}

// Type reports the value's tag. The zero Value reports TypeUndefined.
func (v *Value) Type() ValueType {
	if v.typ == 0 {
		return TypeUndefined
	}
	return v.typ
}

// AsDouble returns the numeric payload. It is 0 for string and undefined
// values.
func (v *Value) AsDouble() float64 {
	return v.num
}

// AsString returns the string payload. It is empty for numeric and
// undefined values.
func (v *Value) AsString() string {
	return v.str
}

// SetDouble makes v numeric with the given payload.
func (v *Value) SetDouble(d float64) {
	v.typ = TypeNumeric
	v.num = d
	v.str = ""
}

// SetString makes v a string with the given payload.
func (v *Value) SetString(s string) {
	v.typ = TypeString
	v.str = s
	v.num = 0
}

// Set copies both tag and payload from o.
func (v *Value) Set(o Value) {
	*v = o
}

// EqualTo reports whether v and o are equal. Values of different types are
// never equal; comparing across types is safe and yields false.
func (v *Value) EqualTo(o *Value) bool {
	switch {
	case v.Type() == TypeNumeric && o.Type() == TypeNumeric:
		return v.num == o.num
	case v.Type() == TypeString && o.Type() == TypeString:
		return v.str == o.str
	}
	return false
}

// truthy applies numeric-as-truthy coercion: any nonzero numeric payload is
// true, everything else is false.
func (v *Value) truthy() bool {
	return v.Type() == TypeNumeric && v.num != 0
}

// String formats the value for instruction listings and diagnostics.
func (v *Value) String() string {
	switch v.Type() {
	case TypeNumeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case TypeString:
		return strconv.Quote(v.str)
	default:
		return "undefined"
	}
}
