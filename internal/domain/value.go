package domain

import (
	"fmt"
	"strconv"
)

// ParamKind discriminates the value types an integration parameter can hold
type ParamKind string

const (
	ParamFloat  ParamKind = "float"
	ParamString ParamKind = "string"
	ParamBool   ParamKind = "bool"
)

// ParamValue is a tagged value for an integration parameter. Floats are kept
// as float64 so a captured value restores bit-exact.
type ParamValue struct {
	Kind  ParamKind
	Float float64
	Str   string
	Bool  bool
}

// FloatValue creates a float parameter value
func FloatValue(v float64) ParamValue {
	return ParamValue{Kind: ParamFloat, Float: v}
}

// StringValue creates a string parameter value
func StringValue(v string) ParamValue {
	return ParamValue{Kind: ParamString, Str: v}
}

// BoolValue creates a boolean parameter value
func BoolValue(v bool) ParamValue {
	return ParamValue{Kind: ParamBool, Bool: v}
}

// String renders the value for logs and error messages
func (v ParamValue) String() string {
	switch v.Kind {
	case ParamFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ParamString:
		return v.Str
	case ParamBool:
		return strconv.FormatBool(v.Bool)
	default:
		return fmt.Sprintf("<%s>", v.Kind)
	}
}

// Equal reports whether two values have the same kind and payload
func (v ParamValue) Equal(other ParamValue) bool {
	return v == other
}

// Assignment sets one named parameter to a value
type Assignment struct {
	Name  string
	Value ParamValue
}

// AssignmentError records a single failed assignment inside a batch
type AssignmentError struct {
	Name string
	Err  error
}

func (e AssignmentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e AssignmentError) Unwrap() error { return e.Err }
