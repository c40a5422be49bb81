// Package types holds the primitive type values the checker reasons about.
package types

import "github.com/takoeight0821/rustscript/ast"

type Type int

const (
	Unknown Type = iota
	Number
	String
)

func (t Type) String() string {
	switch t {
	case Number:
		return "number"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

func (t Type) Equals(other Type) bool {
	return t == other
}

// Kind converts t back into the IR node kind of a value of that type, so an
// inferred type can stand in for an operand of a further binary expression.
func (t Type) Kind() ast.Kind {
	switch t {
	case Number:
		return ast.Number
	case String:
		return ast.String
	default:
		return ast.Unknown
	}
}

// Marker returns the typed-variable marker kind for a binding of type t.
func (t Type) Marker() ast.Kind {
	if t == Number {
		return ast.NumberType
	}
	return ast.StringType
}

// In reports whether t is one of set.
func (t Type) In(set []Type) bool {
	for _, s := range set {
		if t.Equals(s) {
			return true
		}
	}
	return false
}

// FromName maps a parameter annotation to a type. bool has no type of its own
// and, like any other name, yields Unknown.
func FromName(name string) Type {
	switch name {
	case "number":
		return Number
	case "string":
		return String
	default:
		return Unknown
	}
}

// OfLiteral returns the type of a literal node kind.
func OfLiteral(kind ast.Kind) Type {
	switch kind {
	case ast.Number:
		return Number
	case ast.String:
		return String
	default:
		return Unknown
	}
}

// Operands returns the operand types an arithmetic operator accepts.
func Operands(op ast.Kind) []Type {
	switch op {
	case ast.Plus:
		return []Type{String, Number}
	case ast.Minus, ast.Star, ast.Slash:
		return []Type{Number}
	default:
		return []Type{Unknown}
	}
}
