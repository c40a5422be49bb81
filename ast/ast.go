package ast

import (
	"fmt"
	"strings"
)

// Kind tags a node of the flat IR.
type Kind int

const (
	Unknown Kind = iota

	// Punctuation.
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	SemiColon
	Assign

	// Operators.
	Plus
	Minus
	Star
	Slash
	Bang
	BangEqual
	Equals
	Greater
	GreaterEqual
	Less
	LessEqual
	And
	Or

	// Literals and identifiers.
	Number
	String
	True
	False
	Nil
	Identifier

	// Keywords.
	Break
	Class
	Else
	Fn
	For
	If
	Let
	Print
	Return
	While

	// Main follows the block of the program's entry-point function.
	Main
	// Set heads an assignment shape handed to the type checker.
	Set

	// Typed-variable markers. The lexeme carries the variable name.
	NumberType
	StringType
)

var kindNames = [...]string{
	Unknown:      "Unknown",
	LeftParen:    "LeftParen",
	RightParen:   "RightParen",
	LeftBrace:    "LeftBrace",
	RightBrace:   "RightBrace",
	Comma:        "Comma",
	Dot:          "Dot",
	SemiColon:    "SemiColon",
	Assign:       "Assign",
	Plus:         "Plus",
	Minus:        "Minus",
	Star:         "Star",
	Slash:        "Slash",
	Bang:         "Bang",
	BangEqual:    "BangEqual",
	Equals:       "Equals",
	Greater:      "Greater",
	GreaterEqual: "GreaterEqual",
	Less:         "Less",
	LessEqual:    "LessEqual",
	And:          "And",
	Or:           "Or",
	Number:       "Number",
	String:       "String",
	True:         "True",
	False:        "False",
	Nil:          "Nil",
	Identifier:   "Identifier",
	Break:        "Break",
	Class:        "Class",
	Else:         "Else",
	Fn:           "Fn",
	For:          "For",
	If:           "If",
	Let:          "Let",
	Print:        "Print",
	Return:       "Return",
	While:        "While",
	Main:         "Main",
	Set:          "Set",
	NumberType:   "NumberType",
	StringType:   "StringType",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsTypedVar reports whether k is a typed-variable marker.
func (k Kind) IsTypedVar() bool {
	return k == NumberType || k == StringType
}

// IsArithmetic reports whether k is one of + - * /.
func (k Kind) IsArithmetic() bool {
	switch k {
	case Plus, Minus, Star, Slash:
		return true
	default:
		return false
	}
}

// IsComparison reports whether k is a comparison or logical operator.
func (k Kind) IsComparison() bool {
	switch k {
	case BangEqual, Equals, Greater, GreaterEqual, Less, LessEqual, And, Or:
		return true
	default:
		return false
	}
}

// Node is one element of the flat IR.
type Node struct {
	Kind    Kind
	Lexeme  string
	Literal any
	Line    int
}

func (n Node) String() string {
	if n.Literal != nil {
		return fmt.Sprintf("%v %q %v", n.Kind, n.Lexeme, n.Literal)
	}
	return fmt.Sprintf("%v %q", n.Kind, n.Lexeme)
}

// Marker returns a typed-variable marker of the given kind naming name.
func Marker(kind Kind, name string, line int) Node {
	return Node{Kind: kind, Lexeme: name, Line: line}
}

// Kinds projects the node kinds of nodes, in order.
func Kinds(nodes []Node) []Kind {
	kinds := make([]Kind, len(nodes))
	for i, n := range nodes {
		kinds[i] = n.Kind
	}
	return kinds
}

// Dump renders nodes one per line.
func Dump(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(n.String())
		b.WriteString("\n")
	}
	return b.String()
}

// Depth scans nodes and reports the maximum brace nesting reached.
// It returns an error if a closing brace has no opener or an opener is never closed.
func Depth(nodes []Node) (int, error) {
	depth, max := 0, 0
	for i, n := range nodes {
		switch n.Kind {
		case LeftBrace:
			depth++
			if depth > max {
				max = depth
			}
		case RightBrace:
			depth--
			if depth < 0 {
				return max, UnbalancedError{Index: i}
			}
		}
	}
	if depth != 0 {
		return max, UnbalancedError{Index: len(nodes)}
	}
	return max, nil
}

type UnbalancedError struct {
	Index int
}

func (e UnbalancedError) Error() string {
	return fmt.Sprintf("unbalanced block markers at node %d", e.Index)
}
