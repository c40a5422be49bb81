// Package emit renders the flat IR as JavaScript in a single pass.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/takoeight0821/rustscript/ast"
)

// DefaultIndent is used when New is given an empty indent.
const DefaultIndent = "    "

type UnsupportedNodeError struct {
	Node ast.Node
}

func (e UnsupportedNodeError) Error() string {
	return fmt.Sprintf("unsupported node %v at line %d", e.Node, e.Node.Line)
}

type Emitter struct {
	indent string
}

func New(indent string) *Emitter {
	if indent == "" {
		indent = DefaultIndent
	}
	return &Emitter{indent: indent}
}

var texts = map[ast.Kind]string{
	ast.Comma:        ", ",
	ast.Dot:          ".",
	ast.Assign:       " = ",
	ast.Plus:         " + ",
	ast.Minus:        " - ",
	ast.Star:         " * ",
	ast.Slash:        " / ",
	ast.Bang:         "!",
	ast.BangEqual:    " !== ",
	ast.Equals:       " === ",
	ast.Greater:      " > ",
	ast.GreaterEqual: " >= ",
	ast.LessEqual:    " <= ",
	ast.And:          " && ",
	ast.Or:           " || ",
	ast.True:         "true",
	ast.False:        "false",
	ast.Nil:          "null",
	ast.Let:          "let ",
	ast.Print:        "console.log",
	ast.Break:        "break",
}

// state is the position of one Emit call.
type state struct {
	out    strings.Builder
	indent string
	level  int
	bol    bool

	parens int
	// header is the paren depth of an open if/while/for header, or 0.
	header    int
	pending   bool
	forHeader bool

	classHead   bool
	classBodies []int
}

// Emit renders nodes. It fails on the first node kind that has no
// JavaScript rendering.
func (e *Emitter) Emit(nodes []ast.Node) (string, error) {
	s := &state{indent: e.indent, bol: true}

	for i, n := range nodes {
		next := ast.Unknown
		if i+1 < len(nodes) {
			next = nodes[i+1].Kind
		}
		if err := s.node(n, next); err != nil {
			return s.out.String(), err
		}
	}

	return s.out.String(), nil
}

func (s *state) write(text string) {
	if s.bol && text != "" {
		s.out.WriteString(strings.Repeat(s.indent, s.level))
		s.bol = false
	}
	s.out.WriteString(text)
}

func (s *state) newline() {
	s.out.WriteString("\n")
	s.bol = true
}

func (s *state) inClassBody() bool {
	return len(s.classBodies) > 0 && s.classBodies[len(s.classBodies)-1] == s.level
}

func (s *state) node(n ast.Node, next ast.Kind) error {
	if text, ok := texts[n.Kind]; ok {
		s.write(text)
		return nil
	}

	//exhaustive:ignore
	switch n.Kind {
	case ast.Identifier, ast.Number:
		s.write(n.Lexeme)
	case ast.String:
		// Print templates carry no literal and are already quoted.
		if text, ok := n.Literal.(string); ok {
			s.write(strconv.Quote(text))
		} else {
			s.write(n.Lexeme)
		}
	case ast.Class:
		s.write("class ")
		s.classHead = true
	case ast.Fn:
		if !s.inClassBody() {
			s.write("function ")
		}
	case ast.If, ast.While:
		s.write(strings.ToLower(n.Kind.String()) + " ")
		s.pending = true
	case ast.For:
		s.write("for ")
		s.pending = true
		s.forHeader = true
	case ast.LeftParen:
		s.write("(")
		s.parens++
		if s.pending {
			s.header = s.parens
			s.pending = false
		}
	case ast.RightParen:
		s.write(")")
		if s.header != 0 && s.parens == s.header {
			s.header = 0
			s.forHeader = false
			if next != ast.LeftBrace {
				s.write(" ")
			}
		}
		s.parens--
	case ast.LeftBrace:
		if s.bol {
			s.write("{")
		} else {
			s.write(" {")
		}
		s.newline()
		s.level++
		if s.classHead {
			s.classBodies = append(s.classBodies, s.level)
			s.classHead = false
		}
	case ast.RightBrace:
		if s.inClassBody() {
			s.classBodies = s.classBodies[:len(s.classBodies)-1]
		}
		s.level--
		s.write("}")
		if next == ast.Else {
			s.write(" ")
		} else {
			s.newline()
		}
	case ast.SemiColon:
		if s.forHeader && s.header != 0 {
			s.write("; ")
		} else {
			s.write(";")
			s.newline()
		}
	case ast.Else:
		s.write("else")
		if next != ast.LeftBrace {
			s.write(" ")
		}
	case ast.Return:
		s.write("return")
		if next != ast.SemiColon {
			s.write(" ")
		}
	case ast.Less:
		if s.classHead && s.parens == 0 {
			s.write(" extends ")
		} else {
			s.write(" < ")
		}
	case ast.Main:
		s.write(n.Lexeme + "();")
		s.newline()
	default:
		return UnsupportedNodeError{Node: n}
	}

	return nil
}
