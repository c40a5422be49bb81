// Package checker infers primitive types over the flat IR and reports type
// errors as diagnostics. Checking never stops at the first problem: every
// rule yields a best-effort type so the rest of the program is still checked.
package checker

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/takoeight0821/rustscript/ast"
	"github.com/takoeight0821/rustscript/env"
	"github.com/takoeight0821/rustscript/token"
	"github.com/takoeight0821/rustscript/types"
	"github.com/takoeight0821/rustscript/utils"
)

// Diagnostic is a reported type error.
type Diagnostic struct {
	Line    int
	Lexeme  string
	Message string
}

func (d Diagnostic) Error() string {
	return utils.ErrorAt{
		Where: token.Token{Kind: token.IDENT, Lexeme: d.Lexeme, Line: d.Line},
		Err:   errors.New(d.Message),
	}.Error()
}

type Checker struct {
	logger      *slog.Logger
	diagnostics []Diagnostic

	signatures []ast.Signature
	next       int
	byName     map[string]ast.Signature
}

func New(logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Checker{logger: logger, byName: make(map[string]ast.Signature)}
}

// Diagnostics returns everything reported so far, in report order.
func (c *Checker) Diagnostics() []Diagnostic {
	return c.diagnostics
}

func (c *Checker) report(at ast.Node, format string, args ...any) {
	d := Diagnostic{Line: at.Line, Lexeme: at.Lexeme, Message: fmt.Sprintf(format, args...)}
	c.diagnostics = append(c.diagnostics, d)
	c.logger.Warn(d.Message, "line", d.Line, "lexeme", d.Lexeme)
}

// Check infers the type of one expression or declaration shape:
//
//	[a op b op c]        two chained arithmetic operators, folded left to right
//	[a op b]             arithmetic operator
//	[Set marker value]   assignment to an existing binding
//	[Let marker value]   declaration in scope
//	[String] [Number]    literal
//	[marker]             variable reference
//	[LeftBrace ... ]     block in a child scope
func (c *Checker) Check(expr []ast.Node, scope *env.Scope) types.Type {
	if len(expr) == 0 {
		c.report(ast.Node{}, "unrecognized expression shape")
		return types.Unknown
	}

	head := expr[0]

	switch {
	case head.Kind == ast.Set:
		return c.assign(expr, scope)
	case head.Kind == ast.Let:
		return c.declare(expr, scope)
	case head.Kind == ast.LeftBrace:
		return c.block(expr, scope)
	case len(expr) == 5 && expr[1].Kind.IsArithmetic() && expr[3].Kind.IsArithmetic():
		left := c.Check(expr[:3], scope)
		return c.Check([]ast.Node{typeNode(left, expr[2].Line), expr[3], expr[4]}, scope)
	case len(expr) == 3 && expr[1].Kind.IsArithmetic():
		return c.binary(expr, scope)
	case len(expr) == 1:
		return c.single(head, scope)
	}

	c.report(head, "unrecognized expression shape")

	return types.Unknown
}

func (c *Checker) single(node ast.Node, scope *env.Scope) types.Type {
	switch {
	case node.Kind == ast.String, node.Kind == ast.Number:
		return types.OfLiteral(node.Kind)
	case node.Kind == ast.Unknown:
		return types.Unknown
	case node.Kind.IsTypedVar():
		typ, err := scope.Lookup(node.Lexeme)
		if err != nil {
			c.report(node, "undefined variable: %v", err)
			return types.Unknown
		}
		return typ
	}

	c.report(node, "unrecognized expression shape")

	return types.Unknown
}

func (c *Checker) binary(expr []ast.Node, scope *env.Scope) types.Type {
	op := expr[1]
	left := c.Check(expr[:1], scope)
	right := c.Check(expr[2:], scope)

	allowed := types.Operands(op.Kind)
	if !left.In(allowed) || !right.In(allowed) {
		c.report(op, "operator %s does not accept %s and %s", op.Lexeme, left, right)
	}
	if !left.Equals(right) {
		c.report(op, "mismatched types %s and %s", left, right)
	}

	return right
}

func (c *Checker) declare(expr []ast.Node, scope *env.Scope) types.Type {
	if len(expr) != 3 || !expr[1].Kind.IsTypedVar() {
		c.report(expr[0], "unrecognized expression shape")
		return types.Unknown
	}

	name := expr[1].Lexeme
	typ := c.Check(expr[2:], scope)
	c.logger.Debug("bind", "name", name, "type", typ, "depth", scope.Depth())

	return scope.Define(name, typ)
}

func (c *Checker) assign(expr []ast.Node, scope *env.Scope) types.Type {
	if len(expr) < 3 || !expr[1].Kind.IsTypedVar() {
		c.report(expr[0], "unrecognized expression shape")
		return types.Unknown
	}

	target := expr[1]
	value := c.Check(expr[2:], scope)

	existing, err := scope.Lookup(target.Lexeme)
	if err != nil {
		c.report(target, "undefined variable: %v", err)
		return value
	}
	if existing != types.Unknown && value != types.Unknown && !existing.Equals(value) {
		c.report(target, "cannot assign %s to %s of type %s", value, target.Lexeme, existing)
	}

	return value
}

func (c *Checker) block(expr []ast.Node, scope *env.Scope) types.Type {
	inner := expr[1:]
	if n := len(inner); n > 0 && inner[n-1].Kind == ast.RightBrace {
		inner = inner[:n-1]
	}

	child := scope.Child()
	result := types.Unknown
	for _, stmt := range Statements(inner) {
		result = c.statement(stmt, child)
	}

	return result
}

// typeNode stands an inferred type in for an operand.
func typeNode(typ types.Type, line int) ast.Node {
	return ast.Node{Kind: typ.Kind(), Lexeme: typ.String(), Line: line}
}
