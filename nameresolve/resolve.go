// Package nameresolve checks that every called function and every superclass
// names a declaration visible from where it is used. Function and class
// declarations are visible throughout the block that declares them.
package nameresolve

import (
	"errors"
	"fmt"

	"github.com/takoeight0821/rustscript/ast"
	"github.com/takoeight0821/rustscript/token"
	"github.com/takoeight0821/rustscript/utils"
)

type Resolver struct {
	env *env
}

func NewResolver() *Resolver {
	return &Resolver{env: newEnv(nil)}
}

type env struct {
	parent *env
	table  map[string]ast.Kind
}

func newEnv(parent *env) *env {
	return &env{
		parent: parent,
		table:  make(map[string]ast.Kind),
	}
}

func (r *Resolver) Name() string {
	return "nameresolve.Resolver"
}

// Init registers the top-level declarations.
func (r *Resolver) Init(program *ast.Program) error {
	r.env = newEnv(nil)
	return r.hoist(program.Nodes)
}

func (r *Resolver) Run(program *ast.Program) (*ast.Program, error) {
	var errs error
	nodes := program.Nodes
	classHead := false

	for i, n := range nodes {
		//exhaustive:ignore
		switch n.Kind {
		case ast.Class:
			classHead = true
			if i+3 < len(nodes) && nodes[i+2].Kind == ast.Less {
				errs = errors.Join(errs, r.resolve(nodes[i+3], ast.Class))
			}
		case ast.LeftBrace:
			r.env = newEnv(r.env)
			// Methods are not callable by their bare name.
			if classHead {
				classHead = false
				continue
			}
			errs = errors.Join(errs, r.hoist(nodes[i+1:]))
		case ast.RightBrace:
			if r.env.parent != nil {
				r.env = r.env.parent
			}
		case ast.Identifier:
			if i+1 < len(nodes) && nodes[i+1].Kind == ast.LeftParen && (i == 0 || nodes[i-1].Kind != ast.Fn) {
				errs = errors.Join(errs, r.resolve(n, ast.Fn))
			}
		}
	}

	return program, errs
}

// hoist defines the functions and classes declared directly in the block
// that nodes starts in.
func (r *Resolver) hoist(nodes []ast.Node) error {
	var errs error
	depth := 0

	for i, n := range nodes {
		//exhaustive:ignore
		switch n.Kind {
		case ast.LeftBrace:
			depth++
		case ast.RightBrace:
			depth--
			if depth < 0 {
				return errs
			}
		case ast.Fn, ast.Class:
			if depth == 0 && i+1 < len(nodes) && nodes[i+1].Kind == ast.Identifier {
				errs = errors.Join(errs, r.define(nodes[i+1], n.Kind))
			}
		}
	}

	return errs
}

func (r *Resolver) define(name ast.Node, kind ast.Kind) error {
	if _, ok := r.env.table[name.Lexeme]; ok {
		return AlreadyDefinedError{Name: name}
	}
	r.env.table[name.Lexeme] = kind
	return nil
}

func (r *Resolver) resolve(name ast.Node, want ast.Kind) error {
	kind, err := r.env.lookup(name)
	if err != nil {
		return err
	}
	if kind != want {
		return KindError{Name: name, Want: want}
	}
	return nil
}

func (e *env) lookup(name ast.Node) (ast.Kind, error) {
	if kind, ok := e.table[name.Lexeme]; ok {
		return kind, nil
	}

	if e.parent != nil {
		return e.parent.lookup(name)
	}

	return ast.Unknown, NotDefinedError{Name: name}
}

func at(n ast.Node) token.Token {
	return token.Token{Kind: token.IDENT, Lexeme: n.Lexeme, Line: n.Line}
}

type NotDefinedError struct {
	Name ast.Node
}

func (e NotDefinedError) Error() string {
	return utils.MsgAt(at(e.Name), fmt.Sprintf("%s is not defined", e.Name.Lexeme))
}

type AlreadyDefinedError struct {
	Name ast.Node
}

func (e AlreadyDefinedError) Error() string {
	return utils.MsgAt(at(e.Name), fmt.Sprintf("%s is already defined", e.Name.Lexeme))
}

// KindError reports a name used as a function that declares a class, or the
// other way around.
type KindError struct {
	Name ast.Node
	Want ast.Kind
}

func (e KindError) Error() string {
	what := "function"
	if e.Want == ast.Class {
		what = "class"
	}
	return utils.MsgAt(at(e.Name), fmt.Sprintf("%s is not a %s", e.Name.Lexeme, what))
}
