// Package env implements the chain of lexical scopes the type checker binds
// variable types in.
package env

import (
	"fmt"

	"github.com/takoeight0821/rustscript/types"
)

type Scope struct {
	parent   *Scope
	bindings map[string]types.Type
}

// NewGlobal creates the root scope of a check run.
func NewGlobal() *Scope {
	return newScope(nil)
}

func newScope(parent *Scope) *Scope {
	return &Scope{
		parent:   parent,
		bindings: make(map[string]types.Type),
	}
}

// Child opens a scope for a nested block.
func (s *Scope) Child() *Scope {
	return newScope(s)
}

func (s *Scope) Parent() *Scope {
	return s.parent
}

// Define binds name in s itself, replacing any earlier binding there, and
// returns typ.
func (s *Scope) Define(name string, typ types.Type) types.Type {
	s.bindings[name] = typ
	return typ
}

type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s is not defined", e.Name)
}

// Lookup resolves name in s, then in each enclosing scope up to the global one.
func (s *Scope) Lookup(name string) (types.Type, error) {
	for scope := s; scope != nil; scope = scope.parent {
		if typ, ok := scope.bindings[name]; ok {
			return typ, nil
		}
	}
	return types.Unknown, &NotFoundError{Name: name}
}

// Depth is 0 for the global scope.
func (s *Scope) Depth() int {
	depth := 0
	for scope := s.parent; scope != nil; scope = scope.parent {
		depth++
	}
	return depth
}
