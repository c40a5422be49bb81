package checker

import (
	"log/slog"

	"github.com/takoeight0821/rustscript/ast"
)

// Pass runs the checker as a driver pass. Type errors never fail the pass;
// they are available from Diagnostics afterwards.
type Pass struct {
	logger  *slog.Logger
	checker *Checker
}

func NewPass(logger *slog.Logger) *Pass {
	return &Pass{logger: logger, checker: New(logger)}
}

func (p *Pass) Init(*ast.Program) error {
	p.checker = New(p.logger)
	return nil
}

func (p *Pass) Run(program *ast.Program) (*ast.Program, error) {
	p.checker.Program(program)
	return program, nil
}

func (p *Pass) Diagnostics() []Diagnostic {
	return p.checker.Diagnostics()
}
