package driver

import (
	"fmt"
	"log/slog"

	"github.com/takoeight0821/rustscript/ast"
	"github.com/takoeight0821/rustscript/emit"
	"github.com/takoeight0821/rustscript/lexer"
	"github.com/takoeight0821/rustscript/parser"
)

type Pass interface {
	Init(*ast.Program) error
	Run(*ast.Program) (*ast.Program, error)
}

type PassRunner struct {
	passes []Pass
	entry  string
	indent string
	logger *slog.Logger
}

type Option func(*PassRunner)

// WithEntryPoint sets the function that gets the Main node.
func WithEntryPoint(name string) Option {
	return func(r *PassRunner) {
		if name != "" {
			r.entry = name
		}
	}
}

// WithIndent sets the indentation unit of emitted code.
func WithIndent(indent string) Option {
	return func(r *PassRunner) {
		r.indent = indent
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *PassRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewPassRunner(opts ...Option) *PassRunner {
	r := &PassRunner{
		entry:  parser.DefaultEntryPoint,
		indent: emit.DefaultIndent,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// AddPass adds a pass to the end of the pass list.
func (r *PassRunner) AddPass(pass Pass) {
	r.passes = append(r.passes, pass)
}

// Run executes passes in order.
// If an error occurs, it stops the execution and returns the current program.
func (r *PassRunner) Run(program *ast.Program) (*ast.Program, error) {
	for i, pass := range r.passes {
		r.logger.Debug("run pass", "index", i, "type", fmt.Sprintf("%T", pass))

		err := pass.Init(program)
		if err != nil {
			return program, fmt.Errorf("init: %w", err)
		}
		program, err = pass.Run(program)
		if err != nil {
			return program, fmt.Errorf("run: %w", err)
		}
	}

	return program, nil
}

// RunSource lexes and parses the source code and executes passes in order.
func (r *PassRunner) RunSource(source string) (*ast.Program, error) {
	tokens, err := lexer.Lex(source)
	if err != nil {
		return nil, fmt.Errorf("lex: %w", err)
	}
	r.logger.Debug("lexed", "tokens", len(tokens))

	program, err := parser.NewParser(tokens).SetEntryPoint(r.entry).Program()
	if err != nil {
		return program, fmt.Errorf("parse:\n%w", err)
	}
	r.logger.Debug("parsed", "nodes", len(program.Nodes), "signatures", len(program.Signatures))

	return r.Run(program)
}

// Compile runs the source through every pass and renders it as JavaScript.
func (r *PassRunner) Compile(source string) (string, error) {
	program, err := r.RunSource(source)
	if err != nil {
		return "", err
	}

	js, err := emit.New(r.indent).Emit(program.Nodes)
	if err != nil {
		return "", fmt.Errorf("emit: %w", err)
	}

	return js, nil
}
