package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"
	"github.com/takoeight0821/rustscript/checker"
	"github.com/takoeight0821/rustscript/config"
	"github.com/takoeight0821/rustscript/lexer"
	"github.com/takoeight0821/rustscript/parser"
)

func (a *app) buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Compile a file to JavaScript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.build(cmd, args[0])
		},
	}
	cmd.Flags().StringP("output", "o", config.DefaultOutput, "output file")

	return cmd
}

func (a *app) build(cmd *cobra.Command, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	r, pass := a.runner()
	js, err := r.Compile(string(source))
	if err != nil {
		printErrors(cmd.ErrOrStderr(), err)
		return exitError{code: exitDataErr, err: err}
	}
	if err := a.report(cmd.ErrOrStderr(), pass.Diagnostics()); err != nil {
		return err
	}

	if dir := filepath.Dir(a.cfg.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(a.cfg.Output, []byte(js), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.cfg.Output, err)
	}
	a.logger.Info("wrote output", "path", a.cfg.Output, "bytes", len(js))

	return nil
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Parse and type-check a file without writing output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			r, pass := a.runner()
			if _, err := r.RunSource(string(source)); err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return exitError{code: exitDataErr, err: err}
			}
			if err := a.report(cmd.ErrOrStderr(), pass.Diagnostics()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d type diagnostics\n", args[0], len(pass.Diagnostics()))
			return nil
		},
	}
}

func (a *app) tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the tokens of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			tokens, err := lexer.Lex(string(source))
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return exitError{code: exitDataErr, err: err}
			}
			for _, tok := range tokens {
				fmt.Fprintln(cmd.OutOrStdout(), tok)
			}
			return nil
		},
	}
}

func (a *app) irCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ir <file>",
		Short: "Print the intermediate representation of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			tokens, err := lexer.Lex(string(source))
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return exitError{code: exitDataErr, err: err}
			}
			program, err := parser.NewParser(tokens).SetEntryPoint(a.cfg.EntryPoint).Program()
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return exitError{code: exitDataErr, err: err}
			}

			repr.New(cmd.OutOrStdout(), repr.Indent("  "), repr.OmitEmpty(true)).Println(program)
			return nil
		},
	}
}

// report prints type diagnostics and fails in strict mode.
func (a *app) report(w io.Writer, diags []checker.Diagnostic) error {
	for _, d := range diags {
		fmt.Fprintf(w, "Warning: %v\n", d)
	}
	if a.cfg.Strict && len(diags) > 0 {
		return exitError{code: exitDataErr, err: fmt.Errorf("%d type diagnostics", len(diags))}
	}
	return nil
}

// printErrors prints one line per underlying error, dropping the
// pipeline stage prefixes.
func printErrors(w io.Writer, err error) {
	switch e := err.(type) {
	case interface{ Unwrap() []error }:
		for _, err := range e.Unwrap() {
			printErrors(w, err)
		}
	case interface{ Unwrap() error }:
		if inner := e.Unwrap(); inner != nil && isStage(err) {
			printErrors(w, inner)
			return
		}
		fmt.Fprintf(w, "Error: %v\n", err)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

var stages = []string{"lex: ", "parse:\n", "init: ", "run: ", "emit: "}

func isStage(err error) bool {
	for _, s := range stages {
		if strings.HasPrefix(err.Error(), s) {
			return true
		}
	}
	return false
}
