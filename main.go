package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/takoeight0821/rustscript/checker"
	"github.com/takoeight0821/rustscript/config"
	"github.com/takoeight0821/rustscript/driver"
	"github.com/takoeight0821/rustscript/nameresolve"
)

// sysexits codes.
const (
	exitUsage   = 64
	exitDataErr = 65
)

type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	return e.err.Error()
}

func (e exitError) Unwrap() error {
	return e.err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "rustscript [file]",
		Short: "Compile rustscript programs to JavaScript",
		Long: `rustscript compiles a small statically checked scripting language to
JavaScript. With a file argument it builds that file; without one it starts
an interactive prompt.`,
		Args:              usage(cobra.MaximumNArgs(1)),
		PersistentPreRunE: a.load,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.build(cmd, args[0])
			}
			return a.repl(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(a.buildCmd())
	root.AddCommand(a.checkCmd())
	root.AddCommand(a.tokensCmd())
	root.AddCommand(a.irCmd())
	root.AddCommand(a.replCmd())

	return root
}

func usage(args cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, list []string) error {
		if err := args(cmd, list); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Usage: %s\n", cmd.UseLine())
			return exitError{code: exitUsage, err: err}
		}
		return nil
	}
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	if cfg.File != "" {
		a.logger.Debug("using config file", "path", cfg.File)
	}

	return nil
}

func (a *app) runner() (*driver.PassRunner, *checker.Pass) {
	r := driver.NewPassRunner(
		driver.WithEntryPoint(a.cfg.EntryPoint),
		driver.WithIndent(a.cfg.Indent),
		driver.WithLogger(a.logger),
	)
	r.AddPass(nameresolve.NewResolver())
	pass := checker.NewPass(a.logger)
	r.AddPass(pass)

	return r, pass
}
