package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/agbru/mcsim/internal/config"
	apperrors "github.com/agbru/mcsim/internal/errors"
	"github.com/agbru/mcsim/internal/logging"
	"github.com/agbru/mcsim/internal/orchestration"
	"github.com/agbru/mcsim/internal/simulation"
	"github.com/agbru/mcsim/internal/ui"
)

// Application represents the mcsim application instance.
type Application struct {
	Config     config.AppConfig
	Portfolios []simulation.Portfolio
	ErrWriter  io.Writer
	// Logger receives the orchestration logs of CLI and server runs. Nil
	// means a console logger on ErrWriter.
	Logger logging.Logger
	// NewSource overrides the return source of every task.
	NewSource func(index int, p simulation.Portfolio) simulation.ReturnSource
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithLogger sets the logger used by CLI and server runs.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// WithSourceFactory replaces the random return source of every task.
func WithSourceFactory(f func(index int, p simulation.Portfolio) simulation.ReturnSource) AppOption {
	return func(a *Application) { a.NewSource = f }
}

// New creates a new Application by parsing command-line arguments, loading
// the portfolio set and narrowing it to --only.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "mcsim"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		// The flag package has already reported its own parse errors.
		var cfgErr apperrors.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(errWriter, "Error: %v\n", err)
		}
		return nil, err
	}
	if cfg.Version {
		app.Config = cfg
		return app, nil
	}

	portfolios, err := cfg.ResolvePortfolios()
	if err != nil {
		fmt.Fprintf(errWriter, "Error: %v\n", err)
		return nil, err
	}
	portfolios, err = orchestration.SelectPortfolios(portfolios, cfg.Only)
	if err != nil {
		fmt.Fprintf(errWriter, "Error: %v\n", err)
		return nil, err
	}

	app.Config = config.ApplyAdaptiveDefaults(cfg)
	app.Portfolios = portfolios
	return app, nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Version {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}

	if err := logging.SetLevel(a.Config.LogLevel); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	ui.InitTheme(a.Config.NoColor)

	switch {
	case a.Config.Serve:
		return a.runServe(ctx)
	case a.Config.TUI:
		return a.runTUI(ctx)
	default:
		return a.runSimulate(ctx, out)
	}
}

// logger returns the configured logger or a console logger on ErrWriter.
func (a *Application) logger() logging.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return logging.NewConsoleLogger(a.ErrWriter)
}

// options builds the orchestration options shared by every mode.
func (a *Application) options(logger logging.Logger) orchestration.Options {
	return orchestration.Options{
		Budget:         a.Config.Timeout,
		Workers:        a.Config.Workers,
		WithStats:      a.Config.Verbose,
		ProgressStride: a.Config.ProgressStride,
		Logger:         logger,
		NewSource:      a.NewSource,
	}
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// ExitCodeFor maps a construction error from New to a process exit code.
// Every such error is a usage problem except --help.
func ExitCodeFor(err error) int {
	if err == nil || IsHelpError(err) {
		return apperrors.ExitSuccess
	}
	return apperrors.ExitErrorConfig
}
