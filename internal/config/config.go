// Package config parses command-line flags, MCSIM_ environment variables and
// the optional YAML portfolio file into an AppConfig.
package config

import (
	"flag"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	apperrors "github.com/agbru/mcsim/internal/errors"
	"github.com/agbru/mcsim/internal/simulation"
)

// EnvPrefix prefixes every environment variable read by the application.
const EnvPrefix = "MCSIM_"

// Defaults that are not simulation parameters.
const (
	DefaultTimeout  = 2 * time.Second
	DefaultFormat   = FormatTable
	DefaultAddr     = ":8080"
	DefaultLogLevel = "info"
)

// MaxYears bounds --years and the horizon_years of a portfolio file.
const MaxYears = 10_000

// Output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// AutoWorkers asks for one worker per CPU.
const AutoWorkers = -1

// AppConfig is the fully resolved application configuration.
type AppConfig struct {
	// Simulation parameters.
	StartingAmount float64
	Years          int
	Inflation      float64
	Iterations     int

	// Timeout is the wall-clock budget of a run.
	Timeout time.Duration
	// Workers bounds concurrent tasks; 0 is one goroutine per portfolio,
	// AutoWorkers is one per CPU.
	Workers int
	// ProgressStride is the number of trajectories between progress
	// reports. Zero picks a value from Iterations.
	ProgressStride int

	PortfoliosFile string
	// Only restricts the run to these portfolio names.
	Only []string

	OutputFile  string
	Format      string
	MetricsFile string

	Serve    bool
	Addr     string
	TUI      bool
	Quiet    bool
	Verbose  bool
	NoColor  bool
	LogLevel string
	Version  bool

	// explicit records the parameter keys set by a flag or an environment
	// variable, which a portfolio file must not override.
	explicit map[string]bool
}

// SimulationParameters returns the simulation parameters of the config.
func (c AppConfig) SimulationParameters() simulation.Parameters {
	return simulation.Parameters{
		StartingAmount: c.StartingAmount,
		HorizonYears:   c.Years,
		InflationRate:  c.Inflation,
		Iterations:     c.Iterations,
	}
}

// IsExplicit reports whether key was set by a flag or environment variable.
func (c AppConfig) IsExplicit(key string) bool {
	return c.explicit[key]
}

func (c *AppConfig) markExplicit(key string) {
	if c.explicit == nil {
		c.explicit = make(map[string]bool)
	}
	c.explicit[key] = true
}

// Validate checks the configuration for values that cannot be run.
func (c AppConfig) Validate() error {
	switch {
	case c.Iterations < 1:
		return apperrors.NewConfigError("--iterations must be at least 1, got %d", c.Iterations)
	case c.Years < 0 || c.Years > MaxYears:
		return apperrors.NewConfigError("--years must be between 0 and %d, got %d", MaxYears, c.Years)
	case math.IsNaN(c.StartingAmount) || math.IsInf(c.StartingAmount, 0):
		return apperrors.NewConfigError("--amount must be a finite number")
	case math.IsNaN(c.Inflation) || c.Inflation <= -100:
		return apperrors.NewConfigError("--inflation must be greater than -100, got %v", c.Inflation)
	case c.Timeout < 0:
		return apperrors.NewConfigError("--timeout must not be negative, got %s", c.Timeout)
	case c.Workers < AutoWorkers:
		return apperrors.NewConfigError("--workers must be -1 (auto), 0 (unbounded) or positive, got %d", c.Workers)
	case c.Serve && c.TUI:
		return apperrors.NewConfigError("--serve and --tui cannot be combined")
	}
	switch c.Format {
	case FormatTable, FormatCSV, FormatJSON:
	default:
		return apperrors.NewConfigError("unknown --format %q (want table, csv or json)", c.Format)
	}
	return nil
}

// ParseConfig parses args (without the program name) and applies MCSIM_
// environment overrides for every flag left unset. Priority is CLI flags,
// then environment, then defaults; a portfolio file is applied later by
// ApplyFile and only fills what neither of the first two set.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	defaults := simulation.DefaultParameters()
	config := AppConfig{}
	var only string

	fs.Float64Var(&config.StartingAmount, "amount", defaults.StartingAmount, "Starting amount invested.")
	fs.IntVar(&config.Years, "years", defaults.HorizonYears, "Investment horizon in years.")
	fs.Float64Var(&config.Inflation, "inflation", defaults.InflationRate, "Annual inflation rate in percent.")
	fs.IntVar(&config.Iterations, "iterations", defaults.Iterations, "Simulated trajectories per portfolio.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Time budget for the whole run (e.g. 2s, 500ms).")
	fs.IntVar(&config.Workers, "workers", 0, "Concurrent portfolio tasks (0 = one per portfolio, -1 = one per CPU).")
	fs.StringVar(&config.PortfoliosFile, "portfolios", "", "YAML file defining portfolios and optional parameters.")
	fs.StringVar(&only, "only", "", "Comma-separated portfolio names to simulate.")
	fs.StringVar(&config.OutputFile, "output", "", "Write the report to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Shorthand for --output.")
	fs.StringVar(&config.Format, "format", DefaultFormat, "Report format: table, csv or json.")
	fs.StringVar(&config.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run.")
	fs.BoolVar(&config.Serve, "serve", false, "Run the HTTP server instead of a single simulation.")
	fs.StringVar(&config.Addr, "addr", DefaultAddr, "Listen address for --serve.")
	fs.BoolVar(&config.TUI, "tui", false, "Run the interactive dashboard.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the report.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Print descriptive statistics and memory usage.")
	fs.BoolVar(&config.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also honors NO_COLOR).")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error, disabled.")
	fs.BoolVar(&config.Version, "version", false, "Print version information and exit.")

	fs.Usage = func() {
		fmt.Fprintf(errWriter, "Usage: %s [flags]\n\nMonte Carlo simulation of inflation-adjusted portfolio outcomes.\n\nFlags:\n", programName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected argument %q", fs.Arg(0))
	}

	for key, flags := range parameterFlags {
		if isFlagSetAny(fs, flags...) {
			config.markExplicit(key)
		}
	}
	config.Only = splitList(only)
	applyEnvOverrides(&config, fs)

	if err := config.Validate(); err != nil {
		return AppConfig{}, err
	}
	return config, nil
}

// parameterFlags maps the keys a portfolio file may set to their flags.
var parameterFlags = map[string][]string{
	KeyAmount:     {"amount"},
	KeyYears:      {"years"},
	KeyInflation:  {"inflation"},
	KeyIterations: {"iterations"},
	KeyTimeout:    {"timeout"},
}

// Keys of the parameters a portfolio file may set.
const (
	KeyAmount     = "amount"
	KeyYears      = "years"
	KeyInflation  = "inflation"
	KeyIterations = "iterations"
	KeyTimeout    = "timeout"
)

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
