package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// isFlagSet reports whether a flag was given on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny reports whether any of the aliased flags was given.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride maps an environment key (without MCSIM_) to the flags it
// stands in for. apply returns false when the value cannot be parsed, in
// which case the current value is kept.
type envOverride struct {
	envKey string
	flags  []string
	// param is the AppConfig parameter key marked explicit on success.
	param string
	apply func(*AppConfig, string) bool
}

var envOverrides = []envOverride{
	{"AMOUNT", []string{"amount"}, KeyAmount, func(c *AppConfig, v string) bool {
		return parseInto(v, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }, &c.StartingAmount)
	}},
	{"YEARS", []string{"years"}, KeyYears, func(c *AppConfig, v string) bool {
		return parseInto(v, strconv.Atoi, &c.Years)
	}},
	{"INFLATION", []string{"inflation"}, KeyInflation, func(c *AppConfig, v string) bool {
		return parseInto(v, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }, &c.Inflation)
	}},
	{"ITERATIONS", []string{"iterations"}, KeyIterations, func(c *AppConfig, v string) bool {
		return parseInto(v, strconv.Atoi, &c.Iterations)
	}},
	{"WORKERS", []string{"workers"}, "", func(c *AppConfig, v string) bool {
		return parseInto(v, strconv.Atoi, &c.Workers)
	}},
	{"TIMEOUT", []string{"timeout"}, KeyTimeout, func(c *AppConfig, v string) bool {
		return parseInto(v, time.ParseDuration, &c.Timeout)
	}},

	{"PORTFOLIOS", []string{"portfolios"}, "", func(c *AppConfig, v string) bool {
		c.PortfoliosFile = v
		return true
	}},
	{"ONLY", []string{"only"}, "", func(c *AppConfig, v string) bool {
		c.Only = splitList(v)
		return true
	}},
	{"OUTPUT", []string{"output", "o"}, "", func(c *AppConfig, v string) bool {
		c.OutputFile = v
		return true
	}},
	{"FORMAT", []string{"format"}, "", func(c *AppConfig, v string) bool {
		c.Format = strings.ToLower(v)
		return true
	}},
	{"METRICS_FILE", []string{"metrics-file"}, "", func(c *AppConfig, v string) bool {
		c.MetricsFile = v
		return true
	}},
	{"ADDR", []string{"addr"}, "", func(c *AppConfig, v string) bool {
		c.Addr = v
		return true
	}},
	{"LOG_LEVEL", []string{"log-level"}, "", func(c *AppConfig, v string) bool {
		c.LogLevel = v
		return true
	}},

	{"SERVE", []string{"serve"}, "", func(c *AppConfig, v string) bool {
		return parseBoolEnv(v, &c.Serve)
	}},
	{"TUI", []string{"tui"}, "", func(c *AppConfig, v string) bool {
		return parseBoolEnv(v, &c.TUI)
	}},
	{"QUIET", []string{"quiet", "q"}, "", func(c *AppConfig, v string) bool {
		return parseBoolEnv(v, &c.Quiet)
	}},
	{"VERBOSE", []string{"verbose", "v"}, "", func(c *AppConfig, v string) bool {
		return parseBoolEnv(v, &c.Verbose)
	}},
	{"NO_COLOR", []string{"no-color"}, "", func(c *AppConfig, v string) bool {
		return parseBoolEnv(v, &c.NoColor)
	}},
}

func parseInto[T any](v string, parse func(string) (T, error), dst *T) bool {
	parsed, err := parse(v)
	if err != nil {
		return false
	}
	*dst = parsed
	return true
}

// parseBoolEnv accepts true/1/yes and false/0/no, case-insensitively.
func parseBoolEnv(val string, dst *bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		*dst = true
	case "false", "0", "no":
		*dst = false
	default:
		return false
	}
	return true
}

// applyEnvOverrides applies MCSIM_* variables to every setting whose flag
// was not given on the command line.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		val := os.Getenv(EnvPrefix + o.envKey)
		if val == "" {
			continue
		}
		if o.apply(config, val) && o.param != "" {
			config.markExplicit(o.param)
		}
	}
}
