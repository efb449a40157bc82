package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/agbru/mcsim/internal/cli"
	apperrors "github.com/agbru/mcsim/internal/errors"
	"github.com/agbru/mcsim/internal/logging"
	"github.com/agbru/mcsim/internal/metrics"
	"github.com/agbru/mcsim/internal/orchestration"
)

// runSimulate orchestrates a single CLI run: every selected portfolio is
// simulated under one time budget and the report is printed to out.
func (a *Application) runSimulate(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, a.Portfolios, out)
	}

	var progressReporter orchestration.ProgressReporter
	progressOut := out
	if a.Config.Quiet {
		progressOut = io.Discard
		progressReporter = orchestration.NullProgressReporter{}
	} else {
		progressReporter = cli.CLIProgressReporter{}
	}

	var recorder *metrics.Recorder
	if a.Config.MetricsFile != "" {
		recorder = metrics.NewRecorder()
	}

	logger := a.logger()
	opts := a.options(logger)
	opts.Recorder = recorder

	collector := metrics.NewMemoryCollector()
	before := collector.Snapshot()
	report := orchestration.ExecuteSimulations(ctx, a.Portfolios, a.Config.SimulationParameters(), opts, progressReporter, progressOut)
	memDelta := before.Delta(collector.Snapshot())

	exitCode := a.presentReport(report, out)
	if a.Config.Verbose && !a.Config.Quiet {
		cli.DisplayMemoryStats(memDelta, out)
	}

	if code := a.writeArtifacts(report, recorder, logger, out); code != apperrors.ExitSuccess && exitCode == apperrors.ExitSuccess {
		exitCode = code
	}
	return exitCode
}

// presentReport prints the report in the configured format and returns the
// exit code of the run.
func (a *Application) presentReport(report orchestration.Report, out io.Writer) int {
	presenter := cli.CLIResultPresenter{
		Years:   a.Config.Years,
		Verbose: a.Config.Verbose,
		NoColor: a.Config.NoColor,
	}
	if err := cli.FormatReport(out, report, a.Config.Format, presenter); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error writing report: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return report.ExitCode()
}

// writeArtifacts saves the report and the metrics when requested.
func (a *Application) writeArtifacts(report orchestration.Report, recorder *metrics.Recorder, logger logging.Logger, out io.Writer) int {
	code := apperrors.ExitSuccess
	if path := a.Config.OutputFile; path != "" {
		presenter := cli.CLIResultPresenter{Years: a.Config.Years, Verbose: a.Config.Verbose}
		if err := cli.WriteReportToFile(path, report, a.Config.Format, presenter); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving report: %v\n", err)
			code = apperrors.ExitErrorGeneric
		} else if !a.Config.Quiet {
			cli.DisplaySavedPath(out, path)
		}
	}
	if path := a.Config.MetricsFile; path != "" {
		if err := recorder.WriteToTextfile(path); err != nil {
			logger.Error("writing metrics file failed", err, logging.String("path", path))
			code = apperrors.ExitErrorGeneric
		} else {
			logger.Debug("metrics written", logging.String("path", path))
		}
	}
	return code
}
