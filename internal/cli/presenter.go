package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	apperrors "github.com/agbru/mcsim/internal/errors"
	"github.com/agbru/mcsim/internal/format"
	"github.com/agbru/mcsim/internal/metrics"
	"github.com/agbru/mcsim/internal/orchestration"
	"github.com/agbru/mcsim/internal/progress"
	"github.com/agbru/mcsim/internal/ui"
)

// CLIProgressReporter shows a spinner and progress bar while a run is in
// flight.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress implements orchestration.ProgressReporter.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numTasks int, out io.Writer) {
	DisplayProgress(wg, progressChan, numTasks, out)
}

// CLIResultPresenter prints a report as the summary table.
type CLIResultPresenter struct {
	// Years labels the median column.
	Years int
	// Verbose adds the descriptive statistics of each portfolio.
	Verbose bool
	// NoColor prints the table without escapes whatever the active theme.
	NoColor bool
}

var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

const (
	minNameWidth = 20
	amountWidth  = 17
)

// PresentReport prints the summary table, the per-status totals and the
// total elapsed time. Colors are applied after padding so escapes do not
// break the alignment.
func (p CLIResultPresenter) PresentReport(report orchestration.Report, out io.Writer) {
	nameWidth := minNameWidth
	for _, res := range report.Results {
		nameWidth = max(nameWidth, len(res.Name))
	}
	border := tableBorder(nameWidth)

	fmt.Fprintln(out, border)
	fmt.Fprintf(out, "| %s | %s | %s | %s | Status\n",
		pad("Portfolio", nameWidth),
		pad(fmt.Sprintf("Median %s Year", ordinal(p.Years)), amountWidth),
		pad("10% Best Case", amountWidth),
		pad("10% Worst Case", amountWidth))
	fmt.Fprintln(out, border)

	for _, res := range report.Results {
		name := p.paint(ui.ColorAccent(), pad(res.Name, nameWidth))
		if res.Status != orchestration.StatusCompleted || res.Result == nil {
			blank := pad("-", amountWidth)
			fmt.Fprintf(out, "| %s | %s | %s | %s | %s\n", name, blank, blank, blank, p.statusLabel(res))
			continue
		}
		r := res.Result
		fmt.Fprintf(out, "| %s | %s | %s | %s | %s\n", name,
			padLeft(format.FormatAmount(r.Median), amountWidth),
			padLeft(format.FormatAmount(r.BestCase), amountWidth),
			padLeft(format.FormatAmount(r.WorstCase), amountWidth),
			p.statusLabel(res))
	}
	fmt.Fprintln(out, border)

	if p.Verbose {
		p.presentStats(report, out)
	}

	completed, timedOut, failed, canceled := report.Counts()
	fmt.Fprintf(out, "\n%d completed, %d timed out, %d failed", completed, timedOut, failed)
	if canceled > 0 {
		fmt.Fprintf(out, ", %d canceled", canceled)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Total Time -> %s (budget %s)\n",
		p.paint(ui.ColorMuted(), format.FormatExecutionDuration(report.Elapsed)), report.Budget)
}

// HandleError maps err to an exit code through apperrors.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleSimulationError(err, duration, out, CLIColorProvider{})
}

func (p CLIResultPresenter) paint(color, s string) string {
	if p.NoColor {
		return s
	}
	return ui.Colorize(color, s)
}

func (p CLIResultPresenter) presentStats(report orchestration.Report, out io.Writer) {
	for _, res := range report.Results {
		if res.Result == nil || res.Result.Stats == nil {
			continue
		}
		s := res.Result.Stats
		fmt.Fprintf(out, "\n%s (%s)\n", p.paint(ui.ColorBold(), res.Name), format.FormatExecutionDuration(res.Duration))
		fmt.Fprintf(out, "  Mean:            %s\n", format.FormatAmount(s.Mean))
		fmt.Fprintf(out, "  Std deviation:   %s\n", format.FormatAmount(s.StdDev))
		fmt.Fprintf(out, "  Min / Max:       %s / %s\n", format.FormatAmount(s.Min), format.FormatAmount(s.Max))
		fmt.Fprintf(out, "  Nominal growth:  x%.3f\n", s.MeanNominalMultiplier)
	}
}

func (p CLIResultPresenter) statusLabel(res orchestration.SimulationResult) string {
	switch res.Status {
	case orchestration.StatusCompleted:
		return p.paint(ui.ColorGain(), "completed")
	case orchestration.StatusTimedOut:
		return p.paint(ui.ColorWarning(), "timed out")
	case orchestration.StatusCanceled:
		return p.paint(ui.ColorWarning(), "canceled")
	}
	label := "failed"
	if res.Err != nil {
		label = fmt.Sprintf("failed (%v)", res.Err)
	}
	return p.paint(ui.ColorLoss(), label)
}

func tableBorder(nameWidth int) string {
	cell := func(w int) string { return strings.Repeat("-", w+2) }
	return "+" + cell(nameWidth) + "+" + cell(amountWidth) + "+" + cell(amountWidth) + "+" + cell(amountWidth) + "+"
}

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}

func padLeft(s string, width int) string {
	return fmt.Sprintf("%*s", width, s)
}

// ordinal returns "1st", "2nd", "20th" and so on.
func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// DisplayMemoryStats prints the memory used by a run.
func DisplayMemoryStats(delta metrics.MemorySnapshot, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Heap in use:     %s\n", format.FormatBytes(delta.HeapAlloc))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(delta.TotalAlloc))
	fmt.Fprintf(out, "  GC cycles:       %d\n", delta.NumGC)
	fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(delta.PauseTotalNs)/1e6)
}
