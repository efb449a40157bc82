package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/mcsim/internal/config"
	"github.com/agbru/mcsim/internal/format"
	"github.com/agbru/mcsim/internal/simulation"
	"github.com/agbru/mcsim/internal/ui"
)

// PrintExecutionConfig prints the parameters of the run about to start.
func PrintExecutionConfig(cfg config.AppConfig, portfolios []simulation.Portfolio, out io.Writer) {
	info := func(v any) string { return ui.Colorize(ui.ColorInfo(), fmt.Sprint(v)) }

	names := make([]string, len(portfolios))
	for i, p := range portfolios {
		names[i] = p.Name
	}
	workers := "one per portfolio"
	if cfg.Workers > 0 {
		workers = fmt.Sprint(cfg.Workers)
	}

	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Simulating %s over %s years from %s, %s trajectories each.\n",
		info(strings.Join(names, ", ")), info(cfg.Years),
		info(format.FormatAmount(cfg.StartingAmount)), info(format.FormatNumberString(fmt.Sprint(cfg.Iterations))))
	fmt.Fprintf(out, "Inflation %s%%, time budget %s, workers %s.\n", info(cfg.Inflation), info(cfg.Timeout), info(workers))
	fmt.Fprintf(out, "Environment: %s logical processors, Go %s.\n", info(runtime.NumCPU()), info(runtime.Version()))
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
