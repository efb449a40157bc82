package app

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/agbru/mcsim/internal/logging"
	"github.com/agbru/mcsim/internal/tui"
)

// runTUI launches the interactive dashboard. Logs are discarded since any
// write to the terminal would corrupt the alternate screen.
func (a *Application) runTUI(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	opts := a.options(logging.NewNopLogger())
	return tui.Run(ctx, a.Portfolios, a.Config.SimulationParameters(), opts, resolvedVersion())
}
