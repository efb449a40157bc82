package app

import (
	"context"
	"os/signal"
	"syscall"

	apperrors "github.com/agbru/mcsim/internal/errors"
	"github.com/agbru/mcsim/internal/logging"
	"github.com/agbru/mcsim/internal/metrics"
	"github.com/agbru/mcsim/internal/server"
)

// runServe runs the HTTP server until SIGINT/SIGTERM or ctx is done.
func (a *Application) runServe(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	logger := a.logger()
	recorder := metrics.NewRecorder()
	srv := server.New(a.serverConfig(), logger, recorder)

	logger.Info("serving portfolios", logging.Int("count", len(a.Portfolios)))
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", err)
		return apperrors.ExitErrorGeneric
	}
	logger.Info("server stopped")
	return apperrors.ExitSuccess
}

// serverConfig derives the server settings from the command line: the
// loaded portfolios and parameters become the per-request defaults.
func (a *Application) serverConfig() server.Config {
	security := server.DefaultSecurityConfig()
	budget := min(a.Config.Timeout, security.MaxBudget)
	return server.Config{
		Addr:          a.Config.Addr,
		Portfolios:    a.Portfolios,
		Defaults:      a.Config.SimulationParameters(),
		DefaultBudget: budget,
		Workers:       a.Config.Workers,
		Security:      security,
	}
}
