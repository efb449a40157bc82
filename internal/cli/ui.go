package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/mcsim/internal/format"
	"github.com/agbru/mcsim/internal/orchestration"
	"github.com/agbru/mcsim/internal/progress"
	"github.com/agbru/mcsim/internal/ui"
)

const (
	// ProgressRefreshRate is the spinner tick and the refresh rate of the
	// progress line.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	// Start begins the animation.
	Start()
	// Stop halts the animation.
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }
func (rs *realSpinner) Stop()  { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress renders the average progress of numTasks tasks with a
// spinner, a bar and an ETA until progressChan is closed. It calls wg.Done
// on return. With numTasks <= 0 it only drains the channel.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numTasks int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numTasks)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(progressSuffix(0, 0, numTasks))
	s.Start()
	defer func() {
		s.Stop()
		fmt.Fprintf(out, "%s\n", progressSuffix(agg.CalculateAverage(), 0, numTasks))
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				return
			}
			agg.Update(update)
		case <-ticker.C:
			s.UpdateSuffix(progressSuffix(agg.CalculateAverage(), agg.GetETA(), numTasks))
		}
	}
}

func progressSuffix(avg float64, eta time.Duration, numTasks int) string {
	label := "portfolio"
	if numTasks > 1 {
		label = "portfolios"
	}
	return fmt.Sprintf(" Simulating %d %s %s", numTasks, label,
		format.FormatProgressBarWithETA(avg, eta, ProgressBarWidth))
}

// CLIColorProvider feeds the active ui theme to apperrors.HandleSimulationError.
type CLIColorProvider struct{}

func (CLIColorProvider) Yellow() string { return ui.ColorWarning() }
func (CLIColorProvider) Red() string    { return ui.ColorLoss() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }
