package tui

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/mcsim/internal/errors"
	"github.com/agbru/mcsim/internal/metrics"
	"github.com/agbru/mcsim/internal/orchestration"
	"github.com/agbru/mcsim/internal/simulation"
	"github.com/agbru/mcsim/internal/sysmon"
)

// TickInterval is the sampling period of host and runtime statistics.
const TickInterval = 500 * time.Millisecond

// ExecutionState is the state of the current run.
type ExecutionState struct {
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	done       bool
	report     *orchestration.Report
}

// Model is the root bubbletea model of the dashboard.
type Model struct {
	header  HeaderModel
	panel   PortfolioPanel
	runtime RuntimeModel
	help    help.Model
	keymap  KeyMap

	ExecutionState
	width  int
	height int

	parentCtx  context.Context
	portfolios []simulation.Portfolio
	params     simulation.Parameters
	opts       orchestration.Options
	ref        *programRef
	collector  *metrics.MemoryCollector
	quitting   bool
}

// NewModel returns a dashboard for portfolios. The run starts with Init.
func NewModel(parentCtx context.Context, portfolios []simulation.Portfolio, params simulation.Parameters, opts orchestration.Options, version string) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	return Model{
		header:  NewHeaderModel(version),
		panel:   NewPortfolioPanel(portfolios, params.HorizonYears),
		runtime: NewRuntimeModel(len(portfolios) * params.Iterations),
		help:    help.New(),
		keymap:  DefaultKeyMap(),
		ExecutionState: ExecutionState{
			ctx:    ctx,
			cancel: cancel,
		},
		parentCtx:  parentCtx,
		portfolios: portfolios,
		params:     params,
		opts:       opts,
		ref:        &programRef{},
		collector:  metrics.NewMemoryCollector(),
	}
}

// Init starts the first run and the samplers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.startRunCmd(),
		watchParentCmd(m.parentCtx),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(msg.Width)
		m.panel.SetWidth(msg.Width)
		m.runtime.SetWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case ProgressMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.panel.UpdateProgress(msg)
		m.runtime.UpdateProgress(msg.AverageProgress, m.header.Elapsed())
		return m, nil

	case ProgressDoneMsg:
		return m, nil

	case RunCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.report = &msg.Report
		m.header.SetDone()
		m.panel.SetReport(msg.Report)
		completed, _, _, _ := msg.Report.Counts()
		if len(msg.Report.Results) > 0 {
			m.runtime.UpdateProgress(float64(completed)/float64(len(msg.Report.Results)), msg.Report.Elapsed)
		}
		return m, nil

	case TickMsg:
		return m, tea.Batch(sampleSysStatsCmd(), m.sampleMemStatsCmd(), tickCmd())

	case SysStatsMsg:
		m.header.AddSample(sysmon.Stats(msg))
		return m, nil

	case MemStatsMsg:
		m.runtime.UpdateMemStats(msg)
		return m, nil

	case ParentCanceledMsg:
		m.cancel()
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.cancel()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.Rerun):
		m.cancel()
		m.generation++
		m.ctx, m.cancel = context.WithCancel(m.parentCtx)
		m.done = false
		m.report = nil
		m.header.Reset()
		m.panel.Reset()
		m.runtime.UpdateProgress(0, 0)
		return m, m.startRunCmd()
	}
	return m, nil
}

// ExitCode returns the exit code of the session: the report's when a run
// finished, ExitErrorCanceled when the user left mid-run.
func (m Model) ExitCode() int {
	if m.report != nil {
		return m.report.ExitCode()
	}
	if m.quitting {
		return apperrors.ExitErrorCanceled
	}
	return apperrors.ExitSuccess
}

// View renders the dashboard.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.panel.View(),
		m.runtime.View(),
		m.footerView(),
	)
}

func (m Model) footerView() string {
	status := dimStyle.Render("running")
	if m.report != nil {
		completed, timedOut, failed, canceled := m.report.Counts()
		status = fmt.Sprintf("%s  %d completed, %d timed out, %d failed",
			statusWord(m.report.Outcome()), completed, timedOut, failed)
		if canceled > 0 {
			status += fmt.Sprintf(", %d canceled", canceled)
		}
	}
	return " " + status + "   " + m.help.View(m.keymap)
}

func statusWord(outcome string) string {
	switch outcome {
	case "success":
		return gainStyle.Render("DONE")
	case "partial":
		return warningStyle.Render("PARTIAL")
	}
	return lossStyle.Render("FAILED")
}

// startRunCmd runs the orchestrator for the current generation.
func (m Model) startRunCmd() tea.Cmd {
	ref, ctx, gen := m.ref, m.ctx, m.generation
	portfolios, params, opts := m.portfolios, m.params, m.opts
	return func() tea.Msg {
		reporter := &TUIProgressReporter{ref: ref, generation: gen}
		report := orchestration.ExecuteSimulations(ctx, portfolios, params, opts, reporter, io.Discard)
		return RunCompleteMsg{Report: report, Generation: gen}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) sampleMemStatsCmd() tea.Cmd {
	collector := m.collector
	return func() tea.Msg {
		return MemStatsMsg{Memory: collector.Snapshot(), NumGoroutine: runtime.NumGoroutine()}
	}
}

func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		return SysStatsMsg(sysmon.Sample())
	}
}

// watchParentCmd reports the cancellation of the parent context.
func watchParentCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ParentCanceledMsg{Err: ctx.Err()}
	}
}

// Run starts the dashboard and blocks until the user quits. It returns the
// exit code of the last run.
func Run(ctx context.Context, portfolios []simulation.Portfolio, params simulation.Parameters, opts orchestration.Options, version string) int {
	initTUIStyles()

	model := NewModel(ctx, portfolios, params, opts, version)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		m.cancel()
		return m.ExitCode()
	}
	return apperrors.ExitSuccess
}
