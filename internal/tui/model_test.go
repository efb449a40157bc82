package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/mcsim/internal/errors"
	"github.com/agbru/mcsim/internal/metrics"
	"github.com/agbru/mcsim/internal/orchestration"
	"github.com/agbru/mcsim/internal/simulation"
	"github.com/agbru/mcsim/internal/sysmon"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	portfolios := []simulation.Portfolio{
		{Name: "Aggressive", MeanReturn: 9.4324, Risk: 15.675},
		{Name: "Very Conservative", MeanReturn: 6.189, Risk: 6.3438},
	}
	params := simulation.DefaultParameters()
	params.Iterations = 50
	m := NewModel(context.Background(), portfolios, params, orchestration.Options{Budget: 5 * time.Second}, "v1.0.0")
	t.Cleanup(m.cancel)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func completedReport() orchestration.Report {
	return orchestration.Report{
		Results: []orchestration.SimulationResult{
			{Name: "Aggressive", Status: orchestration.StatusCompleted, Result: &simulation.Result{Name: "Aggressive", Median: 250000, BestCase: 600000, WorstCase: 90000}},
			{Name: "Very Conservative", Status: orchestration.StatusTimedOut, Err: apperrors.TimeoutError{Operation: "Very Conservative", Limit: time.Second}},
		},
		Elapsed: time.Second,
		Budget:  time.Second,
	}
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := newTestModel(t)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q", got)
	}
}

func TestModel_ProgressAndCompletion(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 30})

	m, _ = update(t, m, ProgressMsg{TaskIndex: 1, Value: 0.5, AverageProgress: 0.25, ETA: 3 * time.Second})
	if got := m.panel.rows[1].progress; got != 0.5 {
		t.Errorf("row progress = %v, want 0.5", got)
	}
	if !strings.Contains(m.View(), "ETA 3s") {
		t.Error("view should show the ETA while running")
	}

	m, _ = update(t, m, RunCompleteMsg{Report: completedReport(), Generation: 0})
	if !m.done || m.report == nil {
		t.Fatal("run should be done")
	}
	view := m.View()
	for _, want := range []string{"Aggressive", "250,000.00", "600,000.00", "timed out", "PARTIAL", "1 completed, 1 timed out, 0 failed"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if got := m.ExitCode(); got != apperrors.ExitErrorTimeout {
		t.Errorf("ExitCode() = %d, want %d", got, apperrors.ExitErrorTimeout)
	}
}

func TestModel_StaleGenerationIgnored(t *testing.T) {
	m := newTestModel(t)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatal("rerun should start a new run")
	}
	if m.generation != 1 {
		t.Fatalf("generation = %d, want 1", m.generation)
	}

	m, _ = update(t, m, ProgressMsg{TaskIndex: 0, Value: 0.9, Generation: 0})
	if m.panel.rows[0].progress != 0 {
		t.Error("progress from a previous run must be ignored")
	}
	m, _ = update(t, m, RunCompleteMsg{Report: completedReport(), Generation: 0})
	if m.done {
		t.Error("completion of a previous run must be ignored")
	}
}

func TestModel_RerunCancelsPreviousRun(t *testing.T) {
	m := newTestModel(t)
	previous := m.ctx
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})

	if !errors.Is(previous.Err(), context.Canceled) {
		t.Error("the previous run context should be canceled")
	}
	if m.ctx.Err() != nil {
		t.Error("the new run context should be live")
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command should produce tea.QuitMsg")
	}
	if m.ctx.Err() == nil {
		t.Error("quitting must cancel the run")
	}
	if got := m.ExitCode(); got != apperrors.ExitErrorCanceled {
		t.Errorf("ExitCode() = %d, want %d", got, apperrors.ExitErrorCanceled)
	}
}

func TestModel_ParentCanceled(t *testing.T) {
	m := newTestModel(t)
	m, cmd := update(t, m, ParentCanceledMsg{Err: context.Canceled})
	if cmd == nil || !m.quitting {
		t.Error("parent cancellation should quit")
	}
}

func TestModel_Samples(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, SysStatsMsg(sysmon.Stats{CPUPercent: 40, MemPercent: 70}))
	if m.header.cpu.Last() != 40 || m.header.mem.Last() != 70 {
		t.Error("host sample not recorded")
	}
	m, _ = update(t, m, MemStatsMsg{Memory: metrics.MemorySnapshot{HeapAlloc: 2048, NumGC: 2}, NumGoroutine: 9})
	if m.runtime.numGoroutine != 9 || m.runtime.memory.HeapAlloc != 2048 {
		t.Error("runtime sample not recorded")
	}
	if _, cmd := update(t, m, TickMsg(time.Now())); cmd == nil {
		t.Error("tick should schedule sampling")
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if !m.help.ShowAll {
		t.Error("'?' should expand the help")
	}
}

func TestModel_StartRunCmd(t *testing.T) {
	m := newTestModel(t)
	msg := m.startRunCmd()()
	done, ok := msg.(RunCompleteMsg)
	if !ok {
		t.Fatalf("got %T, want RunCompleteMsg", msg)
	}
	if len(done.Report.Results) != 2 {
		t.Fatalf("got %d results", len(done.Report.Results))
	}
	for _, r := range done.Report.Results {
		if r.Status != orchestration.StatusCompleted {
			t.Errorf("%s: status %s", r.Name, r.Status)
		}
	}
}

func TestRuntimeModel_Throughput(t *testing.T) {
	r := NewRuntimeModel(1000)
	if r.Throughput() != 0 {
		t.Error("throughput before any progress should be 0")
	}
	r.UpdateProgress(0.5, 2*time.Second)
	if got := r.Throughput(); got != 250 {
		t.Errorf("Throughput() = %v, want 250", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Very Conservative", 6); got != "Very …" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("Bonds", 6); got != "Bonds" {
		t.Errorf("truncate = %q", got)
	}
}
