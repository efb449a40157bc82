package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/agbru/mcsim/internal/format"
	"github.com/agbru/mcsim/internal/metrics"
)

// RuntimeModel shows Go runtime statistics and the trajectory throughput.
type RuntimeModel struct {
	memory       metrics.MemorySnapshot
	numGoroutine int
	// totalTrajectories is the number of trajectories of a whole run.
	totalTrajectories int
	progress          float64
	elapsed           time.Duration
	width             int
}

// NewRuntimeModel returns a panel for a run of totalTrajectories.
func NewRuntimeModel(totalTrajectories int) RuntimeModel {
	return RuntimeModel{totalTrajectories: totalTrajectories}
}

// SetWidth updates the panel width.
func (m *RuntimeModel) SetWidth(w int) {
	m.width = w
}

// UpdateMemStats stores a runtime sample.
func (m *RuntimeModel) UpdateMemStats(msg MemStatsMsg) {
	m.memory = msg.Memory
	m.numGoroutine = msg.NumGoroutine
}

// UpdateProgress stores the average progress of the run after elapsed.
func (m *RuntimeModel) UpdateProgress(avg float64, elapsed time.Duration) {
	m.progress = avg
	m.elapsed = elapsed
}

// Throughput estimates simulated trajectories per second.
func (m RuntimeModel) Throughput() float64 {
	if m.elapsed <= 0 {
		return 0
	}
	return m.progress * float64(m.totalTrajectories) / m.elapsed.Seconds()
}

// View renders the panel.
func (m RuntimeModel) View() string {
	cells := []string{
		metricCell("Heap", format.FormatBytes(m.memory.HeapAlloc)),
		metricCell("Sys", format.FormatBytes(m.memory.Sys)),
		metricCell("GC", fmt.Sprintf("%d (%.1fms)", m.memory.NumGC, float64(m.memory.PauseTotalNs)/1e6)),
		metricCell("Goroutines", fmt.Sprint(m.numGoroutine)),
		metricCell("Trajectories/s", format.FormatNumberString(fmt.Sprintf("%.0f", m.Throughput()))),
	}
	return panelStyle.Width(max(m.width-2, 0)).Render(
		panelTitleStyle.Render("RUNTIME") + "\n" + strings.Join(cells, "   "))
}

func metricCell(label, value string) string {
	return metricLabelStyle.Render(label+":") + " " + metricValueStyle.Render(value)
}
