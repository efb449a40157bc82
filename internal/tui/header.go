package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mcsim/internal/format"
	"github.com/agbru/mcsim/internal/sysmon"
)

// sparklineWidth is the number of samples shown per host sparkline.
const sparklineWidth = 20

// HeaderModel renders the top bar: title, elapsed time and host CPU and
// memory sparklines.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	width     int
	cpu       *RingBuffer
	mem       *RingBuffer
}

// NewHeaderModel returns a header whose timer starts now.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
		cpu:       NewRingBuffer(sparklineWidth),
		mem:       NewRingBuffer(sparklineWidth),
	}
}

// SetDone freezes the elapsed timer.
func (h *HeaderModel) SetDone() {
	h.endTime = time.Now()
}

// Reset restarts the elapsed timer. The host history is kept.
func (h *HeaderModel) Reset() {
	h.startTime = time.Now()
	h.endTime = time.Time{}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// AddSample records a host statistics sample.
func (h *HeaderModel) AddSample(s sysmon.Stats) {
	h.cpu.Push(s.CPUPercent)
	h.mem.Push(s.MemPercent)
}

// Elapsed returns the time since the run started, frozen once done.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "mcsim"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	left := titleStyle.Render(titleText) +
		dimStyle.Render(" | ") +
		fmt.Sprintf("Elapsed: %s", format.FormatExecutionDuration(h.Elapsed()))

	right := fmt.Sprintf("CPU %s %5.1f%%  MEM %s %5.1f%%",
		cpuStyle.Render(RenderSparkline(h.cpu.Slice(), sparklineWidth)), h.cpu.Last(),
		memStyle.Render(RenderSparkline(h.mem.Slice(), sparklineWidth)), h.mem.Last())

	gap := max(h.width-2-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return headerStyle.Render(left + strings.Repeat(" ", gap) + right)
}
