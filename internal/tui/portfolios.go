package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mcsim/internal/format"
	"github.com/agbru/mcsim/internal/orchestration"
	"github.com/agbru/mcsim/internal/simulation"
)

// Column widths of the portfolio table.
const (
	colWidthName   = 22
	colWidthBar    = 24
	colWidthPct    = 8
	colWidthAmount = 16
	colWidthStatus = 10
)

// portfolioRow is the live state of one task.
type portfolioRow struct {
	name     string
	progress float64
	result   *orchestration.SimulationResult
}

// PortfolioPanel lists every portfolio with its progress bar while the run
// is in flight and its percentiles once it is over.
type PortfolioPanel struct {
	rows    []portfolioRow
	average float64
	eta     string
	years   int
	width   int
}

// NewPortfolioPanel returns a panel with one row per portfolio.
func NewPortfolioPanel(portfolios []simulation.Portfolio, years int) PortfolioPanel {
	rows := make([]portfolioRow, len(portfolios))
	for i, p := range portfolios {
		rows[i] = portfolioRow{name: p.Name}
	}
	return PortfolioPanel{rows: rows, years: years}
}

// SetWidth updates the panel width.
func (p *PortfolioPanel) SetWidth(w int) {
	p.width = w
}

// UpdateProgress applies one aggregated update. Unknown indexes are
// ignored.
func (p *PortfolioPanel) UpdateProgress(msg ProgressMsg) {
	if msg.TaskIndex >= 0 && msg.TaskIndex < len(p.rows) {
		p.rows[msg.TaskIndex].progress = msg.Value
	}
	p.average = msg.AverageProgress
	p.eta = format.FormatETA(msg.ETA)
}

// SetReport attaches the final results, matched by position.
func (p *PortfolioPanel) SetReport(report orchestration.Report) {
	for i := range p.rows {
		if i < len(report.Results) {
			res := report.Results[i]
			p.rows[i].result = &res
			if res.Status == orchestration.StatusCompleted {
				p.rows[i].progress = 1
			}
		}
	}
	p.average = 1
	p.eta = ""
}

// Reset clears progress and results for a rerun.
func (p *PortfolioPanel) Reset() {
	for i := range p.rows {
		p.rows[i] = portfolioRow{name: p.rows[i].name}
	}
	p.average = 0
	p.eta = ""
}

// View renders the panel.
func (p PortfolioPanel) View() string {
	cell := func(w int, s string) string { return lipgloss.NewStyle().Width(w).Render(s) }
	right := func(w int, s string) string { return lipgloss.NewStyle().Width(w).Align(lipgloss.Right).Render(s) }

	var b strings.Builder
	title := "PORTFOLIOS"
	if p.eta != "" {
		title += fmt.Sprintf("  %.0f%%  ETA %s", p.average*100, p.eta)
	}
	b.WriteString(panelTitleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(
		cell(colWidthName, "Portfolio") + cell(colWidthBar, "Progress") + right(colWidthPct, "%") +
			right(colWidthAmount, fmt.Sprintf("Median yr %d", p.years)) + right(colWidthAmount, "10% Best") +
			right(colWidthAmount, "10% Worst") + "  " + cell(colWidthStatus, "Status")))

	for _, row := range p.rows {
		b.WriteString("\n")
		median, best, worst := "", "", ""
		status := dimStyle.Render("running")
		if res := row.result; res != nil {
			status = statusView(*res)
			if res.Result != nil {
				median = format.FormatAmount(res.Result.Median)
				best = format.FormatAmount(res.Result.BestCase)
				worst = format.FormatAmount(res.Result.WorstCase)
			}
		}
		b.WriteString(nameStyle.Render(cell(colWidthName, truncate(row.name, colWidthName-1))))
		b.WriteString(barStyle.Render(cell(colWidthBar, format.ProgressBar(row.progress, colWidthBar-2))))
		b.WriteString(right(colWidthPct, fmt.Sprintf("%.1f", row.progress*100)))
		b.WriteString(right(colWidthAmount, median))
		b.WriteString(gainStyle.Render(right(colWidthAmount, best)))
		b.WriteString(lossStyle.Render(right(colWidthAmount, worst)))
		b.WriteString("  ")
		b.WriteString(status)
	}
	return panelStyle.Width(max(p.width-2, 0)).Render(b.String())
}

func statusView(res orchestration.SimulationResult) string {
	switch res.Status {
	case orchestration.StatusCompleted:
		return gainStyle.Render("completed")
	case orchestration.StatusTimedOut:
		return warningStyle.Render("timed out")
	case orchestration.StatusCanceled:
		return warningStyle.Render("canceled")
	}
	return lossStyle.Render("failed")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:max(n-1, 0)]) + "…"
}
