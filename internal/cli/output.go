package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/agbru/mcsim/internal/config"
	"github.com/agbru/mcsim/internal/orchestration"
	"github.com/agbru/mcsim/internal/ui"
)

// csvHeader is the first record of the CSV format.
var csvHeader = []string{"portfolio", "status", "median", "best_case", "worst_case", "duration_ms", "error"}

// FormatReport writes report to w in the given format (table, csv or json).
func FormatReport(w io.Writer, report orchestration.Report, outputFormat string, presenter CLIResultPresenter) error {
	switch outputFormat {
	case config.FormatTable, "":
		presenter.PresentReport(report, w)
		return nil
	case config.FormatCSV:
		return writeCSV(w, report)
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return fmt.Errorf("unknown output format %q", outputFormat)
}

func writeCSV(w io.Writer, report orchestration.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	amount := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	for _, res := range report.Results {
		record := []string{res.Name, res.Status.String(), "", "", "",
			strconv.FormatFloat(float64(res.Duration.Microseconds())/1000, 'f', 3, 64), ""}
		if r := res.Result; r != nil {
			record[2], record[3], record[4] = amount(r.Median), amount(r.BestCase), amount(r.WorstCase)
		}
		if res.Err != nil {
			record[6] = res.Err.Error()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReportToFile writes report to path in the given format, creating
// parent directories as needed. Table output is written without colors.
func WriteReportToFile(path string, report orchestration.Report, outputFormat string, presenter CLIResultPresenter) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	presenter.NoColor = true
	err = FormatReport(file, report, outputFormat, presenter)

	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// DisplaySavedPath confirms where the report was written.
func DisplaySavedPath(out io.Writer, path string) {
	fmt.Fprintf(out, "\n%s✓ Report saved to: %s%s\n", ui.ColorGain(), path, ui.ColorReset())
}
