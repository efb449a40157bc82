package e2e

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// buildBinary compiles cmd/mcsim into a temporary directory. go test runs
// with the package directory as working directory, hence the module root
// two levels up.
func buildBinary(t *testing.T) string {
	t.Helper()
	binName := "mcsim"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), binName)

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/mcsim")
	cmd.Dir = "../.."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build mcsim: %v", err)
	}
	return binPath
}

func run(binPath string, args ...string) (string, int, error) {
	cmd := exec.Command(binPath, args...)
	cmd.Env = append(os.Environ(), "NO_COLOR=1")
	output, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(output), exitErr.ExitCode(), nil
	}
	return string(output), 0, err
}

// TestCLI_E2E verifies the built binary functions correctly
func TestCLI_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping binary build in short mode")
	}
	binPath := buildBinary(t)

	portfolioFile := filepath.Join(t.TempDir(), "portfolios.yaml")
	if err := os.WriteFile(portfolioFile, []byte(`parameters:
  horizon_years: 5
portfolios:
  - name: Balanced
    mean_return: 7.5
    risk: 9.0
`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		wantOut  []string // substrings, case-insensitive
		wantCode int
	}{
		{
			name:     "Default Table",
			args:     []string{"--iterations", "2000", "--timeout", "30s"},
			wantOut:  []string{"Median 20th Year", "Aggressive", "Very Conservative", "2 completed"},
			wantCode: 0,
		},
		{
			name:     "Help",
			args:     []string{"--help"},
			wantOut:  []string{"usage"},
			wantCode: 0,
		},
		{
			name:     "Version Flag",
			args:     []string{"--version"},
			wantOut:  []string{"mcsim"},
			wantCode: 0,
		},
		{
			name:     "Quiet CSV",
			args:     []string{"--quiet", "--format", "csv", "--iterations", "500", "--timeout", "30s"},
			wantOut:  []string{"portfolio,status,median", "Aggressive,completed"},
			wantCode: 0,
		},
		{
			name:     "Only One Portfolio",
			args:     []string{"--only", "very conservative", "--iterations", "500", "--timeout", "30s"},
			wantOut:  []string{"Very Conservative", "1 completed"},
			wantCode: 0,
		},
		{
			name:     "Portfolio File",
			args:     []string{"--portfolios", portfolioFile, "--iterations", "500", "--timeout", "30s"},
			wantOut:  []string{"Balanced", "Median 5th Year"},
			wantCode: 0,
		},
		{
			name:     "Zero Budget",
			args:     []string{"--timeout", "0s"},
			wantOut:  []string{"timed out"},
			wantCode: 2,
		},
		{
			name:     "Unknown Portfolio",
			args:     []string{"--only", "Nope"},
			wantOut:  []string{"Nope"},
			wantCode: 4,
		},
		{
			name:     "Invalid Format",
			args:     []string{"--format", "xml"},
			wantOut:  []string{"--format"},
			wantCode: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outStr, code, err := run(binPath, tt.args...)
			if err != nil {
				t.Fatalf("running mcsim: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nOutput: %s", code, tt.wantCode, outStr)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(strings.ToLower(outStr), strings.ToLower(want)) {
					t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", want, outStr)
				}
			}
		})
	}
}

// TestCLI_E2E_JSON checks that --format json --quiet prints a single JSON
// document on stdout.
func TestCLI_E2E_JSON(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping binary build in short mode")
	}
	binPath := buildBinary(t)

	cmd := exec.Command(binPath, "--quiet", "--format", "json", "--iterations", "1000", "--timeout", "30s", "--log-level", "disabled")
	stdout, err := cmd.Output()
	if err != nil {
		t.Fatalf("mcsim failed: %v", err)
	}

	var report struct {
		Outcome string `json:"outcome"`
		Results []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"results"`
	}
	if err := json.Unmarshal(stdout, &report); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if report.Outcome != "success" || len(report.Results) != 2 {
		t.Errorf("report = %+v, want 2 completed portfolios", report)
	}
}
