package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/mcsim/internal/errors"
	"github.com/agbru/mcsim/internal/simulation"
)

// PortfolioFile is the YAML document accepted by --portfolios:
//
//	parameters:
//	  starting_amount: 250000
//	  horizon_years: 30
//	  timeout: 5s
//	portfolios:
//	  - name: Aggressive
//	    mean_return: 9.4324
//	    risk: 15.675
type PortfolioFile struct {
	Parameters *FileParameters        `yaml:"parameters"`
	Portfolios []simulation.Portfolio `yaml:"portfolios"`
}

// FileParameters are optional overrides; nil fields are left alone.
type FileParameters struct {
	StartingAmount *float64       `yaml:"starting_amount"`
	HorizonYears   *int           `yaml:"horizon_years"`
	InflationRate  *float64       `yaml:"inflation_rate"`
	Iterations     *int           `yaml:"iterations"`
	Timeout        *time.Duration `yaml:"timeout"`
}

// DefaultPortfolios returns the built-in portfolios used without a file.
func DefaultPortfolios() []simulation.Portfolio {
	return []simulation.Portfolio{
		{Name: "Aggressive", MeanReturn: 9.4324, Risk: 15.675},
		{Name: "Very Conservative", MeanReturn: 6.189, Risk: 6.3438},
	}
}

// LoadPortfolios reads and validates a portfolio file.
func LoadPortfolios(path string) (PortfolioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PortfolioFile{}, apperrors.NewConfigError("reading portfolio file: %v", err)
	}
	f, err := DecodePortfolios(bytes.NewReader(data))
	if err != nil {
		return PortfolioFile{}, apperrors.NewConfigError("%s: %v", path, err)
	}
	return f, nil
}

// DecodePortfolios parses a portfolio document. Unknown keys, an empty
// portfolio list, invalid portfolios and duplicate names are rejected.
func DecodePortfolios(r io.Reader) (PortfolioFile, error) {
	var f PortfolioFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return PortfolioFile{}, errors.New("empty document")
		}
		return PortfolioFile{}, err
	}
	if len(f.Portfolios) == 0 {
		return PortfolioFile{}, errors.New("no portfolios defined")
	}
	seen := make(map[string]bool, len(f.Portfolios))
	for i, p := range f.Portfolios {
		if err := p.Validate(); err != nil {
			return PortfolioFile{}, fmt.Errorf("portfolio #%d: %w", i+1, err)
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return PortfolioFile{}, fmt.Errorf("duplicate portfolio name %q", p.Name)
		}
		seen[key] = true
	}
	return f, nil
}

// ApplyFile copies the file's parameters into c for every setting that was
// not given by a flag or an environment variable, then revalidates.
func (c *AppConfig) ApplyFile(f PortfolioFile) error {
	if p := f.Parameters; p != nil {
		if p.StartingAmount != nil && !c.IsExplicit(KeyAmount) {
			c.StartingAmount = *p.StartingAmount
		}
		if p.HorizonYears != nil && !c.IsExplicit(KeyYears) {
			c.Years = *p.HorizonYears
		}
		if p.InflationRate != nil && !c.IsExplicit(KeyInflation) {
			c.Inflation = *p.InflationRate
		}
		if p.Iterations != nil && !c.IsExplicit(KeyIterations) {
			c.Iterations = *p.Iterations
		}
		if p.Timeout != nil && !c.IsExplicit(KeyTimeout) {
			c.Timeout = *p.Timeout
		}
	}
	return c.Validate()
}

// ResolvePortfolios returns the portfolios to simulate: the file's when
// --portfolios is set (applying its parameters to c), the defaults
// otherwise.
func (c *AppConfig) ResolvePortfolios() ([]simulation.Portfolio, error) {
	if c.PortfoliosFile == "" {
		return DefaultPortfolios(), nil
	}
	f, err := LoadPortfolios(c.PortfoliosFile)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyFile(f); err != nil {
		return nil, err
	}
	return f.Portfolios, nil
}
