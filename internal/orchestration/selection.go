package orchestration

import (
	"strings"

	apperrors "github.com/agbru/mcsim/internal/errors"
	"github.com/agbru/mcsim/internal/simulation"
)

// SelectPortfolios returns the portfolios whose names appear in names,
// keeping the order of all. Matching ignores case. An empty names selects
// everything; a name that matches nothing is a configuration error.
func SelectPortfolios(all []simulation.Portfolio, names []string) ([]simulation.Portfolio, error) {
	if len(names) == 0 {
		return all, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			wanted[strings.ToLower(n)] = false
		}
	}
	if len(wanted) == 0 {
		return all, nil
	}

	selected := make([]simulation.Portfolio, 0, len(wanted))
	for _, p := range all {
		key := strings.ToLower(p.Name)
		if _, ok := wanted[key]; ok {
			selected = append(selected, p)
			wanted[key] = true
		}
	}
	for _, n := range names {
		if found, ok := wanted[strings.ToLower(strings.TrimSpace(n))]; ok && !found {
			return nil, apperrors.NewConfigError("unknown portfolio %q", strings.TrimSpace(n))
		}
	}
	return selected, nil
}
