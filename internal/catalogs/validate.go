package catalogs

import (
	"fmt"
	"strings"

	"fdv.tools/internal/slots"
)

// Validate checks the structural invariants of a dataset. A variant that
// breaks one of them is rejected as a whole; nothing is patched up.
func Validate(s Spec) error {
	if strings.TrimSpace(s.Variant) == "" {
		return fmt.Errorf("variant must not be empty")
	}
	if len(s.Population) != slots.Count {
		return fmt.Errorf("population: want %d thresholds, got %d", slots.Count, len(s.Population))
	}
	for i, p := range s.Population {
		if p <= 0 {
			return fmt.Errorf("population[%s] must be > 0", slots.Label(i+1))
		}
		if i > 0 && p <= s.Population[i-1] {
			return fmt.Errorf("population[%s]=%d not above population[%s]=%d", slots.Label(i+1), p, slots.Label(i), s.Population[i-1])
		}
	}
	if len(s.Races) == 0 {
		return fmt.Errorf("races must not be empty")
	}

	aliasOwner := map[string]string{}
	for _, r := range s.Races {
		if strings.TrimSpace(r.Key) == "" {
			return fmt.Errorf("race key must not be empty")
		}
		names := append([]string{r.Key}, r.Aliases...)
		for _, a := range names {
			na := normalizeAlias(a)
			if na == "" {
				return fmt.Errorf("race %s: empty alias", r.Key)
			}
			if owner, ok := aliasOwner[na]; ok && owner != r.Key {
				return fmt.Errorf("race %s: alias %q already used by %s", r.Key, a, owner)
			}
			aliasOwner[na] = r.Key
		}
		if len(r.Buildings) < 2 {
			return fmt.Errorf("race %s: want at least 2 buildings, got %d", r.Key, len(r.Buildings))
		}
		seen := map[string]bool{}
		for i, b := range r.Buildings {
			if strings.TrimSpace(b.Key) == "" || strings.TrimSpace(b.Name) == "" {
				return fmt.Errorf("race %s: building %d missing key or name", r.Key, i+1)
			}
			if seen[b.Key] {
				return fmt.Errorf("race %s: duplicate building key %s", r.Key, b.Key)
			}
			seen[b.Key] = true
		}
		if len(r.Levels) != slots.Count {
			return fmt.Errorf("race %s: want %d slot rows, got %d", r.Key, slots.Count, len(r.Levels))
		}
		for i, row := range r.Levels {
			if len(row) != len(r.Buildings) {
				return fmt.Errorf("race %s slot %s: row has %d levels, want %d", r.Key, slots.Label(i+1), len(row), len(r.Buildings))
			}
			for j, lvl := range row {
				if lvl < 0 {
					return fmt.Errorf("race %s slot %s: %s level %d is negative", r.Key, slots.Label(i+1), r.Buildings[j].Key, lvl)
				}
			}
		}
	}
	return nil
}

// MonotonicityGaps reports slots whose row is not >= the previous row for
// some building. The tables are expected to be monotonic but this is not
// enforced; the auto-slot scan under-reports when it is not.
func MonotonicityGaps(s Spec) []string {
	var out []string
	for _, r := range s.Races {
		for i := 1; i < len(r.Levels); i++ {
			for j := range r.Levels[i] {
				if j < len(r.Levels[i-1]) && r.Levels[i][j] < r.Levels[i-1][j] {
					out = append(out, fmt.Sprintf("%s %s %s", r.Key, slots.Label(i+1), r.Buildings[j].Key))
				}
			}
		}
	}
	return out
}
