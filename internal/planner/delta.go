package planner

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"fdv.tools/internal/catalogs"
)

// Category buckets buildings for the upgrade priority list. Lower first.
type Category int

const (
	CategoryCore  Category = iota // population and food buildings (columns 0 and 1)
	CategoryTier2                 // T1→T2 upgrade building
	CategoryTier3                 // T2→T3 upgrade building
	CategoryOther
)

const (
	markerTier2 = "T1→T2"
	markerTier3 = "T2→T3"
)

func (c Category) String() string {
	switch c {
	case CategoryCore:
		return "core"
	case CategoryTier2:
		return "tier2"
	case CategoryTier3:
		return "tier3"
	default:
		return "other"
	}
}

func CategoryOf(index int, b catalogs.Building) Category {
	switch {
	case index == 0 || index == 1:
		return CategoryCore
	case strings.Contains(b.Name, markerTier2):
		return CategoryTier2
	case strings.Contains(b.Name, markerTier3):
		return CategoryTier3
	default:
		return CategoryOther
	}
}

type DeltaRow struct {
	Index    int
	Building catalogs.Building
	Current  int
	Required int
	Missing  int
}

type PriorityItem struct {
	Index    int
	Building catalogs.Building
	Missing  int
	Category Category
}

type Delta struct {
	Requirement Requirement
	Rows        []DeltaRow
	// Progress is the rounded percentage of buildings already at level.
	Progress int
	Complete bool
	Priority []PriorityItem
}

// NormalizeCurrent pads current with zeros up to n entries and drops the
// extra ones. Negative levels are rejected.
func NormalizeCurrent(current []int, n int) ([]int, error) {
	out := make([]int, n)
	for i, v := range current {
		if v < 0 {
			return nil, fmt.Errorf("%w: level #%d is negative (%d)", ErrInvalidCurrentShape, i+1, v)
		}
		if i < n {
			out[i] = v
		}
	}
	return out, nil
}

func ComputeDelta(req Requirement, current []int) (Delta, error) {
	cur, err := NormalizeCurrent(current, len(req.Buildings))
	if err != nil {
		return Delta{}, err
	}

	d := Delta{Requirement: req}
	missing := make([]int, len(req.Buildings))
	buildings := make([]catalogs.Building, len(req.Buildings))
	met := 0
	for i, bl := range req.Buildings {
		m := bl.Level - cur[i]
		if m < 0 {
			m = 0
		}
		if m == 0 {
			met++
		}
		missing[i] = m
		buildings[i] = bl.Building
		d.Rows = append(d.Rows, DeltaRow{
			Index:    i,
			Building: bl.Building,
			Current:  cur[i],
			Required: bl.Level,
			Missing:  m,
		})
	}
	if n := len(req.Buildings); n > 0 {
		d.Progress = int(math.Round(100 * float64(met) / float64(n)))
	}
	d.Complete = met == len(req.Buildings)
	d.Priority = Priority(buildings, missing)
	return d, nil
}

// Priority orders the buildings that still miss levels by category, then
// by largest shortfall, then by name.
func Priority(buildings []catalogs.Building, missing []int) []PriorityItem {
	var out []PriorityItem
	for i, b := range buildings {
		if i >= len(missing) || missing[i] <= 0 {
			continue
		}
		out = append(out, PriorityItem{
			Index:    i,
			Building: b,
			Missing:  missing[i],
			Category: CategoryOf(i, b),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Missing != b.Missing {
			return a.Missing > b.Missing
		}
		return a.Building.Name < b.Building.Name
	})
	return out
}
