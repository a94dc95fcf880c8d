// Package planner answers the requirement questions: which building levels
// unlock a slot, how far current levels are from it, and which slot the
// current levels already reach.
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"fdv.tools/internal/catalogs"
	"fdv.tools/internal/slots"
)

// BuildingLevel pairs a building with a level for one slot.
type BuildingLevel struct {
	Index    int
	Building catalogs.Building
	Level    int
}

type Requirement struct {
	Race       catalogs.Race
	Ref        slots.Ref
	Population int64
	Buildings  []BuildingLevel
}

// Levels returns the required levels in column order.
func (r Requirement) Levels() []int {
	out := make([]int, len(r.Buildings))
	for i, b := range r.Buildings {
		out[i] = b.Level
	}
	return out
}

// TierTable is the 6-slot sub-matrix of one tier.
type TierTable struct {
	Race       catalogs.Race
	Tier       int
	Slots      []int
	Labels     []string
	Population []int64
	// Rows[i][j] is the level of building i at Slots[j].
	Rows [][]int
}

func ResolveRace(ds *catalogs.Dataset, race string) (catalogs.Race, error) {
	r, ok := ds.LookupRace(race)
	if !ok {
		return catalogs.Race{}, fmt.Errorf("%w: %q", ErrInvalidRace, strings.TrimSpace(race))
	}
	return r, nil
}

func ParseSlot(slot string) (slots.Ref, error) {
	ref, err := slots.Parse(slot)
	if err != nil {
		return slots.Ref{}, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}
	return ref, nil
}

// Resolve maps a race designator and a slot designator to the slot's
// minimum building levels and population threshold.
func Resolve(ds *catalogs.Dataset, race, slot string) (Requirement, error) {
	r, err := ResolveRace(ds, race)
	if err != nil {
		return Requirement{}, err
	}
	ref, err := ParseSlot(slot)
	if err != nil {
		return Requirement{}, err
	}
	return RequirementFor(ds, r, ref.Slot), nil
}

// RequirementFor assumes a resolved race and a valid slot number.
func RequirementFor(ds *catalogs.Dataset, r catalogs.Race, slot int) Requirement {
	row := r.Row(slot)
	req := Requirement{
		Race:       r,
		Ref:        slots.FromSlot(slot),
		Population: ds.Population(slot),
	}
	for i, b := range r.Buildings() {
		req.Buildings = append(req.Buildings, BuildingLevel{Index: i, Building: b, Level: row[i]})
	}
	return req
}

// ParseTier accepts "1", "2" or "3".
func ParseTier(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > slots.Tiers {
		return 0, fmt.Errorf("%w: %q (want 1..%d)", ErrInvalidTier, s, slots.Tiers)
	}
	return n, nil
}

func FullTier(ds *catalogs.Dataset, race string, tier int) (TierTable, error) {
	r, err := ResolveRace(ds, race)
	if err != nil {
		return TierTable{}, err
	}
	nums, err := slots.TierSlots(tier)
	if err != nil {
		return TierTable{}, fmt.Errorf("%w: %v", ErrInvalidTier, err)
	}
	tt := TierTable{Race: r, Tier: tier, Slots: nums}
	for _, s := range nums {
		tt.Labels = append(tt.Labels, slots.Label(s))
		tt.Population = append(tt.Population, ds.Population(s))
	}
	tt.Rows = make([][]int, r.BuildingCount())
	for _, s := range nums {
		for i, lvl := range r.Row(s) {
			tt.Rows[i] = append(tt.Rows[i], lvl)
		}
	}
	return tt, nil
}
