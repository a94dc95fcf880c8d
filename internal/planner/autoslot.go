package planner

import (
	"fdv.tools/internal/catalogs"
	"fdv.tools/internal/slots"
)

type AutoSlotResult struct {
	Race         catalogs.Race
	Current      []int
	MaxReachable int // 0 when slot 1 is not reached yet
	Next         int
	AtMax        bool
	// Delta is measured toward Next.
	Delta Delta
}

// MaxReachable scans slots in order and stops at the first one whose row is
// not fully met. current must already be normalized to the race width.
func MaxReachable(r catalogs.Race, current []int) int {
	best := 0
	for s := 1; s <= slots.Count; s++ {
		if !meets(r.Row(s), current) {
			break
		}
		best = s
	}
	return best
}

func meets(required, current []int) bool {
	for i, lvl := range required {
		if i >= len(current) || current[i] < lvl {
			return false
		}
	}
	return true
}

func AutoSlot(ds *catalogs.Dataset, race string, current []int) (AutoSlotResult, error) {
	r, err := ResolveRace(ds, race)
	if err != nil {
		return AutoSlotResult{}, err
	}
	cur, err := NormalizeCurrent(current, r.BuildingCount())
	if err != nil {
		return AutoSlotResult{}, err
	}

	res := AutoSlotResult{Race: r, Current: cur}
	res.MaxReachable = MaxReachable(r, cur)
	res.AtMax = res.MaxReachable == slots.Count
	res.Next = res.MaxReachable + 1
	if res.Next > slots.Count {
		res.Next = slots.Count
	}

	res.Delta, err = ComputeDelta(RequirementFor(ds, r, res.Next), cur)
	if err != nil {
		return AutoSlotResult{}, err
	}
	return res, nil
}
