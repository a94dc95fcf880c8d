// Package slots converts between global slot numbers (1..18) and the
// "tier.sub" notation used in game (1.1 .. 3.6).
package slots

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	Count   = 18
	PerTier = 6
	Tiers   = Count / PerTier
)

var (
	globalRe = regexp.MustCompile(`^\d+$`)
	pairRe   = regexp.MustCompile(`^([1-9])\.(\d)$`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// Ref is a resolved slot.
type Ref struct {
	Slot int
	Tier int
	Sub  int
}

func (r Ref) Label() string { return Label(r.Slot) }

// Parse accepts "7", "2.1" and the lenient separators "2,1", "2:1", "2-1".
func Parse(s string) (Ref, error) {
	raw := s
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(",", ".", ":", ".", "-", ".").Replace(s)
	s = spaceRe.ReplaceAllString(s, "")

	if globalRe.MatchString(s) {
		n, _ := strconv.Atoi(s)
		if !Valid(n) {
			return Ref{}, fmt.Errorf("slot %q out of range 1..%d", raw, Count)
		}
		return FromSlot(n), nil
	}
	if m := pairRe.FindStringSubmatch(s); m != nil {
		tier, _ := strconv.Atoi(m[1])
		sub, _ := strconv.Atoi(m[2])
		if tier < 1 || tier > Tiers || sub < 1 || sub > PerTier {
			return Ref{}, fmt.Errorf("slot %q out of range 1.1..%d.%d", raw, Tiers, PerTier)
		}
		return FromSlot((tier-1)*PerTier + sub), nil
	}
	return Ref{}, fmt.Errorf("slot %q: expected 1..%d or tier.sub", raw, Count)
}

func Valid(slot int) bool { return slot >= 1 && slot <= Count }

// FromSlot assumes a valid slot number.
func FromSlot(slot int) Ref {
	return Ref{Slot: slot, Tier: TierOf(slot), Sub: SubOf(slot)}
}

func TierOf(slot int) int { return (slot-1)/PerTier + 1 }

func SubOf(slot int) int { return (slot-1)%PerTier + 1 }

func Label(slot int) string {
	return fmt.Sprintf("%d.%d", TierOf(slot), SubOf(slot))
}

// Labels returns "1.1" .. "3.6" in slot order.
func Labels() []string {
	out := make([]string, 0, Count)
	for n := 1; n <= Count; n++ {
		out = append(out, Label(n))
	}
	return out
}

// TierSlots returns the six global slot numbers of a tier.
func TierSlots(tier int) ([]int, error) {
	if tier < 1 || tier > Tiers {
		return nil, fmt.Errorf("tier %d out of range 1..%d", tier, Tiers)
	}
	out := make([]int, 0, PerTier)
	start := (tier - 1) * PerTier
	for i := 1; i <= PerTier; i++ {
		out = append(out, start+i)
	}
	return out, nil
}
