// Package levelimport turns pasted text into a current-levels vector.
//
// Accepted forms, tried in order:
//
//	10,12,3,0,4,2            flat list, positional
//	HAB=10 / Ferme: 12 / 3;4 one pair per line, matched by name or index
//	10 12 3                  bare numbers, positional, only if no pair matched
//
// Anything else yields zeros. Parse never fails.
package levelimport

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"fdv.tools/internal/catalogs"
)

type Mode string

const (
	ModePositional Mode = "positional"
	ModeNamed      Mode = "named"
	ModeNone       Mode = "none"
)

type Result struct {
	Levels []int
	Mode   Mode
	// Matched counts the pair lines that hit a building. Zero outside ModeNamed.
	Matched int
}

var (
	flatRe  = regexp.MustCompile(`^\d+(\s*,\s*\d+)*$`)
	pairRe  = regexp.MustCompile(`^(.*?)\s*[:=;]\s*(\d+)$`)
	splitRe = regexp.MustCompile(`[\s,;]+`)
	digitRe = regexp.MustCompile(`^\d+$`)
)

func Parse(r catalogs.Race, text string) Result {
	buildings := r.Buildings()
	n := len(buildings)
	text = strings.TrimSpace(text)

	if flatRe.MatchString(text) {
		return Result{Levels: positional(splitRe.Split(text, -1), n), Mode: ModePositional}
	}

	levels := make([]int, n)
	matched := 0
	for _, line := range strings.Split(text, "\n") {
		m := pairRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		idx := match(buildings, m[1])
		if idx < 0 {
			continue
		}
		v, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		levels[idx] = v
		matched++
	}
	if matched > 0 {
		return Result{Levels: levels, Mode: ModeNamed, Matched: matched}
	}

	if text != "" {
		tokens := splitRe.Split(text, -1)
		bare := true
		for _, tok := range tokens {
			if tok != "" && !digitRe.MatchString(tok) {
				bare = false
				break
			}
		}
		if bare {
			return Result{Levels: positional(tokens, n), Mode: ModePositional}
		}
	}
	return Result{Levels: make([]int, n), Mode: ModeNone}
}

func positional(tokens []string, n int) []int {
	out := make([]int, n)
	i := 0
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if i >= n {
			break
		}
		v, err := strconv.Atoi(tok)
		if err == nil {
			out[i] = v
		}
		i++
	}
	return out
}

// match returns the column of name, or -1. A number is a 1-based column;
// otherwise the canonical form is compared with building keys and names,
// exact first, then by containment either way.
func match(buildings []catalogs.Building, name string) int {
	name = strings.TrimSpace(name)
	if digitRe.MatchString(name) {
		i, err := strconv.Atoi(name)
		if err == nil && i >= 1 && i <= len(buildings) {
			return i - 1
		}
		return -1
	}
	q := Canonical(name)
	if q == "" {
		return -1
	}
	for i, b := range buildings {
		if q == Canonical(b.Key) || q == Canonical(b.Name) {
			return i
		}
	}
	for i, b := range buildings {
		c := Canonical(b.Name)
		if strings.Contains(c, q) || strings.Contains(q, c) {
			return i
		}
	}
	return -1
}

// Canonical lowercases s, strips diacritics and keeps letters and digits only.
func Canonical(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(out) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
