package levelimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fdv.tools/internal/catalogs"
)

func race(t *testing.T, key string) catalogs.Race {
	t.Helper()
	ds, err := catalogs.Load(catalogs.DefaultVariant)
	require.NoError(t, err)
	r, ok := ds.RaceByKey(key)
	require.True(t, ok)
	return r
}

func TestParse_KeysAndIndex(t *testing.T) {
	res := Parse(race(t, "mecas"), "HAB=10\nFOOD:12\n3=4")
	assert.Equal(t, []int{10, 12, 4, 0, 0, 0}, res.Levels)
	assert.Equal(t, ModeNamed, res.Mode)
	assert.Equal(t, 3, res.Matched)
}

func TestParse_FlatList(t *testing.T) {
	r := race(t, "humains")
	res := Parse(r, " 10, 12,3 ,0,4,2 ")
	assert.Equal(t, []int{10, 12, 3, 0, 4, 2, 0}, res.Levels)
	assert.Equal(t, ModePositional, res.Mode)

	res = Parse(r, "1,2,3,4,5,6,7,8,9")
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, res.Levels)
}

func TestParse_NamesIgnoreCaseAccentsPunctuation(t *testing.T) {
	res := Parse(race(t, "humains"), `
ferme biospherique: 5
GRATTE CIEL ; 2
neurocalibrage = 3
Académie des sciences (T1→T2): 7
unknown building: 99
`)
	assert.Equal(t, ModeNamed, res.Mode)
	assert.Equal(t, 4, res.Matched)
	assert.Equal(t, []int{0, 5, 7, 3, 0, 2, 0}, res.Levels)
}

func TestParse_LaterLineWins(t *testing.T) {
	res := Parse(race(t, "rocktal"), "HAB=1\nhab=9")
	assert.Equal(t, 9, res.Levels[0])
}

func TestParse_OutOfRangeIndexSkipped(t *testing.T) {
	res := Parse(race(t, "rocktal"), "7=3\n0=2\n2=5")
	assert.Equal(t, []int{0, 5, 0, 0, 0, 0}, res.Levels)
}

func TestParse_BareNumbersFallback(t *testing.T) {
	res := Parse(race(t, "kaelesh"), "10 12\n3\t4")
	assert.Equal(t, ModePositional, res.Mode)
	assert.Equal(t, []int{10, 12, 3, 4, 0, 0, 0}, res.Levels)
}

func TestParse_GarbageYieldsZeros(t *testing.T) {
	r := race(t, "mecas")
	for _, in := range []string{"", "hello world", "foo=bar", "x: -3", "zzz=4"} {
		res := Parse(r, in)
		assert.Equal(t, ModeNone, res.Mode, in)
		assert.Equal(t, make([]int, 6), res.Levels, in)
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "centredassemblageautomatise", Canonical("Centre d’assemblage automatisé"))
	assert.Equal(t, "academiedessciencest1t2", Canonical("Académie des sciences (T1→T2)"))
}
