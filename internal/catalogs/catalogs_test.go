package catalogs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedVariants(t *testing.T) {
	assert.Equal(t, []string{"v0.5", "v0.6"}, Variants())
	for _, v := range Variants() {
		ds, err := Load(v)
		require.NoError(t, err, v)
		assert.Equal(t, v, ds.Variant())
		assert.Len(t, ds.Digest(), 64)
		assert.Len(t, ds.Races(), 4)
		assert.Empty(t, MonotonicityGaps(ds.Spec()), v)
	}
}

func TestLoad_DefaultVariant(t *testing.T) {
	ds, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultVariant, ds.Variant())

	_, err = Load("v9.9")
	assert.Error(t, err)
}

func TestVariants_ShareNumbers(t *testing.T) {
	a, err := Load("v0.5")
	require.NoError(t, err)
	b, err := Load("v0.6")
	require.NoError(t, err)
	assert.Equal(t, a.PopulationTable(), b.PopulationTable())
	for _, ra := range a.Races() {
		rb, ok := b.RaceByKey(ra.Key())
		require.True(t, ok)
		for slot := 1; slot <= 18; slot++ {
			if diff := cmp.Diff(ra.Row(slot), rb.Row(slot)); diff != "" {
				t.Fatalf("%s slot %d mismatch (-v0.5 +v0.6):\n%s", ra.Key(), slot, diff)
			}
		}
	}
	assert.NotEqual(t, a.Digest(), b.Digest())
}

func TestLookupRace_Aliases(t *testing.T) {
	ds, err := Load(DefaultVariant)
	require.NoError(t, err)
	cases := map[string]string{
		"1":        "humains",
		"Human":    "humains",
		" 2 ":      "rocktal",
		"Rock’tal": "rocktal",
		"rock'tal": "rocktal",
		"MÉCAS":    "mecas",
		"mecha":    "mecas",
		"kae":      "kaelesh",
		"4":        "kaelesh",
	}
	for in, want := range cases {
		r, ok := ds.LookupRace(in)
		require.True(t, ok, in)
		assert.Equal(t, want, r.Key(), in)
	}
	for _, in := range []string{"", "5", "elf", "hum"} {
		_, ok := ds.LookupRace(in)
		assert.False(t, ok, in)
	}
}

func TestAccessors_ReturnCopies(t *testing.T) {
	ds, err := Load(DefaultVariant)
	require.NoError(t, err)
	r, _ := ds.RaceByKey("humains")
	row := r.Row(7)
	row[0] = 999
	again, _ := ds.RaceByKey("humains")
	assert.Equal(t, 43, again.Row(7)[0])

	spec := ds.Spec()
	spec.Population[0] = 1
	assert.Equal(t, int64(200000), ds.Population(1))
}

func TestHumainsSlot7(t *testing.T) {
	ds, err := Load(DefaultVariant)
	require.NoError(t, err)
	r, ok := ds.RaceByKey("humains")
	require.True(t, ok)
	assert.Equal(t, int64(1200000), ds.Population(7))
	assert.Equal(t, []int{43, 43, 4, 0, 2, 0, 3}, r.Row(7))
	assert.Nil(t, r.Row(0))
	assert.Nil(t, r.Row(19))
}

func validSpec(t *testing.T) Spec {
	t.Helper()
	ds, err := Load(DefaultVariant)
	require.NoError(t, err)
	return ds.Spec()
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(s *Spec){
		"empty variant":           func(s *Spec) { s.Variant = "" },
		"short population":        func(s *Spec) { s.Population = s.Population[:17] },
		"population not rising":   func(s *Spec) { s.Population[5] = s.Population[4] },
		"missing row":             func(s *Spec) { s.Races[0].Levels = s.Races[0].Levels[:17] },
		"row width":               func(s *Spec) { s.Races[1].Levels[3] = []int{1, 2} },
		"negative level":          func(s *Spec) { s.Races[2].Levels[0][0] = -1 },
		"alias clash":             func(s *Spec) { s.Races[1].Aliases = append(s.Races[1].Aliases, "1") },
		"duplicate building key":  func(s *Spec) { s.Races[0].Buildings[1].Key = "HAB" },
		"single building":         func(s *Spec) { s.Races[0].Buildings = s.Races[0].Buildings[:1] },
		"empty race key":          func(s *Spec) { s.Races[3].Key = "" },
		"empty races":             func(s *Spec) { s.Races = nil },
		"non positive population": func(s *Spec) { s.Population[0] = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := validSpec(t)
			mutate(&s)
			_, err := New(s)
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	raw, err := embedded.ReadFile("data/v0.6.yaml")
	require.NoError(t, err)
	p := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(p, raw, 0o644))

	ds, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "v0.6", ds.Variant())

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("variant: x\npopulation: [1, 2]\n"), 0o644))
	_, err = LoadFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestMonotonicityGaps_Reports(t *testing.T) {
	s := validSpec(t)
	s.Races[0].Levels[9][0] = 1
	gaps := MonotonicityGaps(s)
	assert.Contains(t, gaps, "humains 2.4 HAB")
}
