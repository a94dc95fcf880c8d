package catalogs

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"fdv.tools/internal/slots"
)

const DefaultVariant = "v0.6"

//go:embed data/*.yaml
var embedded embed.FS

// Spec is the serialized form of a dataset (YAML on disk, JSON in exports).
type Spec struct {
	Variant    string     `yaml:"variant" json:"variant"`
	Population []int64    `yaml:"population" json:"population"`
	Races      []RaceSpec `yaml:"races" json:"races"`
}

type RaceSpec struct {
	Key       string     `yaml:"key" json:"key"`
	Display   string     `yaml:"display" json:"display"`
	Color     string     `yaml:"color" json:"color"`
	Aliases   []string   `yaml:"aliases" json:"aliases"`
	Buildings []Building `yaml:"buildings" json:"buildings"`
	Levels    [][]int    `yaml:"levels" json:"levels"`
}

type Building struct {
	Key  string `yaml:"key" json:"key"`
	Icon string `yaml:"icon" json:"icon"`
	Name string `yaml:"name" json:"name"`
}

// Dataset is an immutable, validated requirement table. Accessors hand out
// copies so callers cannot alter the loaded data.
type Dataset struct {
	variant    string
	population []int64
	races      []RaceSpec
	byKey      map[string]int
	byAlias    map[string]int
	digest     string
}

// Race is a read-only view of one race.
type Race struct {
	spec RaceSpec
}

// Variants lists the embedded dataset variants.
func Variants() []string {
	ents, err := embedded.ReadDir("data")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range ents {
		if strings.HasSuffix(e.Name(), ".yaml") {
			out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	sort.Strings(out)
	return out
}

// Load returns an embedded dataset variant.
func Load(variant string) (*Dataset, error) {
	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = DefaultVariant
	}
	raw, err := embedded.ReadFile("data/" + variant + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown dataset variant %q (have %s)", variant, strings.Join(Variants(), ", "))
	}
	return Parse(raw, variant+".yaml")
}

// LoadFile reads an operator supplied YAML dataset.
func LoadFile(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw, filepath.Base(path))
}

func Parse(raw []byte, source string) (*Dataset, error) {
	var spec Spec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	ds, err := New(spec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return ds, nil
}

// New validates spec and builds the lookup indexes.
func New(spec Spec) (*Dataset, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}
	spec = cloneSpec(spec)

	ds := &Dataset{
		variant:    spec.Variant,
		population: spec.Population,
		races:      spec.Races,
		byKey:      make(map[string]int, len(spec.Races)),
		byAlias:    map[string]int{},
	}
	for i, r := range spec.Races {
		ds.byKey[r.Key] = i
		ds.byAlias[normalizeAlias(r.Key)] = i
		for _, a := range r.Aliases {
			ds.byAlias[normalizeAlias(a)] = i
		}
	}

	canon, err := json.Marshal(spec)
	if err != nil {
		return nil, err
	}
	ds.digest = sha256Hex(canon)
	return ds, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func normalizeAlias(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (d *Dataset) Variant() string { return d.variant }

// Digest is the sha256 of the canonical JSON form.
func (d *Dataset) Digest() string { return d.digest }

// Spec returns a deep copy suitable for export.
func (d *Dataset) Spec() Spec {
	return cloneSpec(Spec{Variant: d.variant, Population: d.population, Races: d.races})
}

// Population returns the population threshold of a slot (1..18).
func (d *Dataset) Population(slot int) int64 {
	if !slots.Valid(slot) {
		return 0
	}
	return d.population[slot-1]
}

func (d *Dataset) PopulationTable() []int64 {
	return append([]int64(nil), d.population...)
}

// Races returns all races in dataset order.
func (d *Dataset) Races() []Race {
	out := make([]Race, 0, len(d.races))
	for _, r := range d.races {
		out = append(out, Race{spec: r})
	}
	return out
}

// RaceByKey looks up a canonical key only.
func (d *Dataset) RaceByKey(key string) (Race, bool) {
	i, ok := d.byKey[key]
	if !ok {
		return Race{}, false
	}
	return Race{spec: d.races[i]}, true
}

// LookupRace accepts the canonical key or any alias, case-insensitively.
func (d *Dataset) LookupRace(input string) (Race, bool) {
	i, ok := d.byAlias[normalizeAlias(input)]
	if !ok {
		return Race{}, false
	}
	return Race{spec: d.races[i]}, true
}

func (r Race) Key() string     { return r.spec.Key }
func (r Race) Display() string { return r.spec.Display }
func (r Race) Color() string   { return r.spec.Color }

func (r Race) Aliases() []string { return append([]string(nil), r.spec.Aliases...) }

func (r Race) BuildingCount() int { return len(r.spec.Buildings) }

func (r Race) Buildings() []Building {
	return append([]Building(nil), r.spec.Buildings...)
}

// Row returns a copy of the minimum levels of a slot (1..18).
func (r Race) Row(slot int) []int {
	if !slots.Valid(slot) {
		return nil
	}
	return append([]int(nil), r.spec.Levels[slot-1]...)
}

func cloneSpec(s Spec) Spec {
	out := Spec{
		Variant:    s.Variant,
		Population: append([]int64(nil), s.Population...),
		Races:      make([]RaceSpec, 0, len(s.Races)),
	}
	for _, r := range s.Races {
		c := RaceSpec{
			Key:       r.Key,
			Display:   r.Display,
			Color:     r.Color,
			Aliases:   append([]string(nil), r.Aliases...),
			Buildings: append([]Building(nil), r.Buildings...),
			Levels:    make([][]int, 0, len(r.Levels)),
		}
		for _, row := range r.Levels {
			c.Levels = append(c.Levels, append([]int(nil), row...))
		}
		out.Races = append(out.Races, c)
	}
	return out
}
