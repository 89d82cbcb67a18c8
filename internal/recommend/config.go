package recommend

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Phase is a training block with its own intensity and volume targets.
type Phase string

const (
	PhaseHypertrophy Phase = "hypertrophy"
	PhaseStrength    Phase = "strength"
	PhasePeaking     Phase = "peaking"
	PhaseExplosive   Phase = "explosive"
)

// ParsePhase normalizes a phase identifier. Unknown identifiers resolve to hypertrophy.
func ParsePhase(s string) Phase {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := phaseConfigs[p]; !ok {
		return PhaseHypertrophy
	}
	return p
}

// PhaseConfig holds the static targets of a phase.
type PhaseConfig struct {
	Phase Phase
	// IntensityLow and IntensityHigh are fractions of the estimated max.
	IntensityLow  float64
	IntensityHigh float64
	Reps          Range
	BaseSets      int
	// RIRTarget is the reps-in-reserve target for working sets.
	RIRTarget   int
	RestSeconds Range
}

// MidIntensity is the centre of the phase's intensity range.
func (p PhaseConfig) MidIntensity() float64 {
	return (p.IntensityLow + p.IntensityHigh) / 2
}

//nolint:gochecknoglobals // static lookup table
var phaseConfigs = map[Phase]PhaseConfig{
	PhaseHypertrophy: {
		Phase:         PhaseHypertrophy,
		IntensityLow:  0.67,
		IntensityHigh: 0.80,
		Reps:          Range{Min: 8, Max: 12},
		BaseSets:      4,
		RIRTarget:     2,
		RestSeconds:   Range{Min: 60, Max: 120},
	},
	PhaseStrength: {
		Phase:         PhaseStrength,
		IntensityLow:  0.80,
		IntensityHigh: 0.90,
		Reps:          Range{Min: 3, Max: 6},
		BaseSets:      5,
		RIRTarget:     2,
		RestSeconds:   Range{Min: 180, Max: 300},
	},
	PhasePeaking: {
		Phase:         PhasePeaking,
		IntensityLow:  0.90,
		IntensityHigh: 0.97,
		Reps:          Range{Min: 1, Max: 3},
		BaseSets:      4,
		RIRTarget:     1,
		RestSeconds:   Range{Min: 240, Max: 360},
	},
	PhaseExplosive: {
		Phase:         PhaseExplosive,
		IntensityLow:  0.50,
		IntensityHigh: 0.70,
		Reps:          Range{Min: 3, Max: 5},
		BaseSets:      5,
		RIRTarget:     3,
		RestSeconds:   Range{Min: 120, Max: 180},
	},
}

// PhaseConfigFor returns the configuration of p, falling back to hypertrophy.
func PhaseConfigFor(p Phase) PhaseConfig {
	return phaseConfigs[ParsePhase(string(p))]
}

// ExerciseConfig tunes progression for a single exercise.
type ExerciseConfig struct {
	LoadIncrementKg float64 `yaml:"load_increment_kg"`
	MaxWeeklySets   int     `yaml:"max_weekly_sets"`
	// EstimateModifier scales estimates, e.g. below 1 for partial range-of-motion variants.
	// Zero means no modifier.
	EstimateModifier float64 `yaml:"estimate_modifier"`
	// RIRAdjustment is added to the phase's reps-in-reserve target.
	RIRAdjustment int `yaml:"rir_adjustment"`
}

func (c ExerciseConfig) modifier() float64 {
	if c.EstimateModifier <= 0 {
		return 1
	}
	return c.EstimateModifier
}

// mergedOnto fills unset fields of c from base.
func (c ExerciseConfig) mergedOnto(base ExerciseConfig) ExerciseConfig {
	if c.LoadIncrementKg <= 0 {
		c.LoadIncrementKg = base.LoadIncrementKg
	}
	if c.MaxWeeklySets <= 0 {
		c.MaxWeeklySets = base.MaxWeeklySets
	}
	if c.EstimateModifier <= 0 {
		c.EstimateModifier = base.EstimateModifier
	}
	return c
}

// Catalog maps exercise names to their configuration. Every lookup resolves, unknown names
// get the default.
type Catalog struct {
	defaults  ExerciseConfig
	exercises map[string]ExerciseConfig
}

func catalogKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DefaultCatalog returns the built-in exercise table.
func DefaultCatalog() *Catalog {
	defaults := ExerciseConfig{LoadIncrementKg: 2.5, MaxWeeklySets: 20} //nolint:mnd // default progression
	heavy := ExerciseConfig{LoadIncrementKg: 5, MaxWeeklySets: 16}      //nolint:mnd // lower body barbell lifts
	compound := ExerciseConfig{LoadIncrementKg: 2.5, MaxWeeklySets: 20} //nolint:mnd // presses and rows
	isolation := ExerciseConfig{LoadIncrementKg: 1.25, MaxWeeklySets: 16}
	technical := ExerciseConfig{LoadIncrementKg: 2.5, MaxWeeklySets: 12, RIRAdjustment: 1}

	partial := func(base ExerciseConfig, modifier float64) ExerciseConfig {
		base.EstimateModifier = modifier
		return base
	}

	c := &Catalog{defaults: defaults, exercises: map[string]ExerciseConfig{}}
	for name, cfg := range map[string]ExerciseConfig{
		"squat":             heavy,
		"back squat":        heavy,
		"front squat":       compound,
		"deadlift":          heavy,
		"sumo deadlift":     heavy,
		"romanian deadlift": compound,
		"leg press":         heavy,
		"bench press":       compound,
		"incline bench":     compound,
		"overhead press":    compound,
		"barbell row":       compound,
		"pendlay row":       compound,
		"lat pulldown":      compound,
		"biceps curl":       isolation,
		"triceps pushdown":  isolation,
		"lateral raise":     isolation,
		"leg extension":     isolation,
		"leg curl":          isolation,
		"box squat":         partial(heavy, 0.95),
		"rack pull":         partial(heavy, 0.85),
		"pin press":         partial(compound, 0.9),
		"floor press":       partial(compound, 0.9),
		"power clean":       technical,
		"hang clean":        technical,
		"snatch":            technical,
	} {
		c.exercises[name] = cfg
	}
	return c
}

// Lookup returns the configuration for an exercise name, case-insensitively.
func (c *Catalog) Lookup(name string) ExerciseConfig {
	if cfg, ok := c.exercises[catalogKey(name)]; ok {
		return cfg
	}
	return c.defaults
}

// Default returns the fallback configuration.
func (c *Catalog) Default() ExerciseConfig {
	return c.defaults
}

type catalogFile struct {
	Default   ExerciseConfig            `yaml:"default"`
	Exercises map[string]ExerciseConfig `yaml:"exercises"`
}

// LoadCatalog reads YAML overrides on top of the built-in table:
//
//	default:
//	  load_increment_kg: 2.5
//	exercises:
//	  Squat:
//	    load_increment_kg: 2.5
//	    max_weekly_sets: 18
//
// Fields left out keep the value of the default configuration.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := DefaultCatalog()
	c.defaults = file.Default.mergedOnto(c.defaults)
	for name, cfg := range file.Exercises {
		if catalogKey(name) == "" {
			return nil, errors.New("catalog exercise with empty name")
		}
		if cfg.LoadIncrementKg < 0 || cfg.MaxWeeklySets < 0 || cfg.EstimateModifier < 0 {
			return nil, fmt.Errorf("catalog exercise %q: negative value", name)
		}
		c.exercises[catalogKey(name)] = cfg.mergedOnto(c.defaults)
	}
	return c, nil
}

// LoadCatalogFile is LoadCatalog for a file path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}
