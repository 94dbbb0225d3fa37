// Package persona holds the behavioral tuning bundles that parameterize
// the bot: how early it drinks, how far it chases, how hard it loots.
package persona

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Persona is a frozen behavior configuration. Instances are copied by
// value; nothing mutates them after construction.
type Persona struct {
	Name string `yaml:"name"`

	// PotionHPThreshold is the HP fraction at or below which the bot
	// drinks outside of emergencies.
	PotionHPThreshold float64 `yaml:"potion_hp_threshold"`
	// PanicHPThreshold is the emergency fraction used when several
	// enemies press at once.
	PanicHPThreshold float64 `yaml:"panic_hp_threshold"`
	// PanicEnemyCount is how many adjacent enemies count as "several".
	PanicEnemyCount int `yaml:"panic_enemy_count"`

	// EngageDistance is the maximum Chebyshev distance at which a visible
	// hostile is worth pursuing.
	EngageDistance int `yaml:"engage_distance"`

	// LootPriority: 0 = never detour for loot, higher = more eager.
	LootPriority int `yaml:"loot_priority"`

	// AvoidCombat skips engaging non-adjacent hostiles entirely.
	AvoidCombat bool `yaml:"avoid_combat"`
	// DrinkPotionInCombat permits drinking while enemies are visible.
	DrinkPotionInCombat bool `yaml:"drink_potion_in_combat"`
}

// HealConfig is the subset of persona tuning the healing logic consumes.
type HealConfig struct {
	PotionHPThreshold float64
	PanicHPThreshold  float64
	PanicEnemyCount   int
}

func builtin() map[string]Persona {
	return map[string]Persona{
		"balanced": {
			Name:                "balanced",
			PotionHPThreshold:   0.40,
			PanicHPThreshold:    0.25,
			PanicEnemyCount:     2,
			EngageDistance:      8,
			LootPriority:        1,
			DrinkPotionInCombat: true,
		},
		"cautious": {
			Name:                "cautious",
			PotionHPThreshold:   0.60,
			PanicHPThreshold:    0.40,
			PanicEnemyCount:     1,
			EngageDistance:      5,
			LootPriority:        1,
			AvoidCombat:         true,
			DrinkPotionInCombat: true,
		},
		"aggressive": {
			Name:              "aggressive",
			PotionHPThreshold: 0.25,
			PanicHPThreshold:  0.15,
			PanicEnemyCount:   3,
			EngageDistance:    12,
			LootPriority:      1,
		},
		"greedy": {
			Name:                "greedy",
			PotionHPThreshold:   0.40,
			PanicHPThreshold:    0.25,
			PanicEnemyCount:     2,
			EngageDistance:      6,
			LootPriority:        3,
			DrinkPotionInCombat: true,
		},
		"speedrunner": {
			Name:              "speedrunner",
			PotionHPThreshold: 0.30,
			PanicHPThreshold:  0.20,
			PanicEnemyCount:   2,
			EngageDistance:    4,
			LootPriority:      0,
			AvoidCombat:       true,
		},
	}
}

// Registry resolves persona names. It starts from the built-in set and
// may be overridden from a yaml file.
type Registry struct {
	personas map[string]Persona
}

func Builtin() *Registry {
	return &Registry{personas: builtin()}
}

// LoadFile reads persona overrides and merges them over the built-ins.
// File shape:
//
//	personas:
//	  - name: balanced
//	    potion_hp_threshold: 0.5
//	    ...
func LoadFile(path string) (*Registry, error) {
	r := Builtin()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f struct {
		Personas []Persona `yaml:"personas"`
	}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("personas.yaml: %w", err)
	}
	for _, p := range f.Personas {
		if p.Name == "" {
			return nil, fmt.Errorf("personas.yaml: persona with empty name")
		}
		r.personas[p.Name] = p
	}
	return r, nil
}

// ByName is strict: an unknown persona is a configuration bug and fails
// at construction time rather than silently defaulting.
func (r *Registry) ByName(name string) (Persona, error) {
	p, ok := r.personas[name]
	if !ok {
		return Persona{}, fmt.Errorf("unknown persona %q (have: %v)", name, r.Names())
	}
	return p, nil
}

// HealConfigFor is deliberately lenient where ByName is strict: an
// unrecognized name degrades to the balanced heal thresholds.
func (r *Registry) HealConfigFor(name string) HealConfig {
	p, ok := r.personas[name]
	if !ok {
		p = r.personas["balanced"]
	}
	return HealConfig{
		PotionHPThreshold: p.PotionHPThreshold,
		PanicHPThreshold:  p.PanicHPThreshold,
		PanicEnemyCount:   p.PanicEnemyCount,
	}
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.personas))
	for name := range r.personas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
