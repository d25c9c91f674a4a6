package types

// ThemeDef is a loaded theme pack: the vocabulary tile generation and NPC
// spawning draw from. Immutable after loading.
type ThemeDef struct {
	Name      string
	Biomes    []string
	Lighting  []string
	Creatures []string
	ItemKinds []string
	Hazards   []string
	HitPoints map[string]int // per-kind default hit points
	DefaultHP int            // hit points for kinds not in HitPoints
}
