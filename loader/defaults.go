package loader

import "github.com/nathoo/crawlcore/types"

// DefaultTheme returns the built-in dungeon theme used when no theme pack
// is loaded or a session names an unknown theme.
func DefaultTheme() *types.ThemeDef {
	return &types.ThemeDef{
		Name: "dungeon",
		Biomes: []string{
			"ruined_keep",
			"crypt",
			"cavern",
			"armory",
			"library",
			"underground_river",
		},
		Lighting:  []string{"dark", "dim", "torchlit", "glimmering"},
		Creatures: []string{"goblin", "skeleton", "bat", "kobold", "slime"},
		ItemKinds: []string{"scroll", "rusty_blade", "torch", "amulet", "potion"},
		Hazards:   []string{"loose_stones", "slick_moss", "unstable_beam"},
		HitPoints: map[string]int{
			"goblin":   7,
			"skeleton": 13,
			"bat":      3,
			"kobold":   5,
			"bandit":   11,
			"slime":    8,
		},
		DefaultHP: 8,
	}
}
