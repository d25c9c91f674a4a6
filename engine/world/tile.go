package world

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"strings"

	"github.com/nathoo/crawlcore/types"
)

// SeedFor derives the tile seed for a session/coordinate pair. The seed is
// stable across the life of the process, so revisiting a coordinate always
// regenerates the identical tile.
func SeedFor(sessionID string, pos types.Position) int64 {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d,%d,%d", sessionID, pos.X, pos.Y, pos.Z)))
	return int64(binary.BigEndian.Uint64(h[:8]))
}

// Generate produces the tile at the given coordinate, drawing vocabulary
// from the theme. Deterministic: same session, coordinate, and theme give
// the same tile.
func Generate(sessionID string, pos types.Position, theme *types.ThemeDef) *types.GeneratedTile {
	seed := SeedFor(sessionID, pos)
	rng := rand.New(rand.NewSource(seed))

	biome := theme.Biomes[rng.Intn(len(theme.Biomes))]
	lighting := theme.Lighting[rng.Intn(len(theme.Lighting))]

	var entities []types.Entity
	if rng.Float64() < 0.5 {
		kind := theme.Creatures[rng.Intn(len(theme.Creatures))]
		dispositions := []string{"hostile", "wary", "indifferent"}
		entities = append(entities, types.Entity{
			ID:          fmt.Sprintf("e_%s_%d", kind, 10+rng.Intn(990)),
			Kind:        kind,
			Disposition: dispositions[rng.Intn(len(dispositions))],
		})
	}

	var items []types.Item
	if len(theme.ItemKinds) > 0 && rng.Float64() < 0.5 {
		kind := theme.ItemKinds[rng.Intn(len(theme.ItemKinds))]
		items = append(items, types.Item{
			ID:   fmt.Sprintf("it_%s_%d", kind, 10+rng.Intn(990)),
			Kind: kind,
		})
	}

	var exits []string
	for _, dir := range []string{"north", "east", "south", "west"} {
		if rng.Float64() < 0.7 {
			exits = append(exits, dir)
		}
	}
	if len(exits) == 0 {
		exits = []string{compass[rng.Intn(len(compass))]}
	}

	var hazards []string
	if len(theme.Hazards) > 0 && rng.Float64() < 0.3 {
		hazards = append(hazards, theme.Hazards[rng.Intn(len(theme.Hazards))])
	}

	facts := []string{Title(lighting) + " " + spaceWords(biome)}
	if len(entities) > 0 {
		facts = append(facts, fmt.Sprintf("%s is %s", Title(entities[0].Kind), entities[0].Disposition))
	}
	if len(items) > 0 {
		facts = append(facts, "Notable item: "+spaceWords(items[0].Kind))
	}
	if len(hazards) > 0 {
		facts = append(facts, "Hazard: "+spaceWords(hazards[0]))
	}

	return &types.GeneratedTile{
		Seed: seed,
		Tile: types.Tile{
			Biome:    biome,
			Lighting: lighting,
			Entities: entities,
			Items:    items,
			Exits:    exits,
			Hazards:  hazards,
		},
		SalientFacts: facts,
	}
}

// spaceWords turns "ruined_keep" into "ruined keep".
func spaceWords(id string) string {
	return strings.ReplaceAll(id, "_", " ")
}

// Title turns "ruined_keep" into "Ruined Keep".
func Title(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
