package narrator

import (
	"strings"
	"testing"
	"text/template"

	"github.com/nathoo/crawlcore/types"
)

func TestBuildPrompt(t *testing.T) {
	tmpl, err := template.New("describe_tile").Parse(describeTilePrompt)
	if err != nil {
		t.Fatalf("template parse error = %v", err)
	}

	payload := types.TilePayload{
		Turn:    3,
		Heading: "east",
		Tile: types.Tile{
			Biome:    "crypt",
			Lighting: "torchlit",
		},
		SalientFacts:      []string{"Torchlit crypt", "Goblin is hostile"},
		Exits:             []string{"north", "down"},
		MaxNarrativeWords: 120,
	}
	settings := types.Settings{Theme: "dungeon", Tone: "moody"}

	prompt, err := buildPrompt(tmpl, payload, settings)
	if err != nil {
		t.Fatalf("buildPrompt() error = %v", err)
	}

	for _, want := range []string{
		"moody dungeon",
		"under\n120 words",
		"- Torchlit crypt",
		"- Goblin is hostile",
		"Exits: north, down",
		"facing east",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
