// Package narrator turns structured tile payloads into prose using the
// Gemini API. The engine never waits on it: narration is generated after
// the fact and attached to journal events by id.
package narrator

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nathoo/crawlcore/types"
)

//go:embed prompts/describe_tile.txt
var describeTilePrompt string

// Narrator wraps a Gemini model behind the one operation the engine
// needs.
type Narrator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	tmpl   *template.Template
}

// New builds a narrator. The caller owns Close.
func New(ctx context.Context, apiKey, model string) (*Narrator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("narrator: %w", err)
	}
	tmpl, err := template.New("describe_tile").Parse(describeTilePrompt)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("narrator: %w", err)
	}
	return &Narrator{
		client: client,
		model:  client.GenerativeModel(model),
		tmpl:   tmpl,
	}, nil
}

func (n *Narrator) Close() {
	n.client.Close()
}

// DescribeTile generates prose for a tile payload, given the session's
// theme and tone settings.
func (n *Narrator) DescribeTile(ctx context.Context, payload types.TilePayload, settings types.Settings) (string, error) {
	prompt, err := buildPrompt(n.tmpl, payload, settings)
	if err != nil {
		return "", err
	}

	resp, err := n.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("narrator: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("narrator: empty response")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("narrator: unexpected response part %T", resp.Candidates[0].Content.Parts[0])
	}
	return strings.TrimSpace(string(text)), nil
}

func buildPrompt(tmpl *template.Template, payload types.TilePayload, settings types.Settings) (string, error) {
	data := struct {
		Theme, Tone      string
		MaxWords, Turn   int
		Position         string
		Heading          string
		Biome, Lighting  string
		Facts            []string
		Exits            string
	}{
		Theme:    settings.Theme,
		Tone:     settings.Tone,
		MaxWords: payload.MaxNarrativeWords,
		Turn:     payload.Turn,
		Position: fmt.Sprintf("(%d, %d, %d)", payload.Position.X, payload.Position.Y, payload.Position.Z),
		Heading:  payload.Heading,
		Biome:    payload.Tile.Biome,
		Lighting: payload.Tile.Lighting,
		Facts:    payload.SalientFacts,
		Exits:    strings.Join(payload.Exits, ", "),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("narrator: %w", err)
	}
	return buf.String(), nil
}
