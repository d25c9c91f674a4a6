// Package types defines the shared data structures for the CrawlCore engine.
// This package contains only type definitions — no logic, no methods beyond
// trivial accessors.
package types

import "time"

// Position is a 3D coordinate in the session's tile grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Entity is a creature present on a tile.
type Entity struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Name        string `json:"name,omitempty"`
	Disposition string `json:"disposition,omitempty"`
}

// Item is an object present on a tile.
type Item struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// Tile is the generated content of one grid coordinate.
type Tile struct {
	Biome    string   `json:"biome"`
	Lighting string   `json:"lighting"`
	Entities []Entity `json:"entities"`
	Items    []Item   `json:"items"`
	Exits    []string `json:"exits"`
	Hazards  []string `json:"hazards"`
}

// GeneratedTile pairs a tile with its seed and pre-computed salient facts.
type GeneratedTile struct {
	Seed         int64    `json:"seed"`
	Tile         Tile     `json:"tile"`
	SalientFacts []string `json:"salient_facts"`
}

// TilePayload is the public view of the session's current tile, returned
// by look/move/start_session and consumed by the narrator.
type TilePayload struct {
	SessionID         string   `json:"session_id"`
	Turn              int      `json:"turn"`
	Position          Position `json:"position"`
	Heading           string   `json:"heading"`
	Tile              Tile     `json:"tile"`
	SalientFacts      []string `json:"salient_facts"`
	Exits             []string `json:"exits"`
	MaxNarrativeWords int      `json:"max_narrative_words"`
}

// NPC is a non-player character owned by a session. Hit points mutate
// during combat and position mutates on movement; everything else is
// fixed at spawn time.
type NPC struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	ArmorClass  int      `json:"armor_class"`
	HP          int      `json:"hp"`
	MaxHP       int      `json:"max_hp"`
	Position    Position `json:"position"`
	Disposition string   `json:"disposition"`
	Dead        bool     `json:"dead,omitempty"`
}

// JournalEntry is one append-only record of a narrated event. EventID is
// minted when the action commits; Narrative stays nil until (and unless)
// a narrator attaches text to it later.
type JournalEntry struct {
	EventID   int            `json:"event_id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Narrative *string        `json:"narrative,omitempty"`
	Timestamp time.Time      `json:"ts"`
}

// CombatState exists only while the session is in combat. Enemies are
// non-owning references into the session's NPC map.
type CombatState struct {
	Active   bool     `json:"active"`
	Round    int      `json:"round"`
	EnemyIDs []string `json:"enemy_ids"`
	Log      []string `json:"log"`
}

// Settings holds per-session narrative configuration.
type Settings struct {
	Theme             string `json:"theme"`
	Tone              string `json:"tone"`
	MaxNarrativeWords int    `json:"max_narrative_words"`
}

// Session is one independent game state. The session store exclusively
// owns sessions; a session exclusively owns its NPCs, journal, tile
// cache, and combat state.
type Session struct {
	ID          string                    `json:"session_id"`
	Position    Position                  `json:"position"`
	Heading     string                    `json:"heading"`
	Turn        int                       `json:"turn"`
	Tiles       map[string]*GeneratedTile `json:"tiles"`
	Journal     []JournalEntry            `json:"journal"`
	NPCs        map[string]*NPC           `json:"npcs"`
	Combat      *CombatState              `json:"combat,omitempty"`
	LastRoll    int                       `json:"last_roll,omitempty"` // last d20 rolled, 0 if none
	Settings    Settings                  `json:"settings"`
	NextEventID int                       `json:"next_event_id"`
}

// InCombat reports whether the session has an active combat state.
func (s *Session) InCombat() bool {
	return s.Combat != nil && s.Combat.Active
}

// SessionInfo is the brief status row returned by list_sessions and
// get_active_session.
type SessionInfo struct {
	SessionID string   `json:"session_id"`
	Turn      int      `json:"turn"`
	Position  Position `json:"position"`
	Heading   string   `json:"heading"`
	Active    bool     `json:"active"`
}

// CombatSnapshot is the read-only combat summary returned after every
// combat-affecting operation.
type CombatSnapshot struct {
	Active  bool     `json:"active"`
	Round   int      `json:"round"`
	Enemies []NPC    `json:"enemies"`
	LogTail []string `json:"log_tail"`
}
