package server

import (
	"context"
	"log"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nathoo/crawlcore/engine/combat"
	"github.com/nathoo/crawlcore/engine/dice"
	"github.com/nathoo/crawlcore/engine/session"
	"github.com/nathoo/crawlcore/types"
)

// narrateTimeout bounds a single narration call. Narration runs detached
// from the tool call that triggered it.
const narrateTimeout = 30 * time.Second

// Narrator generates prose for a tile payload. Implementations may call
// external models; the server never blocks a tool call on one.
type Narrator interface {
	DescribeTile(ctx context.Context, payload types.TilePayload, settings types.Settings) (string, error)
}

// RollDiceInput is the input for roll_dice_tool.
type RollDiceInput struct {
	Notation string `json:"notation" jsonschema:"dice notation, e.g. '2d6' or 'd20'"`
}

// RollAdvantageInput is the input for roll_with_advantage_tool.
type RollAdvantageInput struct {
	Notation string `json:"notation" jsonschema:"single-die notation, e.g. 'd20' or '1d20'"`
}

// StartSessionInput is the input for start_session.
type StartSessionInput struct {
	Theme             string `json:"theme,omitempty" jsonschema:"theme pack name, default 'dungeon'"`
	Tone              string `json:"tone,omitempty" jsonschema:"narration tone, default 'moody'"`
	MaxNarrativeWords int    `json:"max_narrative_words,omitempty" jsonschema:"narration word budget, default 500"`
}

// SessionRef selects a session; empty targets the active session.
type SessionRef struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session id, empty for the active session"`
}

// MoveInput is the input for move.
type MoveInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session id, empty for the active session"`
	Direction string `json:"direction" jsonschema:"cardinal (north/east/south/west), vertical (up/down), or relative (forward/back/left/right)"`
}

// MoveResult pairs the new tile with the minted event id.
type MoveResult struct {
	types.TilePayload
	EventID int `json:"event_id" jsonschema:"journal event id for this move"`
}

// LogNarrativeInput is the input for log_narrative.
type LogNarrativeInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session id, empty for the active session"`
	EventID   int    `json:"event_id" jsonschema:"event id returned by the action being narrated"`
	Text      string `json:"text" jsonschema:"narrative prose to attach"`
}

// JournalInput is the input for journal.
type JournalInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session id, empty for the active session"`
	Limit     int    `json:"limit,omitempty" jsonschema:"max entries to return, most recent first, default 32"`
}

// JournalResult is the output of journal.
type JournalResult struct {
	SessionID string               `json:"session_id"`
	Entries   []types.JournalEntry `json:"entries" jsonschema:"journal entries, most recent first"`
}

// SpawnNPCInput is the input for spawn_npc and generate_encounter.
type SpawnNPCInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session id, empty for the active session"`
	Name      string `json:"name,omitempty" jsonschema:"display name, derived from kind when empty"`
	Kind      string `json:"kind,omitempty" jsonschema:"creature kind, random theme creature when empty"`
}

// SpawnNPCResult is the output of spawn_npc.
type SpawnNPCResult struct {
	NPC     types.NPC `json:"npc"`
	Message string    `json:"message" jsonschema:"one-line introduction for the narrator"`
	EventID int       `json:"event_id"`
}

// GetNPCInput is the input for get_npc.
type GetNPCInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session id, empty for the active session"`
	NPCID     string `json:"npc_id" jsonschema:"npc id returned by spawn_npc"`
}

// SessionListResult is the output of list_sessions.
type SessionListResult struct {
	Sessions []types.SessionInfo `json:"sessions"`
}

// ActiveSessionResult is the output of get_active_session.
type ActiveSessionResult struct {
	Active  bool              `json:"active" jsonschema:"whether any session is active"`
	Session types.SessionInfo `json:"session,omitempty"`
}

// EndSessionResult is the output of end_session.
type EndSessionResult struct {
	SessionID string `json:"session_id" jsonschema:"id of the ended session"`
	Ended     bool   `json:"ended"`
}

// ResetAllResult is the output of reset_all.
type ResetAllResult struct {
	Cleared bool `json:"cleared"`
}

// EncounterResult is the output of generate_encounter.
type EncounterResult struct {
	Tile    types.TilePayload `json:"tile"`
	Message string            `json:"message" jsonschema:"encounter introduction"`
	EventID int               `json:"event_id"`
}

// AttackInput is the input for attack.
type AttackInput struct {
	SessionID      string `json:"session_id,omitempty" jsonschema:"session id, empty for the active session"`
	Weapon         string `json:"weapon,omitempty" jsonschema:"weapon name for flavor, default 'attack'"`
	DamageNotation string `json:"damage,omitempty" jsonschema:"damage dice, default '1d6'"`
	Advantage      bool   `json:"advantage,omitempty" jsonschema:"roll the attack d20 twice and keep the higher"`
	Disadvantage   bool   `json:"disadvantage,omitempty" jsonschema:"roll the attack d20 twice and keep the lower"`
	PlayerRoll     int    `json:"player_roll,omitempty" jsonschema:"externally rolled d20 result (1-20), 0 to roll here"`
}

// AttackResult is the output of attack.
type AttackResult struct {
	Combat  types.CombatSnapshot `json:"combat"`
	Message string               `json:"message" jsonschema:"attack outcome narration hook"`
	EventID int                  `json:"event_id"`
}

// CombatEndResult is the output of combat_end.
type CombatEndResult struct {
	Message string `json:"message"`
	EventID int    `json:"event_id"`
}

// PingResult is the output of ping and health.
type PingResult struct {
	Status string `json:"status"`
}

// ToolsHelpResult is the output of tools_help.
type ToolsHelpResult struct {
	Help string `json:"help" jsonschema:"canonical tool names with their aliases"`
}

func rollDiceHandler(rng *dice.RNG) mcp.ToolHandlerFor[RollDiceInput, dice.RollResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollDiceInput) (*mcp.CallToolResult, dice.RollResult, error) {
		res, err := rng.Roll(input.Notation)
		if err != nil {
			return nil, dice.RollResult{}, err
		}
		return nil, res, nil
	}
}

func rollAdvantageHandler(rng *dice.RNG) mcp.ToolHandlerFor[RollAdvantageInput, dice.AdvantageResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollAdvantageInput) (*mcp.CallToolResult, dice.AdvantageResult, error) {
		res, err := rng.RollWithAdvantage(input.Notation)
		if err != nil {
			return nil, dice.AdvantageResult{}, err
		}
		return nil, res, nil
	}
}

func startSessionHandler(store *session.Store, narrator Narrator) mcp.ToolHandlerFor[StartSessionInput, types.TilePayload] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input StartSessionInput) (*mcp.CallToolResult, types.TilePayload, error) {
		tile, eventID, err := store.StartSession(input.Theme, input.Tone, input.MaxNarrativeWords)
		if err != nil {
			return nil, types.TilePayload{}, err
		}
		narrate(store, narrator, tile, eventID)
		return nil, tile, nil
	}
}

func lookHandler(store *session.Store) mcp.ToolHandlerFor[SessionRef, types.TilePayload] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionRef) (*mcp.CallToolResult, types.TilePayload, error) {
		tile, err := store.Look(input.SessionID)
		if err != nil {
			return nil, types.TilePayload{}, err
		}
		return nil, tile, nil
	}
}

func moveHandler(store *session.Store, narrator Narrator) mcp.ToolHandlerFor[MoveInput, MoveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MoveInput) (*mcp.CallToolResult, MoveResult, error) {
		tile, eventID, err := store.Move(input.SessionID, input.Direction)
		if err != nil {
			return nil, MoveResult{}, err
		}
		narrate(store, narrator, tile, eventID)
		return nil, MoveResult{TilePayload: tile, EventID: eventID}, nil
	}
}

func logNarrativeHandler(store *session.Store) mcp.ToolHandlerFor[LogNarrativeInput, types.JournalEntry] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LogNarrativeInput) (*mcp.CallToolResult, types.JournalEntry, error) {
		entry, err := store.LogNarrative(input.SessionID, input.EventID, input.Text)
		if err != nil {
			return nil, types.JournalEntry{}, err
		}
		return nil, entry, nil
	}
}

func journalHandler(store *session.Store) mcp.ToolHandlerFor[JournalInput, JournalResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input JournalInput) (*mcp.CallToolResult, JournalResult, error) {
		entries, err := store.Journal(input.SessionID, input.Limit)
		if err != nil {
			return nil, JournalResult{}, err
		}
		return nil, JournalResult{SessionID: input.SessionID, Entries: entries}, nil
	}
}

func spawnNPCHandler(store *session.Store) mcp.ToolHandlerFor[SpawnNPCInput, SpawnNPCResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SpawnNPCInput) (*mcp.CallToolResult, SpawnNPCResult, error) {
		npc, msg, eventID, err := store.SpawnNPC(input.SessionID, input.Name, input.Kind)
		if err != nil {
			return nil, SpawnNPCResult{}, err
		}
		return nil, SpawnNPCResult{NPC: npc, Message: msg, EventID: eventID}, nil
	}
}

func getNPCHandler(store *session.Store) mcp.ToolHandlerFor[GetNPCInput, types.NPC] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetNPCInput) (*mcp.CallToolResult, types.NPC, error) {
		npc, err := store.GetNPC(input.SessionID, input.NPCID)
		if err != nil {
			return nil, types.NPC{}, err
		}
		return nil, npc, nil
	}
}

func getActiveSessionHandler(store *session.Store) mcp.ToolHandlerFor[struct{}, ActiveSessionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ActiveSessionResult, error) {
		info, ok := store.Active()
		return nil, ActiveSessionResult{Active: ok, Session: info}, nil
	}
}

func setActiveSessionHandler(store *session.Store) mcp.ToolHandlerFor[SessionRef, types.SessionInfo] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionRef) (*mcp.CallToolResult, types.SessionInfo, error) {
		info, err := store.SetActive(input.SessionID)
		if err != nil {
			return nil, types.SessionInfo{}, err
		}
		return nil, info, nil
	}
}

func listSessionsHandler(store *session.Store) mcp.ToolHandlerFor[struct{}, SessionListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, SessionListResult, error) {
		return nil, SessionListResult{Sessions: store.List()}, nil
	}
}

func endSessionHandler(store *session.Store) mcp.ToolHandlerFor[SessionRef, EndSessionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionRef) (*mcp.CallToolResult, EndSessionResult, error) {
		id, err := store.EndSession(input.SessionID)
		if err != nil {
			return nil, EndSessionResult{}, err
		}
		return nil, EndSessionResult{SessionID: id, Ended: true}, nil
	}
}

func resetAllHandler(store *session.Store) mcp.ToolHandlerFor[struct{}, ResetAllResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ResetAllResult, error) {
		store.ResetAll()
		return nil, ResetAllResult{Cleared: true}, nil
	}
}

func generateEncounterHandler(store *session.Store) mcp.ToolHandlerFor[SpawnNPCInput, EncounterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SpawnNPCInput) (*mcp.CallToolResult, EncounterResult, error) {
		tile, msg, eventID, err := store.GenerateEncounter(input.SessionID, input.Name, input.Kind)
		if err != nil {
			return nil, EncounterResult{}, err
		}
		return nil, EncounterResult{Tile: tile, Message: msg, EventID: eventID}, nil
	}
}

func attackHandler(store *session.Store) mcp.ToolHandlerFor[AttackInput, AttackResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AttackInput) (*mcp.CallToolResult, AttackResult, error) {
		notation := input.DamageNotation
		if notation == "" {
			notation = "1d6"
		}
		snap, msg, eventID, err := store.Attack(input.SessionID, combat.AttackRequest{
			Weapon:         input.Weapon,
			DamageNotation: notation,
			Advantage:      input.Advantage,
			Disadvantage:   input.Disadvantage,
			PlayerRoll:     input.PlayerRoll,
		})
		if err != nil {
			return nil, AttackResult{}, err
		}
		return nil, AttackResult{Combat: snap, Message: msg, EventID: eventID}, nil
	}
}

func combatStatusHandler(store *session.Store) mcp.ToolHandlerFor[SessionRef, types.CombatSnapshot] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionRef) (*mcp.CallToolResult, types.CombatSnapshot, error) {
		snap, err := store.CombatStatus(input.SessionID)
		if err != nil {
			return nil, types.CombatSnapshot{}, err
		}
		return nil, snap, nil
	}
}

func combatEndHandler(store *session.Store) mcp.ToolHandlerFor[SessionRef, CombatEndResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionRef) (*mcp.CallToolResult, CombatEndResult, error) {
		eventID, msg, err := store.CombatEnd(input.SessionID)
		if err != nil {
			return nil, CombatEndResult{}, err
		}
		return nil, CombatEndResult{Message: msg, EventID: eventID}, nil
	}
}

func pingHandler() mcp.ToolHandlerFor[struct{}, PingResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, PingResult, error) {
		return nil, PingResult{Status: "ok"}, nil
	}
}

func toolsHelpHandler() mcp.ToolHandlerFor[struct{}, ToolsHelpResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ToolsHelpResult, error) {
		return nil, ToolsHelpResult{Help: toolsHelpText()}, nil
	}
}

// narrate fires a detached narration for a fresh tile event. Failures are
// logged and the event simply keeps a nil narrative.
func narrate(store *session.Store, narrator Narrator, tile types.TilePayload, eventID int) {
	if narrator == nil {
		return
	}
	settings, err := store.Settings(tile.SessionID)
	if err != nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), narrateTimeout)
		defer cancel()

		text, err := narrator.DescribeTile(ctx, tile, settings)
		if err != nil {
			log.Printf("narration failed: session=%s event=%d err=%v", tile.SessionID, eventID, err)
			return
		}
		if _, err := store.LogNarrative(tile.SessionID, eventID, text); err != nil {
			log.Printf("narration attach failed: session=%s event=%d err=%v", tile.SessionID, eventID, err)
		}
	}()
}
