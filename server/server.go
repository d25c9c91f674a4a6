// Package server exposes the session engine as MCP tools over stdio.
// Canonical tool names are snake_case; camelCase aliases exist for
// clients that emit them, as a pure adapter layer with no logic of
// their own.
package server

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nathoo/crawlcore/engine/dice"
	"github.com/nathoo/crawlcore/engine/session"
)

const (
	serverName    = "crawlcore"
	serverVersion = "1.0.0"
)

// aliases maps each camelCase alias to its canonical snake_case tool.
var aliases = map[string]string{
	"startSession":     "start_session",
	"moveDir":          "move",
	"lookAround":       "look",
	"logNarrative":     "log_narrative",
	"journalSummary":   "journal",
	"getActiveSession": "get_active_session",
	"setActiveSession": "set_active_session",
	"listSessions":     "list_sessions",
	"spawnNpc":         "spawn_npc",
	"getNpc":           "get_npc",
	"endSession":       "end_session",
	"resetAll":         "reset_all",
}

// Server hosts the MCP tool surface over a session store.
type Server struct {
	mcpServer *mcp.Server
}

// New builds the MCP server and registers every tool. A nil narrator
// disables narration; events then keep nil narratives until a client
// attaches text via log_narrative.
func New(store *session.Store, rng *dice.RNG, narrator Narrator) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	register(mcpServer, "roll_dice_tool", "Rolls dice in NdM notation and returns every die", rollDiceHandler(rng))
	register(mcpServer, "roll_with_advantage_tool", "Rolls a single die twice and keeps the higher", rollAdvantageHandler(rng))
	register(mcpServer, "start_session", "Starts a new game session and returns the opening tile", startSessionHandler(store, narrator))
	register(mcpServer, "move", "Moves one tile in a cardinal, vertical, or relative direction", moveHandler(store, narrator))
	register(mcpServer, "look", "Returns the current tile without moving", lookHandler(store))
	register(mcpServer, "log_narrative", "Attaches narrative prose to a journaled event id", logNarrativeHandler(store))
	register(mcpServer, "journal", "Returns recent journal entries, most recent first", journalHandler(store))
	register(mcpServer, "spawn_npc", "Creates an NPC at the current tile", spawnNPCHandler(store))
	register(mcpServer, "get_npc", "Fetches an NPC by id", getNPCHandler(store))
	register(mcpServer, "get_active_session", "Returns the active session's status", getActiveSessionHandler(store))
	register(mcpServer, "set_active_session", "Switches the active session", setActiveSessionHandler(store))
	register(mcpServer, "list_sessions", "Lists every session's status", listSessionsHandler(store))
	register(mcpServer, "end_session", "Ends a session and discards its state", endSessionHandler(store))
	register(mcpServer, "reset_all", "Discards every session unconditionally", resetAllHandler(store))
	register(mcpServer, "generate_encounter", "Spawns a hostile NPC and enters combat", generateEncounterHandler(store))
	register(mcpServer, "attack", "Resolves one attack exchange against the first living enemy", attackHandler(store))
	register(mcpServer, "combat_status", "Returns the current combat snapshot", combatStatusHandler(store))
	register(mcpServer, "combat_end", "Ends combat explicitly", combatEndHandler(store))
	register(mcpServer, "ping", "Liveness check", pingHandler())
	register(mcpServer, "health", "Liveness check", pingHandler())
	register(mcpServer, "tools_help", "Lists canonical tool names and their aliases", toolsHelpHandler())

	registerAliases(mcpServer, store, narrator)

	return &Server{mcpServer: mcpServer}
}

// register binds one typed handler under one tool name.
func register[I, O any](s *mcp.Server, name, description string, handler mcp.ToolHandlerFor[I, O]) {
	mcp.AddTool(s, &mcp.Tool{Name: name, Description: description}, handler)
}

// registerAliases re-binds the canonical handlers under their camelCase
// names. Aliases share handler construction with the canonical tools so
// the two surfaces cannot drift.
func registerAliases(s *mcp.Server, store *session.Store, narrator Narrator) {
	register(s, "startSession", "Alias of start_session", startSessionHandler(store, narrator))
	register(s, "moveDir", "Alias of move", moveHandler(store, narrator))
	register(s, "lookAround", "Alias of look", lookHandler(store))
	register(s, "logNarrative", "Alias of log_narrative", logNarrativeHandler(store))
	register(s, "journalSummary", "Alias of journal", journalHandler(store))
	register(s, "getActiveSession", "Alias of get_active_session", getActiveSessionHandler(store))
	register(s, "setActiveSession", "Alias of set_active_session", setActiveSessionHandler(store))
	register(s, "listSessions", "Alias of list_sessions", listSessionsHandler(store))
	register(s, "spawnNpc", "Alias of spawn_npc", spawnNPCHandler(store))
	register(s, "getNpc", "Alias of get_npc", getNPCHandler(store))
	register(s, "endSession", "Alias of end_session", endSessionHandler(store))
	register(s, "resetAll", "Alias of reset_all", resetAllHandler(store))
}

// toolsHelpText renders the canonical tool list with aliases.
func toolsHelpText() string {
	byCanonical := map[string]string{}
	for alias, canonical := range aliases {
		byCanonical[canonical] = alias
	}

	canonicals := []string{
		"roll_dice_tool", "roll_with_advantage_tool", "start_session", "move",
		"look", "log_narrative", "journal", "spawn_npc", "get_npc",
		"get_active_session", "set_active_session", "list_sessions",
		"end_session", "reset_all", "generate_encounter", "attack",
		"combat_status", "combat_end", "ping", "health", "tools_help",
	}
	sort.Strings(canonicals)

	var b strings.Builder
	b.WriteString("Tools (canonical name, alias if any):\n")
	for _, name := range canonicals {
		if alias, ok := byCanonical[name]; ok {
			fmt.Fprintf(&b, "  %s (%s)\n", name, alias)
		} else {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}
	return b.String()
}

// Serve runs the server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
