// Package session implements the session store: the aggregate root that
// owns every session and is the single point of mutation for movement,
// NPCs, journal entries, and combat.
package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nathoo/crawlcore/engine/combat"
	"github.com/nathoo/crawlcore/engine/dice"
	"github.com/nathoo/crawlcore/engine/world"
	"github.com/nathoo/crawlcore/loader"
	"github.com/nathoo/crawlcore/types"
)

// ErrNoSession indicates no active session and no explicit session id.
var ErrNoSession = errors.New("session: no active session — call start_session or pass a session id")

// ErrSessionNotFound indicates an unknown session id.
var ErrSessionNotFound = errors.New("session: unknown session id")

// ErrNPCNotFound indicates an unknown npc id within a session.
var ErrNPCNotFound = errors.New("session: unknown npc id")

// ErrEventNotFound indicates an unknown event id within a session.
var ErrEventNotFound = errors.New("session: unknown event id")

// journalSummaryLimit bounds journal output when the caller does not
// supply a limit.
const journalSummaryLimit = 32

// journalCap bounds per-session journal growth. When the journal exceeds
// the cap, it is trimmed to journalTrim entries, dropping the oldest.
const (
	journalCap  = 5000
	journalTrim = 4000
)

// defaultMaxNarrativeWords is the narrative word budget applied when
// start_session does not specify one.
const defaultMaxNarrativeWords = 500

// Store owns all sessions and the single active-session pointer.
//
// The store serializes access with one mutex: callers are expected to
// issue at most one in-flight state-mutating call per session at a time,
// and every operation here is short-lived and in-memory, so coarse
// locking keeps the invariants simple. Narrative generation happens
// outside the store and attaches text later via LogNarrative.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*types.Session
	activeID string
	themes   loader.Themes
	rng      *dice.RNG
	now      func() time.Time
}

// NewStore creates an empty store. A nil rng uses the process-wide
// generator; tests pass a seeded one for determinism.
func NewStore(themes loader.Themes, rng *dice.RNG) *Store {
	if themes == nil {
		themes = loader.Themes{}
	}
	return &Store{
		sessions: map[string]*types.Session{},
		themes:   themes,
		rng:      rng,
		now:      time.Now,
	}
}

// StartSession creates a new session, makes it active, and returns the
// initial tile payload. Zero values select defaults: theme "dungeon",
// tone "moody", 500 narrative words.
func (st *Store) StartSession(theme, tone string, maxNarrativeWords int) (types.TilePayload, int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if theme == "" {
		theme = "dungeon"
	}
	if tone == "" {
		tone = "moody"
	}
	if maxNarrativeWords <= 0 {
		maxNarrativeWords = defaultMaxNarrativeWords
	}

	s := &types.Session{
		ID:      "s_" + uuidHex(12),
		Heading: "north",
		Tiles:   map[string]*types.GeneratedTile{},
		NPCs:    map[string]*types.NPC{},
		Settings: types.Settings{
			Theme:             theme,
			Tone:              tone,
			MaxNarrativeWords: maxNarrativeWords,
		},
	}
	st.ensureTile(s)
	st.sessions[s.ID] = s
	st.activeID = s.ID

	eventID := st.appendEvent(s, "session_start", map[string]any{"position": s.Position})
	return st.tilePayload(s), eventID, nil
}

// Look returns the current tile payload without moving.
func (st *Store) Look(sessionID string) (types.TilePayload, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.resolve(sessionID)
	if err != nil {
		return types.TilePayload{}, err
	}
	return st.tilePayload(s), nil
}

// Move moves one tile in the given direction, which may be cardinal,
// vertical, or relative to the session's heading. Movement always
// succeeds; the transition is journaled and the new event id returned.
func (st *Store) Move(sessionID, direction string) (types.TilePayload, int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.resolve(sessionID)
	if err != nil {
		return types.TilePayload{}, 0, err
	}

	abs, heading, err := world.NormalizeDirection(direction, s.Heading)
	if err != nil {
		return types.TilePayload{}, 0, err
	}

	from := s.Position
	s.Position = world.Step(s.Position, abs)
	s.Heading = heading
	s.Turn++
	st.ensureTile(s)

	eventID := st.appendEvent(s, "move", map[string]any{
		"from":    from,
		"to":      s.Position,
		"dir":     abs,
		"heading": heading,
	})
	return st.tilePayload(s), eventID, nil
}

// LogNarrative attaches narrative text to a previously minted event id.
// Re-attaching overwrites: last write wins. This is the only mutation
// path for narrative text.
func (st *Store) LogNarrative(sessionID string, eventID int, text string) (types.JournalEntry, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.resolve(sessionID)
	if err != nil {
		return types.JournalEntry{}, err
	}

	for i := range s.Journal {
		if s.Journal[i].EventID == eventID {
			s.Journal[i].Narrative = &text
			return s.Journal[i], nil
		}
	}
	return types.JournalEntry{}, fmt.Errorf("%w: %d", ErrEventNotFound, eventID)
}

// Journal returns journal entries most-recent-first, bounded by limit
// (<= 0 uses the default summary limit).
func (st *Store) Journal(sessionID string, limit int) ([]types.JournalEntry, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.resolve(sessionID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = journalSummaryLimit
	}

	n := len(s.Journal)
	if limit > n {
		limit = n
	}
	out := make([]types.JournalEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.Journal[i])
	}
	return out, nil
}

// SpawnNPC creates an NPC at the session's current tile. Omitted kind
// picks a random creature from the theme; omitted name derives from the
// kind. Armor class is uniform in [10, 15]; hit points come from the
// theme's per-kind table.
func (st *Store) SpawnNPC(sessionID, name, kind string) (types.NPC, string, int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.resolve(sessionID)
	if err != nil {
		return types.NPC{}, "", 0, err
	}

	npc := st.spawnLocked(s, name, kind)
	eventID := st.appendEvent(s, "spawn_npc", map[string]any{"npc": *npc})
	msg := fmt.Sprintf("%s stands before you, watching your every move. Armor Class: %d.", npc.Name, npc.ArmorClass)
	return *npc, msg, eventID, nil
}

// Settings returns a session's settings snapshot.
func (st *Store) Settings(sessionID string) (types.Settings, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.resolve(sessionID)
	if err != nil {
		return types.Settings{}, err
	}
	return s.Settings, nil
}

// GetNPC fetches an NPC by id.
func (st *Store) GetNPC(sessionID, npcID string) (types.NPC, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.resolve(sessionID)
	if err != nil {
		return types.NPC{}, err
	}
	npc, ok := s.NPCs[npcID]
	if !ok {
		return types.NPC{}, fmt.Errorf("%w: %s", ErrNPCNotFound, npcID)
	}
	return *npc, nil
}

// Active returns the active session's brief status. ok is false when no
// session is active.
func (st *Store) Active() (info types.SessionInfo, ok bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, found := st.sessions[st.activeID]
	if !found {
		return types.SessionInfo{}, false
	}
	return st.info(s), true
}

// SetActive switches the active session pointer.
func (st *Store) SetActive(sessionID string) (types.SessionInfo, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[sessionID]
	if !ok {
		return types.SessionInfo{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	st.activeID = sessionID
	return st.info(s), nil
}

// List returns brief statuses for all sessions, ordered by session id.
func (st *Store) List() []types.SessionInfo {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]types.SessionInfo, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, st.info(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

// EndSession removes a session (the active one when sessionID is empty).
// If the removed session was active, the active pointer becomes unset.
func (st *Store) EndSession(sessionID string) (string, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.resolve(sessionID)
	if err != nil {
		return "", err
	}
	delete(st.sessions, s.ID)
	if st.activeID == s.ID {
		st.activeID = ""
	}
	return s.ID, nil
}

// ResetAll clears every session unconditionally. Full-state recovery,
// not a normal operation.
func (st *Store) ResetAll() {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.sessions = map[string]*types.Session{}
	st.activeID = ""
}

// resolve returns the session for the given id, or the active session
// when the id is empty. Callers must hold st.mu.
func (st *Store) resolve(sessionID string) (*types.Session, error) {
	if sessionID == "" {
		s, ok := st.sessions[st.activeID]
		if !ok {
			return nil, ErrNoSession
		}
		return s, nil
	}
	s, ok := st.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return s, nil
}

// spawnLocked creates and registers an NPC without journaling it.
// Callers must hold st.mu.
func (st *Store) spawnLocked(s *types.Session, name, kind string) *types.NPC {
	theme := st.themes.Get(s.Settings.Theme)

	if kind == "" {
		kind = theme.Creatures[st.rng.Intn(len(theme.Creatures))]
	}
	if name == "" {
		name = world.Title(kind) + " " + uuidHex(4)
	}

	hp, ok := theme.HitPoints[kind]
	if !ok {
		hp = theme.DefaultHP
	}

	npc := &types.NPC{
		ID:          fmt.Sprintf("npc_%s_%s", slug(name), uuidHex(6)),
		Name:        name,
		Kind:        kind,
		ArmorClass:  10 + st.rng.Intn(6),
		HP:          hp,
		MaxHP:       hp,
		Position:    s.Position,
		Disposition: "hostile",
	}
	s.NPCs[npc.ID] = npc

	// Reflect presence in the current tile's entity list, replacing any
	// stale entry with the same id.
	tile := st.ensureTile(s)
	entities := tile.Tile.Entities[:0]
	for _, e := range tile.Tile.Entities {
		if e.ID != npc.ID {
			entities = append(entities, e)
		}
	}
	tile.Tile.Entities = append(entities, types.Entity{
		ID:          npc.ID,
		Kind:        npc.Kind,
		Name:        npc.Name,
		Disposition: npc.Disposition,
	})

	return npc
}

// ensureTile generates and caches the tile at the session's current
// position. Callers must hold st.mu.
func (st *Store) ensureTile(s *types.Session) *types.GeneratedTile {
	key := world.CoordKey(s.Position)
	if tile, ok := s.Tiles[key]; ok {
		return tile
	}
	tile := world.Generate(s.ID, s.Position, st.themes.Get(s.Settings.Theme))
	s.Tiles[key] = tile
	return tile
}

// appendEvent mints the next event id and appends a journal entry with
// no narrative yet. Narrative arrives later, if ever, via LogNarrative.
// Callers must hold st.mu.
func (st *Store) appendEvent(s *types.Session, eventType string, payload map[string]any) int {
	s.NextEventID++
	s.Journal = append(s.Journal, types.JournalEntry{
		EventID:   s.NextEventID,
		Type:      eventType,
		Payload:   payload,
		Timestamp: st.now().UTC(),
	})
	if len(s.Journal) > journalCap {
		s.Journal = s.Journal[len(s.Journal)-journalTrim:]
	}
	return s.NextEventID
}

// tilePayload builds the public view of the session's current tile.
// The tile is copied so the payload cannot observe later mutations of
// the cached tile (spawns rewrite its entity list in place).
// Callers must hold st.mu.
func (st *Store) tilePayload(s *types.Session) types.TilePayload {
	gen := st.ensureTile(s)
	tile := cloneTile(gen.Tile)
	return types.TilePayload{
		SessionID:         s.ID,
		Turn:              s.Turn,
		Position:          s.Position,
		Heading:           s.Heading,
		Tile:              tile,
		SalientFacts:      append([]string(nil), gen.SalientFacts...),
		Exits:             tile.Exits,
		MaxNarrativeWords: s.Settings.MaxNarrativeWords,
	}
}

// info builds the brief status row for a session. Callers must hold st.mu.
func (st *Store) info(s *types.Session) types.SessionInfo {
	return types.SessionInfo{
		SessionID: s.ID,
		Turn:      s.Turn,
		Position:  s.Position,
		Heading:   s.Heading,
		Active:    s.ID == st.activeID,
	}
}

// snapshot builds the read-only combat summary. Callers must hold st.mu.
func snapshot(s *types.Session) types.CombatSnapshot {
	if !s.InCombat() {
		return types.CombatSnapshot{}
	}
	snap := types.CombatSnapshot{
		Active: true,
		Round:  s.Combat.Round,
	}
	for _, id := range s.Combat.EnemyIDs {
		if npc, ok := s.NPCs[id]; ok {
			snap.Enemies = append(snap.Enemies, *npc)
		}
	}
	tail := s.Combat.Log
	if len(tail) > 10 {
		tail = tail[len(tail)-10:]
	}
	snap.LogTail = append([]string(nil), tail...)
	return snap
}

// GenerateEncounter spawns a hostile NPC and starts (or joins) combat.
func (st *Store) GenerateEncounter(sessionID, name, kind string) (types.TilePayload, string, int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.resolve(sessionID)
	if err != nil {
		return types.TilePayload{}, "", 0, err
	}

	npc := st.spawnLocked(s, name, kind)
	combat.Start(s, npc.ID)

	eventID := st.appendEvent(s, "encounter", map[string]any{
		"npc":   *npc,
		"round": s.Combat.Round,
	})
	msg := fmt.Sprintf("%s blocks your path — roll for initiative! (AC %d, HP %d)", npc.Name, npc.ArmorClass, npc.HP)
	return st.tilePayload(s), msg, eventID, nil
}

// Attack resolves one attack exchange against the first living enemy and
// journals the outcome.
func (st *Store) Attack(sessionID string, req combat.AttackRequest) (types.CombatSnapshot, string, int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.resolve(sessionID)
	if err != nil {
		return types.CombatSnapshot{}, "", 0, err
	}

	out, err := combat.ResolveAttack(s, req, st.rng)
	if err != nil {
		return types.CombatSnapshot{}, "", 0, err
	}

	eventID := st.appendEvent(s, "attack", map[string]any{
		"weapon": req.Weapon,
		"roll":   out.Roll,
		"crit":   out.Crit,
		"hit":    out.Hit,
		"damage": out.Damage,
		"target": out.TargetID,
		"killed": out.Killed,
	})
	return snapshot(s), out.Message, eventID, nil
}

// CombatStatus returns the combat snapshot. Outside combat it reports
// an inactive snapshot rather than an error: status is a read, not an
// action.
func (st *Store) CombatStatus(sessionID string) (types.CombatSnapshot, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.resolve(sessionID)
	if err != nil {
		return types.CombatSnapshot{}, err
	}
	return snapshot(s), nil
}

// CombatEnd explicitly terminates combat, discarding the combat state
// and journaling a fixed closing message.
func (st *Store) CombatEnd(sessionID string) (int, string, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.resolve(sessionID)
	if err != nil {
		return 0, "", err
	}
	if err := combat.End(s); err != nil {
		return 0, "", err
	}

	const msg = "The battle is finished."
	eventID := st.appendEvent(s, "combat_end", map[string]any{"message": msg})
	return eventID, msg, nil
}

// uuidHex returns the first n hex characters of a fresh UUID.
func uuidHex(n int) string {
	h := strings.ReplaceAll(uuid.NewString(), "-", "")
	return h[:n]
}

// slug lowercases a name and collapses non-alphanumerics to underscores.
func slug(name string) string {
	var b strings.Builder
	lastUnderscore := true // trim leading underscores
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.TrimSuffix(b.String(), "_")
	if out == "" {
		return "foe"
	}
	return out
}
