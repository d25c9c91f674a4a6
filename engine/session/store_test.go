package session

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/nathoo/crawlcore/engine/combat"
	"github.com/nathoo/crawlcore/engine/dice"
	"github.com/nathoo/crawlcore/loader"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(loader.Themes{}, dice.NewRNG(42))
}

func startSession(t *testing.T, st *Store) string {
	t.Helper()
	tile, _, err := st.StartSession("", "", 0)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	return tile.SessionID
}

func TestStartSession_Defaults(t *testing.T) {
	st := newTestStore(t)

	tile, eventID, err := st.StartSession("", "", 0)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if eventID != 1 {
		t.Errorf("session_start event id = %d, want 1", eventID)
	}
	if !strings.HasPrefix(tile.SessionID, "s_") {
		t.Errorf("session id %q should have s_ prefix", tile.SessionID)
	}
	if tile.Turn != 0 {
		t.Errorf("new session Turn = %d, want 0", tile.Turn)
	}
	if tile.Position.X != 0 || tile.Position.Y != 0 || tile.Position.Z != 0 {
		t.Errorf("new session position = %+v, want origin", tile.Position)
	}
	if tile.Heading != "north" {
		t.Errorf("new session heading = %q, want north", tile.Heading)
	}
	if tile.MaxNarrativeWords != 500 {
		t.Errorf("MaxNarrativeWords = %d, want 500", tile.MaxNarrativeWords)
	}
	if len(tile.Exits) == 0 {
		t.Error("initial tile should have at least one exit")
	}

	info, ok := st.Active()
	if !ok {
		t.Fatal("new session should become active")
	}
	if info.SessionID != tile.SessionID {
		t.Errorf("active session = %s, want %s", info.SessionID, tile.SessionID)
	}
}

func TestStartSession_SecondSessionBecomesActive(t *testing.T) {
	st := newTestStore(t)
	first := startSession(t, st)
	second := startSession(t, st)

	info, ok := st.Active()
	if !ok || info.SessionID != second {
		t.Fatalf("active = %v/%v, want %s", info.SessionID, ok, second)
	}
	if _, err := st.SetActive(first); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	info, _ = st.Active()
	if info.SessionID != first {
		t.Errorf("active = %s after SetActive, want %s", info.SessionID, first)
	}
}

func TestResolve_NoActiveSession(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.Look(""); !errors.Is(err, ErrNoSession) {
		t.Errorf("Look on empty store error = %v, want ErrNoSession", err)
	}
	if _, err := st.Look("s_missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Look with bad id error = %v, want ErrSessionNotFound", err)
	}
}

func TestMove_CardinalSetsHeadingAndAdvancesTurn(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	tile, eventID, err := st.Move("", "east")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if tile.Position.X != 1 || tile.Position.Y != 0 || tile.Position.Z != 0 {
		t.Errorf("position after east = %+v, want (1,0,0)", tile.Position)
	}
	if tile.Heading != "east" {
		t.Errorf("heading = %q, want east", tile.Heading)
	}
	if tile.Turn != 1 {
		t.Errorf("turn = %d, want 1", tile.Turn)
	}
	if eventID == 0 {
		t.Error("move should mint a nonzero event id")
	}
}

func TestMove_RelativeUsesHeading(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	// Face east, then go "left": that is north.
	if _, _, err := st.Move("", "east"); err != nil {
		t.Fatalf("Move(east) error = %v", err)
	}
	tile, _, err := st.Move("", "left")
	if err != nil {
		t.Fatalf("Move(left) error = %v", err)
	}
	if tile.Position.X != 1 || tile.Position.Y != 1 {
		t.Errorf("position = %+v, want (1,1,0)", tile.Position)
	}
	if tile.Heading != "north" {
		t.Errorf("heading = %q, want north", tile.Heading)
	}
}

func TestMove_RoundTripReturnsSameTile(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	origin, err := st.Look("")
	if err != nil {
		t.Fatalf("Look() error = %v", err)
	}
	if _, _, err := st.Move("", "north"); err != nil {
		t.Fatalf("Move(north) error = %v", err)
	}
	back, _, err := st.Move("", "south")
	if err != nil {
		t.Fatalf("Move(south) error = %v", err)
	}
	if back.Tile.Biome != origin.Tile.Biome || back.Tile.Lighting != origin.Tile.Lighting {
		t.Errorf("revisited tile differs: %+v vs %+v", back.Tile, origin.Tile)
	}
}

func TestMove_BadDirection(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	before, _ := st.Look("")
	_, _, err := st.Move("", "sideways")
	if err == nil {
		t.Fatal("Move(sideways) should fail")
	}
	after, _ := st.Look("")
	if after.Position != before.Position || after.Turn != before.Turn {
		t.Error("failed move must not change position or turn")
	}
}

func TestJournal_MostRecentFirstAndLimited(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	for i := 0; i < 5; i++ {
		if _, _, err := st.Move("", "north"); err != nil {
			t.Fatalf("Move() error = %v", err)
		}
	}

	entries, err := st.Journal("", 3)
	if err != nil {
		t.Fatalf("Journal() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].EventID >= entries[i-1].EventID {
			t.Errorf("entries not most-recent-first: %d then %d", entries[i-1].EventID, entries[i].EventID)
		}
	}

	all, err := st.Journal("", 0)
	if err != nil {
		t.Fatalf("Journal() error = %v", err)
	}
	// session_start + 5 moves.
	if len(all) != 6 {
		t.Errorf("default limit returned %d entries, want 6", len(all))
	}
}

func TestLogNarrative_AttachAndOverwrite(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	_, eventID, err := st.Move("", "north")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	entry, err := st.LogNarrative("", eventID, "You step into a torchlit crypt.")
	if err != nil {
		t.Fatalf("LogNarrative() error = %v", err)
	}
	if entry.Narrative == nil || *entry.Narrative != "You step into a torchlit crypt." {
		t.Errorf("narrative not attached: %v", entry.Narrative)
	}

	// Last write wins.
	entry, err = st.LogNarrative("", eventID, "Revised text.")
	if err != nil {
		t.Fatalf("LogNarrative() overwrite error = %v", err)
	}
	if *entry.Narrative != "Revised text." {
		t.Errorf("narrative = %q, want overwrite", *entry.Narrative)
	}

	if _, err := st.LogNarrative("", 999999, "x"); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("unknown event error = %v, want ErrEventNotFound", err)
	}
}

func TestTilePayloadDetachedFromCache(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	before, err := st.Look("")
	if err != nil {
		t.Fatalf("Look() error = %v", err)
	}
	ids := make([]string, len(before.Tile.Entities))
	for i, e := range before.Tile.Entities {
		ids[i] = e.ID
	}

	npc, _, _, err := st.SpawnNPC("", "", "goblin")
	if err != nil {
		t.Fatalf("SpawnNPC() error = %v", err)
	}

	// The spawn rewrites the cached tile's entity list in place; a payload
	// handed out earlier must not see it.
	for i, e := range before.Tile.Entities {
		if e.ID != ids[i] {
			t.Fatalf("payload entity %d changed from %s to %s after spawn", i, ids[i], e.ID)
		}
		if e.ID == npc.ID {
			t.Errorf("payload gained later spawn %s", npc.ID)
		}
	}
}

func TestSpawnNPC(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	npc, msg, eventID, err := st.SpawnNPC("", "", "goblin")
	if err != nil {
		t.Fatalf("SpawnNPC() error = %v", err)
	}
	if !strings.HasPrefix(npc.ID, "npc_") {
		t.Errorf("npc id %q should have npc_ prefix", npc.ID)
	}
	if npc.Kind != "goblin" {
		t.Errorf("kind = %q, want goblin", npc.Kind)
	}
	if npc.ArmorClass < 10 || npc.ArmorClass > 15 {
		t.Errorf("armor class %d out of [10,15]", npc.ArmorClass)
	}
	if npc.HP != 7 || npc.MaxHP != 7 {
		t.Errorf("goblin HP = %d/%d, want 7/7 from theme table", npc.HP, npc.MaxHP)
	}
	if npc.Disposition != "hostile" {
		t.Errorf("disposition = %q, want hostile", npc.Disposition)
	}
	if !strings.Contains(msg, npc.Name) {
		t.Errorf("spawn message %q should name the npc", msg)
	}
	if eventID == 0 {
		t.Error("spawn should mint an event id")
	}

	got, err := st.GetNPC("", npc.ID)
	if err != nil {
		t.Fatalf("GetNPC() error = %v", err)
	}
	if got.ID != npc.ID {
		t.Errorf("GetNPC returned %s, want %s", got.ID, npc.ID)
	}

	// The NPC appears in the current tile's entity list exactly once.
	tile, _ := st.Look("")
	count := 0
	for _, e := range tile.Tile.Entities {
		if e.ID == npc.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("npc appears %d times in tile entities, want 1", count)
	}
}

func TestSpawnNPC_DistinctIDs(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	first, _, _, err := st.SpawnNPC("", "Grib", "goblin")
	if err != nil {
		t.Fatalf("SpawnNPC() error = %v", err)
	}
	second, _, _, err := st.SpawnNPC("", "Grib", "goblin")
	if err != nil {
		t.Fatalf("SpawnNPC() error = %v", err)
	}
	if first.ID == second.ID {
		t.Errorf("two spawns share id %q", first.ID)
	}
}

func TestSpawnNPC_UnknownKindUsesDefaultHP(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	npc, _, _, err := st.SpawnNPC("", "Grib", "mimic")
	if err != nil {
		t.Fatalf("SpawnNPC() error = %v", err)
	}
	if npc.HP != 8 {
		t.Errorf("unknown kind HP = %d, want theme default 8", npc.HP)
	}
	if npc.Name != "Grib" {
		t.Errorf("name = %q, want Grib", npc.Name)
	}
}

func TestGetNPC_Unknown(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	if _, err := st.GetNPC("", "npc_nope"); !errors.Is(err, ErrNPCNotFound) {
		t.Errorf("error = %v, want ErrNPCNotFound", err)
	}
}

func TestGenerateEncounterAndAttackFlow(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	_, msg, _, err := st.GenerateEncounter("", "", "goblin")
	if err != nil {
		t.Fatalf("GenerateEncounter() error = %v", err)
	}
	if !strings.Contains(msg, "initiative") {
		t.Errorf("encounter message = %q", msg)
	}

	snap, err := st.CombatStatus("")
	if err != nil {
		t.Fatalf("CombatStatus() error = %v", err)
	}
	if !snap.Active || snap.Round != 1 || len(snap.Enemies) != 1 {
		t.Fatalf("snapshot = %+v, want active round-1 single enemy", snap)
	}

	snap, _, eventID, err := st.Attack("", combat.AttackRequest{
		Weapon:         "shortsword",
		DamageNotation: "1d6",
		PlayerRoll:     10,
	})
	if err != nil {
		t.Fatalf("Attack() error = %v", err)
	}
	if snap.Round != 2 {
		t.Errorf("round after one exchange = %d, want 2", snap.Round)
	}
	if eventID == 0 {
		t.Error("attack should mint an event id")
	}
}

func TestGenerateEncounter_DuringCombatJoins(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	if _, _, _, err := st.GenerateEncounter("", "", "goblin"); err != nil {
		t.Fatalf("GenerateEncounter() error = %v", err)
	}
	if _, _, _, err := st.GenerateEncounter("", "", "bat"); err != nil {
		t.Fatalf("second GenerateEncounter() error = %v", err)
	}

	snap, err := st.CombatStatus("")
	if err != nil {
		t.Fatalf("CombatStatus() error = %v", err)
	}
	if len(snap.Enemies) != 2 {
		t.Errorf("enemies = %d, want 2 after joining encounter", len(snap.Enemies))
	}
	if snap.Round != 1 {
		t.Errorf("round = %d, joining must not reset it", snap.Round)
	}
}

func TestCombatEnd(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	if _, _, err := st.CombatEnd(""); !errors.Is(err, combat.ErrNotInCombat) {
		t.Errorf("CombatEnd outside combat error = %v, want ErrNotInCombat", err)
	}

	if _, _, _, err := st.GenerateEncounter("", "", "goblin"); err != nil {
		t.Fatalf("GenerateEncounter() error = %v", err)
	}
	eventID, msg, err := st.CombatEnd("")
	if err != nil {
		t.Fatalf("CombatEnd() error = %v", err)
	}
	if msg != "The battle is finished." {
		t.Errorf("message = %q", msg)
	}
	if eventID == 0 {
		t.Error("combat end should mint an event id")
	}

	snap, _ := st.CombatStatus("")
	if snap.Active {
		t.Error("combat still active after CombatEnd")
	}
}

func TestAttack_OutsideCombat(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	_, _, _, err := st.Attack("", combat.AttackRequest{DamageNotation: "1d6"})
	if !errors.Is(err, combat.ErrNotInCombat) {
		t.Errorf("error = %v, want ErrNotInCombat", err)
	}
}

func TestEndSessionAndResetAll(t *testing.T) {
	st := newTestStore(t)
	first := startSession(t, st)
	second := startSession(t, st)

	ended, err := st.EndSession("")
	if err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}
	if ended != second {
		t.Errorf("ended = %s, want active session %s", ended, second)
	}
	if _, ok := st.Active(); ok {
		t.Error("active pointer should be unset after ending the active session")
	}
	if len(st.List()) != 1 {
		t.Errorf("sessions = %d, want 1", len(st.List()))
	}

	if _, err := st.EndSession(first); err != nil {
		t.Fatalf("EndSession(first) error = %v", err)
	}

	startSession(t, st)
	st.ResetAll()
	if len(st.List()) != 0 {
		t.Error("ResetAll should drop every session")
	}
	if _, ok := st.Active(); ok {
		t.Error("ResetAll should clear the active pointer")
	}
}

func TestList_SortedBySessionID(t *testing.T) {
	st := newTestStore(t)
	for i := 0; i < 5; i++ {
		startSession(t, st)
	}

	infos := st.List()
	if len(infos) != 5 {
		t.Fatalf("sessions = %d, want 5", len(infos))
	}
	if !sort.SliceIsSorted(infos, func(i, j int) bool {
		return infos[i].SessionID < infos[j].SessionID
	}) {
		t.Errorf("List not sorted by session id: %v", infos)
	}
}

func TestJournalCap(t *testing.T) {
	st := newTestStore(t)
	startSession(t, st)

	s, err := st.resolve("")
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	for i := 0; i < journalCap; i++ {
		st.appendEvent(s, "move", nil)
	}
	// session_start plus journalCap appends crossed the cap once.
	if len(s.Journal) != journalTrim {
		t.Errorf("journal length = %d, want trim size %d", len(s.Journal), journalTrim)
	}
	// Event ids keep climbing even as old entries fall off.
	last := s.Journal[len(s.Journal)-1].EventID
	if last != journalCap+1 { // +1 for session_start
		t.Errorf("last event id = %d, want %d", last, journalCap+1)
	}
}

func TestSnapshotAndRestore(t *testing.T) {
	st := newTestStore(t)
	id := startSession(t, st)
	if _, _, err := st.Move("", "north"); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if _, _, _, err := st.GenerateEncounter("", "", "goblin"); err != nil {
		t.Fatalf("GenerateEncounter() error = %v", err)
	}

	snap, err := st.Snapshot("")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	// Mutating the live session must not touch the snapshot.
	if _, _, err := st.Move("", "east"); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if snap.Turn != 1 {
		t.Errorf("snapshot turn = %d, want 1 after later mutation", snap.Turn)
	}

	// End the session and restore the snapshot.
	if _, err := st.EndSession(""); err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}
	info := st.Restore(snap)
	if info.SessionID != id || info.Turn != 1 {
		t.Errorf("restored = %+v, want %s at turn 1", info, id)
	}

	combatSnap, err := st.CombatStatus("")
	if err != nil {
		t.Fatalf("CombatStatus() error = %v", err)
	}
	if !combatSnap.Active || len(combatSnap.Enemies) != 1 {
		t.Errorf("restored combat = %+v, want active single-enemy", combatSnap)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Goblin Snarl", "goblin_snarl"},
		{"  Grib!! ", "grib"},
		{"Bat", "bat"},
		{"!!!", "foe"},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
