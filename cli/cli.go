// Package cli provides the plain terminal loop: colon-prefixed commands,
// natural movement aliases, and dice shortcuts.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/crawlcore/engine/combat"
	"github.com/nathoo/crawlcore/engine/dice"
	"github.com/nathoo/crawlcore/engine/save"
	"github.com/nathoo/crawlcore/engine/session"
	"github.com/nathoo/crawlcore/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Store   *session.Store
	RNG     *dice.RNG
	In      io.Reader
	Out     io.Writer
	SaveDir string
}

// New creates a CLI wired to the given store.
func New(store *session.Store, rng *dice.RNG) *CLI {
	return &CLI{
		Store:   store,
		RNG:     rng,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: DefaultSaveDir(),
	}
}

// DefaultSaveDir returns the save location under the user's home directory.
func DefaultSaveDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".crawlcore", "saves")
}

// Run starts the command loop: prompt → input → dispatch → output.
func (c *CLI) Run() {
	c.printLine("CrawlCore. Type :start to begin, :help for commands, :quit to exit.")

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.Dispatch(input) {
			return // :quit
		}
	}
}

// Dispatch handles one input line. Returns true if the loop should exit.
func (c *CLI) Dispatch(input string) bool {
	s := normalize(input)

	switch {
	case strings.HasPrefix(s, "!roll-a "):
		c.cmdRollAdvantage(strings.TrimPrefix(s, "!roll-a "))
		return false
	case strings.HasPrefix(s, "!roll "):
		c.cmdRoll(strings.TrimPrefix(s, "!roll "))
		return false
	case !strings.HasPrefix(s, ":"):
		c.printSystem("Unknown input. Commands start with ':' — try :help.")
		return false
	}

	cmd, arg, _ := strings.Cut(s[1:], " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "quit", "exit":
		c.printSystem("Goodbye.")
		return true
	case "help":
		c.cmdHelp()
	case "start":
		c.cmdStart(arg)
	case "end":
		c.cmdEnd()
	case "reset":
		c.Store.ResetAll()
		c.printSystem("All sessions cleared.")
	case "move":
		c.cmdMove(arg)
	case "look":
		c.cmdLook()
	case "roll":
		c.cmdRoll(arg)
	case "spawn":
		c.cmdSpawn(arg)
	case "npc":
		c.cmdNPC(arg)
	case "journal":
		c.cmdJournal()
	case "sessions":
		c.cmdSessions()
	case "use":
		c.cmdUse(arg)
	case "generate":
		c.cmdGenerate(arg)
	case "attack":
		c.cmdAttack(arg)
	case "combat":
		c.cmdCombat(arg)
	case "save":
		c.cmdSave(arg)
	case "load":
		c.cmdLoad(arg)
	default:
		c.printSystem(fmt.Sprintf("Unknown command: :%s. Type :help for available commands.", cmd))
	}
	return false
}

// normalize maps natural aliases onto canonical colon commands:
// "go east" and "move east" become ":move east", a bare direction
// shortcut like "n" becomes ":move n", "look"/"l" becomes ":look".
func normalize(input string) string {
	s := strings.TrimSpace(input)
	lower := strings.ToLower(s)

	if after, ok := strings.CutPrefix(lower, "go "); ok {
		return ":move " + after
	}
	if strings.HasPrefix(lower, "move ") && !strings.HasPrefix(s, ":") {
		return ":" + lower
	}
	switch lower {
	case "look", "l":
		return ":look"
	case "n", "s", "e", "w", "u", "d",
		"north", "south", "east", "west", "up", "down":
		return ":move " + lower
	}
	return s
}

func (c *CLI) cmdHelp() {
	help := []string{
		"Session:",
		"  :start [theme]     — Start a new session",
		"  :end               — End the active session",
		"  :reset             — Clear all sessions",
		"  :sessions          — List sessions",
		"  :use <id>          — Switch active session",
		"",
		"World:",
		"  :move <dir>        — Move (n/s/e/w/u/d, forward/back/left/right)",
		"  go <dir>           — Same as :move",
		"  :look (l)          — Describe the current tile",
		"  :journal           — Show recent journal entries",
		"",
		"Encounters:",
		"  :spawn [kind]      — Spawn an NPC here",
		"  :npc <id>          — Show NPC by id",
		"  :generate encounter — Spawn a hostile and enter combat",
		"  :attack <weapon> <NdM> [adv|dis] — Attack the first living enemy",
		"  :combat status|end — Inspect or end combat",
		"",
		"Persistence:",
		"  :save [name]       — Save the active session (default: quicksave)",
		"  :load [name]       — Load a saved session (default: quicksave)",
		"",
		"Dice:",
		"  !roll <NdM>        — Roll dice (:roll works too)",
		"  !roll-a <dM>       — Roll one die with advantage",
		"",
		"  :quit              — Exit",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdStart(theme string) {
	tile, _, err := c.Store.StartSession(theme, "", 0)
	if err != nil {
		c.printSystem(fmt.Sprintf("Start failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Session %s started.", tile.SessionID))
	c.printTile(tile)
}

func (c *CLI) cmdEnd() {
	id, err := c.Store.EndSession("")
	if err != nil {
		c.printSystem(fmt.Sprintf("End failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Session %s ended.", id))
}

func (c *CLI) cmdMove(dir string) {
	if dir == "" {
		c.printSystem("Usage: :move <direction>")
		return
	}
	tile, _, err := c.Store.Move("", dir)
	if err != nil {
		c.printSystem(fmt.Sprintf("Move failed: %v", err))
		return
	}
	c.printTile(tile)
}

func (c *CLI) cmdLook() {
	tile, err := c.Store.Look("")
	if err != nil {
		c.printSystem(fmt.Sprintf("Look failed: %v", err))
		return
	}
	c.printTile(tile)
}

func (c *CLI) cmdRoll(notation string) {
	res, err := c.RNG.Roll(notation)
	if err != nil {
		c.printSystem(fmt.Sprintf("Roll failed: %v", err))
		return
	}
	c.printLine(fmt.Sprintf("%s: %v = %d", res.Notation, res.Rolls, res.Total))
}

func (c *CLI) cmdRollAdvantage(notation string) {
	res, err := c.RNG.RollWithAdvantage(notation)
	if err != nil {
		c.printSystem(fmt.Sprintf("Roll failed: %v", err))
		return
	}
	line := fmt.Sprintf("%s with advantage: %v → %d", res.Notation, res.Rolls, res.Result)
	if res.Message != "" {
		line += " (" + res.Message + ")"
	}
	c.printLine(line)
}

func (c *CLI) cmdSpawn(kind string) {
	npc, msg, _, err := c.Store.SpawnNPC("", "", kind)
	if err != nil {
		c.printSystem(fmt.Sprintf("Spawn failed: %v", err))
		return
	}
	c.printLine(msg)
	c.printLine(fmt.Sprintf("  id: %s  HP: %d/%d", npc.ID, npc.HP, npc.MaxHP))
}

func (c *CLI) cmdNPC(id string) {
	if id == "" {
		c.printSystem("Usage: :npc <id>")
		return
	}
	npc, err := c.Store.GetNPC("", id)
	if err != nil {
		c.printSystem(fmt.Sprintf("Lookup failed: %v", err))
		return
	}
	status := "alive"
	if npc.Dead {
		status = "dead"
	}
	c.printLine(fmt.Sprintf("%s (%s) — AC %d, HP %d/%d, %s, %s",
		npc.Name, npc.Kind, npc.ArmorClass, npc.HP, npc.MaxHP, npc.Disposition, status))
}

func (c *CLI) cmdJournal() {
	entries, err := c.Store.Journal("", 0)
	if err != nil {
		c.printSystem(fmt.Sprintf("Journal failed: %v", err))
		return
	}
	if len(entries) == 0 {
		c.printLine("The journal is empty.")
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("#%d %s", e.EventID, e.Type)
		if e.Narrative != nil {
			line += " — " + *e.Narrative
		}
		c.printLine(line)
	}
}

func (c *CLI) cmdSessions() {
	sessions := c.Store.List()
	if len(sessions) == 0 {
		c.printLine("No sessions.")
		return
	}
	for _, s := range sessions {
		marker := " "
		if s.Active {
			marker = "*"
		}
		c.printLine(fmt.Sprintf("%s %s  turn %d  (%d,%d,%d) facing %s",
			marker, s.SessionID, s.Turn, s.Position.X, s.Position.Y, s.Position.Z, s.Heading))
	}
}

func (c *CLI) cmdUse(id string) {
	if id == "" {
		c.printSystem("Usage: :use <session-id>")
		return
	}
	info, err := c.Store.SetActive(id)
	if err != nil {
		c.printSystem(fmt.Sprintf("Switch failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Active session is now %s.", info.SessionID))
}

func (c *CLI) cmdGenerate(arg string) {
	if arg != "encounter" {
		c.printSystem("Usage: :generate encounter")
		return
	}
	_, msg, _, err := c.Store.GenerateEncounter("", "", "")
	if err != nil {
		c.printSystem(fmt.Sprintf("Encounter failed: %v", err))
		return
	}
	c.printLine(msg)
}

// cmdAttack parses `:attack <weapon> <NdM> [adv|dis]`. Weapon names with
// spaces can be quoted.
func (c *CLI) cmdAttack(arg string) {
	weapon, notation, mode := parseAttackArgs(arg)
	if notation == "" {
		c.printSystem(`Usage: :attack <weapon> <NdM> [adv|dis]`)
		return
	}

	snap, msg, _, err := c.Store.Attack("", combat.AttackRequest{
		Weapon:         weapon,
		DamageNotation: notation,
		Advantage:      mode == "adv",
		Disadvantage:   mode == "dis",
	})
	if err != nil {
		c.printSystem(fmt.Sprintf("Attack failed: %v", err))
		return
	}
	c.printLine(msg)
	for _, line := range snap.LogTail {
		c.printLine("  " + line)
	}
}

func (c *CLI) cmdCombat(arg string) {
	switch arg {
	case "status":
		snap, err := c.Store.CombatStatus("")
		if err != nil {
			c.printSystem(fmt.Sprintf("Status failed: %v", err))
			return
		}
		c.printCombat(snap)
	case "end":
		_, msg, err := c.Store.CombatEnd("")
		if err != nil {
			c.printSystem(fmt.Sprintf("End failed: %v", err))
			return
		}
		c.printLine(msg)
	default:
		c.printSystem("Usage: :combat status | :combat end")
	}
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}

	snapshot, err := c.Store.Snapshot("")
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	data, err := save.Save(snapshot)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Session saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	info := c.Store.Restore(sd.Session)
	c.printSystem(fmt.Sprintf("Session %s loaded from %s (turn %d).", info.SessionID, name, info.Turn))
	c.cmdLook()
}

// parseAttackArgs splits an attack argument string into weapon, damage
// notation, and an optional adv/dis mode. Quoted weapon names keep
// their spaces.
func parseAttackArgs(arg string) (weapon, notation, mode string) {
	fields := splitQuoted(arg)
	if len(fields) == 0 {
		return "", "", ""
	}
	if len(fields) == 1 {
		// Just a damage notation, fists it is.
		return "", fields[0], ""
	}
	weapon = fields[0]
	notation = fields[1]
	if len(fields) > 2 {
		switch strings.ToLower(fields[2]) {
		case "adv", "advantage":
			mode = "adv"
		case "dis", "disadvantage":
			mode = "dis"
		}
	}
	return weapon, notation, mode
}

// splitQuoted splits on spaces, keeping double-quoted runs together.
func splitQuoted(s string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}

func (c *CLI) printTile(tile types.TilePayload) {
	c.printLine(fmt.Sprintf("Turn %d — (%d,%d,%d) facing %s",
		tile.Turn, tile.Position.X, tile.Position.Y, tile.Position.Z, tile.Heading))
	for _, fact := range tile.SalientFacts {
		c.printLine("  " + fact)
	}
	c.printLine("  Exits: " + strings.Join(tile.Exits, ", "))
}

func (c *CLI) printCombat(snap types.CombatSnapshot) {
	if !snap.Active {
		c.printLine("No combat in progress.")
		return
	}
	c.printLine(fmt.Sprintf("Combat — round %d", snap.Round))
	for _, e := range snap.Enemies {
		status := fmt.Sprintf("HP %d/%d", e.HP, e.MaxHP)
		if e.Dead {
			status = "dead"
		}
		c.printLine(fmt.Sprintf("  %s (AC %d) — %s", e.Name, e.ArmorClass, status))
	}
	for _, line := range snap.LogTail {
		c.printLine("  " + line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
