// Package combat implements the turn-based attack resolution state
// machine: d20 hit/crit determination, damage application, enemy
// retaliation, and round bookkeeping.
package combat

import (
	"errors"
	"fmt"

	"github.com/nathoo/crawlcore/engine/dice"
	"github.com/nathoo/crawlcore/types"
)

// ErrNotInCombat indicates a combat operation outside an active combat.
var ErrNotInCombat = errors.New("combat: no combat active — use generate_encounter first")

// ErrNoEnemies indicates an attack with no living enemies left.
var ErrNoEnemies = errors.New("combat: no living enemies to attack")

// ErrPlayerRoll indicates a supplied player roll outside 1-20.
var ErrPlayerRoll = errors.New("combat: player_roll must be between 1 and 20")

// playerDefense is the fixed defense value enemies roll against when they
// retaliate. There is no player hit-point model; retaliation outcomes are
// recorded in the combat log only.
const playerDefense = 12

// logCap bounds combat log growth.
const logCap = 50

// AttackRequest describes one player attack.
type AttackRequest struct {
	Weapon         string
	DamageNotation string
	Advantage      bool
	Disadvantage   bool
	PlayerRoll     int // 0 means roll fresh
}

// Outcome summarizes one resolved attack exchange.
type Outcome struct {
	Roll     int
	Crit     bool
	Fumble   bool
	Hit      bool
	Damage   int
	TargetID string
	Killed   bool
	Message  string
}

// Start transitions the session into combat against the given enemy.
// If combat is already active the enemy joins the existing encounter.
func Start(s *types.Session, enemyID string) {
	if s.InCombat() {
		s.Combat.EnemyIDs = append(s.Combat.EnemyIDs, enemyID)
		return
	}
	s.Combat = &types.CombatState{
		Active:   true,
		Round:    1,
		EnemyIDs: []string{enemyID},
	}
}

// End discards the combat state entirely. Returns ErrNotInCombat if no
// combat is active.
func End(s *types.Session) error {
	if !s.InCombat() {
		return ErrNotInCombat
	}
	s.Combat = nil
	return nil
}

// FirstLivingEnemy returns the first enemy in initiative order that is
// still alive, or nil if none remain.
func FirstLivingEnemy(s *types.Session) *types.NPC {
	if s.Combat == nil {
		return nil
	}
	for _, id := range s.Combat.EnemyIDs {
		if npc, ok := s.NPCs[id]; ok && !npc.Dead && npc.HP > 0 {
			return npc
		}
	}
	return nil
}

// ResolveAttack resolves one full attack exchange: the player's swing
// against the first living enemy, then that enemy's retaliation if it
// survives. The round counter advances once per exchange.
//
// The player's d20 comes from req.PlayerRoll when supplied (validated to
// 1-20), otherwise it is rolled fresh. Advantage rolls twice and keeps
// the higher die, disadvantage the lower; both flags together cancel to
// a plain roll. A natural 20 doubles the damage dice; a natural 1 always
// misses; otherwise the roll must meet the target's armor class.
//
// All validation happens before any state changes, so a failed call
// leaves the session untouched.
func ResolveAttack(s *types.Session, req AttackRequest, rng *dice.RNG) (Outcome, error) {
	if !s.InCombat() {
		return Outcome{}, ErrNotInCombat
	}
	target := FirstLivingEnemy(s)
	if target == nil {
		return Outcome{}, ErrNoEnemies
	}

	count, sides, err := dice.Parse(req.DamageNotation)
	if err != nil {
		return Outcome{}, err
	}
	if req.PlayerRoll != 0 && (req.PlayerRoll < 1 || req.PlayerRoll > 20) {
		return Outcome{}, fmt.Errorf("%w: got %d", ErrPlayerRoll, req.PlayerRoll)
	}

	roll := req.PlayerRoll
	if roll == 0 {
		roll = playerD20(req.Advantage, req.Disadvantage, rng)
	}
	s.LastRoll = roll

	weapon := req.Weapon
	if weapon == "" {
		weapon = "attack"
	}

	out := Outcome{
		Roll:     roll,
		Crit:     roll == 20,
		Fumble:   roll == 1,
		TargetID: target.ID,
	}

	switch {
	case out.Fumble:
		out.Message = fmt.Sprintf("Your %s goes wide — a natural 1 never lands.", weapon)
		logf(s, "You swing your %s: natural 1 — miss.", weapon)
	case out.Crit || roll >= target.ArmorClass:
		out.Hit = true
		notation := req.DamageNotation
		if out.Crit {
			notation = fmt.Sprintf("%dd%d", count*2, sides)
		}
		dmg, rollErr := rng.Roll(notation)
		if rollErr != nil {
			// Unreachable: the notation was validated above.
			return Outcome{}, rollErr
		}
		out.Damage = dmg.Total

		target.HP -= out.Damage
		if target.HP <= 0 {
			target.HP = 0
			target.Dead = true
			out.Killed = true
		}

		if out.Crit {
			logf(s, "You land a critical hit with your %s: %d damage to %s.", weapon, out.Damage, target.Name)
			out.Message = fmt.Sprintf("Critical hit! Your %s deals %d damage to %s.", weapon, out.Damage, target.Name)
		} else {
			logf(s, "You hit %s with your %s (%d vs AC %d): %d damage.", target.Name, weapon, roll, target.ArmorClass, out.Damage)
			out.Message = fmt.Sprintf("Your %s hits %s for %d damage.", weapon, target.Name, out.Damage)
		}
		if out.Killed {
			logf(s, "%s is slain!", target.Name)
			out.Message += fmt.Sprintf(" %s falls!", target.Name)
		}
	default:
		out.Message = fmt.Sprintf("Your %s misses %s (%d vs AC %d).", weapon, target.Name, roll, target.ArmorClass)
		logf(s, "You miss %s with your %s (%d vs AC %d).", target.Name, weapon, roll, target.ArmorClass)
	}

	// Enemy retaliation: the surviving target strikes back with a fixed
	// simple attack. Log only — the player has no hit points to lose.
	if !out.Killed {
		retaliate(s, target, rng)
	}

	s.Combat.Round++
	return out, nil
}

// playerD20 rolls the player's d20, honoring advantage and disadvantage.
// Both flags together cancel to a plain roll.
func playerD20(advantage, disadvantage bool, rng *dice.RNG) int {
	if advantage == disadvantage {
		return rng.Die(20)
	}
	first, second := rng.Die(20), rng.Die(20)
	if advantage {
		return max(first, second)
	}
	return min(first, second)
}

// retaliate resolves the enemy's counterattack against the player.
func retaliate(s *types.Session, enemy *types.NPC, rng *dice.RNG) {
	roll := rng.Die(20)
	if roll >= playerDefense {
		dmg, _ := rng.Roll("1d4")
		logf(s, "%s strikes back (%d vs your defense %d): %d damage.", enemy.Name, roll, playerDefense, dmg.Total)
	} else {
		logf(s, "%s lashes out at you but misses (%d vs your defense %d).", enemy.Name, roll, playerDefense)
	}
}

// logf appends a formatted line to the rolling combat log.
func logf(s *types.Session, format string, args ...any) {
	s.Combat.Log = append(s.Combat.Log, fmt.Sprintf(format, args...))
	if len(s.Combat.Log) > logCap {
		s.Combat.Log = s.Combat.Log[len(s.Combat.Log)-logCap:]
	}
}
