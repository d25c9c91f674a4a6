package session

import (
	"github.com/nathoo/crawlcore/types"
)

// Snapshot returns a deep copy of a session, safe to serialize or hold
// after the store moves on.
func (st *Store) Snapshot(sessionID string) (*types.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := st.resolve(sessionID)
	if err != nil {
		return nil, err
	}
	return cloneSession(s), nil
}

// Restore registers a session snapshot, replacing any session with the
// same id, and makes it active.
func (st *Store) Restore(s *types.Session) types.SessionInfo {
	st.mu.Lock()
	defer st.mu.Unlock()

	clone := cloneSession(s)
	st.sessions[clone.ID] = clone
	st.activeID = clone.ID
	return st.info(clone)
}

func cloneSession(s *types.Session) *types.Session {
	out := *s

	out.Tiles = make(map[string]*types.GeneratedTile, len(s.Tiles))
	for k, t := range s.Tiles {
		tile := *t
		tile.Tile = cloneTile(t.Tile)
		tile.SalientFacts = append([]string(nil), t.SalientFacts...)
		out.Tiles[k] = &tile
	}

	out.NPCs = make(map[string]*types.NPC, len(s.NPCs))
	for k, n := range s.NPCs {
		npc := *n
		out.NPCs[k] = &npc
	}

	out.Journal = make([]types.JournalEntry, len(s.Journal))
	for i, e := range s.Journal {
		entry := e
		if e.Narrative != nil {
			text := *e.Narrative
			entry.Narrative = &text
		}
		if e.Payload != nil {
			payload := make(map[string]any, len(e.Payload))
			for pk, pv := range e.Payload {
				payload[pk] = pv
			}
			entry.Payload = payload
		}
		out.Journal[i] = entry
	}

	if s.Combat != nil {
		combat := *s.Combat
		combat.EnemyIDs = append([]string(nil), s.Combat.EnemyIDs...)
		combat.Log = append([]string(nil), s.Combat.Log...)
		out.Combat = &combat
	}

	return &out
}

func cloneTile(t types.Tile) types.Tile {
	out := t
	out.Entities = append([]types.Entity(nil), t.Entities...)
	out.Items = append([]types.Item(nil), t.Items...)
	out.Exits = append([]string(nil), t.Exits...)
	out.Hazards = append([]string(nil), t.Hazards...)
	return out
}
