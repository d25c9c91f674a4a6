// Package save implements JSON serialization and deserialization of
// session snapshots.
package save

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nathoo/crawlcore/types"
)

// formatVersion guards against loading saves from an incompatible layout.
const formatVersion = "1"

// ErrVersion indicates a save file written by an incompatible version.
var ErrVersion = errors.New("save: unsupported save format version")

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version string         `json:"version"`
	SavedAt time.Time      `json:"saved_at"`
	Session *types.Session `json:"session"`
}

// Save serializes a session snapshot to JSON bytes.
func Save(s *types.Session) ([]byte, error) {
	data := SaveData{
		Version: formatVersion,
		SavedAt: time.Now().UTC(),
		Session: s,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Version != formatVersion {
		return nil, ErrVersion
	}
	if sd.Session == nil {
		return nil, errors.New("save: file contains no session")
	}

	// Ensure maps are never nil after load.
	s := sd.Session
	if s.Tiles == nil {
		s.Tiles = map[string]*types.GeneratedTile{}
	}
	if s.NPCs == nil {
		s.NPCs = map[string]*types.NPC{}
	}
	return &sd, nil
}
