// Package world generates deterministic tiles and resolves movement
// directions against the player's heading.
package world

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/crawlcore/types"
)

// ErrDirection indicates an unrecognized direction.
var ErrDirection = errors.New("world: use north/south/east/west/up/down or forward/back/left/right")

// compass lists the cardinal directions in clockwise order, used to
// resolve relative directions against the current heading.
var compass = []string{"north", "east", "south", "west"}

// deltas maps absolute directions to coordinate changes.
var deltas = map[string]types.Position{
	"north": {Y: 1},
	"south": {Y: -1},
	"east":  {X: 1},
	"west":  {X: -1},
	"up":    {Z: 1},
	"down":  {Z: -1},
}

// aliases maps single-letter shorthand to absolute directions.
var aliases = map[string]string{
	"n": "north",
	"s": "south",
	"e": "east",
	"w": "west",
	"u": "up",
	"d": "down",
}

// NormalizeDirection resolves aliases and relative forms against the
// current heading. Cardinal moves face the player the way they moved;
// vertical moves keep the heading.
func NormalizeDirection(direction, heading string) (absolute, newHeading string, err error) {
	s := strings.ToLower(strings.TrimSpace(direction))
	if abs, ok := aliases[s]; ok {
		s = abs
	}

	if _, ok := deltas[s]; ok {
		if s == "up" || s == "down" {
			return s, heading, nil
		}
		return s, s, nil
	}

	idx := 0
	for i, dir := range compass {
		if dir == heading {
			idx = i
			break
		}
	}

	switch s {
	case "forward", "ahead":
		// Keep facing.
	case "back", "backward", "reverse":
		idx = (idx + 2) % 4
	case "left":
		idx = (idx + 3) % 4
	case "right":
		idx = (idx + 1) % 4
	default:
		return "", "", fmt.Errorf("%w: got %q", ErrDirection, direction)
	}
	return compass[idx], compass[idx], nil
}

// Step returns the position one tile away in the given absolute direction.
func Step(pos types.Position, absolute string) types.Position {
	d := deltas[absolute]
	return types.Position{X: pos.X + d.X, Y: pos.Y + d.Y, Z: pos.Z + d.Z}
}

// CoordKey returns the canonical map key for a position.
func CoordKey(pos types.Position) string {
	return fmt.Sprintf("%d,%d,%d", pos.X, pos.Y, pos.Z)
}
