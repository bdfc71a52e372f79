package compose

import (
	"fmt"

	"github.com/jmylchreest/thumbweave/internal/colour"
)

// RoleCount is the number of permutation positions one composition consumes.
const RoleCount = 5

// Role is a visual role a palette colour can be assigned to.
type Role int

const (
	RoleBackground Role = iota
	RoleForeground
	RoleNear   // top and left bands
	RoleFar    // bottom and right bands
	RoleAccent // corner triangles
	RoleText
)

func (r Role) String() string {
	switch r {
	case RoleBackground:
		return "background"
	case RoleForeground:
		return "foreground"
	case RoleNear:
		return "edge-highlight-near"
	case RoleFar:
		return "edge-highlight-far"
	case RoleAccent:
		return "corner-accent"
	case RoleText:
		return "text"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Composition assigns one colour to every role.
type Composition struct {
	Background colour.RGB
	Foreground colour.RGB
	Near       colour.RGB
	Far        colour.RGB
	Accent     colour.RGB
	Text       colour.RGB
}

// FromTuple builds a composition from one ordered 5-tuple of a palette
// permutation. The corner accent reuses the background colour, so five
// positions cover six roles; repeated colour values are allowed.
func FromTuple(t []colour.RGB) (Composition, error) {
	if len(t) != RoleCount {
		return Composition{}, fmt.Errorf("composition needs exactly %d colours, got %d", RoleCount, len(t))
	}
	return Composition{
		Background: t[0],
		Foreground: t[1],
		Near:       t[2],
		Far:        t[3],
		Accent:     t[0],
		Text:       t[4],
	}, nil
}

// Colour returns the colour assigned to r.
func (c Composition) Colour(r Role) colour.RGB {
	switch r {
	case RoleBackground:
		return c.Background
	case RoleForeground:
		return c.Foreground
	case RoleNear:
		return c.Near
	case RoleFar:
		return c.Far
	case RoleAccent:
		return c.Accent
	default:
		return c.Text
	}
}
