package core

import "fmt"

// Direction is one of the four cardinal headings.
type Direction int

const (
	Right Direction = iota
	Down
	Left
	Up
)

// Directions lists every heading, useful for exhaustive tests.
var Directions = []Direction{Right, Down, Left, Up}

// String returns the wire name of the direction.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Opposite returns the heading pointing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Vertical reports whether d moves along the y axis.
func (d Direction) Vertical() bool {
	return d == Up || d == Down
}

// MarshalText encodes the direction as its wire name.
func (d Direction) MarshalText() ([]byte, error) {
	if d < Right || d > Up {
		return nil, fmt.Errorf("core: invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a wire name into a direction.
func (d *Direction) UnmarshalText(text []byte) error {
	in, ok := ParseIntent(string(text))
	if !ok || in == Straight {
		return fmt.Errorf("core: invalid direction %q", text)
	}
	*d = in.dir
	return nil
}

// Intent is what a player asks for on a tick: an absolute direction or
// "keep going straight". The zero value is Straight.
type Intent struct {
	dir      Direction
	absolute bool
}

// Straight keeps the current heading.
var Straight = Intent{}

// Toward returns the intent to head in direction d.
func Toward(d Direction) Intent {
	return Intent{dir: d, absolute: true}
}

// Direction returns the requested heading and false for Straight.
func (i Intent) Direction() (Direction, bool) {
	return i.dir, i.absolute
}

// String returns the wire name of the intent.
func (i Intent) String() string {
	if !i.absolute {
		return "straight"
	}
	return i.dir.String()
}

// ParseIntent accepts exactly "up", "down", "left", "right" and "straight".
// Anything else is rejected.
func ParseIntent(s string) (Intent, bool) {
	switch s {
	case "up":
		return Toward(Up), true
	case "down":
		return Toward(Down), true
	case "left":
		return Toward(Left), true
	case "right":
		return Toward(Right), true
	case "straight":
		return Straight, true
	}
	return Straight, false
}
