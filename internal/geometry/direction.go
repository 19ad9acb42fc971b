package geometry

import (
	"fmt"
	"strings"
)

// Direction is one of the four sides of a box.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Directions lists every direction in cycling order.
var Directions = []Direction{Left, Right, Up, Down}

func (d Direction) String() string {
	switch d {
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Up:
		return "Up"
	case Down:
		return "Down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses a direction name case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return Left, fmt.Errorf("unknown direction %q (want Left, Right, Up or Down)", s)
	}
}

// Next returns the direction after d in Directions, wrapping around.
func (d Direction) Next() Direction {
	return Directions[(int(d)+1)%len(Directions)]
}

// Axis returns the split that separates d's half of a box from the other half.
func (d Direction) Axis() SplitDirection {
	if d == Up || d == Down {
		return Horizontal
	}
	return Vertical
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
