package logic

import "strings"

// Division is the club division a player competes in. It drives the
// stratified split mode; players without a division land in the
// catch-all bucket.
type Division int

const (
	DivisionNone Division = iota
	DivisionA
	DivisionB
)

func (d Division) String() string {
	switch d {
	case DivisionA:
		return "A"
	case DivisionB:
		return "B"
	default:
		return "-"
	}
}

// ParseDivision maps user input to a Division. Empty input and "-" mean
// no division.
func ParseDivision(s string) (Division, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return DivisionA, nil
	case "B":
		return DivisionB, nil
	case "", "-", "NONE":
		return DivisionNone, nil
	}
	return DivisionNone, ErrUnknownDivision
}

// Player is one roster entry for a split. Handicap is nil when unknown;
// lower means stronger.
type Player struct {
	ID       int64
	Name     string
	Handicap *float64
	Division Division
}

// Group is one tee-off group. Member order is insertion order from the
// split and carries no meaning.
type Group struct {
	Members []Player
}

// Groups is an ordered partition of a roster. Order matters only for
// naming and report layout.
type Groups []Group
