package variant

import "fmt"

// Variant identifies one of the four supported football formats. Every team
// plays exactly one variant and a match inherits the variant of its home team.
type Variant string

const (
	Football11 Variant = "football_11"
	Football7  Variant = "football_7"
	Football5  Variant = "football_5"
	Futsal     Variant = "futsal"
)

// Rules holds the fixed numbers a variant implies: how many players a team
// needs on the pitch, and the default roster bounds used when a team has no
// explicit override.
type Rules struct {
	MinPlayers       int // minimum players required to field a side
	DefaultMaxRoster int // default roster capacity
	DefaultMinRoster int // advisory squad-health floor, never enforced
}

var catalog = map[Variant]Rules{
	Football11: {MinPlayers: 11, DefaultMaxRoster: 25, DefaultMinRoster: 18},
	Football7:  {MinPlayers: 7, DefaultMaxRoster: 15, DefaultMinRoster: 12},
	Football5:  {MinPlayers: 5, DefaultMaxRoster: 10, DefaultMinRoster: 8},
	Futsal:     {MinPlayers: 5, DefaultMaxRoster: 12, DefaultMinRoster: 8},
}

// Valid reports whether v is one of the catalogued variants.
func (v Variant) Valid() bool {
	_, ok := catalog[v]
	return ok
}

// RulesFor returns the rules for v.
func RulesFor(v Variant) (Rules, error) {
	r, ok := catalog[v]
	if !ok {
		return Rules{}, fmt.Errorf("unknown variant %q", v)
	}
	return r, nil
}

// MinPlayers returns the minimum players a side needs for variant v, or 0 for
// an unknown variant.
func MinPlayers(v Variant) int {
	return catalog[v].MinPlayers
}

// DefaultMaxRoster returns the default roster capacity for variant v.
func DefaultMaxRoster(v Variant) int {
	return catalog[v].DefaultMaxRoster
}

// DefaultMinRoster returns the advisory minimum roster size for variant v.
func DefaultMinRoster(v Variant) int {
	return catalog[v].DefaultMinRoster
}

// All returns the catalogued variants in a stable order.
func All() []Variant {
	return []Variant{Football11, Football7, Football5, Futsal}
}
