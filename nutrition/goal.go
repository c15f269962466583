package nutrition

import "fmt"

// Goal is the calorie adjustment a user picks. The zero value is invalid.
type Goal uint8

const (
	_ Goal = iota
	Maintain
	Cut
	Bulk
)

var goalNames = map[Goal]string{
	Maintain: "maintain",
	Cut:      "cut",
	Bulk:     "bulk",
}

// goalPercents scales maintenance calories into the target: 20% deficit for a
// cut, 15% surplus for a bulk. Whole percents keep the scaling exact.
var goalPercents = map[Goal]int{
	Maintain: 100,
	Cut:      80,
	Bulk:     115,
}

// Goals returns every goal in display order.
func Goals() []Goal {
	return []Goal{Maintain, Cut, Bulk}
}

// ParseGoal fails with ErrInvalidGoal for anything but maintain, cut or bulk.
func ParseGoal(s string) (Goal, error) {
	for k, v := range goalNames {
		if v == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (must be one of: maintain, cut, bulk)", ErrInvalidGoal, s)
}

func (g Goal) String() string {
	if name, ok := goalNames[g]; ok {
		return name
	}
	return fmt.Sprintf("Goal(%d)", uint8(g))
}

func (g Goal) valid() bool {
	_, ok := goalNames[g]
	return ok
}

func (g Goal) MarshalText() ([]byte, error) {
	if !g.valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGoal, g)
	}
	return []byte(g.String()), nil
}

func (g *Goal) UnmarshalText(b []byte) error {
	parsed, err := ParseGoal(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
