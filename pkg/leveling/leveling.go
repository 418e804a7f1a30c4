// Package leveling turns experience points into levels.
package leveling

// Gain is the outcome of adding points to a total.
type Gain struct {
	NewPoints int
	LeveledUp bool
	NewLevel  int
}

// Level returns floor(points / perLevel). perLevel must be positive.
func Level(points, perLevel int) int {
	if points <= 0 {
		return 0
	}
	return points / perLevel
}

// ApplyGain adds gain to current. A gain that crosses several level
// boundaries reports a single level-up to the highest level reached.
func ApplyGain(current, gain, perLevel int) Gain {
	next := current + gain
	lvl := Level(next, perLevel)
	return Gain{
		NewPoints: next,
		LeveledUp: lvl > Level(current, perLevel),
		NewLevel:  lvl,
	}
}

// ToNext returns the points still missing before the next level.
func ToNext(points, perLevel int) int {
	return (Level(points, perLevel)+1)*perLevel - points
}
