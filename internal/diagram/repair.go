package diagram

import (
	"fmt"
	"strings"
)

// Level selects how hard a repair pass rewrites the source.
type Level int

const (
	// LevelTargeted quotes labels with special characters and joins broken arrows.
	LevelTargeted Level = 1
	// LevelAggressive additionally normalises whitespace and, on a parser
	// signature match, quotes every label.
	LevelAggressive Level = 2
)

func (l Level) String() string {
	switch l {
	case LevelTargeted:
		return "targeted"
	case LevelAggressive:
		return "aggressive"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel accepts 1/2 or targeted/aggressive; empty means targeted.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1", "targeted":
		return LevelTargeted, nil
	case "2", "aggressive":
		return LevelAggressive, nil
	}
	return 0, fmt.Errorf("unknown repair level %q", s)
}

// Pass1 applies the targeted rules. Source that needs no quoting and has
// no split arrows comes back unchanged.
func Pass1(src string) string {
	return TargetedRules().Apply(src)
}

// Pass2 applies the aggressive rules chosen by the last render error.
func Pass2(src, errMsg string) string {
	return AggressiveRules(errMsg).Apply(src)
}

// Repair runs the pass matching level. The aggressive level expects the
// output of pass 1 but tolerates raw source as well.
func Repair(src string, level Level, errMsg string) string {
	switch level {
	case LevelAggressive:
		return Pass2(Pass1(src), errMsg)
	default:
		return Pass1(src)
	}
}
