package farm

import (
	"github.com/rcliao/turnfarm/internal/game"
	"github.com/rcliao/turnfarm/internal/source"
)

// Nightcap is the adventures expected from drinking past the limit at the
// end of an ascending day.
const Nightcap = 60

// overDrunkShift moves the tracking end checkpoints earlier when the nightcap
// turns are still to come.
const overDrunkShift = -40

// Budget describes how much of the day a run may spend.
type Budget struct {
	// StopTurn is the turn count at which the run stops when Limited.
	StopTurn int
	Limited  bool
	NoBarf   bool
	Ascend   bool
}

// NewBudget converts a turns option into a stop turn from the current state:
// positive spends that many turns, negative leaves that many adventures.
func NewBudget(g game.Reader, turns int, noBarf, ascend bool) Budget {
	b := Budget{NoBarf: noBarf, Ascend: ascend}
	switch {
	case turns > 0:
		b.StopTurn, b.Limited = g.TurnCount()+turns, true
	case turns < 0:
		b.StopTurn, b.Limited = g.TurnCount()+max(g.AdventuresLeft()+turns, 0), true
	}
	return b
}

// Spent reports whether the stop turn has been reached.
func (b Budget) Spent(g game.Reader) bool {
	return b.Limited && g.TurnCount() >= b.StopTurn
}

// EstimateTurns is the number of turns the run still expects to spend.
func EstimateTurns(g game.Reader, b Budget, c source.Catalogue) int {
	if b.Limited {
		return b.StopTurn - g.TurnCount()
	}
	if b.NoBarf {
		n, _ := c.Expected()
		return n
	}
	turns := g.AdventuresLeft()
	if b.Ascend && game.Sober(g) {
		turns += Nightcap
	}
	return turns
}

// OverDrunk is the shift applied to the tracking end thresholds.
func OverDrunk(g game.Reader, ascend bool) int {
	if ascend && game.Sober(g) {
		return overDrunkShift
	}
	return 0
}
