package catalog

import (
	"context"

	"github.com/rcliao/turnfarm/internal/combat"
	"github.com/rcliao/turnfarm/internal/game"
	"github.com/rcliao/turnfarm/internal/game/sim"
	"github.com/rcliao/turnfarm/internal/task"
	"github.com/rcliao/turnfarm/internal/value"
	"github.com/rcliao/turnfarm/internal/wanderer"
)

const (
	BreakfastDone = "breakfastCompleted"
	BorisKey      = "Boris's key"
	Lime          = "lime"
	KeyLimePie    = "Boris's key lime pie"
)

// SetupTasks are the turn-free chores run before any fighting. The key lime
// pie is only worth baking when ascending, since the key is spent either way.
func SetupTasks(g game.Client, oracle value.Oracle, ascend bool) []task.Task[combat.Macro] {
	return []task.Task[combat.Macro]{
		{
			Name:      "Breakfast",
			Completed: func() bool { return g.Counter(BreakfastDone) > 0 },
			Do: func(ctx context.Context, _ combat.Macro) error {
				return g.Exec(ctx, "breakfast")
			},
			SpendsTurn: func() bool { return false },
		},
		{
			Name: "Bake " + KeyLimePie,
			Ready: func() bool {
				return ascend && game.Have(g, Lime) &&
					oracle.Value(KeyLimePie) > oracle.Value(Lime)
			},
			Completed: func() bool { return !game.Have(g, BorisKey) },
			Do: func(ctx context.Context, _ combat.Macro) error {
				return g.Exec(ctx, "create "+KeyLimePie)
			},
		},
	}
}

// EncounterValue is the value of one fight against monster in the scenario.
func EncounterValue(s *sim.Scenario, oracle value.Oracle, monster string) float64 {
	m, ok := s.Monsters[monster]
	if !ok {
		return 0
	}
	v := float64(m.Meat)
	for item, n := range m.Drops {
		v += oracle.Value(item) * float64(n)
	}
	return v
}

// Wanderers lists every scenario zone as a wanderer candidate valued by its
// own encounter.
func Wanderers(s *sim.Scenario, oracle value.Oracle) []wanderer.Candidate {
	out := make([]wanderer.Candidate, 0, len(s.Zones))
	for _, z := range s.Zones {
		monster := z.Monster
		out = append(out, wanderer.Candidate{
			Zone:  z.Name,
			Value: func() float64 { return EncounterValue(s, oracle, monster) },
		})
	}
	return out
}
