// Package catalog defines the demo fight sources, unlock and setup tasks that
// run against the simulated world.
package catalog

import (
	"context"
	"fmt"
	"math"

	"github.com/rcliao/turnfarm/internal/combat"
	"github.com/rcliao/turnfarm/internal/fight"
	"github.com/rcliao/turnfarm/internal/game"
	"github.com/rcliao/turnfarm/internal/source"
	"github.com/rcliao/turnfarm/internal/value"
)

// Item, property and counter names read by the demo sources.
const (
	BackupCamera     = "backup camera"
	BackupUses       = "_backUpUses"
	BackupLimit      = 11
	BackupSkill      = "Back-Up to your Last Enemy"
	PuttyMonster     = "Spooky Putty monster"
	PuttySheet       = "Spooky Putty sheet"
	PuttyProp        = "spookyPuttyMonster"
	PuttyCopies      = "spookyPuttyCopiesMade"
	PuttyLimit       = 5
	ChateauKey       = "Chateau Mantegna room key"
	ChateauPainting  = "chateau painting"
	ChateauProp      = "chateauMonster"
	ChateauFought    = "_chateauMonsterFought"
	VIPKey           = "Clan VIP Lounge key"
	PocketWish       = "pocket wish"
	GenieFights      = "_genieFightsUsed"
	GenieLimit       = 3
	PocketProfessor  = "Pocket Professor"
	ProfessorLecture = "_pocketProfessorLectures"
	MeatChainDone    = "_meatChainDone"
	WeightChainDone  = "_weightChainDone"
)

// Sources returns the demo catalogue in priority order.
func Sources(g game.Client, fax *fight.Fax, target combat.Monster) source.Catalogue {
	return source.Catalogue{
		backup(g, target),
		putty(g, target),
		chateau(g, target),
		faxSource(g, fax),
		professorChain("Professor MeatChain", g, MeatChainDone, func(lectures int) int {
			return max(10-lectures, 0)
		}),
		professorChain("Professor WeightChain", g, WeightChainDone, func(lectures int) int {
			return min(15-lectures, 5)
		}),
	}
}

func backup(g game.Client, target combat.Monster) source.Source {
	return source.New("Backup",
		func() bool {
			return g.Prop("lastCopyableMonster") == target.Name &&
				game.Have(g, BackupCamera) &&
				g.Counter(BackupUses) < BackupLimit
		},
		func() float64 {
			if !game.Have(g, BackupCamera) {
				return 0
			}
			return float64(BackupLimit - g.Counter(BackupUses))
		},
		func(ctx context.Context, opts source.RunOptions) error {
			macro := combat.New().
				If(combat.MonsterIsNot(target), combat.New().Skill(BackupSkill)).
				Step(opts.Macro)
			return g.Fight(ctx, opts.Zone, macro)
		},
		source.WithRequirements(source.Requirements{
			ForceEquip: []string{BackupCamera},
			BonusEquip: map[string]float64{BackupCamera: 5000},
		}),
		source.WithDrag(source.DragBackup),
		source.WrongEncounterName(true),
		source.InitializesWanderers(),
		source.Copies(),
	)
}

func putty(g game.Client, target combat.Monster) source.Source {
	holding := func() bool {
		return game.Have(g, PuttyMonster) && g.Prop(PuttyProp) == target.Name
	}
	return source.New("Spooky Putty",
		holding,
		func() float64 {
			if !game.Have(g, PuttySheet) && !holding() {
				return 0
			}
			n := PuttyLimit - g.Counter(PuttyCopies)
			if g.Prop(PuttyProp) == target.Name {
				n += g.ItemAmount(PuttyMonster)
			}
			return float64(max(n, 0))
		},
		func(ctx context.Context, opts source.RunOptions) error {
			return g.Use(ctx, PuttyMonster, opts.Macro)
		},
		source.Copies(),
	)
}

func chateau(g game.Client, target combat.Monster) source.Source {
	ready := func() bool {
		return game.Have(g, ChateauKey) &&
			g.Counter(ChateauFought) == 0 &&
			g.Prop(ChateauProp) == target.Name
	}
	return source.New("Chateau Painting",
		ready,
		func() float64 {
			if ready() {
				return 1
			}
			return 0
		},
		func(ctx context.Context, opts source.RunOptions) error {
			return g.Use(ctx, ChateauPainting, opts.Macro)
		},
	)
}

func faxSource(g game.Client, fax *fight.Fax) source.Source {
	ready := func() bool {
		return game.Have(g, VIPKey) && g.Counter(fax.Used) == 0
	}
	return source.New("Fax",
		ready,
		func() float64 {
			if ready() {
				return 1
			}
			return 0
		},
		func(ctx context.Context, opts source.RunOptions) error {
			if err := fax.Acquire(ctx); err != nil {
				return err
			}
			return g.Use(ctx, fax.Item, opts.Macro)
		},
	)
}

// professorChain only contributes potential: the chain is started by another
// fight, never on its own.
func professorChain(name string, g game.Reader, done string, remaining func(lectures int) int) source.Source {
	return source.New(name,
		func() bool { return false },
		func() float64 {
			if !game.Have(g, PocketProfessor) || g.Counter(done) > 0 {
				return 0
			}
			return float64(max(remaining(g.Counter(ProfessorLecture)), 0))
		},
		func(context.Context, source.RunOptions) error { return nil },
	)
}

// WishUnlock is the one-shot purchase of a wish that starts a target fight.
// maxPrice caps the purchase; zero uses the oracle price.
func WishUnlock(g game.Client, oracle value.Oracle, perRun func() float64, maxPrice float64) *fight.Unlock {
	cost := func() float64 {
		if maxPrice > 0 {
			return maxPrice
		}
		return oracle.Value(PocketWish)
	}
	return &fight.Unlock{
		Name:        "Pocket Wish (untapped potential)",
		PerRunValue: perRun,
		Cost:        cost,
		UsesLeft:    func() int { return GenieLimit - g.Counter(GenieFights) },
		Execute: func(ctx context.Context, opts source.RunOptions) error {
			if !game.Have(g, PocketWish) {
				if err := g.Buy(ctx, PocketWish, 1, int64(math.Ceil(cost()))); err != nil {
					return fmt.Errorf("buy %s: %w", PocketWish, err)
				}
			}
			return g.Use(ctx, PocketWish, opts.Macro)
		},
	}
}
