package farm

import (
	"fmt"
	"log"

	"github.com/rcliao/turnfarm/internal/catalog"
	"github.com/rcliao/turnfarm/internal/combat"
	"github.com/rcliao/turnfarm/internal/config"
	"github.com/rcliao/turnfarm/internal/fight"
	"github.com/rcliao/turnfarm/internal/game/sim"
	"github.com/rcliao/turnfarm/internal/store"
	"github.com/rcliao/turnfarm/internal/value"
	"github.com/rcliao/turnfarm/internal/wanderer"
)

// Simulated builds a day over a fresh world from scenario sc, wired with the
// demo catalogue. st may be nil.
func Simulated(opts config.Options, sc *sim.Scenario, confirm fight.Confirmer, st store.Store, logger *log.Logger) (*Day, *sim.World, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	w := sim.New(sc)

	var prices value.Oracle = w.Prices()
	if opts.Prices != "" {
		p, err := value.LoadPriceTable(opts.Prices)
		if err != nil {
			return nil, nil, fmt.Errorf("load prices: %w", err)
		}
		prices = p
	}
	memo := value.NewMemo(prices)

	fc := fight.DefaultConfig()
	fax := fight.NewFax(w, fc.Target)
	fax.Backoff = opts.FaxBackoff
	sources := catalog.Sources(w, fax, fc.Target)
	if err := sources.Validate(); err != nil {
		return nil, nil, err
	}

	perRun := func() float64 {
		if opts.TargetValue > 0 {
			return opts.TargetValue
		}
		return catalog.EncounterValue(sc, memo, fc.Target.Name)
	}
	unlock := catalog.WishUnlock(w, memo, perRun, opts.UnlockMaxPrice)
	unlock.Confirm = confirm
	unlock.Log = logger

	wm := wanderer.New(w, catalog.Wanderers(sc, memo))
	wm.Log = logger

	d := &Day{
		Game:      w,
		Terminal:  w,
		Outfit:    w,
		Oracle:    memo,
		Catalogue: sources,
		Unlock:    unlock,
		Wanderer:  wm,
		Setup:     catalog.SetupTasks(w, memo, opts.Ascend),
		Fight:     fc,
		Mode:      opts.Mode(),
		Scenario:  opts.Scenario,
		Budget:    NewBudget(w, opts.Turns, opts.NoBarf, opts.Ascend),
		FarmZone:  opts.FarmZone,
		FarmMacro: combat.New().Attack(),
		Store:     st,
		EventsDir: opts.EventsDir,
		Log:       logger,
	}
	return d, w, nil
}
