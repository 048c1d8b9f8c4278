package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/rcliao/turnfarm/internal/combat"
	"github.com/rcliao/turnfarm/internal/fight"
	"github.com/rcliao/turnfarm/internal/game/sim"
	"github.com/rcliao/turnfarm/internal/source"
	"github.com/rcliao/turnfarm/internal/task"
)

var embezzler = combat.Monster{Name: "Knob Goblin Embezzler", ID: 530}

func newTestCatalogue(t *testing.T) (source.Catalogue, *sim.World) {
	t.Helper()
	w := sim.New(sim.Demo())
	fax := fight.NewFax(w, embezzler)
	fax.Sleep = func(context.Context, time.Duration) error { return nil }
	return Sources(w, fax, embezzler), w
}

func TestSourcesValidate(t *testing.T) {
	c, _ := newTestCatalogue(t)
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestInitialPotential(t *testing.T) {
	c, w := newTestCatalogue(t)

	if got := c.First(); got == nil || got.Name != "Spooky Putty" {
		t.Fatalf("expected Spooky Putty first, got %v", got)
	}
	// backup 11 + putty 5+1 + chateau 1 + fax 1
	if got := c.Potential(); got != 19 {
		t.Errorf("expected potential 19, got %g", got)
	}

	w.AddItem(PocketProfessor, 1)
	if got := c.Potential(); got != 34 {
		t.Errorf("expected professor chains to add 15, got %g", got)
	}
	n, err := c.Expected("Professor MeatChain")
	if err != nil || n != 24 {
		t.Errorf("expected 24 ignoring the meat chain, got %d (%v)", n, err)
	}
}

func TestSchedulerWalksDemoDay(t *testing.T) {
	c, w := newTestCatalogue(t)
	s := &fight.Scheduler{Catalogue: c, Game: w, Outfit: w, Config: fight.DefaultConfig()}
	s.Wanderer = zone("Noob Cave")

	var order []string
	ctx := context.Background()
	for i := 0; i < 30; i++ {
		next := s.SelectNext()
		if next == nil {
			break
		}
		order = append(order, next.Name)
		if err := s.Run(ctx, next, fight.RunOptions{}); err != nil {
			t.Fatalf("run %s: %v", next.Name, err)
		}
		if w.Prop("lastEncounter") != embezzler.Name {
			t.Fatalf("%s fought %q", next.Name, w.Prop("lastEncounter"))
		}
	}

	want := []string{"Spooky Putty"}
	for i := 0; i < BackupLimit; i++ {
		want = append(want, "Backup")
	}
	want = append(want, "Chateau Painting", "Fax")
	if len(order) != len(want) {
		t.Fatalf("expected %d fights, got %d: %v", len(want), len(order), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("fight %d: expected %s, got %s", i, want[i], order[i])
		}
	}
	// Only the putty sheet's unused copies remain.
	if got := c.Potential(); got != 4 {
		t.Errorf("expected potential 4 after the day, got %g", got)
	}
}

func TestWishUnlock(t *testing.T) {
	c, w := newTestCatalogue(t)
	asked := 0
	u := WishUnlock(w, w.Prices(), func() float64 { return 6000 }, 0)
	u.Confirm = fight.ConfirmFunc(func(string) bool {
		asked++
		return true
	})

	// Exhaust everything but the putty sheet.
	w.SetCounter(BackupUses, BackupLimit)
	w.AddItem(PuttyMonster, -1)
	w.SetCounter(PuttyCopies, 1)
	w.SetCounter(ChateauFought, 1)
	w.SetCounter("_photocopyUsed", 1)

	s := &fight.Scheduler{Catalogue: c, Game: w, Unlock: u, Config: fight.DefaultConfig()}
	next := s.SelectNext()
	if next == nil || next.Name != u.Name {
		t.Fatalf("expected the wish, got %v", next)
	}
	meat := w.Currency()
	if err := s.Run(context.Background(), next, fight.RunOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if w.Counter(GenieFights) != 1 || w.Prop("lastEncounter") != embezzler.Name {
		t.Errorf("expected a wished embezzler fight, got %d fights and %q", w.Counter(GenieFights), w.Prop("lastEncounter"))
	}
	if w.Currency() != meat-20000+8000 {
		t.Errorf("expected wish bought for 20000, meat went %d -> %d", meat, w.Currency())
	}
	if asked != 1 {
		t.Errorf("expected 1 prompt, got %d", asked)
	}
	if s.SelectNext() != nil {
		t.Error("expected nothing after the single wish")
	}
}

func TestSetupTasks(t *testing.T) {
	for _, ascend := range []bool{false, true} {
		w := sim.New(sim.Demo())
		e := task.NewSafe(SetupTasks(w, w.Prices(), ascend), task.Config{Game: w})
		if err := e.Run(context.Background()); err != nil {
			t.Fatalf("ascend=%v: %v", ascend, err)
		}
		if w.Counter(BreakfastDone) != 1 {
			t.Errorf("ascend=%v: expected breakfast done", ascend)
		}
		baked := w.ItemAmount(KeyLimePie) == 1
		if baked != ascend {
			t.Errorf("ascend=%v: expected baked=%v", ascend, ascend)
		}
		if e.Stats().TurnViolations != 0 {
			t.Errorf("ascend=%v: setup spent turns", ascend)
		}
	}
}

func TestWanderersValueZones(t *testing.T) {
	sc := sim.Demo()
	w := sim.New(sc)
	cands := Wanderers(sc, w.Prices())
	if len(cands) != len(sc.Zones) {
		t.Fatalf("expected %d candidates, got %d", len(sc.Zones), len(cands))
	}
	if got := cands[0].Value(); got != 1500 {
		t.Errorf("expected Barf Mountain worth 1500, got %g", got)
	}
	if got := EncounterValue(sc, w.Prices(), embezzler.Name); got != 8000 {
		t.Errorf("expected embezzler worth 8000, got %g", got)
	}
}

type zone string

func (z zone) Target(source.Drag) string { return string(z) }
