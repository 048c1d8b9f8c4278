package session

import (
	"errors"
	"math"
	"testing"

	"github.com/rcliao/turnfarm/internal/model"
	"github.com/rcliao/turnfarm/internal/value"
)

// fakeGame is a game.Reader whose state tests set directly.
type fakeGame struct {
	meat  int64
	items map[string]int
	turns int
}

func (f *fakeGame) Currency() int64 { return f.meat }
func (f *fakeGame) Inventory() map[string]int {
	out := make(map[string]int, len(f.items))
	for k, v := range f.items {
		out[k] = v
	}
	return out
}
func (f *fakeGame) ItemAmount(item string) int    { return f.items[item] }
func (f *fakeGame) TurnCount() int                { return f.turns }
func (f *fakeGame) AdventuresLeft() int           { return 100 }
func (f *fakeGame) Inebriety() int                { return 0 }
func (f *fakeGame) InebrietyLimit() int           { return 15 }
func (f *fakeGame) Prop(string) string            { return "" }
func (f *fakeGame) Counter(string) int            { return 0 }
func (f *fakeGame) Equipped(string) bool          { return false }
func (f *fakeGame) CombatPercent(zone string) int { return 100 }

func newTestTracker(t *testing.T, prices map[string]float64) (*Tracker, *fakeGame) {
	t.Helper()
	g := &fakeGame{items: map[string]int{}}
	return New(g, value.NewPriceTable(prices), nil), g
}

func TestDiffScenario(t *testing.T) {
	tr, g := newTestTracker(t, map[string]float64{"X": 10})
	g.meat, g.items["X"] = 100, 2
	if err := tr.Snapshot(model.DayStart); err != nil {
		t.Fatal(err)
	}
	g.meat, g.items["X"] = 150, 5
	if err := tr.Snapshot(model.DayEnd); err != nil {
		t.Fatal(err)
	}

	r, err := tr.Diff(model.DayStart, model.DayEnd)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if r.Currency != 50 || r.Items["X"] != 3 {
		t.Errorf("expected +50 currency and +3 X, got %d and %d", r.Currency, r.Items["X"])
	}
	if r.Total() != 80 {
		t.Errorf("expected total 80, got %g", r.Total())
	}
	if got := tr.ValueOf(r.Delta); got != 80 {
		t.Errorf("expected ValueOf 80, got %g", got)
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	tr, g := newTestTracker(t, nil)
	g.meat = 10
	_ = tr.Snapshot(model.DayStart)
	g.meat = 99
	_ = tr.Snapshot(model.DayStart)

	s, ok := tr.Get(model.DayStart)
	if !ok || s.Currency != 10 {
		t.Errorf("expected first capture kept, got %+v", s)
	}
}

func TestSnapshotRejectsUnknownCheckpoint(t *testing.T) {
	tr, _ := newTestTracker(t, nil)
	if err := tr.Snapshot("lunch"); err == nil {
		t.Fatal("expected error for unknown checkpoint")
	}
}

func TestEndWithoutStartIsRefused(t *testing.T) {
	tr, _ := newTestTracker(t, nil)
	_ = tr.Snapshot(model.MeatEnd)
	if _, ok := tr.Get(model.MeatEnd); ok {
		t.Error("expected meat end refused without meat start")
	}
	_ = tr.Snapshot(model.MeatStart)
	_ = tr.Snapshot(model.MeatEnd)
	if _, ok := tr.Get(model.MeatEnd); !ok {
		t.Error("expected meat end after meat start")
	}
}

func TestDiffMissingCheckpoint(t *testing.T) {
	tr, _ := newTestTracker(t, nil)
	_ = tr.Snapshot(model.DayStart)
	_, err := tr.Diff(model.DayStart, model.ItemEnd)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestDiffAdditive(t *testing.T) {
	tr, g := newTestTracker(t, map[string]float64{"X": 3, "Y": 7})
	g.meat, g.items["X"], g.turns = 100, 1, 0
	_ = tr.Snapshot(model.DayStart)
	g.meat, g.items["Y"], g.turns = 60, 4, 10
	tr.Track(300, 0)
	g.meat, g.items["X"], g.turns = 500, 0, 25
	_ = tr.Snapshot(model.DayEnd)

	ab, _ := tr.Diff(model.DayStart, model.FarmingStart)
	bc, _ := tr.Diff(model.FarmingStart, model.DayEnd)
	ac, _ := tr.Diff(model.DayStart, model.DayEnd)

	sum := tr.Value(ab.Delta.Add(bc.Delta))
	if sum.Total() != ac.Total() {
		t.Errorf("expected %g, got %g", ac.Total(), sum.Total())
	}
	if math.Abs(ab.Total()+bc.Total()-ac.Total()) > 1e-9 {
		t.Errorf("expected totals to add up: %g + %g != %g", ab.Total(), bc.Total(), ac.Total())
	}
	if ac.Turns != 25 {
		t.Errorf("expected 25 turns, got %d", ac.Turns)
	}
}

func TestSnapshotsAreImmutable(t *testing.T) {
	tr, g := newTestTracker(t, nil)
	g.items["X"] = 1
	_ = tr.Snapshot(model.DayStart)
	g.items["X"] = 5

	s, _ := tr.Get(model.DayStart)
	s.Items["X"] = 42
	again, _ := tr.Get(model.DayStart)
	if again.Items["X"] != 1 {
		t.Errorf("expected stored snapshot untouched, got %d", again.Items["X"])
	}
}

func TestTrackThresholds(t *testing.T) {
	tr, g := newTestTracker(t, nil)

	tr.Track(400, 0)
	if _, ok := tr.Get(model.FarmingStart); !ok {
		t.Fatal("expected first Track to mark farming start")
	}

	steps := []struct {
		turns     int
		remaining int
		overDrunk int
		want      []model.Checkpoint
	}{
		{turns: 50, remaining: 350, want: nil},
		{turns: 101, remaining: 299, want: []model.Checkpoint{model.ItemStart}},
		{turns: 330, remaining: 70, want: []model.Checkpoint{model.MeatStart}},
		{turns: 335, remaining: 65, overDrunk: -40, want: []model.Checkpoint{model.MeatEnd}},
		{turns: 357, remaining: 43, overDrunk: -40, want: []model.Checkpoint{model.ItemEnd}},
	}
	have := map[model.Checkpoint]bool{model.FarmingStart: true}
	for _, s := range steps {
		g.turns = s.turns
		tr.Track(s.remaining, s.overDrunk)
		for _, cp := range s.want {
			have[cp] = true
		}
		for cp := range model.ValidCheckpoints {
			_, ok := tr.Get(cp)
			if ok != have[cp] {
				t.Errorf("at remaining %d: checkpoint %s set=%v, expected %v", s.remaining, cp, ok, have[cp])
			}
		}
	}

	first, _ := tr.Get(model.MeatStart)
	tr.Track(0, 0)
	again, _ := tr.Get(model.MeatStart)
	if first.Turns != again.Turns {
		t.Error("expected checkpoints to be set once")
	}
}

func TestTrackItemStartOnLowRemaining(t *testing.T) {
	tr, g := newTestTracker(t, nil)
	tr.Track(180, 0)
	g.turns = 1
	tr.Track(179, 0)
	if _, ok := tr.Get(model.ItemStart); !ok {
		t.Error("expected item tracking to start with 200 or fewer turns remaining")
	}
}
