// Package session tracks resource snapshots across a farming day and turns
// them into yield reports and per-turn rates.
package session

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rcliao/turnfarm/internal/game"
	"github.com/rcliao/turnfarm/internal/model"
	"github.com/rcliao/turnfarm/internal/value"
)

// ErrInvalidRange is returned when a requested range names a checkpoint that
// has not been captured.
var ErrInvalidRange = errors.New("invalid range")

// order is the canonical order checkpoints are listed in.
var order = []model.Checkpoint{
	model.DayStart,
	model.FarmingStart,
	model.ItemStart,
	model.MeatStart,
	model.MeatEnd,
	model.ItemEnd,
	model.DayEnd,
}

// Tracker owns the day's checkpoints. Reads of game state happen only at
// capture time; stored snapshots never change.
type Tracker struct {
	game   game.Reader
	oracle value.Oracle
	log    *log.Logger
	now    func() time.Time

	sessions map[model.Checkpoint]model.Snapshot
	extra    float64
}

// New returns an empty tracker.
func New(g game.Reader, oracle value.Oracle, logger *log.Logger) *Tracker {
	return &Tracker{
		game:     g,
		oracle:   oracle,
		log:      logger,
		now:      time.Now,
		sessions: map[model.Checkpoint]model.Snapshot{},
	}
}

func (t *Tracker) logf(format string, args ...any) {
	if t.log != nil {
		t.log.Printf(format, args...)
	}
}

// Capture reads the current state without recording it.
func (t *Tracker) Capture() model.Snapshot {
	return model.Snapshot{
		Currency: t.game.Currency(),
		Items:    t.game.Inventory(),
		Turns:    t.game.TurnCount(),
		TakenAt:  t.now(),
	}
}

// Snapshot records the current state under cp. It is a no-op when cp is
// already set, and when cp ends a range whose start is missing.
func (t *Tracker) Snapshot(cp model.Checkpoint) error {
	if !model.ValidCheckpoints[cp] {
		return fmt.Errorf("unknown checkpoint %q", cp)
	}
	t.set(cp, t.Capture())
	return nil
}

func (t *Tracker) set(cp model.Checkpoint, s model.Snapshot) {
	if _, ok := t.sessions[cp]; ok {
		return
	}
	if start, ok := model.PairedStart[cp]; ok {
		if _, ok := t.sessions[start]; !ok {
			t.logf("refusing %s before %s", cp, start)
			return
		}
	}
	s = s.Clone()
	s.Checkpoint = cp
	t.sessions[cp] = s
	t.logf("checkpoint %s at turn %d", cp, s.Turns)
}

// Get returns a copy of the snapshot recorded under cp.
func (t *Tracker) Get(cp model.Checkpoint) (model.Snapshot, bool) {
	s, ok := t.sessions[cp]
	if !ok {
		return model.Snapshot{}, false
	}
	return s.Clone(), true
}

// Checkpoints returns the recorded snapshots in canonical order.
func (t *Tracker) Checkpoints() []model.Snapshot {
	var out []model.Snapshot
	for _, cp := range order {
		if s, ok := t.sessions[cp]; ok {
			out = append(out, s.Clone())
		}
	}
	return out
}

// Value annotates a delta with item values.
func (t *Tracker) Value(d model.Delta) model.YieldReport {
	return Value(t.oracle, d)
}

// Value annotates a delta with item values from oracle.
func Value(oracle value.Oracle, d model.Delta) model.YieldReport {
	r := model.YieldReport{Delta: d}
	for item, qty := range d.Items {
		v := oracle.Value(item) * float64(qty)
		r.ItemValue += v
		r.Lines = append(r.Lines, model.LineItem{Item: item, Quantity: qty, Value: v})
	}
	model.SortLines(r.Lines)
	return r
}

// ValueOf is the total value of a delta: currency plus item value.
func (t *Tracker) ValueOf(d model.Delta) float64 {
	return t.Value(d).Total()
}

// Diff reports the valued change between two recorded checkpoints.
func (t *Tracker) Diff(from, to model.Checkpoint) (model.YieldReport, error) {
	a, ok := t.sessions[from]
	if !ok {
		return model.YieldReport{}, fmt.Errorf("%w: %s not recorded", ErrInvalidRange, from)
	}
	b, ok := t.sessions[to]
	if !ok {
		return model.YieldReport{}, fmt.Errorf("%w: %s not recorded", ErrInvalidRange, to)
	}
	return t.Value(model.Sub(a, b)), nil
}

// Since reports the valued change from cp to now.
func (t *Tracker) Since(cp model.Checkpoint) (model.YieldReport, error) {
	a, ok := t.sessions[cp]
	if !ok {
		return model.YieldReport{}, fmt.Errorf("%w: %s not recorded", ErrInvalidRange, cp)
	}
	return t.Value(model.Sub(a, t.Capture())), nil
}

// AddExtraValue attributes value to farming turns that shows up neither as
// currency nor as items. It is excluded from the item rate.
func (t *Tracker) AddExtraValue(v float64) {
	t.extra += v
}

// Track advances the marginal-rate checkpoints. The first call marks the
// start of farming; later calls open and close the item and currency windows
// as remaining turns fall. overDrunk shifts the end thresholds for turns that
// will be spent past the inebriety limit.
func (t *Tracker) Track(remaining, overDrunk int) {
	cur := t.Capture()
	start, ok := t.sessions[model.FarmingStart]
	if !ok {
		t.set(model.FarmingStart, cur)
		return
	}
	farmed := cur.Turns - start.Turns

	if _, ok := t.sessions[model.ItemStart]; !ok && (farmed > 100 || remaining <= 200) {
		t.set(model.ItemStart, cur)
	}
	if _, ok := t.sessions[model.ItemEnd]; !ok && remaining+overDrunk <= 3 {
		t.set(model.ItemEnd, cur)
	}
	if _, ok := t.sessions[model.MeatStart]; !ok && remaining <= 75 {
		t.set(model.MeatStart, cur)
	}
	if _, ok := t.sessions[model.MeatEnd]; !ok && remaining+overDrunk <= 25 {
		t.set(model.MeatEnd, cur)
	}
}
