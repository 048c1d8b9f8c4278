package fight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rcliao/turnfarm/internal/combat"
	"github.com/rcliao/turnfarm/internal/game/sim"
)

func newTestFax(t *testing.T, peer sim.FaxPeer) (*Fax, *sim.World, *[]time.Duration) {
	t.Helper()
	sc := sim.Demo()
	sc.Fax = peer
	w := sim.New(sc)
	f := NewFax(w, combat.Monster{Name: "Knob Goblin Embezzler", ID: 530})
	var slept []time.Duration
	f.Sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return f, w, &slept
}

func TestFaxAcquireAfterDelay(t *testing.T) {
	f, w, slept := newTestFax(t, sim.FaxPeer{Peer: "cheesefax", DelayPolls: 1})
	if err := f.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if w.ItemAmount("photocopied monster") != 1 {
		t.Error("expected photocopy in inventory")
	}
	if len(*slept) != 2 {
		t.Errorf("expected 2 waits, got %d", len(*slept))
	}
	for _, d := range *slept {
		if d != 10*time.Second {
			t.Errorf("expected 10s backoff, got %s", d)
		}
	}
}

func TestFaxTimesOut(t *testing.T) {
	f, _, slept := newTestFax(t, sim.FaxPeer{Peer: "cheesefax", Never: true})
	err := f.Acquire(context.Background())
	if !errors.Is(err, ErrAcquisitionTimeout) {
		t.Fatalf("expected ErrAcquisitionTimeout, got %v", err)
	}
	if len(*slept) != 3 {
		t.Errorf("expected 3 polls, got %d", len(*slept))
	}
}

func TestFaxNoopWhenUsed(t *testing.T) {
	f, w, slept := newTestFax(t, sim.FaxPeer{Never: true})
	w.SetCounter("_photocopyUsed", 1)
	if err := f.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(*slept) != 0 || len(w.History()) != 0 {
		t.Errorf("expected no activity, got %d waits and %v", len(*slept), w.History())
	}
}

func TestFaxSendsBackWrongCopy(t *testing.T) {
	f, w, _ := newTestFax(t, sim.FaxPeer{Peer: "cheesefax"})
	w.AddItem("photocopied monster", 1)
	w.SetProp("photocopyMonster", "crate")

	if err := f.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if w.Prop("photocopyMonster") != "Knob Goblin Embezzler" {
		t.Errorf("expected embezzler photocopy, got %q", w.Prop("photocopyMonster"))
	}
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
