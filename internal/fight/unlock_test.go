package fight

import (
	"context"
	"testing"

	"github.com/rcliao/turnfarm/internal/source"
)

type countingConfirmer struct {
	answer bool
	asked  int
}

func (c *countingConfirmer) Confirm(string) bool {
	c.asked++
	return c.answer
}

func potentialCatalogue(p *float64) source.Catalogue {
	return source.Catalogue{source.New("Chain",
		func() bool { return false },
		func() float64 { return *p },
		func(context.Context, source.RunOptions) error { return nil },
	)}
}

func newTestUnlock(c Confirmer, executed *int) *Unlock {
	return &Unlock{
		Name:        "pocket wish",
		PerRunValue: func() float64 { return 6000 },
		Cost:        func() float64 { return 20000 },
		Execute: func(context.Context, source.RunOptions) error {
			*executed++
			return nil
		},
		Confirm: c,
	}
}

func TestProfit(t *testing.T) {
	if got := Profit(4, 6000, 20000); got != 10000 {
		t.Errorf("expected 10000, got %g", got)
	}
	if got := Profit(4.9, 6000, 20000); got != 10000 {
		t.Errorf("expected potential floored, got %g", got)
	}
	prev := Profit(3, 0, 20000)
	for v := 500.0; v <= 20000; v += 500 {
		p := Profit(3, v, 20000)
		if p < prev {
			t.Fatalf("profit decreased at perRunValue %g: %g < %g", v, p, prev)
		}
		prev = p
	}
}

func TestUnlockPromptsOnceAndCaches(t *testing.T) {
	potential := 4.0
	c := potentialCatalogue(&potential)
	confirm := &countingConfirmer{answer: true}
	var executed int
	u := newTestUnlock(confirm, &executed)

	if !u.Decide(c) {
		t.Fatal("expected positive decision")
	}
	if confirm.asked != 1 {
		t.Fatalf("expected 1 prompt, got %d", confirm.asked)
	}

	potential = 0
	if !u.Decide(c) {
		t.Error("expected cached positive answer after potential dropped")
	}
	if confirm.asked != 1 {
		t.Errorf("expected no further prompt, got %d", confirm.asked)
	}
}

func TestUnlockDeclinedIsSuppressed(t *testing.T) {
	potential := 4.0
	confirm := &countingConfirmer{answer: false}
	var executed int
	u := newTestUnlock(confirm, &executed)
	c := potentialCatalogue(&potential)

	for i := 0; i < 3; i++ {
		if u.Decide(c) {
			t.Fatal("expected negative decision")
		}
	}
	if confirm.asked != 1 {
		t.Errorf("expected 1 prompt, got %d", confirm.asked)
	}
}

func TestUnlockDeclinesWithoutPrompt(t *testing.T) {
	tests := []struct {
		name      string
		potential float64
		usesLeft  int
		cost      float64
	}{
		{"no runs", 0.9, 3, 20000},
		{"no uses left", 4, 0, 20000},
		{"unprofitable", 2, 3, 20000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confirm := &countingConfirmer{answer: true}
			var executed int
			u := newTestUnlock(confirm, &executed)
			u.UsesLeft = func() int { return tt.usesLeft }
			u.Cost = func() float64 { return tt.cost }
			p := tt.potential
			if u.Decide(potentialCatalogue(&p)) {
				t.Error("expected decline")
			}
			if confirm.asked != 0 {
				t.Errorf("expected no prompt, got %d", confirm.asked)
			}
			if _, ok := u.Decision.Get(); ok {
				t.Error("expected nothing cached")
			}
		})
	}
}

func TestUnlockConsumedAfterOneAttempt(t *testing.T) {
	potential := 4.0
	confirm := &countingConfirmer{answer: true}
	var executed int
	u := newTestUnlock(confirm, &executed)
	c := potentialCatalogue(&potential)
	s, _ := newTestScheduler(t, c)
	s.Unlock = u

	next := s.SelectNext()
	if next == nil || next.Name != "pocket wish" {
		t.Fatalf("expected unlock source, got %v", next)
	}
	if err := s.Run(context.Background(), next, RunOptions{}); err != nil {
		t.Fatal(err)
	}
	if executed != 1 {
		t.Fatalf("expected 1 execution, got %d", executed)
	}
	if got := s.SelectNext(); got != nil {
		t.Errorf("expected nil after the single attempt, got %s", got.Name)
	}
	if confirm.asked != 1 {
		t.Errorf("expected 1 prompt, got %d", confirm.asked)
	}
}

func TestDecisionSingleAssignment(t *testing.T) {
	var d Decision
	d.Set(false)
	d.Set(true)
	if answer, ok := d.Get(); !ok || answer {
		t.Errorf("expected first answer false to stick, got %v %v", answer, ok)
	}
	d.Reset()
	if _, ok := d.Get(); ok {
		t.Error("expected reset cell to be empty")
	}
}
