package fight

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/rcliao/turnfarm/internal/source"
)

// Decision is a single-assignment cell holding the operator's answer to the
// unlock question. It is owned by the run context and reset at run start.
type Decision struct {
	set      bool
	answer   bool
	consumed bool
}

// Get returns the cached answer and whether one exists.
func (d *Decision) Get() (answer, ok bool) {
	return d.answer, d.set
}

// Set records answer. Later calls are ignored.
func (d *Decision) Set(answer bool) {
	if d.set {
		return
	}
	d.set, d.answer = true, answer
}

// Consume marks the positive answer as spent on its single purchase attempt.
func (d *Decision) Consume() { d.consumed = true }

// Consumed reports whether the purchase was attempted.
func (d *Decision) Consumed() bool { return d.consumed }

// Reset clears the cell for a new run.
func (d *Decision) Reset() { *d = Decision{} }

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(msg string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(msg string) bool

func (f ConfirmFunc) Confirm(msg string) bool { return f(msg) }

// Profit is the expected gain from buying the unlock:
// (floor(totalPotential)+1)*perRunValue - cost.
func Profit(totalPotential, perRunValue, cost float64) float64 {
	runs := math.Floor(totalPotential)
	return (runs+1)*perRunValue - cost
}

// Unlock is the one-shot decision to buy a consumable that starts a fight when
// copies are available but nothing can start one.
type Unlock struct {
	Name        string
	PerRunValue func() float64
	Cost        func() float64
	// UsesLeft is the number of unlock purchases the game still allows today.
	UsesLeft func() int
	Execute  func(ctx context.Context, opts source.RunOptions) error

	Decision *Decision
	Confirm  Confirmer
	Log      *log.Logger
}

// Decide answers whether the unlock should be attempted. A cached answer is
// returned without recomputing anything.
func (u *Unlock) Decide(c source.Catalogue) bool {
	if u.Decision == nil {
		u.Decision = &Decision{}
	}
	if answer, ok := u.Decision.Get(); ok {
		return answer && !u.Decision.Consumed()
	}

	total := c.Potential()
	runs := math.Floor(total)
	if runs < 1 {
		return false
	}
	if u.UsesLeft != nil && u.UsesLeft() <= 0 {
		return false
	}
	perRun, cost := u.PerRunValue(), u.Cost()
	profit := Profit(total, perRun, cost)
	if profit < 0 {
		return false
	}

	if u.Log != nil {
		u.Log.Printf("untapped fight sources:")
		for _, s := range c.Untapped() {
			u.Log.Printf("  %g from %s", s.Potential, s.Name)
		}
	}
	msg := fmt.Sprintf("Detected %.0f potential ways to copy the target, but no way to start a fight. "+
		"Current value per fight is %.0f, so we expect to earn %.0f after the cost of %s. Buy it?",
		runs, perRun, profit, u.Name)
	answer := u.Confirm != nil && u.Confirm.Confirm(msg)
	u.Decision.Set(answer)
	return answer
}

// Source wraps the unlock as a schedulable pseudo-source over catalogue c.
func (u *Unlock) Source(c source.Catalogue) source.Source {
	return source.New(u.Name,
		func() bool { return u.Decide(c) },
		func() float64 { return 0 },
		func(ctx context.Context, opts source.RunOptions) error {
			u.Decision.Consume()
			return u.Execute(ctx, opts)
		},
	)
}
