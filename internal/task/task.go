// Package task runs ordered lists of tasks, one per tick, with the
// bookkeeping every farming action needs around it.
package task

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/rcliao/turnfarm/internal/eventlog"
	"github.com/rcliao/turnfarm/internal/game"
)

var (
	// ErrTaskLimit is returned by a strict engine when a task stays available
	// past its explicit attempt limit.
	ErrTaskLimit = errors.New("task limit exceeded")
	// ErrInterrupted is returned when the operator interrupts between ticks.
	ErrInterrupted = errors.New("interrupted")
)

// Sobriety restricts a task to one side of the inebriety limit.
type Sobriety string

const (
	Any   Sobriety = ""
	Drunk Sobriety = "drunk"
	Sober Sobriety = "sober"
)

// Task is one unit of work. S is the combat strategy handed to Do.
type Task[S any] struct {
	Name      string
	Sobriety  Sobriety
	Ready     func() bool
	Completed func() bool
	Do        func(ctx context.Context, strategy S) error
	Combat    S

	// SpendsTurn is evaluated after Do; a task that spends a turn without
	// declaring it is logged and counted.
	SpendsTurn func() bool
	// Duplicate arms the terminal duplication skill for the task.
	Duplicate bool
	// Copied reports whether a target encounter during the task came from a
	// copy rather than being the day's first.
	Copied func() bool
	// Source names what produced a target encounter during the task. Tasks
	// that set it are counted even when the fight was free; others only when
	// a turn passed.
	Source func() string
	// Limit caps attempts. Zero means the engine default.
	Limit int
}

// State is the engine's phase within a tick.
type State int

const (
	NotStarted State = iota
	Evaluating
	Executing
	CompletedTick
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Evaluating:
		return "evaluating"
	case Executing:
		return "executing"
	case CompletedTick:
		return "completed-tick"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Clearer drops a cached wanderer zone suggestion.
type Clearer interface {
	Clear()
}

// Hooks are optional callbacks run around each execution.
type Hooks struct {
	// Interrupt is polled before each execution; true aborts the run.
	Interrupt func() bool
	// PostCombat runs after every execution, including failed ones.
	PostCombat func(ctx context.Context, name string, err error)
	// Teardown runs once from Close.
	Teardown func() error
}

// Config wires an engine to its collaborators. Only Game is required.
type Config struct {
	Game     game.Reader
	Terminal game.Terminal
	Events   *eventlog.Log
	Wanderer Clearer
	Hooks    Hooks
	// Target is the encounter name counted in Events.
	Target string
	Log    *log.Logger
}

// Stats summarise an engine's run.
type Stats struct {
	Ticks          int            `json:"ticks"`
	Attempts       map[string]int `json:"attempts"`
	Skipped        []string       `json:"skipped,omitempty"`
	TurnViolations int            `json:"turn_violations"`
}

// Engine executes the first available task each tick until none is left.
type Engine[S any] struct {
	tasks        []Task[S]
	cfg          Config
	strict       bool
	defaultLimit int

	state  State
	stats  Stats
	closed bool
}

// NewSafe returns an engine that attempts each task at most once unless the
// task sets a higher Limit. Tasks still available past their limit are skipped.
func NewSafe[S any](tasks []Task[S], cfg Config) *Engine[S] {
	return newEngine(tasks, cfg, false, 1)
}

// NewStrict returns an engine with no default attempt cap. A task still
// available past an explicit Limit fails the run with ErrTaskLimit.
func NewStrict[S any](tasks []Task[S], cfg Config) *Engine[S] {
	return newEngine(tasks, cfg, true, 0)
}

func newEngine[S any](tasks []Task[S], cfg Config, strict bool, limit int) *Engine[S] {
	return &Engine[S]{
		tasks:        slices.Clone(tasks),
		cfg:          cfg,
		strict:       strict,
		defaultLimit: limit,
		stats:        Stats{Attempts: map[string]int{}},
	}
}

// State reports the current phase.
func (e *Engine[S]) State() State { return e.state }

// Stats returns a copy of the run statistics.
func (e *Engine[S]) Stats() Stats {
	s := e.stats
	s.Attempts = make(map[string]int, len(e.stats.Attempts))
	for k, v := range e.stats.Attempts {
		s.Attempts[k] = v
	}
	s.Skipped = slices.Clone(e.stats.Skipped)
	return s
}

func (e *Engine[S]) logf(format string, args ...any) {
	if e.cfg.Log != nil {
		e.cfg.Log.Printf(format, args...)
	}
}

// Available reports whether t may run now, ignoring attempt limits.
func (e *Engine[S]) Available(t *Task[S]) bool {
	switch t.Sobriety {
	case Drunk:
		if game.Sober(e.cfg.Game) {
			return false
		}
	case Sober:
		if !game.Sober(e.cfg.Game) {
			return false
		}
	}
	if t.Ready != nil && !t.Ready() {
		return false
	}
	return t.Completed == nil || !t.Completed()
}

func (e *Engine[S]) limit(t *Task[S]) int {
	if t.Limit > 0 {
		return t.Limit
	}
	return e.defaultLimit
}

// next returns the first available task within its limit. A strict engine
// fails on the first available task that is over its explicit limit.
func (e *Engine[S]) next() (*Task[S], error) {
	for i := range e.tasks {
		t := &e.tasks[i]
		if !e.Available(t) {
			continue
		}
		limit := e.limit(t)
		if limit > 0 && e.stats.Attempts[t.Name] >= limit {
			if e.strict {
				return nil, fmt.Errorf("%w: %s still available after %d attempts", ErrTaskLimit, t.Name, limit)
			}
			if !slices.Contains(e.stats.Skipped, t.Name) {
				e.logf("skipping %s after %d attempts", t.Name, limit)
				e.stats.Skipped = append(e.stats.Skipped, t.Name)
			}
			continue
		}
		return t, nil
	}
	return nil, nil
}

// Run executes tasks until none is available or one fails.
func (e *Engine[S]) Run(ctx context.Context) error {
	for {
		e.state = Evaluating
		t, err := e.next()
		if err != nil {
			return err
		}
		if t == nil {
			e.state = NotStarted
			return nil
		}
		if err := e.Execute(ctx, t); err != nil {
			return err
		}
	}
}

// Execute runs one task with the interrupt check, turn audit, duplicate
// arming, encounter counting, post-combat hook and wanderer reset around it.
func (e *Engine[S]) Execute(ctx context.Context, t *Task[S]) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	if e.cfg.Hooks.Interrupt != nil && e.cfg.Hooks.Interrupt() {
		return ErrInterrupted
	}

	e.state = Executing
	e.stats.Ticks++
	e.stats.Attempts[t.Name]++
	turns := e.cfg.Game.TurnCount()

	restore, err := e.armDuplicate(ctx, t)
	if err != nil {
		e.logf("arm duplicate for %s: %v", t.Name, err)
	}

	runErr := t.Do(ctx, t.Combat)

	if e.cfg.Game.TurnCount() != turns && (t.SpendsTurn == nil || !t.SpendsTurn()) {
		e.logf("task %s spent a turn but was marked as not spending turns", t.Name)
		e.stats.TurnViolations++
	}
	e.countEncounter(t, turns)
	if e.cfg.Hooks.PostCombat != nil {
		e.cfg.Hooks.PostCombat(ctx, t.Name, runErr)
	}
	if e.cfg.Wanderer != nil {
		e.cfg.Wanderer.Clear()
	}
	if restore != nil {
		if err := restore(); err != nil {
			e.logf("restore skills after %s: %v", t.Name, err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("task %s: %w", t.Name, runErr)
	}
	e.state = CompletedTick
	return nil
}

// countEncounter records a target encounter for t. lastEncounter persists
// across ticks, so a task that neither spent a turn nor names a source is
// not counted.
func (e *Engine[S]) countEncounter(t *Task[S], turns int) {
	if e.cfg.Events == nil || e.cfg.Target == "" {
		return
	}
	if e.cfg.Game.TurnCount() == turns && t.Source == nil {
		return
	}
	if e.cfg.Game.Prop("lastEncounter") != e.cfg.Target {
		return
	}
	name := t.Name
	if t.Source != nil {
		if src := t.Source(); src != "" {
			name = src
		}
	}
	e.cfg.Events.Record(name, t.Copied != nil && t.Copied())
}

func (e *Engine[S]) armDuplicate(ctx context.Context, t *Task[S]) (func() error, error) {
	term := e.cfg.Terminal
	if !t.Duplicate || term == nil || !term.Have() || term.DuplicateUsesRemaining() <= 0 {
		return nil, nil
	}
	before := term.Skills()
	if err := term.Educate(ctx, "Extract", "Duplicate"); err != nil {
		return nil, err
	}
	return func() error { return term.Educate(ctx, before...) }, nil
}

// Close runs the teardown hook once.
func (e *Engine[S]) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.cfg.Hooks.Teardown != nil {
		return e.cfg.Hooks.Teardown()
	}
	return nil
}
