// Package farm runs one farming day: setup chores, target fights, then
// farming turns, with the session tracked and persisted around them.
package farm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rcliao/turnfarm/internal/combat"
	"github.com/rcliao/turnfarm/internal/eventlog"
	"github.com/rcliao/turnfarm/internal/fight"
	"github.com/rcliao/turnfarm/internal/game"
	"github.com/rcliao/turnfarm/internal/model"
	"github.com/rcliao/turnfarm/internal/session"
	"github.com/rcliao/turnfarm/internal/source"
	"github.com/rcliao/turnfarm/internal/store"
	"github.com/rcliao/turnfarm/internal/task"
	"github.com/rcliao/turnfarm/internal/value"
	"github.com/rcliao/turnfarm/internal/wanderer"
)

const (
	TargetTask = "Target fights"
	FarmTask   = "Farm turn"
)

// Day is the run context. Everything a run mutates lives here and is built
// fresh for each run.
type Day struct {
	Game      game.Client
	Terminal  game.Terminal
	Outfit    game.Outfitter
	Oracle    *value.Memo
	Catalogue source.Catalogue
	Unlock    *fight.Unlock
	Wanderer  *wanderer.Manager
	Setup     []task.Task[combat.Macro]
	Fight     fight.Config

	Mode     string
	Scenario string
	Budget   Budget
	FarmZone string
	// FarmMacro is used for farming turns.
	FarmMacro combat.Macro

	// Store and EventsDir are optional.
	Store     store.Store
	EventsDir string
	Interrupt func() bool
	Log       *log.Logger
	Now       func() time.Time
}

// Summary is what a finished run reports.
type Summary struct {
	RunID       string            `json:"run_id"`
	Mode        string            `json:"mode"`
	Run         model.YieldReport `json:"run"`
	Today       model.Daily       `json:"today"`
	Marginal    *session.Marginal `json:"marginal,omitempty"`
	Checkpoints []model.Snapshot  `json:"checkpoints"`
	Events      eventlog.Log      `json:"events"`
	Stats       task.Stats        `json:"stats"`
	EventsPath  string            `json:"events_path,omitempty"`
	Error       string            `json:"error,omitempty"`
}

func (d *Day) logf(format string, args ...any) {
	if d.Log != nil {
		d.Log.Printf(format, args...)
	}
}

func (d *Day) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// abort finishes a stored run that failed before any turn was spent.
func (d *Day) abort(ctx context.Context, runID string, err error) error {
	if d.Store == nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)
	if ferr := d.Store.FinishRun(ctx, store.FinishRunParams{ID: runID, Error: err.Error()}); ferr != nil {
		return errors.Join(err, fmt.Errorf("finish run: %w", ferr))
	}
	return err
}

// Run spends the day. Teardown always runs, and the summary is returned even
// when the run fails.
func (d *Day) Run(ctx context.Context) (sum *Summary, err error) {
	runID := d.now().UTC().Format("20060102T150405")
	if d.Store != nil {
		run, err := d.Store.StartRun(ctx, store.StartRunParams{Mode: d.Mode, Scenario: d.Scenario})
		if err != nil {
			return nil, fmt.Errorf("start run: %w", err)
		}
		runID = run.ID
	}

	var events *eventlog.Writer
	if d.EventsDir != "" {
		events, err = eventlog.Create(d.EventsDir, runID)
		if err != nil {
			return nil, d.abort(ctx, runID, fmt.Errorf("create event log: %w", err))
		}
	}

	tracker := session.New(d.Game, d.Oracle, d.Log)
	if err := tracker.Snapshot(model.DayStart); err != nil {
		if events != nil {
			events.Close()
		}
		return nil, d.abort(ctx, runID, err)
	}

	sched := &fight.Scheduler{
		Catalogue: d.Catalogue,
		Game:      d.Game,
		Outfit:    d.Outfit,
		Unlock:    d.Unlock,
		Config:    d.Fight,
		Log:       d.Log,
	}
	if d.Wanderer != nil {
		sched.Wanderer = d.Wanderer
	}
	if d.Unlock != nil {
		d.Unlock.Decision = &fight.Decision{}
	}

	counts := &eventlog.Log{}
	cfg := task.Config{
		Game:     d.Game,
		Terminal: d.Terminal,
		Events:   counts,
		Target:   d.Fight.Target.Name,
		Log:      d.Log,
		Hooks: task.Hooks{
			Interrupt:  d.Interrupt,
			PostCombat: d.postCombat(events),
		},
	}
	if d.Wanderer != nil {
		cfg.Wanderer = d.Wanderer
	}
	setup := task.NewSafe(d.Setup, cfg)

	var fights *task.Engine[combat.Macro]
	var runErr error
	cfg.Hooks.Teardown = func() error {
		sum = d.teardown(context.WithoutCancel(ctx), teardownState{
			runID:   runID,
			tracker: tracker,
			counts:  counts,
			stats:   fights.Stats(),
			events:  events,
			runErr:  runErr,
		})
		if sum.Error != "" {
			return errors.New(sum.Error)
		}
		return nil
	}
	fights = task.NewStrict(d.tasks(sched, tracker), cfg)
	defer func() {
		runErr = err
		if cerr := fights.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := setup.Run(ctx); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	if err := fights.Run(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func (d *Day) tasks(sched *fight.Scheduler, tracker *session.Tracker) []task.Task[combat.Macro] {
	var next *source.Source
	always := func() bool { return true }
	return []task.Task[combat.Macro]{
		{
			Name: TargetTask,
			Ready: func() bool {
				if d.Budget.Spent(d.Game) {
					return false
				}
				next = sched.SelectNext()
				return next != nil
			},
			Do: func(ctx context.Context, macro combat.Macro) error {
				return sched.Run(ctx, next, fight.RunOptions{Macro: macro})
			},
			SpendsTurn: always,
			Duplicate:  true,
			Copied:     func() bool { return next != nil && next.Copy },
			Source: func() string {
				if next == nil {
					return ""
				}
				return next.Name
			},
		},
		{
			Name: FarmTask,
			Ready: func() bool {
				return !d.Budget.NoBarf && !d.Budget.Spent(d.Game) && d.Game.AdventuresLeft() > 0
			},
			Do: func(ctx context.Context, macro combat.Macro) error {
				tracker.Track(EstimateTurns(d.Game, d.Budget, d.Catalogue), OverDrunk(d.Game, d.Budget.Ascend))
				return d.Game.Fight(ctx, d.FarmZone, macro)
			},
			Combat:     d.FarmMacro,
			SpendsTurn: always,
		},
	}
}

func (d *Day) postCombat(events *eventlog.Writer) func(context.Context, string, error) {
	return func(_ context.Context, name string, err error) {
		if d.Oracle != nil {
			d.Oracle.Reset()
		}
		if events == nil {
			return
		}
		e := eventlog.Event{
			At:        d.now(),
			Turn:      d.Game.TurnCount(),
			Kind:      "task",
			Task:      name,
			Encounter: d.Game.Prop("lastEncounter"),
			Currency:  d.Game.Currency(),
		}
		if err != nil {
			e.Error = err.Error()
		}
		if werr := events.Write(e); werr != nil {
			d.logf("write event: %v", werr)
		}
	}
}

type teardownState struct {
	runID   string
	tracker *session.Tracker
	counts  *eventlog.Log
	stats   task.Stats
	events  *eventlog.Writer
	runErr  error
}

// teardown closes the day: the end checkpoint, persistence and the event log.
// Failures are collected into Summary.Error rather than stopping teardown.
func (d *Day) teardown(ctx context.Context, st teardownState) *Summary {
	var errs []error
	if err := st.tracker.Snapshot(model.DayEnd); err != nil {
		errs = append(errs, err)
	}
	sum := &Summary{
		RunID:       st.runID,
		Mode:        d.Mode,
		Checkpoints: st.tracker.Checkpoints(),
		Events:      *st.counts,
		Stats:       st.stats,
	}
	rep, err := st.tracker.Diff(model.DayStart, model.DayEnd)
	if err != nil {
		errs = append(errs, err)
	}
	sum.Run = rep
	if m, err := st.tracker.Marginal(); err == nil {
		sum.Marginal = &m
	} else {
		d.logf("no marginal rate: %v", err)
	}

	sum.Today = model.Daily{
		Date:     d.now().Format("2006-01-02"),
		Currency: rep.Currency,
		Items:    rep.ItemValue,
		Turns:    rep.Turns,
	}
	if d.Store != nil {
		if err := d.Store.SaveSnapshots(ctx, st.runID, sum.Checkpoints); err != nil {
			errs = append(errs, fmt.Errorf("save snapshots: %w", err))
		}
		if daily, err := d.Store.AddDaily(ctx, sum.Today); err != nil {
			errs = append(errs, fmt.Errorf("add daily: %w", err))
		} else {
			sum.Today = *daily
		}
		p := store.FinishRunParams{
			ID:           st.runID,
			Currency:     rep.Currency,
			ItemValue:    rep.ItemValue,
			Turns:        rep.Turns,
			TargetFights: st.counts.Total(),
		}
		if st.runErr != nil {
			p.Error = st.runErr.Error()
		}
		if err := d.Store.FinishRun(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("finish run: %w", err))
		}
	}
	if st.events != nil {
		sum.EventsPath = st.events.Path()
		if err := st.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event log: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		sum.Error = err.Error()
	}
	return sum
}
