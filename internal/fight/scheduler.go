// Package fight selects and runs the next fight source for the day.
package fight

import (
	"context"
	"fmt"
	"log"

	"github.com/rcliao/turnfarm/internal/combat"
	"github.com/rcliao/turnfarm/internal/game"
	"github.com/rcliao/turnfarm/internal/source"
)

// DefaultZone is used when a draggable fight has nowhere better to go.
const DefaultZone = "Noob Cave"

// Wanderer picks a zone for draggable fights.
type Wanderer interface {
	Target(policy source.Drag) string
}

// Config holds the target monster and the backup-recovery details used by the
// failsafe macro.
type Config struct {
	Target        combat.Monster
	DefaultZone   string
	BackupItem    string
	BackupCounter string
	BackupLimit   int
	RecoverySkill string
	// BaseMacro builds the macro used when the caller supplies none.
	BaseMacro func() combat.Macro
}

// DefaultConfig targets the Knob Goblin Embezzler with a backup camera failsafe.
func DefaultConfig() Config {
	target := combat.Monster{Name: "Knob Goblin Embezzler", ID: 530}
	return Config{
		Target:        target,
		DefaultZone:   DefaultZone,
		BackupItem:    "backup camera",
		BackupCounter: "_backUpUses",
		BackupLimit:   11,
		RecoverySkill: "Back-Up to your Last Enemy",
		BaseMacro: func() combat.Macro {
			return combat.New().IfMonster(target, combat.New().Attack()).Abort()
		},
	}
}

// RunOptions are caller overrides for one Run.
type RunOptions struct {
	Zone   string
	Macro  combat.Macro
	NoAuto bool
}

// Scheduler walks a catalogue in priority order.
type Scheduler struct {
	Catalogue source.Catalogue
	Game      game.Reader
	Wanderer  Wanderer
	Outfit    game.Outfitter
	// Unlock is consulted only when no catalogue source is available.
	Unlock *Unlock
	Config Config
	Log    *log.Logger
}

func (s *Scheduler) logf(format string, args ...any) {
	if s.Log != nil {
		s.Log.Printf(format, args...)
	}
}

// SelectNext returns the first available source, the unlock pseudo-source when
// the unlock decision allows it, or nil when no legal fight remains.
func (s *Scheduler) SelectNext() *source.Source {
	if s.Game.AdventuresLeft() <= 0 {
		s.logf("no next fight: out of adventures")
		return nil
	}
	if src := s.Catalogue.First(); src != nil {
		s.logf("next fight %s", src.Name)
		return src
	}
	if s.Unlock != nil {
		if src := s.Unlock.Source(s.Catalogue); src.Available() {
			s.logf("next fight %s", src.Name)
			return &src
		}
	}
	s.logf("no next fight")
	return nil
}

// Run executes src once. It is a no-op when src is no longer available or the
// character has no adventures left. Execution errors are returned unretried.
func (s *Scheduler) Run(ctx context.Context, src *source.Source, opts RunOptions) error {
	if !src.Available() || s.Game.AdventuresLeft() <= 0 {
		return nil
	}
	if !src.Requirements.Empty() && s.Outfit != nil {
		if err := s.Outfit.Dress(ctx, src.Requirements.ForceEquip, src.Requirements.BonusEquip); err != nil {
			return fmt.Errorf("dress for %s: %w", src.Name, err)
		}
	}

	macro := opts.Macro
	if macro.Empty() && s.Config.BaseMacro != nil {
		macro = s.Config.BaseMacro()
	}
	ro := source.RunOptions{Macro: macro, UseAuto: !opts.NoAuto}
	if src.Zone != "" || src.Drag != source.DragNone {
		ro.Zone = s.Zone(src, opts.Zone)
	}
	if src.Drag == source.DragWanderer {
		ro.Macro = s.FailsafeMacro().Step(macro)
	}

	if err := src.Execute(ctx, ro); err != nil {
		return fmt.Errorf("fight %s: %w", src.Name, err)
	}
	return nil
}

// Zone resolves where a fight from src should happen given a caller suggestion.
func (s *Scheduler) Zone(src *source.Source, suggestion string) string {
	if src.Zone != "" {
		return src.Zone
	}
	if src.Drag == source.DragNone {
		return suggestion
	}
	if suggestion == "" || (src.Drag == source.DragBackup && s.Game.CombatPercent(suggestion) < 100) {
		if s.Wanderer != nil {
			if z := s.Wanderer.Target(src.Drag); z != "" {
				return z
			}
		}
		return s.defaultZone()
	}
	return suggestion
}

func (s *Scheduler) defaultZone() string {
	if s.Config.DefaultZone != "" {
		return s.Config.DefaultZone
	}
	return DefaultZone
}

// FailsafeMacro backs up to the target when a wanderer fight turned up
// something else, provided the backup item is equipped with uses left and the
// last copyable monster is the target.
func (s *Scheduler) FailsafeMacro() combat.Macro {
	c := s.Config
	armed := c.BackupItem != "" &&
		s.Game.Equipped(c.BackupItem) &&
		s.Game.Counter(c.BackupCounter) < c.BackupLimit &&
		s.Game.Prop("lastCopyableMonster") == c.Target.Name
	return combat.New().ExternalIf(armed,
		combat.New().If(combat.MonsterIsNot(c.Target), combat.New().Skill(c.RecoverySkill)))
}
