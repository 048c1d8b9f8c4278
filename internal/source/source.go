// Package source models schedulable fight sources and their priority catalogue.
package source

import (
	"context"
	"fmt"
	"math"

	"github.com/agnivade/levenshtein"

	"github.com/rcliao/turnfarm/internal/combat"
)

// Drag is the steering policy of a source whose fight can be pulled into a
// caller-chosen zone.
type Drag string

const (
	DragNone     Drag = ""
	DragWanderer Drag = "wanderer"
	DragBackup   Drag = "backup"
)

// Requirements are equipment constraints resolved by an outfitter.
type Requirements struct {
	ForceEquip []string
	BonusEquip map[string]float64
}

// Empty reports whether r asks for nothing.
func (r Requirements) Empty() bool {
	return len(r.ForceEquip) == 0 && len(r.BonusEquip) == 0
}

// RunOptions are resolved by the scheduler and handed to Execute.
type RunOptions struct {
	Zone    string
	Macro   combat.Macro
	UseAuto bool
}

// Source is one schedulable unit of fight work. It is a stateless strategy:
// remaining uses live in game state and are re-read on every call.
type Source struct {
	Name      string
	Available func() bool
	Potential func() float64
	// Cap is an optional precise count of remaining uses.
	Cap     func() int
	Execute func(ctx context.Context, opts RunOptions) error

	Requirements Requirements
	Drag         Drag
	// Zone pins the fight to one zone regardless of Drag.
	Zone string

	// Copy marks fights that replay an earlier target encounter rather than
	// producing the first one.
	Copy                   bool
	CanInitializeWanderers bool
	GregariousReplace      bool
	WrongEncounterName     bool
}

// Option configures a Source built with New.
type Option func(*Source)

func WithRequirements(r Requirements) Option { return func(s *Source) { s.Requirements = r } }
func WithDrag(d Drag) Option                 { return func(s *Source) { s.Drag = d } }
func WithZone(zone string) Option            { return func(s *Source) { s.Zone = zone } }
func WithCap(f func() int) Option            { return func(s *Source) { s.Cap = f } }
func InitializesWanderers() Option           { return func(s *Source) { s.CanInitializeWanderers = true } }
func Copies() Option                         { return func(s *Source) { s.Copy = true } }

// GregariousReplace marks a monster-replacement fight. Unless overridden the
// encounter name is also wrong.
func GregariousReplace() Option {
	return func(s *Source) {
		s.GregariousReplace = true
		s.WrongEncounterName = true
	}
}

// WrongEncounterName sets the encounter-name quirk flag explicitly.
func WrongEncounterName(v bool) Option { return func(s *Source) { s.WrongEncounterName = v } }

// New builds a Source. Options are applied in order.
func New(name string, available func() bool, potential func() float64, execute func(context.Context, RunOptions) error, opts ...Option) Source {
	s := Source{
		Name:      name,
		Available: available,
		Potential: potential,
		Execute:   execute,
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// Remaining is the precise view of remaining uses: Cap when set, otherwise
// the floored potential.
func (s Source) Remaining() int {
	if s.Cap != nil {
		return max(s.Cap(), 0)
	}
	return int(math.Floor(max(s.Potential(), 0)))
}

// Catalogue is an ordered list of sources. Position is priority.
type Catalogue []Source

// Validate rejects empty and duplicate names and missing closures.
func (c Catalogue) Validate() error {
	seen := make(map[string]bool, len(c))
	for i, s := range c {
		if s.Name == "" {
			return fmt.Errorf("source %d: empty name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate source %q", s.Name)
		}
		seen[s.Name] = true
		if s.Available == nil || s.Potential == nil || s.Execute == nil {
			return fmt.Errorf("source %q: available, potential and execute are required", s.Name)
		}
	}
	return nil
}

// First returns the first available source, or nil.
func (c Catalogue) First() *Source {
	for i := range c {
		if c[i].Available() {
			return &c[i]
		}
	}
	return nil
}

// Potential sums every source's potential.
func (c Catalogue) Potential() float64 {
	var total float64
	for _, s := range c {
		total += max(s.Potential(), 0)
	}
	return total
}

// Expected is the preview view: remaining uses summed over sources not named
// in ignore. Unknown ignore names are returned as errors with a suggestion.
func (c Catalogue) Expected(ignore ...string) (int, error) {
	skip := make(map[string]bool, len(ignore))
	var err error
	for _, name := range ignore {
		if _, lerr := c.Lookup(name); lerr != nil && err == nil {
			err = lerr
		}
		skip[name] = true
	}
	total := 0
	for _, s := range c {
		if !skip[s.Name] {
			total += s.Remaining()
		}
	}
	return total, err
}

// Untapped is a source with positive potential.
type Untapped struct {
	Name      string
	Potential float64
}

// Untapped lists sources with positive potential in catalogue order.
func (c Catalogue) Untapped() []Untapped {
	var out []Untapped
	for _, s := range c {
		if p := s.Potential(); p > 0 {
			out = append(out, Untapped{Name: s.Name, Potential: p})
		}
	}
	return out
}

// Lookup finds a source by name. A miss names the closest known source.
func (c Catalogue) Lookup(name string) (*Source, error) {
	best, bestDist := "", -1
	for i := range c {
		if c[i].Name == name {
			return &c[i], nil
		}
		if d := levenshtein.ComputeDistance(name, c[i].Name); bestDist < 0 || d < bestDist {
			best, bestDist = c[i].Name, d
		}
	}
	if best != "" && bestDist <= len(name)/2+1 {
		return nil, fmt.Errorf("unknown source %q (did you mean %q?)", name, best)
	}
	return nil, fmt.Errorf("unknown source %q", name)
}

// Without returns a copy of c minus the named sources.
func (c Catalogue) Without(names ...string) Catalogue {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := make(Catalogue, 0, len(c))
	for _, s := range c {
		if !drop[s.Name] {
			out = append(out, s)
		}
	}
	return out
}
