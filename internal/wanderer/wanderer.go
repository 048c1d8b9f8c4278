// Package wanderer picks the zone a draggable fight should be steered into.
package wanderer

import (
	"log"

	"github.com/rcliao/turnfarm/internal/game"
	"github.com/rcliao/turnfarm/internal/source"
)

// Candidate is a zone a wandering fight could happen in.
type Candidate struct {
	Zone string
	// Value is the expected value of the zone's own encounter, used to break
	// ties between eligible zones.
	Value func() float64
}

// Manager picks the best eligible candidate per drag policy and caches the
// pick until Clear.
type Manager struct {
	Game       game.Reader
	Candidates []Candidate
	Log        *log.Logger

	cache map[source.Drag]string
}

// New returns a Manager over candidates in preference order.
func New(g game.Reader, candidates []Candidate) *Manager {
	return &Manager{Game: g, Candidates: candidates}
}

// Eligible reports whether zone can host a fight under policy. Backup fights
// need a zone that always produces a combat.
func (m *Manager) Eligible(zone string, policy source.Drag) bool {
	pct := m.Game.CombatPercent(zone)
	if policy == source.DragBackup {
		return pct >= 100
	}
	return pct > 0
}

// Target returns the highest-value eligible zone for policy, or "" when none is.
func (m *Manager) Target(policy source.Drag) string {
	if z, ok := m.cache[policy]; ok {
		return z
	}
	best, bestValue := "", 0.0
	for _, c := range m.Candidates {
		if !m.Eligible(c.Zone, policy) {
			continue
		}
		v := 0.0
		if c.Value != nil {
			v = c.Value()
		}
		if best == "" || v > bestValue {
			best, bestValue = c.Zone, v
		}
	}
	if m.cache == nil {
		m.cache = map[source.Drag]string{}
	}
	m.cache[policy] = best
	if m.Log != nil && best != "" {
		m.Log.Printf("wanderer target for %q: %s (%.0f)", policy, best, bestValue)
	}
	return best
}

// Clear forgets cached picks. The engine calls it after every task.
func (m *Manager) Clear() {
	clear(m.cache)
}
