// Package game defines the game-state collaborator the farming engine drives.
package game

import (
	"context"

	"github.com/rcliao/turnfarm/internal/combat"
)

// Reader exposes the world state the engine reads. Every call reflects the
// current game state; nothing is cached across ticks.
type Reader interface {
	Currency() int64
	Inventory() map[string]int
	ItemAmount(item string) int
	TurnCount() int
	AdventuresLeft() int
	Inebriety() int
	InebrietyLimit() int
	// Prop returns a string property such as "lastEncounter".
	Prop(name string) string
	// Counter returns a numeric property such as a per-day usage counter.
	Counter(name string) int
	Equipped(item string) bool
	// CombatPercent is the zone's chance of a combat encounter, 0-100.
	CombatPercent(zone string) int
}

// Client is the full game-state collaborator: queries plus commands.
type Client interface {
	Reader

	Fight(ctx context.Context, zone string, macro combat.Macro) error
	Use(ctx context.Context, item string, macro combat.Macro) error
	Buy(ctx context.Context, item string, qty int, maxPrice int64) error
	// Exec runs a game CLI command such as "fax receive".
	Exec(ctx context.Context, cmd string) error
	Chat(ctx context.Context, to, msg string) error
	Visit(ctx context.Context, path string) (string, error)
}

// Terminal is the skill-granting device whose duplication skill can be armed
// before a task and restored after.
type Terminal interface {
	Have() bool
	DuplicateUsesRemaining() int
	Skills() []string
	Educate(ctx context.Context, skills ...string) error
}

// Outfitter satisfies equipment requirements before a fight.
type Outfitter interface {
	Dress(ctx context.Context, forceEquip []string, bonus map[string]float64) error
}

// Have reports whether the character holds at least one of item.
func Have(r Reader, item string) bool {
	return r.ItemAmount(item) > 0
}

// Sober reports whether the character is at or under the inebriety limit.
func Sober(r Reader) bool {
	return r.Inebriety() <= r.InebrietyLimit()
}
