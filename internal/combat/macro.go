// Package combat builds combat macros in the game's macro language.
package combat

import (
	"fmt"
	"strings"
)

// Monster identifies a combat opponent.
type Monster struct {
	Name string
	ID   int
}

// Macro is an immutable sequence of macro statements. The zero value is empty.
type Macro struct {
	lines []string
}

// New starts an empty macro.
func New() Macro { return Macro{} }

func (m Macro) with(lines ...string) Macro {
	out := make([]string, 0, len(m.lines)+len(lines))
	out = append(out, m.lines...)
	out = append(out, lines...)
	return Macro{lines: out}
}

// Step appends other macros.
func (m Macro) Step(others ...Macro) Macro {
	for _, o := range others {
		m = m.with(o.lines...)
	}
	return m
}

// If guards body behind an in-combat condition.
func (m Macro) If(cond string, body Macro) Macro {
	if body.Empty() {
		return m
	}
	lines := append([]string{"if " + cond}, body.lines...)
	return m.with(append(lines, "endif")...)
}

// IfMonster guards body behind a monster check.
func (m Macro) IfMonster(mon Monster, body Macro) Macro {
	return m.If(MonsterIs(mon), body)
}

// ExternalIf appends body only when cond holds at build time.
func (m Macro) ExternalIf(cond bool, body Macro) Macro {
	if !cond {
		return m
	}
	return m.Step(body)
}

// Skill casts a skill unconditionally.
func (m Macro) Skill(name string) Macro {
	return m.with("skill " + name)
}

// TrySkill casts a skill if the character has it.
func (m Macro) TrySkill(name string) Macro {
	return m.If(fmt.Sprintf("hasskill %s", name), New().Skill(name))
}

// TryItem uses an item if it is in inventory.
func (m Macro) TryItem(item string) Macro {
	return m.If(fmt.Sprintf("hascombatitem %s", item), New().with("use "+item))
}

// Attack repeats attacks until the fight ends.
func (m Macro) Attack() Macro {
	return m.with("repeat", "attack")
}

// Abort stops the macro.
func (m Macro) Abort() Macro {
	return m.with("abort")
}

// Empty reports whether the macro has no statements.
func (m Macro) Empty() bool { return len(m.lines) == 0 }

// Contains reports whether any statement equals stmt.
func (m Macro) Contains(stmt string) bool {
	for _, l := range m.lines {
		if l == stmt {
			return true
		}
	}
	return false
}

// String renders the macro as a single line.
func (m Macro) String() string {
	if len(m.lines) == 0 {
		return ""
	}
	return strings.Join(m.lines, "; ") + ";"
}

// MonsterIs is the condition for fighting mon.
func MonsterIs(mon Monster) string {
	return fmt.Sprintf("monsterid %d", mon.ID)
}

// MonsterIsNot is the negated monster condition.
func MonsterIsNot(mon Monster) string {
	return "!" + MonsterIs(mon)
}
