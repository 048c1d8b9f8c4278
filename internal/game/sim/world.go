package sim

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/rcliao/turnfarm/internal/combat"
	"github.com/rcliao/turnfarm/internal/value"
)

const (
	backupItem    = "backup camera"
	backupCounter = "_backUpUses"
	backupLimit   = 11
	backupSkill   = "skill Back-Up to your Last Enemy"
	faxItem       = "photocopied monster"
	faxProp       = "photocopyMonster"
	duplicateUsed = "_sourceTerminalDuplicateUses"
)

// Action is one command the world executed.
type Action struct {
	Kind      string `json:"kind"`
	Target    string `json:"target"`
	Zone      string `json:"zone,omitempty"`
	Macro     string `json:"macro,omitempty"`
	Encounter string `json:"encounter,omitempty"`
	Turn      int    `json:"turn"`
}

// World is a mutable simulated game. It is not safe for concurrent use.
type World struct {
	meat           int64
	adventures     int
	turns          int
	inebriety      int
	inebrietyLimit int

	inventory map[string]int
	equipped  map[string]bool
	props     map[string]string
	counters  map[string]int
	zones     map[string]Zone
	monsters  map[string]Monster
	copyItems map[string]CopyItem
	prices    map[string]float64
	recipes   map[string][]string

	fax        FaxPeer
	faxPending string
	faxWait    int

	terminal TerminalConfig
	skills   []string

	history []Action
}

// New builds a world from a scenario. The scenario is copied.
func New(s *Scenario) *World {
	w := &World{
		meat:           s.Character.Meat,
		adventures:     s.Character.Adventures,
		turns:          s.Character.Turns,
		inebriety:      s.Character.Inebriety,
		inebrietyLimit: s.Character.InebrietyLimit,
		inventory:      map[string]int{},
		equipped:       map[string]bool{},
		props:          map[string]string{},
		counters:       map[string]int{},
		zones:          map[string]Zone{},
		monsters:       map[string]Monster{},
		copyItems:      map[string]CopyItem{},
		prices:         map[string]float64{},
		recipes:        map[string][]string{},
		fax:            s.Fax,
		terminal:       s.Terminal,
		skills:         slices.Clone(s.Terminal.Skills),
	}
	for k, v := range s.Inventory {
		w.inventory[k] = v
	}
	for _, e := range s.Equipped {
		w.equipped[e] = true
	}
	for k, v := range s.Props {
		w.props[k] = v
	}
	for k, v := range s.Counters {
		w.counters[k] = v
	}
	for _, z := range s.Zones {
		w.zones[z.Name] = z
	}
	for k, v := range s.Monsters {
		w.monsters[k] = v
	}
	for k, v := range s.CopyItems {
		w.copyItems[k] = v
	}
	for k, v := range s.Prices {
		w.prices[k] = v
	}
	for k, v := range s.Recipes {
		w.recipes[k] = slices.Clone(v)
	}
	if w.fax.Peer == "" {
		w.fax.Peer = "cheesefax"
	}
	return w
}

// Prices returns an oracle over the scenario's price list.
func (w *World) Prices() *value.PriceTable {
	return value.NewPriceTable(w.prices)
}

// History returns the executed actions in order.
func (w *World) History() []Action {
	return slices.Clone(w.history)
}

// SetProp sets a string property directly.
func (w *World) SetProp(name, v string) {
	w.props[name] = v
}

// SetCounter sets a numeric property directly.
func (w *World) SetCounter(name string, v int) {
	w.counters[name] = v
}

// AddItem adjusts an inventory count directly.
func (w *World) AddItem(item string, n int) {
	w.inventory[item] += n
}

// Reader.

func (w *World) Currency() int64 { return w.meat }

func (w *World) Inventory() map[string]int {
	out := make(map[string]int, len(w.inventory))
	for k, v := range w.inventory {
		if v != 0 {
			out[k] = v
		}
	}
	return out
}

func (w *World) ItemAmount(item string) int { return w.inventory[item] }
func (w *World) TurnCount() int             { return w.turns }
func (w *World) AdventuresLeft() int        { return w.adventures }
func (w *World) Inebriety() int             { return w.inebriety }
func (w *World) InebrietyLimit() int        { return w.inebrietyLimit }
func (w *World) Prop(name string) string    { return w.props[name] }
func (w *World) Counter(name string) int    { return w.counters[name] }
func (w *World) Equipped(item string) bool  { return w.equipped[item] }

func (w *World) CombatPercent(zone string) int {
	z, ok := w.zones[zone]
	if !ok {
		return 0
	}
	return z.CombatPercent
}

// Commands.

func (w *World) Fight(ctx context.Context, zone string, macro combat.Macro) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	z, ok := w.zones[zone]
	if !ok {
		return fmt.Errorf("unknown zone %q", zone)
	}
	if w.adventures <= 0 && !z.Free {
		return fmt.Errorf("out of adventures")
	}
	monster := z.Monster
	last := w.props["lastCopyableMonster"]
	if macro.Contains(backupSkill) && w.equipped[backupItem] && w.counters[backupCounter] < backupLimit &&
		last != "" && last != monster {
		monster = last
		w.counters[backupCounter]++
	}
	w.encounter(monster, !z.Free)
	w.record(Action{Kind: "fight", Target: monster, Zone: zone, Macro: macro.String(), Encounter: monster})
	return nil
}

func (w *World) Use(ctx context.Context, item string, macro combat.Macro) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.inventory[item] <= 0 {
		return fmt.Errorf("no %s in inventory", item)
	}
	ci, ok := w.copyItems[item]
	if !ok {
		w.inventory[item]--
		w.record(Action{Kind: "use", Target: item})
		return nil
	}
	monster := ci.Monster
	if monster == "" && ci.Prop != "" {
		monster = w.props[ci.Prop]
	}
	if monster == "" {
		return fmt.Errorf("%s holds no monster", item)
	}
	if w.adventures <= 0 {
		return fmt.Errorf("out of adventures")
	}
	if !ci.Keep {
		w.inventory[item]--
	}
	if ci.Counter != "" {
		w.counters[ci.Counter]++
	}
	w.encounter(monster, true)
	w.record(Action{Kind: "use", Target: item, Macro: macro.String(), Encounter: monster})
	return nil
}

func (w *World) Buy(ctx context.Context, item string, qty int, maxPrice int64) error {
	price, ok := w.prices[item]
	if !ok {
		return fmt.Errorf("%s is not for sale", item)
	}
	each := int64(math.Round(price))
	if maxPrice > 0 && each > maxPrice {
		return fmt.Errorf("%s costs %d, over limit %d", item, each, maxPrice)
	}
	cost := each * int64(qty)
	if cost > w.meat {
		return fmt.Errorf("cannot afford %d %s", qty, item)
	}
	w.meat -= cost
	w.inventory[item] += qty
	w.record(Action{Kind: "buy", Target: item})
	return nil
}

func (w *World) Exec(ctx context.Context, cmd string) error {
	switch cmd {
	case "fax receive":
		if w.faxPending != "" {
			if w.faxWait > 0 {
				w.faxWait--
			} else {
				w.inventory[faxItem] = 1
				w.props[faxProp] = w.faxPending
				w.faxPending = ""
			}
		}
	case "fax send":
		w.inventory[faxItem] = 0
		w.props[faxProp] = ""
	case "breakfast":
		w.counters["breakfastCompleted"] = 1
	default:
		if name, ok := strings.CutPrefix(cmd, "drink "); ok {
			if w.inventory[name] <= 0 {
				return fmt.Errorf("no %s to drink", name)
			}
			w.inventory[name]--
			w.inebriety++
		} else if name, ok := strings.CutPrefix(cmd, "create "); ok {
			if err := w.create(name); err != nil {
				return err
			}
		} else {
			return fmt.Errorf("unknown command %q", cmd)
		}
	}
	w.record(Action{Kind: "exec", Target: cmd})
	return nil
}

func (w *World) Chat(ctx context.Context, to, msg string) error {
	if to == w.fax.Peer && !w.fax.Never {
		w.faxPending = msg
		w.faxWait = w.fax.DelayPolls
	}
	w.record(Action{Kind: "chat", Target: to})
	return nil
}

func (w *World) Visit(ctx context.Context, path string) (string, error) {
	w.record(Action{Kind: "visit", Target: path})
	return "", nil
}

// Terminal.

func (w *World) Have() bool { return w.terminal.Installed }

func (w *World) DuplicateUsesRemaining() int {
	return max(w.terminal.DuplicateUses-w.counters[duplicateUsed], 0)
}

func (w *World) Skills() []string { return slices.Clone(w.skills) }

func (w *World) Educate(ctx context.Context, skills ...string) error {
	if !w.terminal.Installed {
		return fmt.Errorf("no source terminal")
	}
	if len(skills) > 2 {
		return fmt.Errorf("can only educate 2 skills, got %d", len(skills))
	}
	w.skills = slices.Clone(skills)
	w.record(Action{Kind: "educate", Target: strings.Join(skills, ",")})
	return nil
}

// Outfitter.

func (w *World) Dress(ctx context.Context, forceEquip []string, bonus map[string]float64) error {
	for _, item := range forceEquip {
		if w.inventory[item] <= 0 && !w.equipped[item] {
			return fmt.Errorf("cannot equip %s", item)
		}
		w.equipped[item] = true
	}
	return nil
}

func (w *World) create(item string) error {
	parts, ok := w.recipes[item]
	if !ok {
		return fmt.Errorf("no recipe for %s", item)
	}
	for _, p := range parts {
		if w.inventory[p] <= 0 {
			return fmt.Errorf("missing %s for %s", p, item)
		}
	}
	for _, p := range parts {
		w.inventory[p]--
	}
	w.inventory[item]++
	return nil
}

func (w *World) encounter(name string, spendTurn bool) {
	m := w.monsters[name]
	w.meat += m.Meat
	for item, n := range m.Drops {
		w.inventory[item] += n
	}
	w.props["lastEncounter"] = name
	if !m.NoCopy {
		w.props["lastCopyableMonster"] = name
	}
	if spendTurn {
		w.turns++
		w.adventures--
	}
	if slices.Contains(w.skills, "Duplicate") && m.ID != 0 && w.DuplicateUsesRemaining() > 0 {
		w.counters[duplicateUsed]++
	}
}

func (w *World) record(a Action) {
	a.Turn = w.turns
	w.history = append(w.history, a)
}
