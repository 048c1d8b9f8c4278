// Package model defines the core farming-day data types.
package model

import (
	"sort"
	"time"
)

// Checkpoint names a point in the day at which world state is captured.
type Checkpoint string

const (
	DayStart     Checkpoint = "day-start"
	FarmingStart Checkpoint = "farming-start"
	ItemStart    Checkpoint = "item-tracking-start"
	ItemEnd      Checkpoint = "item-tracking-end"
	MeatStart    Checkpoint = "meat-tracking-start"
	MeatEnd      Checkpoint = "meat-tracking-end"
	DayEnd       Checkpoint = "day-end"
)

// ValidCheckpoints is the closed set of checkpoint names.
var ValidCheckpoints = map[Checkpoint]bool{
	DayStart:     true,
	FarmingStart: true,
	ItemStart:    true,
	ItemEnd:      true,
	MeatStart:    true,
	MeatEnd:      true,
	DayEnd:       true,
}

// PairedStart maps each end checkpoint to the start it closes.
var PairedStart = map[Checkpoint]Checkpoint{
	ItemEnd: ItemStart,
	MeatEnd: MeatStart,
	DayEnd:  DayStart,
}

// Snapshot is an immutable capture of resource state at one instant.
type Snapshot struct {
	Checkpoint Checkpoint     `json:"checkpoint,omitempty"`
	Currency   int64          `json:"currency"`
	Items      map[string]int `json:"items"`
	Turns      int            `json:"turns"`
	TakenAt    time.Time      `json:"taken_at"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Items = make(map[string]int, len(s.Items))
	for k, v := range s.Items {
		c.Items[k] = v
	}
	return c
}

// Delta is the raw difference between two snapshots.
type Delta struct {
	Currency int64          `json:"currency"`
	Items    map[string]int `json:"items"`
	Turns    int            `json:"turns"`
}

// Sub returns to - from. Items whose count did not change are omitted.
func Sub(from, to Snapshot) Delta {
	d := Delta{
		Currency: to.Currency - from.Currency,
		Turns:    to.Turns - from.Turns,
		Items:    map[string]int{},
	}
	for item, n := range to.Items {
		if q := n - from.Items[item]; q != 0 {
			d.Items[item] = q
		}
	}
	for item, n := range from.Items {
		if _, ok := to.Items[item]; !ok && n != 0 {
			d.Items[item] = -n
		}
	}
	return d
}

// Add sums two deltas.
func (d Delta) Add(o Delta) Delta {
	out := Delta{
		Currency: d.Currency + o.Currency,
		Turns:    d.Turns + o.Turns,
		Items:    map[string]int{},
	}
	for item, n := range d.Items {
		out.Items[item] += n
	}
	for item, n := range o.Items {
		out.Items[item] += n
	}
	for item, n := range out.Items {
		if n == 0 {
			delete(out.Items, item)
		}
	}
	return out
}

// LineItem is one valued item line of a yield report. Value is the total for Quantity.
type LineItem struct {
	Item     string  `json:"item"`
	Quantity int     `json:"quantity"`
	Value    float64 `json:"value"`
}

// YieldReport is a value-annotated delta.
type YieldReport struct {
	Delta
	ItemValue float64    `json:"item_value"`
	Lines     []LineItem `json:"lines"`
}

// Total is the raw currency delta plus the item value.
func (r YieldReport) Total() float64 {
	return float64(r.Currency) + r.ItemValue
}

// SortLines orders lines by descending value, ties by item name.
func SortLines(lines []LineItem) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Value != lines[j].Value {
			return lines[i].Value > lines[j].Value
		}
		return lines[i].Item < lines[j].Item
	})
}

// Rate is a per-turn yield estimate.
type Rate struct {
	Currency  float64 `json:"currency"`
	Items     float64 `json:"items"`
	Total     float64 `json:"total"`
	Effective float64 `json:"effective"`
}

// Daily is the cross-run accumulator for one calendar day.
type Daily struct {
	Date     string  `json:"date"`
	Currency int64   `json:"currency"`
	Items    float64 `json:"items"`
	Turns    int     `json:"turns"`
}

// ValidModes are the ways a run can spend the day.
var ValidModes = map[string]bool{
	"full":   true,
	"nobarf": true,
	"turns":  true,
}

// Run is one recorded farming run.
type Run struct {
	ID           string     `json:"id"`
	Mode         string     `json:"mode"`
	Scenario     string     `json:"scenario,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	Currency     int64      `json:"currency"`
	ItemValue    float64    `json:"item_value"`
	Turns        int        `json:"turns"`
	TargetFights int        `json:"target_fights"`
	Error        string     `json:"error,omitempty"`
}
