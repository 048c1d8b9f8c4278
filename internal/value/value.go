// Package value converts items into a common currency unit.
package value

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Oracle maps items to their value in currency units.
type Oracle interface {
	Value(item string) float64
	AverageValue(items ...string) float64
}

// PriceTable is a static Oracle backed by a price list.
type PriceTable struct {
	Prices map[string]float64 `yaml:"prices"`
	// Default is used for items missing from Prices.
	Default float64 `yaml:"default"`
}

// NewPriceTable returns a table over a copy of prices.
func NewPriceTable(prices map[string]float64) *PriceTable {
	p := &PriceTable{Prices: make(map[string]float64, len(prices))}
	for k, v := range prices {
		p.Prices[k] = v
	}
	return p
}

// LoadPriceTable reads a YAML price table from path.
func LoadPriceTable(path string) (*PriceTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p PriceTable
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Prices == nil {
		p.Prices = map[string]float64{}
	}
	return &p, nil
}

func (p *PriceTable) Value(item string) float64 {
	if v, ok := p.Prices[item]; ok {
		return v
	}
	return p.Default
}

func (p *PriceTable) AverageValue(items ...string) float64 {
	return average(p, items)
}

// Memo caches another Oracle's answers until Reset. Prices are assumed stable
// within one scheduling tick.
type Memo struct {
	inner Oracle
	cache map[string]float64
}

// NewMemo wraps inner.
func NewMemo(inner Oracle) *Memo {
	return &Memo{inner: inner, cache: map[string]float64{}}
}

func (m *Memo) Value(item string) float64 {
	if v, ok := m.cache[item]; ok {
		return v
	}
	v := m.inner.Value(item)
	m.cache[item] = v
	return v
}

func (m *Memo) AverageValue(items ...string) float64 {
	return average(m, items)
}

// Reset drops cached values; call between ticks.
func (m *Memo) Reset() {
	clear(m.cache)
}

func average(o Oracle, items []string) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range items {
		sum += o.Value(it)
	}
	return sum / float64(len(items))
}
