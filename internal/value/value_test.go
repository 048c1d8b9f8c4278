package value

import (
	"os"
	"path/filepath"
	"testing"
)

type countingOracle struct {
	calls int
	price float64
}

func (c *countingOracle) Value(string) float64 {
	c.calls++
	return c.price
}

func (c *countingOracle) AverageValue(items ...string) float64 { return c.price }

func TestPriceTableDefaults(t *testing.T) {
	p := NewPriceTable(map[string]float64{"a": 10, "b": 30})
	p.Default = 1
	if got := p.Value("a"); got != 10 {
		t.Errorf("expected 10, got %v", got)
	}
	if got := p.Value("missing"); got != 1 {
		t.Errorf("expected default 1, got %v", got)
	}
	if got := p.AverageValue("a", "b"); got != 20 {
		t.Errorf("expected average 20, got %v", got)
	}
	if got := p.AverageValue(); got != 0 {
		t.Errorf("expected 0 for empty average, got %v", got)
	}
}

func TestMemoCachesUntilReset(t *testing.T) {
	inner := &countingOracle{price: 5}
	m := NewMemo(inner)
	m.Value("x")
	m.Value("x")
	if inner.calls != 1 {
		t.Errorf("expected 1 call, got %d", inner.calls)
	}
	m.Reset()
	m.Value("x")
	if inner.calls != 2 {
		t.Errorf("expected 2 calls after reset, got %d", inner.calls)
	}
}

func TestLoadPriceTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yaml")
	body := "default: 2\nprices:\n  bag of park garbage: 600\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadPriceTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := p.Value("bag of park garbage"); got != 600 {
		t.Errorf("expected 600, got %v", got)
	}
	if got := p.Value("lint"); got != 2 {
		t.Errorf("expected default 2, got %v", got)
	}
}
