package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/rcliao/turnfarm/internal/farm"
	"github.com/rcliao/turnfarm/internal/model"
	"github.com/rcliao/turnfarm/internal/session"
)

func init() {
	color.NoColor = true
}

func manyLines() []model.LineItem {
	var lines []model.LineItem
	for i := 0; i < 12; i++ {
		lines = append(lines,
			model.LineItem{Item: fmt.Sprintf("gain %02d", i), Quantity: 1, Value: float64(100 + i)},
			model.LineItem{Item: fmt.Sprintf("loss %02d", i), Quantity: -1, Value: float64(-100 - i)},
		)
	}
	lines = append(lines, model.LineItem{Item: "worthless", Quantity: 3})
	return lines
}

func TestWinnersAndLosers(t *testing.T) {
	lines := manyLines()

	w := Winners(lines, TopN)
	if len(w) != TopN {
		t.Fatalf("expected %d winners, got %d", TopN, len(w))
	}
	if w[0].Item != "gain 11" || w[9].Item != "gain 02" {
		t.Errorf("expected gain 11 .. gain 02, got %s .. %s", w[0].Item, w[9].Item)
	}

	l := Losers(lines, TopN)
	if len(l) != TopN {
		t.Fatalf("expected %d losers, got %d", TopN, len(l))
	}
	if l[0].Item != "loss 11" {
		t.Errorf("expected loss 11 first, got %s", l[0].Item)
	}
	for _, x := range append(w, l...) {
		if x.Item == "worthless" {
			t.Error("expected zero-value lines left out")
		}
	}

	if got := Winners(lines[:2], TopN); len(got) != 1 {
		t.Errorf("expected 1 winner, got %d", len(got))
	}
}

func TestTotalsFormatsNumbers(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Totals("This run", 60, 153400, 27600)
	want := "This run, across 60 turns you generated 181,000, with 153,400 raw currency and 27,600 from items"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestMarginal(t *testing.T) {
	m := &session.Marginal{
		Rate:     model.Rate{Currency: 900, Items: 600, Effective: 1500, Total: 1700},
		Outliers: []model.LineItem{{Item: "Volcoino", Quantity: 1, Value: 200 * 42}},
	}
	var buf bytes.Buffer
	New(&buf).Marginal(m)
	out := buf.String()
	if !strings.Contains(out, "1 Volcoino worth 8,400 total") {
		t.Errorf("expected outlier line, got %q", out)
	}
	want := "Marginal rate: 900.00 [raw] + 600.00 [items] (200.00 [outliers]) = 1,500.00 [total] (1,700.00 [w/ outliers])"
	if !strings.Contains(out, want) {
		t.Errorf("expected %q, got %q", want, out)
	}
	if strings.Contains(out, VarianceWarning) {
		t.Error("expected no variance warning")
	}
}

func TestMarginalReduced(t *testing.T) {
	m := &session.Marginal{Rate: model.Rate{Currency: 900, Items: 50, Effective: 950, Total: 950}, Reduced: true}
	var buf bytes.Buffer
	New(&buf).Marginal(m)
	out := buf.String()
	if !strings.Contains(out, VarianceWarning) {
		t.Errorf("expected variance warning, got %q", out)
	}
	if !strings.Contains(out, "Marginal rate: 900.00 [raw] + 50.00 [items] = 950.00 [total]") {
		t.Errorf("unexpected marginal line %q", out)
	}

	buf.Reset()
	New(&buf).Marginal(nil)
	if buf.Len() != 0 {
		t.Errorf("expected nothing for a missing rate, got %q", buf.String())
	}
}

func TestSummary(t *testing.T) {
	sum := &farm.Summary{
		Run: model.YieldReport{
			Delta:     model.Delta{Currency: 1000, Turns: 10},
			ItemValue: 500,
			Lines: []model.LineItem{
				{Item: "bag of park garbage", Quantity: 5, Value: 3000},
				{Item: "pocket wish", Quantity: -1, Value: -2500},
			},
		},
		Today: model.Daily{Currency: 3000, Items: 1500, Turns: 30},
	}
	sum.Events.Record("Target fights", false)
	sum.Events.Record("Target fights", true)

	var buf bytes.Buffer
	New(&buf).Summary(sum)
	out := buf.String()
	for _, want := range []string{
		"Extreme items:",
		"bag of park garbage",
		"pocket wish",
		"Target fights: 2 (1 initial, 1 copied)",
		"This run, across 10 turns you generated 1,500",
		"So far today, across 30 turns you generated 4,500",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Marginal rate") {
		t.Error("expected no marginal line without a rate")
	}
}
