package session

import (
	"errors"
	"fmt"

	"github.com/rcliao/turnfarm/internal/model"
)

// OutlierItems are always excluded from the item rate.
var OutlierItems = map[string]bool{
	"Extrovermectin™":     true,
	"Volcoino":            true,
	"Poké-Gro fertilizer": true,
}

// outlierValue is the value at which a single rare drop counts as luck.
const outlierValue = 5000

// IsOutlier reports whether line is a lucky drop that would distort a per-turn
// rate: a listed item, or a single valuable drop that is also rare across
// reference (quantity at most 2 there).
func IsOutlier(line model.LineItem, reference map[string]int) bool {
	if OutlierItems[line.Item] {
		return true
	}
	if line.Quantity != 1 || line.Value < outlierValue {
		return false
	}
	n, ok := reference[line.Item]
	return ok && n <= 2
}

// Window computes per-turn rates for the range from..to. Items that are
// outliers against reference are excluded from Items and Effective and
// returned separately; a nil reference counts every line toward Items.
// extra is subtracted from the item value.
func (t *Tracker) Window(from, to model.Checkpoint, reference map[string]int, extra float64) (model.Rate, []model.LineItem, error) {
	r, err := t.Diff(from, to)
	if err != nil {
		return model.Rate{}, nil, err
	}
	if r.Turns <= 0 {
		return model.Rate{}, nil, fmt.Errorf("%w: no turns between %s and %s", ErrInvalidRange, from, to)
	}

	var items, outliers float64
	var out []model.LineItem
	for _, l := range r.Lines {
		if reference != nil && IsOutlier(l, reference) {
			outliers += l.Value
			out = append(out, l)
			continue
		}
		items += l.Value
	}
	items -= extra

	turns := float64(r.Turns)
	rate := model.Rate{
		Currency: float64(r.Currency) / turns,
		Items:    items / turns,
	}
	rate.Effective = rate.Currency + rate.Items
	rate.Total = rate.Effective + outliers/turns
	return rate, out, nil
}

// Marginal is the blended marginal rate of farming turns.
type Marginal struct {
	model.Rate
	Outliers []model.LineItem `json:"outliers,omitempty"`
	// Reduced is set when the item window was unavailable and the rate comes
	// from the currency window alone.
	Reduced bool `json:"reduced"`
}

// reference is the whole-day item delta used by the outlier rule.
func (t *Tracker) reference() map[string]int {
	r, err := t.Since(model.DayStart)
	if err != nil {
		return map[string]int{}
	}
	return r.Items
}

// Marginal blends the currency rate of the late currency window with the item
// rate of the longer item window. When the item window is missing the
// currency window's own rates are returned with Reduced set.
func (t *Tracker) Marginal() (Marginal, error) {
	if _, ok := t.sessions[model.FarmingStart]; !ok {
		return Marginal{}, fmt.Errorf("%w: farming never started", ErrInvalidRange)
	}
	meat, _, err := t.Window(model.MeatStart, model.MeatEnd, nil, 0)
	if err != nil {
		return Marginal{}, err
	}

	item, outliers, err := t.Window(model.ItemStart, model.ItemEnd, t.reference(), t.extra)
	if errors.Is(err, ErrInvalidRange) {
		return Marginal{Rate: meat, Reduced: true}, nil
	}
	if err != nil {
		return Marginal{}, err
	}
	m := Marginal{Outliers: outliers}
	m.Currency = meat.Currency
	m.Items = item.Items
	m.Effective = item.Effective - item.Currency + meat.Currency
	m.Total = item.Total - item.Currency + meat.Currency
	return m, nil
}
