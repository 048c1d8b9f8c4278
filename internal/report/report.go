// Package report prints the end-of-run summary to a terminal.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rcliao/turnfarm/internal/farm"
	"github.com/rcliao/turnfarm/internal/model"
	"github.com/rcliao/turnfarm/internal/session"
)

// TopN is how many winners and losers are listed.
const TopN = 10

// VarianceWarning is printed when the marginal rate lacks an item window.
const VarianceWarning = "Warning: insufficient turns were run, so this estimate is subject to large variance. Be careful when using these values as is."

// Printer writes report sections to one output.
type Printer struct {
	out       io.Writer
	p         *message.Printer
	highlight *color.Color
	warn      *color.Color
}

// New returns a Printer writing to out with English number formatting.
func New(out io.Writer) *Printer {
	return &Printer{
		out:       out,
		p:         message.NewPrinter(language.English),
		highlight: color.New(color.FgCyan, color.Bold),
		warn:      color.New(color.FgRed),
	}
}

// Summary prints every section for a finished run.
func (r *Printer) Summary(sum *farm.Summary) {
	r.Extremes(sum.Run.Lines)
	r.Fights(sum.Events.Initial, sum.Events.Copied)
	r.Totals("This run", sum.Run.Turns, sum.Run.Currency, sum.Run.ItemValue)
	r.Totals("So far today", sum.Today.Turns, sum.Today.Currency, sum.Today.Items)
	r.Marginal(sum.Marginal)
}

// Winners returns up to n lines with positive value, most valuable first.
func Winners(lines []model.LineItem, n int) []model.LineItem {
	var out []model.LineItem
	for _, l := range lines {
		if l.Value > 0 {
			out = append(out, l)
		}
	}
	model.SortLines(out)
	return out[:min(n, len(out))]
}

// Losers returns up to n lines with negative value, costliest first.
func Losers(lines []model.LineItem, n int) []model.LineItem {
	var out []model.LineItem
	for _, l := range lines {
		if l.Value < 0 {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value < out[j].Value
		}
		return out[i].Item < out[j].Item
	})
	return out[:min(n, len(out))]
}

// Extremes prints the top winners and losers as tables.
func (r *Printer) Extremes(lines []model.LineItem) {
	r.highlight.Fprintln(r.out, "Extreme items:")
	r.table(Winners(lines, TopN))
	r.table(Losers(lines, TopN))
}

func (r *Printer) table(lines []model.LineItem) {
	if len(lines) == 0 {
		return
	}
	table := tablewriter.NewTable(r.out,
		tablewriter.WithHeader([]string{"Item", "Qty", "Value"}),
	)
	for _, l := range lines {
		_ = table.Append([]string{l.Item, r.p.Sprintf("%d", l.Quantity), r.p.Sprintf("%.0f", l.Value)})
	}
	_ = table.Render()
}

// Fights prints the target encounter counts.
func (r *Printer) Fights(initial, copied int) {
	fmt.Fprintf(r.out, "Target fights: %d (%d initial, %d copied)\n", initial+copied, initial, copied)
}

// Totals prints one highlighted yield line.
func (r *Printer) Totals(head string, turns int, currency int64, items float64) {
	r.highlight.Fprintln(r.out, r.p.Sprintf(
		"%s, across %d turns you generated %.0f, with %d raw currency and %.0f from items",
		head, turns, float64(currency)+items, currency, items))
}

// Marginal prints the marginal rate. A nil rate prints nothing; a reduced one
// is preceded by the variance warning.
func (r *Printer) Marginal(m *session.Marginal) {
	if m == nil {
		return
	}
	if m.Reduced {
		r.warn.Fprintln(r.out, VarianceWarning)
		r.highlight.Fprintln(r.out, r.p.Sprintf("Marginal rate: %.2f [raw] + %.2f [items] = %.2f [total]",
			m.Currency, m.Items, m.Total))
		return
	}
	if len(m.Outliers) > 0 {
		r.highlight.Fprintln(r.out, "Outliers:")
		for _, l := range m.Outliers {
			r.highlight.Fprintln(r.out, r.p.Sprintf("%d %s worth %.0f total", l.Quantity, l.Item, l.Value))
		}
	}
	r.highlight.Fprintln(r.out, r.p.Sprintf(
		"Marginal rate: %.2f [raw] + %.2f [items] (%.2f [outliers]) = %.2f [total] (%.2f [w/ outliers])",
		m.Currency, m.Items, m.Total-m.Effective, m.Effective, m.Total))
}
