// Package odds computes exact landing probabilities and the expected prize
// of a wheel layout.
package odds

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nathoo/spinwheel/engine/wheel"
)

var (
	hundred    = decimal.NewFromInt(100)
	fullCircle = decimal.NewFromInt(360)
)

// Line is the odds of a single segment.
type Line struct {
	Index       int
	Name        string
	Prize       int
	Weight      decimal.Decimal // effective weight; non-positive weights count as zero
	Probability decimal.Decimal // in [0, 1]
	Sweep       decimal.Decimal // degrees
}

// Percent returns the probability as a percentage.
func (l Line) Percent() decimal.Decimal {
	return l.Probability.Mul(hundred)
}

// Table is the odds of a whole wheel.
type Table struct {
	Lines         []Line
	TotalWeight   decimal.Decimal
	ExpectedPrize decimal.Decimal
}

// Valid reports whether the wheel has positive weight and so can be spun.
func (t Table) Valid() bool {
	return t.TotalWeight.IsPositive()
}

// Compute builds the odds table for segs in layout order.
func Compute(segs []wheel.Segment) Table {
	t := Table{
		Lines:         make([]Line, len(segs)),
		TotalWeight:   decimal.Zero,
		ExpectedPrize: decimal.Zero,
	}

	for i, seg := range segs {
		w := decimal.Zero
		if seg.Weight > 0 {
			w = decimal.NewFromFloat(seg.Weight)
		}
		t.Lines[i] = Line{
			Index:       i,
			Name:        seg.Name,
			Prize:       seg.Prize,
			Weight:      w,
			Probability: decimal.Zero,
			Sweep:       decimal.Zero,
		}
		t.TotalWeight = t.TotalWeight.Add(w)
	}

	if !t.Valid() {
		return t
	}

	for i := range t.Lines {
		line := &t.Lines[i]
		line.Probability = line.Weight.Div(t.TotalWeight)
		line.Sweep = line.Probability.Mul(fullCircle)
		t.ExpectedPrize = t.ExpectedPrize.Add(line.Probability.Mul(decimal.NewFromInt(int64(line.Prize))))
	}

	return t
}

// Format renders the table as display lines.
func (t Table) Format() []string {
	if len(t.Lines) == 0 {
		return []string{"The wheel has no segments."}
	}

	out := make([]string, 0, len(t.Lines)+1)
	for _, l := range t.Lines {
		out = append(out, fmt.Sprintf("%2d. %-14s weight %-6s %6s%%  %7s°  prize %d",
			l.Index+1, l.Name, l.Weight.String(), l.Percent().StringFixed(2),
			l.Sweep.StringFixed(2), l.Prize))
	}
	if !t.Valid() {
		out = append(out, "The wheel has no positive weight and cannot be spun.")
		return out
	}
	out = append(out, fmt.Sprintf("Expected prize per spin: %s", t.ExpectedPrize.StringFixed(2)))
	return out
}
