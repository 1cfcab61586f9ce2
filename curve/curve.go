// Package curve implements the piecewise log-linear discount-factor curve
// model used to discount cashflows and project floating
// rates. The interpolation scheme mirrors the log-linear DF bridge used
// throughout the pack's swap-curve bootstrap (forwardRate = ln(df1/df2)/(t2-t1),
// DF(t) = df1 * exp(-forwardRate*(t-t1))) but skips bootstrapping entirely:
// callers already hand in (tenor, forward-rate) samples.
package curve

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/almready/irrbb/daycount"
)

// Sample is one (tenor, forward-rate) point on a forward curve.
type Sample struct {
	TYears float64
	Rate   float64
}

// ForwardCurve is a sorted set of (t, rate) samples for a single index,
// exposing discount-factor and equivalent-rate queries. It is immutable
// once built and safe for concurrent read access across scenario workers.
type ForwardCurve struct {
	samples []Sample // sorted by TYears, deduplicated
	dfs     []float64
}

// New builds a ForwardCurve from unsorted samples. Duplicate tenors keep the
// last occurrence. Instantaneous forward is treated as piecewise-constant
// between samples, which makes the discount-factor curve piecewise
// log-linear.
func New(samples []Sample) *ForwardCurve {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TYears < sorted[j].TYears })

	deduped := sorted[:0:0]
	for i, s := range sorted {
		if i > 0 && s.TYears == deduped[len(deduped)-1].TYears {
			deduped[len(deduped)-1] = s
			continue
		}
		deduped = append(deduped, s)
	}

	dfs := make([]float64, len(deduped))
	for i, s := range deduped {
		dfs[i] = math.Exp(-s.Rate * s.TYears)
	}

	return &ForwardCurve{samples: deduped, dfs: dfs}
}

// bracket returns the index pair (lo, hi) of samples bracketing t, clamped
// for flat extrapolation beyond either end.
func (c *ForwardCurve) bracket(t float64) (lo, hi int) {
	n := len(c.samples)
	if n == 0 {
		return -1, -1
	}
	if n == 1 || t <= c.samples[0].TYears {
		return 0, 0
	}
	if t >= c.samples[n-1].TYears {
		return n - 1, n - 1
	}
	i := sort.Search(n, func(i int) bool { return c.samples[i].TYears >= t })
	return i - 1, i
}

// DiscountFactor returns DF(t) = exp(-∫0^t f(u) du) via log-linear
// interpolation of discount factors between bracketing samples, flat beyond
// either end.
func (c *ForwardCurve) DiscountFactor(t float64) float64 {
	lo, hi := c.bracket(t)
	if lo < 0 {
		return 1.0
	}
	if lo == hi {
		// Flat extrapolation: the edge sample's instantaneous forward is
		// held constant beyond the curve.
		edge := c.samples[lo]
		return c.dfs[lo] * math.Exp(-edge.Rate*(t-edge.TYears))
	}

	t1, t2 := c.samples[lo].TYears, c.samples[hi].TYears
	df1, df2 := c.dfs[lo], c.dfs[hi]
	if t2 == t1 {
		return df1
	}
	forward := math.Log(df1/df2) / (t2 - t1)
	return df1 * math.Exp(-forward*(t-t1))
}

// Rate returns the continuously-compounded equivalent zero rate at t,
// r(t) = -ln(DF(t))/t. For t == 0 it returns the shortest sample's forward
// rate (the instantaneous overnight rate), avoiding a division by zero.
func (c *ForwardCurve) Rate(t float64) float64 {
	if len(c.samples) == 0 {
		return 0
	}
	if t <= 1e-9 {
		return c.samples[0].Rate
	}
	df := c.DiscountFactor(t)
	return -math.Log(df) / t
}

// Shift returns a new curve with every sample's rate shifted by delta(t)
// years from analysis, used by the shock engine to build scenario curves
// without mutating the base curve.
func (c *ForwardCurve) Shift(delta func(tYears float64) float64) *ForwardCurve {
	shifted := make([]Sample, len(c.samples))
	for i, s := range c.samples {
		shifted[i] = Sample{TYears: s.TYears, Rate: s.Rate + delta(s.TYears)}
	}
	return New(shifted)
}

// Samples returns a copy of the curve's sorted, deduplicated samples.
func (c *ForwardCurve) Samples() []Sample {
	out := make([]Sample, len(c.samples))
	copy(out, c.samples)
	return out
}

// Set is a ForwardCurveSet: a named collection of ForwardCurves sharing one
// analysis date and daycount base.
type Set struct {
	AnalysisDate time.Time
	Base         daycount.Convention
	Curves       map[string]*ForwardCurve
}

// MissingCurveError reports a position referencing an index absent from
// the curve set.
type MissingCurveError struct {
	Index     string
	Available []string
}

func (e *MissingCurveError) Error() string {
	return fmt.Sprintf("curve: missing curve for index %q (available: %v)", e.Index, e.Available)
}

// Require fails eagerly, before any projection starts, if any of the given
// indices is absent from the set.
func (s *Set) Require(indices ...string) error {
	seen := map[string]bool{}
	for _, ix := range indices {
		if ix == "" || seen[ix] {
			continue
		}
		seen[ix] = true
		if _, ok := s.Curves[ix]; !ok {
			avail := make([]string, 0, len(s.Curves))
			for k := range s.Curves {
				avail = append(avail, k)
			}
			sort.Strings(avail)
			return &MissingCurveError{Index: ix, Available: avail}
		}
	}
	return nil
}

func (s *Set) t(d time.Time) float64 {
	return daycount.YearFraction(s.AnalysisDate, d, s.Base)
}

// RateOnDate returns the equivalent zero rate for index at calendar date d.
func (s *Set) RateOnDate(index string, d time.Time) (float64, error) {
	c, ok := s.Curves[index]
	if !ok {
		return 0, &MissingCurveError{Index: index}
	}
	return c.Rate(s.t(d)), nil
}

// DFOnDate returns the discount factor for index at calendar date d.
func (s *Set) DFOnDate(index string, d time.Time) (float64, error) {
	c, ok := s.Curves[index]
	if !ok {
		return 0, &MissingCurveError{Index: index}
	}
	return c.DiscountFactor(s.t(d)), nil
}

// TYears converts a calendar date to a year fraction from the set's
// analysis date, under the set's daycount base.
func (s *Set) TYears(d time.Time) float64 {
	return s.t(d)
}
