// Package margin calibrates renewal margins from recent originations and
// answers fallback lookups for balance-constant NII rollover.
//
// A fixed-rate origination without a repricing frequency benchmarks off
// as_of + original term (start to maturity), not a flat one-year point;
// the flat one-year fallback applies when start or maturity is absent (or
// maturity is not after start).
package margin

import (
	"fmt"
	"time"

	"github.com/almready/irrbb/curve"
	"github.com/almready/irrbb/daycount"
)

// RateType mirrors canonical.RateType (the same two values, Fixed then
// Float) without importing it, to keep this package usable against any
// position source with those two rate types.
type RateType byte

const (
	Fixed RateType = iota
	Float
)

// Origination is one recent-originations row used to calibrate margins.
type Origination struct {
	RateType           RateType
	SourceContractType string
	Side               string
	RepricingFreq      string
	IndexName          string
	FixedRate          float64
	Spread             float64
	Notional           float64
	StartDate          time.Time
	MaturityDate       time.Time
}

// key is the grouping/lookup tuple (rate_type, source_contract_type, side,
// repricing_freq, index_name).
type key struct {
	rateType      RateType
	sct, side     string
	freq, idx     string
}

type aggregate struct {
	weightedSum float64
	weightSum   float64
}

// Set is a calibrated margin table: a weighted average per (rate_type,
// sct, side, freq, index) group, queryable by the most-specific-first
// fallback profile sequence
type Set struct {
	groups map[key]aggregate
}

// MissingMarginError means no profile matched and no caller default was given.
type MissingMarginError struct {
	RateType                                RateType
	SourceContractType, Side, Freq, IndexName string
}

func (e *MissingMarginError) Error() string {
	return fmt.Sprintf("margin: no match for rate_type=%v sct=%q side=%q freq=%q index=%q and no default supplied",
		e.RateType, e.SourceContractType, e.Side, e.Freq, e.IndexName)
}

// Calibrate builds a Set from recent originations, filtered to the
// [asOf-lookbackMonths, asOf] window by start_date (lookbackMonths<=0 means
// no filtering). fixedRateBenchmark resolves the curve point against which a
// fixed-rate row's margin is measured: as_of+repricing_freq when a
// repricing_freq is present, else as_of+(maturity-start), else as_of+1Y.
func Calibrate(rows []Origination, curveSet *curve.Set, riskFreeIndex string, asOf time.Time, lookbackMonths int) (*Set, error) {
	filtered := rows
	if lookbackMonths > 0 {
		windowStart := asOf.AddDate(0, -lookbackMonths, 0)
		filtered = make([]Origination, 0, len(rows))
		for _, r := range rows {
			if !r.StartDate.IsZero() && !r.StartDate.Before(windowStart) && !r.StartDate.After(asOf) {
				filtered = append(filtered, r)
			}
		}
	}

	groups := make(map[key]aggregate)
	for _, r := range filtered {
		weight := absf(r.Notional)
		if weight <= 0 {
			weight = 1.0
		}

		var marginRate float64
		switch r.RateType {
		case Fixed:
			bench := benchmarkDate(asOf, r)
			rf, err := curveSet.RateOnDate(riskFreeIndex, bench)
			if err != nil {
				return nil, err
			}
			marginRate = r.FixedRate - rf
		case Float:
			marginRate = r.Spread
		}

		k := key{rateType: r.RateType, sct: r.SourceContractType, side: r.Side, freq: r.RepricingFreq, idx: r.IndexName}
		agg := groups[k]
		agg.weightedSum += marginRate * weight
		agg.weightSum += weight
		groups[k] = agg
	}

	return &Set{groups: groups}, nil
}

// benchmarkDate implements the fixed-rate benchmark rule.
func benchmarkDate(asOf time.Time, r Origination) time.Time {
	if freq, ok, err := daycount.ParseFrequency(r.RepricingFreq, false, "repricing_freq"); err == nil && ok && !freq.IsZero() {
		return daycount.Add(asOf, freq)
	}
	if !r.StartDate.IsZero() && !r.MaturityDate.IsZero() && r.MaturityDate.After(r.StartDate) {
		term := r.MaturityDate.Sub(r.StartDate)
		return asOf.Add(term)
	}
	return asOf.AddDate(1, 0, 0)
}

// Lookup finds the weighted-average margin for the given request tuple,
// trying the most-specific-first fallback profile sequence.
// If nothing matches, hasDefault/defaultValue supplies the caller's default;
// otherwise MissingMarginError is returned.
func (s *Set) Lookup(rateType RateType, sct, side, freq, idx string, hasDefault bool, defaultValue float64) (float64, error) {
	req := map[string]string{"source_contract_type": sct, "side": side, "repricing_freq": freq, "index_name": idx}

	profiles := [][]string{
		{"source_contract_type", "side", "repricing_freq", "index_name"},
		{"source_contract_type", "side", "repricing_freq"},
		{"source_contract_type", "repricing_freq"},
		{"source_contract_type", "side"},
		{"source_contract_type"},
		{"repricing_freq"},
		{},
	}

profileLoop:
	for _, dims := range profiles {
		for _, d := range dims {
			if req[d] == "" {
				continue profileLoop
			}
		}

		var sum, weight float64
		matched := false
		for k, agg := range s.groups {
			if k.rateType != rateType {
				continue
			}
			if !matchesProfile(k, dims, req) {
				continue
			}
			sum += agg.weightedSum
			weight += agg.weightSum
			matched = true
		}
		if matched && weight > 0 {
			return sum / weight, nil
		}
	}

	if hasDefault {
		return defaultValue, nil
	}
	return 0, &MissingMarginError{RateType: rateType, SourceContractType: sct, Side: side, Freq: freq, IndexName: idx}
}

func matchesProfile(k key, dims []string, req map[string]string) bool {
	for _, d := range dims {
		var got string
		switch d {
		case "source_contract_type":
			got = k.sct
		case "side":
			got = k.side
		case "repricing_freq":
			got = k.freq
		case "index_name":
			got = k.idx
		}
		if got != req[d] {
			return false
		}
	}
	return true
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
