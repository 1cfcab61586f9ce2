// Package cashflow is the core cashflow generator: single dispatch by
// source_contract_type across the eight contractual shapes, fixed and
// floating, emitting signed (interest, principal) flows. The final period
// of each shape absorbs whatever balance remains, and every emitted amount
// is rounded to cents when it is signed.
package cashflow

import (
	"fmt"
	"time"

	"github.com/almready/irrbb/canonical"
	"github.com/almready/irrbb/curve"
	"github.com/almready/irrbb/daycount"
)

// maxResetIterations guards ResetSchedule against a non-advancing step
const maxResetIterations = 10000

// NonAdvancingResetError is raised when walking the reset schedule does not
// make progress — a malformed frequency would otherwise loop forever.
type NonAdvancingResetError struct {
	ContractID string
}

func (e *NonAdvancingResetError) Error() string {
	return fmt.Sprintf("cashflow: reset schedule for contract %q did not advance within %d iterations", e.ContractID, maxResetIterations)
}

// ResetSchedule walks anchor forward by freq until strictly past
// accrualStart, then emits every subsequent reset date strictly less than
// accrualEnd. If anchor is zero or freq is zero (no frequency), no
// intermediate resets are produced: the position is fixed across the cycle.
func ResetSchedule(contractID string, accrualStart, accrualEnd, anchor time.Time, freq daycount.Frequency) ([]time.Time, error) {
	if anchor.IsZero() || freq.IsZero() {
		return nil, nil
	}

	d := anchor
	iterations := 0
	for !d.After(accrualStart) {
		next := daycount.Add(d, freq)
		if !next.After(d) {
			return nil, &NonAdvancingResetError{ContractID: contractID}
		}
		d = next
		iterations++
		if iterations > maxResetIterations {
			return nil, &NonAdvancingResetError{ContractID: contractID}
		}
	}

	var resets []time.Time
	for d.Before(accrualEnd) {
		resets = append(resets, d)
		next := daycount.Add(d, freq)
		if !next.After(d) {
			return nil, &NonAdvancingResetError{ContractID: contractID}
		}
		d = next
		iterations++
		if iterations > maxResetIterations {
			return nil, &NonAdvancingResetError{ContractID: contractID}
		}
	}
	return resets, nil
}

// segment is one rate-homogeneous sub-period of an accrual cycle, bounded
// by resets, payment dates, and/or scheduled-flow dates.
type segment struct {
	Start, End time.Time
	Rate       float64 // all-in rate for this segment, floor/cap already applied
}

// segmentRates applies the current-coupon stub rule across
// the reset-bounded segments of [accrualStart, accrualEnd]: the first
// segment uses fixedRate when the first reset lies strictly after
// accrualStart (a true stub); every later segment uses
// index_rate(seg_start) + spread, floor/capped on the all-in rate.
func segmentRates(contract *canonical.Contract, curveSet *curve.Set, resets []time.Time, accrualStart, accrualEnd time.Time) ([]segment, error) {
	bounds := append([]time.Time{accrualStart}, resets...)
	bounds = append(bounds, accrualEnd)

	segs := make([]segment, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		start, end := bounds[i], bounds[i+1]
		if !start.Before(end) {
			continue
		}

		var rate float64
		if i == 0 && len(resets) > 0 && resets[0].After(accrualStart) {
			rate = contract.FixedRate
		} else {
			idxRate, err := curveSet.RateOnDate(contract.IndexName, start)
			if err != nil {
				return nil, err
			}
			rate = idxRate + contract.Spread
		}
		rate = applyFloorCap(rate, contract.FloorRate, contract.CapRate)

		segs = append(segs, segment{Start: start, End: end, Rate: rate})
	}
	return segs, nil
}

func applyFloorCap(rate float64, floor, cap *float64) float64 {
	if floor != nil && rate < *floor {
		rate = *floor
	}
	if cap != nil && rate > *cap {
		rate = *cap
	}
	return rate
}

// paymentDates returns start + k*freq for k=1,2,... up to and including
// maturity (the last payment date is always exactly maturity, per
// the fixed_bullet coupon-date rule, generalised to every
// payment-frequency-driven shape).
func paymentDates(start, maturity time.Time, freq daycount.Frequency) []time.Time {
	if freq.IsZero() {
		return []time.Time{maturity}
	}
	var dates []time.Time
	d := start
	for i := 0; i < maxResetIterations; i++ {
		d = daycount.Add(d, freq)
		if !d.Before(maturity) {
			dates = append(dates, maturity)
			break
		}
		dates = append(dates, d)
	}
	return dates
}

const balanceFloor = 1e-10

func clampBalance(balance float64) float64 {
	if balance < balanceFloor {
		return 0
	}
	return balance
}
