package cashflow

import (
	"sort"
	"time"

	"github.com/almready/irrbb/behavioural"
	"github.com/almready/irrbb/canonical"
	"github.com/almready/irrbb/curve"
	"github.com/almready/irrbb/daycount"
)

// generateScheduled handles fixed_scheduled and variable_scheduled:
// interest accrues on the current balance over each
// flow-bounded sub-interval (segmented by resets too, for the variable
// shape); balance is reduced by the scheduled principal at each interval
// end; any residual balance still outstanding at maturity is emitted as a
// terminal principal flow.
func generateScheduled(c *canonical.Contract, flows []canonical.ScheduledFlow, curveSet *curve.Set, analysisDate time.Time) ([]behavioural.RawFlow, error) {
	base, err := daycount.Parse(c.DaycountBase)
	if err != nil {
		return nil, err
	}
	notional, _ := c.Notional.Float64()

	sorted := make([]canonical.ScheduledFlow, len(flows))
	copy(sorted, flows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FlowDate.Before(sorted[j].FlowDate) })

	var resetFreq daycount.Frequency
	if c.RateType == canonical.Float {
		resetFreq, _, err = daycount.ParseFrequency(c.RepricingFreq, true, "repricing_freq")
		if err != nil {
			return nil, err
		}
	}

	var out []behavioural.RawFlow
	balance := notional
	periodStart := c.StartDate

	step := func(periodEnd time.Time, scheduledPrincipal float64) error {
		accrualStart := periodStart
		if accrualStart.Before(analysisDate) {
			accrualStart = analysisDate
		}
		if !periodEnd.After(accrualStart) {
			return nil
		}

		principal := clampPrincipal(scheduledPrincipal, balance)

		var interest float64
		if c.RateType == canonical.Fixed {
			yf := daycount.YearFraction(accrualStart, periodEnd, base)
			interest = balance * c.FixedRate * yf
		} else {
			resets, err := ResetSchedule(c.ContractID, accrualStart, periodEnd, c.NextRepriceDate, resetFreq)
			if err != nil {
				return err
			}
			segs, err := segmentRates(c, curveSet, resets, accrualStart, periodEnd)
			if err != nil {
				return err
			}
			for _, seg := range segs {
				yf := daycount.YearFraction(seg.Start, seg.End, base)
				interest += balance * seg.Rate * yf
			}
		}

		if periodEnd.After(analysisDate) {
			out = append(out, behavioural.RawFlow{Date: periodEnd, Interest: interest, Principal: principal})
		}
		balance = clampBalance(balance - principal)
		periodStart = periodEnd
		return nil
	}

	for _, f := range sorted {
		if f.FlowDate.After(c.MaturityDate) {
			continue
		}
		amount, _ := f.PrincipalAmount.Float64()
		if err := step(f.FlowDate, amount); err != nil {
			return nil, err
		}
	}

	if balance > balanceFloor && c.MaturityDate.After(periodStart) {
		if err := step(c.MaturityDate, balance); err != nil {
			return nil, err
		}
	}

	return out, nil
}
