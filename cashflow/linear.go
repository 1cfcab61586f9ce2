package cashflow

import (
	"time"

	"github.com/almready/irrbb/behavioural"
	"github.com/almready/irrbb/canonical"
	"github.com/almready/irrbb/curve"
	"github.com/almready/irrbb/daycount"
)

// linearBalanceAt returns the contractual straight-line balance at date d:
// notional at start_date, decaying to zero at maturity_date.
func linearBalanceAt(notional float64, start, maturity, d time.Time) float64 {
	total := maturity.Sub(start).Hours()
	if total <= 0 {
		return 0
	}
	elapsed := d.Sub(start).Hours()
	if elapsed <= 0 {
		return notional
	}
	if elapsed >= total {
		return 0
	}
	return clampBalance(notional * (1 - elapsed/total))
}

// generateLinear handles fixed_linear and variable_linear: outstanding
// decays linearly from the effective start (max(start, analysis_date)) to
// zero at maturity; each payment date emits N_start - N_end of principal,
// and interest accrues on the average notional across the period (fixed),
// or across each reset-bounded sub-segment within the period (variable).
func generateLinear(c *canonical.Contract, curveSet *curve.Set, analysisDate time.Time) ([]behavioural.RawFlow, error) {
	base, err := daycount.Parse(c.DaycountBase)
	if err != nil {
		return nil, err
	}
	notional, _ := c.Notional.Float64()

	payFreq, _, err := daycount.ParseFrequency(c.PaymentFreq, true, "payment_freq")
	if err != nil {
		return nil, err
	}
	dates := paymentDates(c.StartDate, c.MaturityDate, payFreq)

	var resetFreq daycount.Frequency
	if c.RateType == canonical.Float {
		resetFreq, _, err = daycount.ParseFrequency(c.RepricingFreq, true, "repricing_freq")
		if err != nil {
			return nil, err
		}
	}

	var flows []behavioural.RawFlow
	periodStart := c.StartDate
	for _, periodEnd := range dates {
		if !periodEnd.After(analysisDate) {
			periodStart = periodEnd
			continue
		}
		accrualStart := periodStart
		if accrualStart.Before(analysisDate) {
			accrualStart = analysisDate
		}

		nStart := linearBalanceAt(notional, c.StartDate, c.MaturityDate, accrualStart)
		nEnd := linearBalanceAt(notional, c.StartDate, c.MaturityDate, periodEnd)
		principal := nStart - nEnd

		var interest float64
		if c.RateType == canonical.Fixed {
			yf := daycount.YearFraction(accrualStart, periodEnd, base)
			interest = 0.5 * (nStart + nEnd) * c.FixedRate * yf
		} else {
			resets, err := ResetSchedule(c.ContractID, accrualStart, periodEnd, c.NextRepriceDate, resetFreq)
			if err != nil {
				return nil, err
			}
			segs, err := segmentRates(c, curveSet, resets, accrualStart, periodEnd)
			if err != nil {
				return nil, err
			}
			for _, seg := range segs {
				segStartBal := linearBalanceAt(notional, c.StartDate, c.MaturityDate, seg.Start)
				segEndBal := linearBalanceAt(notional, c.StartDate, c.MaturityDate, seg.End)
				yf := daycount.YearFraction(seg.Start, seg.End, base)
				interest += 0.5 * (segStartBal + segEndBal) * seg.Rate * yf
			}
		}

		flows = append(flows, behavioural.RawFlow{Date: periodEnd, Interest: interest, Principal: principal})
		periodStart = periodEnd
	}
	return flows, nil
}
