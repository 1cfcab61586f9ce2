package cashflow

import (
	"time"

	"github.com/almready/irrbb/behavioural"
	"github.com/almready/irrbb/canonical"
	"github.com/almready/irrbb/curve"
	"github.com/almready/irrbb/daycount"
)

// generateBullet handles both fixed_bullet and variable_bullet:
// interest accrues coupon-period by coupon-period, truncated to
// [analysisDate, maturity]; the full notional is emitted at maturity.
// Fixed contracts accrue the whole period at fixed_rate; floating contracts
// split each coupon period into reset-bounded segments via the
// current-coupon stub rule and sum interest across segments.
func generateBullet(c *canonical.Contract, curveSet *curve.Set, analysisDate time.Time) ([]behavioural.RawFlow, error) {
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
	for i, periodEnd := range dates {
		if !periodEnd.After(analysisDate) {
			periodStart = periodEnd
			continue
		}
		accrualStart := periodStart
		if accrualStart.Before(analysisDate) {
			accrualStart = analysisDate
		}

		interest, err := accrueInterest(c, curveSet, base, notional, accrualStart, periodEnd, resetFreq)
		if err != nil {
			return nil, err
		}

		principal := 0.0
		if i == len(dates)-1 {
			principal = notional
		}
		flows = append(flows, behavioural.RawFlow{Date: periodEnd, Interest: interest, Principal: principal})
		periodStart = periodEnd
	}
	return flows, nil
}

// accrueInterest sums interest over [accrualStart, periodEnd] on a constant
// balance, either at the fixed rate or segmented by resets via the
// current-coupon stub rule.
func accrueInterest(c *canonical.Contract, curveSet *curve.Set, base daycount.Convention, balance float64, accrualStart, periodEnd time.Time, resetFreq daycount.Frequency) (float64, error) {
	if c.RateType == canonical.Fixed {
		yf := daycount.YearFraction(accrualStart, periodEnd, base)
		return balance * c.FixedRate * yf, nil
	}

	resets, err := ResetSchedule(c.ContractID, accrualStart, periodEnd, c.NextRepriceDate, resetFreq)
	if err != nil {
		return 0, err
	}
	segs, err := segmentRates(c, curveSet, resets, accrualStart, periodEnd)
	if err != nil {
		return 0, err
	}

	var interest float64
	for _, seg := range segs {
		yf := daycount.YearFraction(seg.Start, seg.End, base)
		interest += balance * seg.Rate * yf
	}
	return interest, nil
}
