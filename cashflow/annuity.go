package cashflow

import (
	"time"

	"github.com/almready/irrbb/behavioural"
	"github.com/almready/irrbb/canonical"
	"github.com/almready/irrbb/curve"
	"github.com/almready/irrbb/daycount"
)

// generateFixedAnnuity computes the level-payment schedule:
// P = outstanding / Σ 1/Π(1+rate·yfᵢ), interest = balance·rate·yf per
// period, principal = clamp(P − interest, 0, balance), with the final
// payment absorbing whatever balance remains. Periods ending on or before
// analysis_date are simulated (to carry the running balance forward) but
// not emitted; the first emitted period truncates its interest accrual to
// start at analysis_date.
func generateFixedAnnuity(c *canonical.Contract, analysisDate time.Time) ([]behavioural.RawFlow, error) {
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

	yfs := make([]float64, len(dates))
	periodStarts := make([]time.Time, len(dates))
	d := c.StartDate
	for i, end := range dates {
		periodStarts[i] = d
		yfs[i] = daycount.YearFraction(d, end, base)
		d = end
	}

	payment := levelPayment(notional, c.FixedRate, yfs)

	var flows []behavioural.RawFlow
	balance := notional
	for i, periodEnd := range dates {
		isLast := i == len(dates)-1
		accrualStart := periodStarts[i]
		yf := yfs[i]
		if accrualStart.Before(analysisDate) && periodEnd.After(analysisDate) {
			accrualStart = analysisDate
			yf = daycount.YearFraction(accrualStart, periodEnd, base)
		}

		interest := balance * c.FixedRate * yf
		var principal float64
		if isLast {
			principal = balance
		} else {
			principal = clampPrincipal(payment-interest, balance)
		}

		if periodEnd.After(analysisDate) {
			flows = append(flows, behavioural.RawFlow{Date: periodEnd, Interest: interest, Principal: principal})
		}
		balance = clampBalance(balance - principal)
	}
	return flows, nil
}

// levelPayment solves P = outstanding / Σ 1/Π(1+rate·yfᵢ) for a possibly
// irregular period grid.
func levelPayment(outstanding, rate float64, yfs []float64) float64 {
	if rate == 0 {
		n := float64(len(yfs))
		if n == 0 {
			return outstanding
		}
		return outstanding / n
	}
	discountProduct := 1.0
	var factor float64
	for _, yf := range yfs {
		discountProduct *= 1 + rate*yf
		factor += 1.0 / discountProduct
	}
	if factor == 0 {
		return outstanding
	}
	return outstanding / factor
}

func clampPrincipal(principal, balance float64) float64 {
	if principal < 0 {
		return 0
	}
	if principal > balance {
		return balance
	}
	return principal
}

// generateVariableAnnuity implements both variable_annuity payment modes.
// reprice_on_reset recomputes the level payment over the remaining
// schedule at the start of each payment period, using that period's
// opening segment rate — a deliberate simplification of a full
// mid-cycle-reset recompute.
// fixed_payment computes the payment once, at the first period's opening
// rate, and holds it for the contract's life; each period's interest is the
// reset-segmented sum and principal absorbs the difference.
func generateVariableAnnuity(c *canonical.Contract, curveSet *curve.Set, analysisDate time.Time) ([]behavioural.RawFlow, error) {
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

	resetFreq, _, err := daycount.ParseFrequency(c.RepricingFreq, true, "repricing_freq")
	if err != nil {
		return nil, err
	}

	globalYFs := make([]float64, len(dates))
	{
		d := c.StartDate
		for i, end := range dates {
			globalYFs[i] = daycount.YearFraction(d, end, base)
			d = end
		}
	}

	var flows []behavioural.RawFlow
	balance := notional
	var fixedPayment float64
	fixedPaymentSet := false

	periodStart := c.StartDate
	for i, periodEnd := range dates {
		isLast := i == len(dates)-1
		accrualStart := periodStart
		if accrualStart.Before(analysisDate) {
			accrualStart = analysisDate
		}

		resets, err := ResetSchedule(c.ContractID, accrualStart, periodEnd, c.NextRepriceDate, resetFreq)
		if err != nil {
			return nil, err
		}
		segs, err := segmentRates(c, curveSet, resets, accrualStart, periodEnd)
		if err != nil {
			return nil, err
		}
		openingRate := c.FixedRate
		if len(segs) > 0 {
			openingRate = segs[0].Rate
		}

		remaining := globalYFs[i:]

		var payment float64
		switch c.AnnuityPaymentMode {
		case canonical.FixedPayment:
			if !fixedPaymentSet {
				fixedPayment = levelPayment(balance, openingRate, remaining)
				fixedPaymentSet = true
			}
			payment = fixedPayment
		default: // RepriceOnReset
			payment = levelPayment(balance, openingRate, remaining)
		}

		var interest float64
		for _, seg := range segs {
			yf := daycount.YearFraction(seg.Start, seg.End, base)
			interest += balance * seg.Rate * yf
		}

		var principal float64
		if isLast {
			principal = balance
		} else {
			principal = clampPrincipal(payment-interest, balance)
		}

		if periodEnd.After(analysisDate) {
			flows = append(flows, behavioural.RawFlow{Date: periodEnd, Interest: interest, Principal: principal})
		}
		balance = clampBalance(balance - principal)
		periodStart = periodEnd
	}
	return flows, nil
}

