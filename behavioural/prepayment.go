package behavioural

import (
	"math"
	"time"

	"github.com/almready/irrbb/daycount"
)

// RawFlow is one pre-sign, pre-rounding (date, interest, principal) point
// from the cashflow generator's contractual schedule, before the
// prepayment overlay runs.
type RawFlow struct {
	Date      time.Time
	Interest  float64
	Principal float64
}

// daysBase returns the CPR annualisation base (360 or 365) implied by a
// daycount convention, per the Banca Etica dual-schedule formula.
func daysBase(base daycount.Convention) float64 {
	if base == daycount.Act360 {
		return 360
	}
	return 365
}

// ApplyPrepayment runs the CPR/TDRR dual-schedule overlay on a contract's
// contractual flow schedule. annualRate is CPR_annual for
// assets or TDRR_annual for term-deposit liabilities; zero means no
// behavioural decay and the contractual flows pass through unchanged.
// scheduleStart anchors the first period's day count.
func ApplyPrepayment(notional float64, base daycount.Convention, annualRate float64, scheduleStart time.Time, flows []RawFlow) []RawFlow {
	if annualRate == 0 || len(flows) == 0 {
		return flows
	}

	bdays := daysBase(base)
	drm, drc := notional, notional
	prev := scheduleStart

	out := make([]RawFlow, 0, len(flows))
	for _, f := range flows {
		days := f.Date.Sub(prev).Hours() / 24
		cprp := 1 - math.Pow(1-annualRate, days/bdays)

		var amortRate float64
		if drc > 0 {
			amortRate = f.Principal / drc
		}
		combined := math.Min(1, amortRate+cprp)

		behaviouralPrincipal := drm * combined
		var behaviouralInterest float64
		if drc > 0 {
			behaviouralInterest = f.Interest * drm / drc
		}

		out = append(out, RawFlow{Date: f.Date, Interest: behaviouralInterest, Principal: behaviouralPrincipal})

		drc = math.Max(0, drc-f.Principal)
		drm = math.Max(0, drm-behaviouralPrincipal)
		prev = f.Date
	}
	return out
}
