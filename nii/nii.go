// Package nii implements the twelve-month Net Interest Income projector:
// monthly accrual aggregation, balance-constant rollover, and the NMD
// β-repricing correction for shocked scenarios.
package nii

import (
	"fmt"
	"time"

	"github.com/almready/irrbb/canonical"
)

// MonthRow is one month of the projector's monthly breakdown.
type MonthRow struct {
	MonthIndex int
	MonthLabel string
	Income     float64
	Expense    float64
	Net        float64
}

// monthIndex returns the 1-based calendar-month delta of d from analysisDate
// (1 for the first month of the horizon), or 0/negative if d precedes the
// horizon.
func monthIndex(analysisDate, d time.Time) int {
	return (d.Year()-analysisDate.Year())*12 + int(d.Month()) - int(analysisDate.Month())
}

// Aggregate sums interest_amount per calendar month, split by side (assets
// contribute income, liabilities contribute expense), for every month
// 1..horizonMonths, month m being the calendar month m months after
// analysis_date's own (see monthIndex). Cashflows dated in analysis_date's
// own calendar month, or after month horizonMonths, are ignored.
func Aggregate(cashflows []canonical.Cashflow, analysisDate time.Time, horizonMonths int) []MonthRow {
	income := make([]float64, horizonMonths+1)
	expense := make([]float64, horizonMonths+1)

	for _, cf := range cashflows {
		mi := monthIndex(analysisDate, cf.FlowDate)
		if mi < 1 || mi > horizonMonths {
			continue
		}
		interest, _ := cf.InterestAmount.Float64()
		if cf.Side == canonical.Asset {
			income[mi] += interest
		} else {
			expense[mi] += -interest // liability interest is stored negative; expense is reported positive
		}
	}

	rows := make([]MonthRow, horizonMonths)
	anchor := analysisDate
	for m := 1; m <= horizonMonths; m++ {
		label := fmt.Sprintf("%04d-%02d", monthOf(anchor, m).Year(), int(monthOf(anchor, m).Month()))
		rows[m-1] = MonthRow{
			MonthIndex: m,
			MonthLabel: label,
			Income:     income[m],
			Expense:    expense[m],
			Net:        income[m] - expense[m],
		}
	}
	return rows
}

func monthOf(analysisDate time.Time, m int) time.Time {
	return analysisDate.AddDate(0, m, 0)
}

// Scalar returns NII_12m, the sum over months of Net (income minus
// expense, expense being reported positive), the scalar used in
// ScenarioResult.
func Scalar(rows []MonthRow) float64 {
	var total float64
	for _, r := range rows {
		total += r.Net
	}
	return total
}

// ApplyNMDBetaCorrection adds the β-repricing correction of each NMD flow
// to the one month its flow date falls in (flows outside months
// 1..len(rows) are skipped), using the flow's own principal as the balance
// and a one-month year fraction of 1/12. Every flow passed in is
// corrected, core or non-core. clientRate and beta come from the
// originating NMD contract; deltaR is the scenario's risk-free shift.
func ApplyNMDBetaCorrection(rows []MonthRow, analysisDate time.Time, nmdFlows []canonical.Cashflow, clientRate, beta, deltaR float64) []MonthRow {
	if len(rows) == 0 {
		return rows
	}
	horizonMonths := len(rows)
	out := make([]MonthRow, len(rows))
	copy(out, rows)

	for _, cf := range nmdFlows {
		mi := monthIndex(analysisDate, cf.FlowDate)
		if mi < 1 || mi > horizonMonths {
			continue
		}
		balance, _ := cf.PrincipalAmount.Float64()
		if balance < 0 {
			balance = -balance
		}
		yf := 1.0 / 12.0
		correction := balance * (clampNonNegative(clientRate+beta*deltaR) - clientRate) * yf

		row := &out[mi-1]
		if cf.Side == canonical.Asset {
			row.Income += correction
		} else {
			row.Expense += correction
		}
		row.Net = row.Income - row.Expense
	}
	return out
}

func clampNonNegative(r float64) float64 {
	if r < 0 {
		return 0
	}
	return r
}
