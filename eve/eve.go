// Package eve implements the Economic Value of Equity evaluator: scalar
// EVE and the bucketed (scenario x regulatory bucket x asset/liability/net)
// PV breakdown.
package eve

import (
	"github.com/almready/irrbb/canonical"
	"github.com/almready/irrbb/curve"
)

// BucketRow is one (bucket × side_group) cell of a bucketed EVE breakdown
type BucketRow struct {
	BucketName      string
	BucketStart     float64
	BucketEnd       float64
	SideGroup       string // "asset", "liability", or "net"
	PVTotal         float64
	PVInterest      float64
	PVPrincipal     float64
	CashflowTotal   float64
	FlowCount       int
}

// Result is the EVE half of one scenario's ScenarioResult.
type Result struct {
	Scalar  float64
	Buckets []BucketRow
}

// Evaluate computes scalar EVE and the bucketed breakdown for a cashflow
// table under a single discount index. Discount factors are cached per
// unique flow date to avoid repeated curve queries on shared dates
func Evaluate(cashflows []canonical.Cashflow, curveSet *curve.Set, discountIndex string) (Result, error) {
	dfCache := make(map[int64]float64)
	dfFor := func(dateUnix int64, t float64) float64 {
		if v, ok := dfCache[dateUnix]; ok {
			return v
		}
		c := curveSet.Curves[discountIndex]
		v := c.DiscountFactor(t)
		dfCache[dateUnix] = v
		return v
	}

	type cell struct {
		asset, liability cellAgg
	}
	cells := make(map[int]*cell, len(canonical.EVEBuckets))

	var scalar float64
	for _, cf := range cashflows {
		t := curveSet.TYears(cf.FlowDate)
		df := dfFor(cf.FlowDate.Unix(), t)

		total, _ := cf.TotalAmount.Float64()
		interest, _ := cf.InterestAmount.Float64()
		principal, _ := cf.PrincipalAmount.Float64()

		pv := total * df
		scalar += pv

		bi := canonical.BucketFor(canonical.EVEBuckets, t)
		c, ok := cells[bi]
		if !ok {
			c = &cell{}
			cells[bi] = c
		}
		agg := &c.asset
		if cf.Side == canonical.Liability {
			agg = &c.liability
		}
		agg.pvTotal += pv
		agg.pvInterest += interest * df
		agg.pvPrincipal += principal * df
		agg.cashflowTotal += total
		agg.flowCount++
	}

	rows := make([]BucketRow, 0, len(canonical.EVEBuckets)*3)
	for i, b := range canonical.EVEBuckets {
		c, ok := cells[i]
		if !ok {
			continue
		}
		rows = append(rows, bucketRow(b, "asset", c.asset))
		rows = append(rows, bucketRow(b, "liability", c.liability))
		net := cellAgg{
			pvTotal:       c.asset.pvTotal + c.liability.pvTotal,
			pvInterest:    c.asset.pvInterest + c.liability.pvInterest,
			pvPrincipal:   c.asset.pvPrincipal + c.liability.pvPrincipal,
			cashflowTotal: c.asset.cashflowTotal + c.liability.cashflowTotal,
			flowCount:     c.asset.flowCount + c.liability.flowCount,
		}
		rows = append(rows, bucketRow(b, "net", net))
	}

	return Result{Scalar: scalar, Buckets: rows}, nil
}

type cellAgg struct {
	pvTotal, pvInterest, pvPrincipal, cashflowTotal float64
	flowCount                                       int
}

func bucketRow(b canonical.Bucket, sideGroup string, agg cellAgg) BucketRow {
	return BucketRow{
		BucketName:    b.Label,
		BucketStart:   b.Lower,
		BucketEnd:     b.Upper,
		SideGroup:     sideGroup,
		PVTotal:       agg.pvTotal,
		PVInterest:    agg.pvInterest,
		PVPrincipal:   agg.pvPrincipal,
		CashflowTotal: agg.cashflowTotal,
		FlowCount:     agg.flowCount,
	}
}
