package nii

import (
	"strconv"
	"time"

	"github.com/almready/irrbb/canonical"
	"github.com/almready/irrbb/curve"
	"github.com/almready/irrbb/margin"
)

// BuildRollovers implements balance-constant rollover: every
// contract whose maturity falls inside [analysisDate, analysisDate+horizon]
// is replaced, cycle after cycle, by a bullet renewal of the same term
// (fixed_bullet or variable_bullet; a linear or annuity contract does not
// keep its shape) at
// renewal_rate = rf(cycle_maturity) + margin (fixed) or
// forward_index(cycle_start) + spread (float), until the horizon ends.
// Renewal margin comes from marginSet's fallback lookup, defaulting to
// the contract's own originating margin: fixed_rate minus rf at
// analysisDate + original term (fixed), or its spread (float).
func BuildRollovers(contracts []canonical.Contract, curveSet *curve.Set, marginSet *margin.Set, riskFreeIndex string, analysisDate time.Time, horizonMonths int) ([]canonical.Contract, error) {
	horizonEnd := analysisDate.AddDate(0, horizonMonths, 0)

	var renewals []canonical.Contract
	for _, c := range contracts {
		if c.SourceContractType == canonical.StaticPosition ||
			c.SourceContractType == canonical.FixedNonMaturity ||
			c.SourceContractType == canonical.VariableNonMaturity {
			continue
		}
		if !c.MaturityDate.After(analysisDate) || !c.MaturityDate.Before(horizonEnd) {
			continue
		}

		cycleStart := c.MaturityDate
		cycleIdx := 0
		for cycleStart.Before(horizonEnd) {
			cycleIdx++
			cycleLength := c.MaturityDate.Sub(c.StartDate)
			cycleMaturity := cycleStart.Add(cycleLength)

			renewed := c
			renewed.ContractID = renewalID(c.ContractID, cycleIdx)
			renewed.StartDate = cycleStart
			renewed.MaturityDate = cycleMaturity
			if c.RateType == canonical.Fixed {
				renewed.SourceContractType = canonical.FixedBullet
			} else {
				renewed.SourceContractType = canonical.VariableBullet
				renewed.NextRepriceDate = cycleStart
			}

			mgn, err := renewalMargin(&c, marginSet, curveSet, riskFreeIndex, analysisDate)
			if err != nil {
				return nil, err
			}

			if c.RateType == canonical.Fixed {
				rf, err := curveSet.RateOnDate(riskFreeIndex, cycleMaturity)
				if err != nil {
					return nil, err
				}
				renewed.FixedRate = rf + mgn
			} else {
				renewed.Spread = mgn
			}

			renewals = append(renewals, renewed)
			cycleStart = cycleMaturity
		}
	}
	return renewals, nil
}

func renewalMargin(c *canonical.Contract, marginSet *margin.Set, curveSet *curve.Set, riskFreeIndex string, analysisDate time.Time) (float64, error) {
	rt := margin.Fixed
	originating := c.FixedRate
	if c.RateType == canonical.Float {
		rt = margin.Float
		originating = c.Spread
	} else {
		rf, err := curveSet.RateOnDate(riskFreeIndex, analysisDate.Add(c.MaturityDate.Sub(c.StartDate)))
		if err != nil {
			return 0, err
		}
		originating -= rf
	}
	return marginSet.Lookup(rt, string(c.SourceContractType), c.Side.String(), c.RepricingFreq, c.IndexName, true, originating)
}

func renewalID(base string, cycle int) string {
	return base + "#renewal" + strconv.Itoa(cycle)
}
