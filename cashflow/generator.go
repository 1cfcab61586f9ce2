package cashflow

import (
	"fmt"
	"time"

	"github.com/almready/irrbb/behavioural"
	"github.com/almready/irrbb/canonical"
	"github.com/almready/irrbb/curve"
	"github.com/almready/irrbb/daycount"
)

// ExclusionCounts reports the silently-skipped positions of a generation
// run (static and excluded source contract types are not
// errors, just counted for observability).
type ExclusionCounts struct {
	Static          int
	NMDWithoutParams int
}

// UnknownShapeError guards the dispatch switch against a source_contract_type
// that slipped past ingestion validation.
type UnknownShapeError struct {
	ContractID string
	Type       canonical.SourceContractType
}

func (e *UnknownShapeError) Error() string {
	return fmt.Sprintf("cashflow: contract %q has unrecognised source_contract_type %q", e.ContractID, e.Type)
}

// GenerateTable is the cashflow generator's single entry point: it
// dispatches every contract by source_contract_type, applies the NMD and
// CPR/TDRR behavioural overlays, and returns the full cashflow table
// in canonical sort order.
func GenerateTable(contracts []canonical.Contract, flows []canonical.ScheduledFlow, curveSet *curve.Set, analysisDate time.Time) ([]canonical.Cashflow, ExclusionCounts, error) {
	flowsByContract := groupFlows(flows)

	var counts ExclusionCounts
	var all []canonical.Cashflow

	for _, original := range contracts {
		c := original

		switch c.SourceContractType {
		case canonical.StaticPosition:
			counts.Static++
			continue
		case canonical.FixedNonMaturity:
			if c.NMD == nil {
				counts.NMDWithoutParams++
				continue
			}
			rows, err := behavioural.ExpandFixedNMD(&c, analysisDate)
			if err != nil {
				return nil, counts, err
			}
			all = append(all, rows...)
			continue
		case canonical.VariableNonMaturity:
			c = behavioural.RewriteVariableNMD(c, analysisDate)
		}

		raw, err := generateShape(&c, flowsByContract[c.ContractID], curveSet, analysisDate)
		if err != nil {
			return nil, counts, err
		}

		raw = applyBehaviouralDecay(&c, raw)

		for _, f := range raw {
			all = append(all, sign(&c, f))
		}
	}

	canonical.SortCashflows(all)
	return all, counts, nil
}

// GenerateContract runs the shape dispatch plus overlays for a single
// contract, useful for per-contract unit testing and the What-If decomposer
// (which re-runs this over synthetic rows rather than the full table).
func GenerateContract(c *canonical.Contract, flows []canonical.ScheduledFlow, curveSet *curve.Set, analysisDate time.Time) ([]canonical.Cashflow, error) {
	cc := *c
	if cc.SourceContractType == canonical.VariableNonMaturity {
		cc = behavioural.RewriteVariableNMD(cc, analysisDate)
	}
	raw, err := generateShape(&cc, flows, curveSet, analysisDate)
	if err != nil {
		return nil, err
	}
	raw = applyBehaviouralDecay(&cc, raw)

	out := make([]canonical.Cashflow, 0, len(raw))
	for _, f := range raw {
		out = append(out, sign(&cc, f))
	}
	return out, nil
}

func generateShape(c *canonical.Contract, flows []canonical.ScheduledFlow, curveSet *curve.Set, analysisDate time.Time) ([]behavioural.RawFlow, error) {
	switch c.SourceContractType {
	case canonical.FixedBullet, canonical.VariableBullet:
		return generateBullet(c, curveSet, analysisDate)
	case canonical.FixedLinear, canonical.VariableLinear:
		return generateLinear(c, curveSet, analysisDate)
	case canonical.FixedAnnuity:
		return generateFixedAnnuity(c, analysisDate)
	case canonical.VariableAnnuity:
		return generateVariableAnnuity(c, curveSet, analysisDate)
	case canonical.FixedScheduled, canonical.VariableScheduled:
		return generateScheduled(c, flows, curveSet, analysisDate)
	default:
		return nil, &UnknownShapeError{ContractID: c.ContractID, Type: c.SourceContractType}
	}
}

// applyBehaviouralDecay routes a contract's CPR/TDRR annual rate to the
// overlay: assets use CPRAnnual; liabilities use TDRRAnnual
// only when IsTermDeposit is set; all other liabilities pass through.
func applyBehaviouralDecay(c *canonical.Contract, raw []behavioural.RawFlow) []behavioural.RawFlow {
	rate := 0.0
	if c.Side == canonical.Asset {
		rate = c.CPRAnnual
	} else if c.IsTermDeposit {
		rate = c.TDRRAnnual
	}
	if rate == 0 {
		return raw
	}
	notional, _ := c.Notional.Float64()
	base, err := daycount.Parse(c.DaycountBase)
	if err != nil {
		return raw
	}
	bf := make([]behavioural.RawFlow, len(raw))
	copy(bf, raw)
	return behavioural.ApplyPrepayment(notional, base, rate, c.StartDate, bf)
}

// sign converts an unsigned RawFlow into a signed, rounded Cashflow row.
func sign(c *canonical.Contract, f behavioural.RawFlow) canonical.Cashflow {
	s := c.Side.Sign()
	interest := canonical.RoundCents(canonical.MoneyFromFloat(s * f.Interest))
	principal := canonical.RoundCents(canonical.MoneyFromFloat(s * f.Principal))
	return canonical.Cashflow{
		ContractID:         c.ContractID,
		SourceContractType: c.SourceContractType,
		RateType:           c.RateType,
		Side:               c.Side,
		IndexName:          c.IndexName,
		FlowDate:           f.Date,
		InterestAmount:     interest,
		PrincipalAmount:    principal,
		TotalAmount:        interest.Add(principal),
	}
}

func groupFlows(flows []canonical.ScheduledFlow) map[string][]canonical.ScheduledFlow {
	out := make(map[string][]canonical.ScheduledFlow)
	for _, f := range flows {
		out[f.ContractID] = append(out[f.ContractID], f)
	}
	return out
}
