package orchestrator

import (
	"context"
	"time"

	"github.com/almready/irrbb/canonical"
	"github.com/almready/irrbb/curve"
	"github.com/almready/irrbb/eve"
	"github.com/almready/irrbb/margin"
	"github.com/almready/irrbb/nii"
	"github.com/almready/irrbb/shock"
)

// EVEBucketDelta is one row of WhatIfResult.eve_bucket_deltas:
// the addition leg's bucket PV minus the removal leg's, for one scenario and
// one (bucket, side_group) cell.
type EVEBucketDelta struct {
	ScenarioID  shock.ScenarioID
	BucketName  string
	BucketStart float64
	SideGroup   string
	PVDelta     float64
}

// NIIMonthDelta is one row of WhatIfResult.nii_month_deltas.
type NIIMonthDelta struct {
	ScenarioID  shock.ScenarioID
	MonthIndex  int
	MonthLabel  string
	IncomeDelta float64
	ExpenseDelta float64
	NetDelta    float64
}

// WhatIfResult mirrors the WhatIfResult.
type WhatIfResult struct {
	BaseEVEDelta      float64
	WorstEVEDelta     float64
	BaseNIIDelta      float64
	WorstNIIDelta     float64
	ScenarioEVEDeltas map[shock.ScenarioID]float64
	ScenarioNIIDeltas map[shock.ScenarioID]float64
	EVEBucketDeltas   []EVEBucketDelta
	NIIMonthDeltas    []NIIMonthDelta
}

// RunWhatIf computes orchestrator-result(additions) minus
// orchestrator-result(removals), scenario-aligned and bucket-aligned.
// Both legs run through the same Run() pipeline and the same scenario
// curve sets, so only the hypothetical rows differ between them. An
// empty modification on both sides returns zeros without running any
// worker.
func RunWhatIf(
	ctx context.Context,
	flows []canonical.ScheduledFlow,
	baseCurveSet *curve.Set,
	scenarioIDs []shock.ScenarioID,
	marginSet *margin.Set,
	cfg Config,
	analysisDate time.Time,
	additions, removals []canonical.Contract,
) (*WhatIfResult, error) {
	if len(additions) == 0 && len(removals) == 0 {
		return &WhatIfResult{
			ScenarioEVEDeltas: map[shock.ScenarioID]float64{},
			ScenarioNIIDeltas: map[shock.ScenarioID]float64{},
		}, nil
	}

	addResult, err := runLeg(ctx, additions, flows, baseCurveSet, scenarioIDs, marginSet, cfg, analysisDate)
	if err != nil {
		return nil, err
	}
	removeResult, err := runLeg(ctx, removals, flows, baseCurveSet, scenarioIDs, marginSet, cfg, analysisDate)
	if err != nil {
		return nil, err
	}

	result := &WhatIfResult{
		BaseEVEDelta:      addResult.Base.EVEScalar - removeResult.Base.EVEScalar,
		BaseNIIDelta:      addResult.Base.NIIScalar - removeResult.Base.NIIScalar,
		ScenarioEVEDeltas: make(map[shock.ScenarioID]float64, len(scenarioIDs)),
		ScenarioNIIDeltas: make(map[shock.ScenarioID]float64, len(scenarioIDs)),
	}

	worstEVE, worstNII := 0.0, 0.0
	first := true
	for _, id := range scenarioIDs {
		a, r := addResult.Scenarios[id], removeResult.Scenarios[id]
		eveDelta := a.EVEScalar - r.EVEScalar
		niiDelta := a.NIIScalar - r.NIIScalar
		result.ScenarioEVEDeltas[id] = eveDelta
		result.ScenarioNIIDeltas[id] = niiDelta

		if first || eveDelta < worstEVE {
			worstEVE = eveDelta
			first = false
		}
		if niiDelta < worstNII {
			worstNII = niiDelta
		}

		result.EVEBucketDeltas = append(result.EVEBucketDeltas, bucketDeltas(id, a.EVEBuckets, r.EVEBuckets)...)
		result.NIIMonthDeltas = append(result.NIIMonthDeltas, monthDeltas(id, a.NIIMonthly, r.NIIMonthly)...)
	}
	result.WorstEVEDelta = worstEVE
	result.WorstNIIDelta = worstNII

	return result, nil
}

func runLeg(ctx context.Context, leg []canonical.Contract, flows []canonical.ScheduledFlow, baseCurveSet *curve.Set, scenarioIDs []shock.ScenarioID, marginSet *margin.Set, cfg Config, analysisDate time.Time) (*CalculationResult, error) {
	if len(leg) == 0 {
		empty := ScenarioResult{}
		scenarios := make(map[shock.ScenarioID]ScenarioResult, len(scenarioIDs))
		for _, id := range scenarioIDs {
			scenarios[id] = empty
		}
		return &CalculationResult{Base: empty, Scenarios: scenarios}, nil
	}
	return Run(ctx, leg, flows, baseCurveSet, scenarioIDs, marginSet, cfg, analysisDate)
}

// bucketDeltas matches add/remove bucket rows by (bucket name, side group)
// and subtracts PV totals. A cell present on only one side is treated as
// zero on the other (one leg may simply have no flows in that bucket).
func bucketDeltas(id shock.ScenarioID, add, remove []eve.BucketRow) []EVEBucketDelta {
	type cellKey struct {
		bucket string
		side   string
	}
	removeByCell := make(map[cellKey]eve.BucketRow, len(remove))
	for _, r := range remove {
		removeByCell[cellKey{r.BucketName, r.SideGroup}] = r
	}
	seen := make(map[cellKey]bool, len(add)+len(remove))

	var out []EVEBucketDelta
	for _, a := range add {
		k := cellKey{a.BucketName, a.SideGroup}
		seen[k] = true
		r := removeByCell[k]
		out = append(out, EVEBucketDelta{
			ScenarioID:  id,
			BucketName:  a.BucketName,
			BucketStart: a.BucketStart,
			SideGroup:   a.SideGroup,
			PVDelta:     a.PVTotal - r.PVTotal,
		})
	}
	for _, r := range remove {
		k := cellKey{r.BucketName, r.SideGroup}
		if seen[k] {
			continue
		}
		out = append(out, EVEBucketDelta{
			ScenarioID:  id,
			BucketName:  r.BucketName,
			BucketStart: r.BucketStart,
			SideGroup:   r.SideGroup,
			PVDelta:     -r.PVTotal,
		})
	}
	return out
}

// monthDeltas subtracts the removal leg's monthly income/expense from the
// addition leg's, month by month, matching rows by MonthIndex. A leg with
// no contracts has no MonthRows; its months count as zero, so a
// removal-only what-if yields the negated removal months.
func monthDeltas(id shock.ScenarioID, add, remove []nii.MonthRow) []NIIMonthDelta {
	removeByMonth := make(map[int]nii.MonthRow, len(remove))
	for _, r := range remove {
		removeByMonth[r.MonthIndex] = r
	}

	out := make([]NIIMonthDelta, 0, len(add))
	for _, a := range add {
		r := removeByMonth[a.MonthIndex]
		out = append(out, NIIMonthDelta{
			ScenarioID:   id,
			MonthIndex:   a.MonthIndex,
			MonthLabel:   a.MonthLabel,
			IncomeDelta:  a.Income - r.Income,
			ExpenseDelta: a.Expense - r.Expense,
			NetDelta:     a.Net - r.Net,
		})
	}
	if len(add) == 0 {
		for _, r := range remove {
			out = append(out, NIIMonthDelta{
				ScenarioID:   id,
				MonthIndex:   r.MonthIndex,
				MonthLabel:   r.MonthLabel,
				IncomeDelta:  -r.Income,
				ExpenseDelta: -r.Expense,
				NetDelta:     -r.Net,
			})
		}
	}
	return out
}
