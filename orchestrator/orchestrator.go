// Package orchestrator fans scenarios out over a bounded worker pool and
// reduces per-scenario results into a CalculationResult. Workers are the
// pool's unit of parallelism; inside a worker, projection is strictly
// sequential per contract.
//
// Built on golang.org/x/sync/errgroup for bounded concurrent fan-out
// rather than hand-rolled WaitGroup+channel plumbing; errgroup.SetLimit
// gives the worker cap, while error aggregation is done explicitly (see
// WorkerAggregatedError) so that every worker's error is collected, not
// just the first, which plain errgroup semantics would give up early on.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/almready/irrbb/canonical"
	"github.com/almready/irrbb/cashflow"
	"github.com/almready/irrbb/curve"
	"github.com/almready/irrbb/eve"
	"github.com/almready/irrbb/internal/logger"
	"github.com/almready/irrbb/margin"
	"github.com/almready/irrbb/nii"
	"github.com/almready/irrbb/shock"
)

// baseScenarioID is the sentinel used for the unshocked curve set inside
// the scenario map.
const baseScenarioID shock.ScenarioID = "base"

// Config carries the calculation's fixed parameters.
type Config struct {
	RiskFreeIndex    string
	DiscountIndex    string
	HorizonMonths    int
	BalanceConstant  bool
	ShockParameters  shock.Parameters
	FloorParameters  shock.FloorParameters
	WorkerLimit      int // <=0 means unbounded

	// Logger is optional; when set, every scenario worker logs its start
	// and completion through a child logger scoped with scenario_id.
	Logger *logger.Logger
}

// ScenarioResult mirrors the ScenarioResult.
type ScenarioResult struct {
	ScenarioID  shock.ScenarioID
	EVEScalar   float64
	EVEBuckets  []eve.BucketRow
	NIIScalar   float64
	NIIMonthly  []nii.MonthRow
	Exclusions  cashflow.ExclusionCounts
}

// CalculationResult mirrors the CalculationResult. RunID is a
// correlation identifier for tying this run's log lines together across
// scenario workers.
type CalculationResult struct {
	RunID           string
	Base            ScenarioResult
	Scenarios       map[shock.ScenarioID]ScenarioResult
	WorstScenarioID shock.ScenarioID
	WorstDeltaEVE   float64
}

// WorkerAggregatedError collects every worker error, tagged by
// scenario id, collected into a single failure. No partial result is
// returned when this fires.
type WorkerAggregatedError struct {
	Failures map[shock.ScenarioID]error
}

func (e *WorkerAggregatedError) Error() string {
	return fmt.Sprintf("orchestrator: %d scenario worker(s) failed: %v", len(e.Failures), e.Failures)
}

// Run computes base plus every scenario in scenarioIDs, in parallel over a
// bounded worker pool, and reduces them into a CalculationResult.
func Run(
	ctx context.Context,
	contracts []canonical.Contract,
	flows []canonical.ScheduledFlow,
	baseCurveSet *curve.Set,
	scenarioIDs []shock.ScenarioID,
	marginSet *margin.Set,
	cfg Config,
	analysisDate time.Time,
) (*CalculationResult, error) {
	runID := uuid.New().String()

	if cfg.Logger != nil {
		cfg.Logger.Info("run started", "run_id", runID, "scenario_count", len(scenarioIDs))
	}

	scenarioSets, err := shock.BuildAllScenarioCurveSets(baseCurveSet, scenarioIDs, cfg.RiskFreeIndex, cfg.ShockParameters, cfg.FloorParameters)
	if err != nil {
		return nil, err
	}

	all := make([]shock.ScenarioID, 0, len(scenarioIDs)+1)
	all = append(all, baseScenarioID)
	all = append(all, scenarioIDs...)

	results := make(map[shock.ScenarioID]ScenarioResult, len(all))
	failures := make(map[shock.ScenarioID]error)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if cfg.WorkerLimit > 0 {
		g.SetLimit(cfg.WorkerLimit)
	}

	for _, id := range all {
		id := id
		g.Go(func() error {
			select {
			case <-gctx.Done():
			default:
			}

			cs := baseCurveSet
			if id != baseScenarioID {
				cs = scenarioSets[id]
			}

			var workerLog *logger.Logger
			if cfg.Logger != nil {
				workerLog = cfg.Logger.WithScenario(string(id))
				workerLog.Info("scenario worker started", "run_id", runID)
			}

			start := time.Now()
			result, err := runScenario(id, contracts, flows, cs, marginSet, cfg, analysisDate)
			if workerLog != nil {
				workerLog.Info("scenario worker finished", "run_id", runID, "duration_ms", time.Since(start).Milliseconds(), "error", err)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[id] = err
				return nil // keep going; aggregate at the end
			}
			results[id] = result
			return nil
		})
	}
	_ = g.Wait() // workers never return a real error; failures map carries them

	if len(failures) > 0 {
		return nil, &WorkerAggregatedError{Failures: failures}
	}

	base := results[baseScenarioID]
	scenarios := make(map[shock.ScenarioID]ScenarioResult, len(scenarioIDs))
	var worstID shock.ScenarioID
	worstDelta := 0.0
	first := true
	for _, id := range scenarioIDs {
		r := results[id]
		scenarios[id] = r
		delta := r.EVEScalar - base.EVEScalar
		if first || delta < worstDelta {
			worstDelta = delta
			worstID = id
			first = false
		}
	}

	return &CalculationResult{
		RunID:           runID,
		Base:            base,
		Scenarios:       scenarios,
		WorstScenarioID: worstID,
		WorstDeltaEVE:   worstDelta,
	}, nil
}

func runScenario(id shock.ScenarioID, contracts []canonical.Contract, flows []canonical.ScheduledFlow, cs *curve.Set, marginSet *margin.Set, cfg Config, analysisDate time.Time) (ScenarioResult, error) {
	allContracts := contracts
	if cfg.BalanceConstant {
		renewals, err := nii.BuildRollovers(contracts, cs, marginSet, cfg.RiskFreeIndex, analysisDate, cfg.HorizonMonths)
		if err != nil {
			return ScenarioResult{}, err
		}
		allContracts = append(append([]canonical.Contract{}, contracts...), renewals...)
	}

	cfTable, counts, err := cashflow.GenerateTable(allContracts, flows, cs, analysisDate)
	if err != nil {
		return ScenarioResult{}, err
	}

	eveResult, err := eve.Evaluate(cfTable, cs, cfg.DiscountIndex)
	if err != nil {
		return ScenarioResult{}, err
	}

	niiRows := nii.Aggregate(cfTable, analysisDate, cfg.HorizonMonths)
	niiRows, err = applyNMDBetaCorrections(niiRows, allContracts, cfTable, analysisDate, id, cfg)
	if err != nil {
		return ScenarioResult{}, err
	}

	return ScenarioResult{
		ScenarioID: id,
		EVEScalar:  eveResult.Scalar,
		EVEBuckets: eveResult.Buckets,
		NIIScalar:  nii.Scalar(niiRows),
		NIIMonthly: niiRows,
		Exclusions: counts,
	}, nil
}

// applyNMDBetaCorrections layers the β-repricing NII correction onto every
// fixed-NMD contract's flows (core and non-core rows alike), using the
// scenario's short-end delta on the risk-free index. The base scenario carries no shock, so deltaR is
// zero and the correction is a no-op.
func applyNMDBetaCorrections(rows []nii.MonthRow, contracts []canonical.Contract, cfTable []canonical.Cashflow, analysisDate time.Time, id shock.ScenarioID, cfg Config) ([]nii.MonthRow, error) {
	deltaR := 0.0
	if id != baseScenarioID {
		d, err := shock.Delta(0, id, cfg.ShockParameters)
		if err != nil {
			return nil, err
		}
		deltaR = d
	}

	nmdContracts := make(map[string]canonical.Contract)
	for _, c := range contracts {
		if c.SourceContractType == canonical.FixedNonMaturity && c.NMD != nil {
			nmdContracts[c.ContractID] = c
		}
	}
	if len(nmdContracts) == 0 {
		return rows, nil
	}

	flowsByContract := make(map[string][]canonical.Cashflow, len(nmdContracts))
	for _, cf := range cfTable {
		if _, ok := nmdContracts[cf.ContractID]; ok {
			flowsByContract[cf.ContractID] = append(flowsByContract[cf.ContractID], cf)
		}
	}

	out := rows
	for contractID, c := range nmdContracts {
		flows := flowsByContract[contractID]
		if len(flows) == 0 {
			continue
		}
		out = nii.ApplyNMDBetaCorrection(out, analysisDate, flows, c.FixedRate, c.NMD.PassThroughBeta/100, deltaR)
	}
	return out, nil
}
