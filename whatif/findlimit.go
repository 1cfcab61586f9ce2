package whatif

import "math"

// Variable is the product attribute the find-limit solver drives.
type Variable string

const (
	VarNotional Variable = "notional"
	VarRate     Variable = "rate"
	VarMaturity Variable = "maturity"
	VarSpread   Variable = "spread"
)

// Bounds are the default bisection search ranges.
var Bounds = map[Variable][2]float64{
	VarRate:     {0, 0.20},
	VarMaturity: {0.25, 50.0},
	VarSpread:   {0, 1000}, // bps
}

// Result is a FindLimitResult.
type Result struct {
	FoundValue     float64
	AchievedMetric float64
	Converged      bool
	Iterations     int
	Tolerance      float64
}

const epsilon = 1e-9

// Solve drives variable to bring compute(spec-with-variable-set-to-x) to
// limit, starting from baseMetric (the portfolio-level base value before
// adding the spec). For VarNotional it uses the linear-scale shortcut;
// otherwise it bisects over Bounds[variable].
func Solve(variable Variable, refValue, baseMetric, limit float64, maxIterations int, absTolerance float64, compute func(x float64) float64) Result {
	if variable == VarNotional {
		return solveLinearNotional(refValue, baseMetric, limit, compute)
	}
	lo, hi := Bounds[variable][0], Bounds[variable][1]
	return bisect(lo, hi, baseMetric, limit, maxIterations, absTolerance, compute)
}

// solveLinearNotional implements a one-shot linear scale:
// evaluate f(N_ref), scale proportionally to the gap between base and
// limit, and report converged after a single iteration.
func solveLinearNotional(nRef, baseMetric, limit float64, compute func(x float64) float64) Result {
	fRef := compute(nRef)
	deltaRef := fRef - baseMetric
	if math.Abs(deltaRef) < epsilon {
		return Result{FoundValue: nRef, AchievedMetric: fRef, Converged: false, Iterations: 1, Tolerance: epsilon}
	}
	nStar := nRef * (limit - baseMetric) / deltaRef
	if nStar < 0 {
		nStar = 0
	}
	achieved := compute(nStar)
	return Result{FoundValue: nStar, AchievedMetric: achieved, Converged: true, Iterations: 1, Tolerance: epsilon}
}

// bisect implements bisection: if the limit is not
// bracketed between f(lo) and f(hi) (baseMetric is not used here), return the
// closer endpoint marked non-converged; otherwise iterate until
// |f(mid)-limit| < absTolerance or the bracket narrows below tolerance.
func bisect(lo, hi, baseMetric, limit float64, maxIterations int, absTolerance float64, compute func(x float64) float64) Result {
	if maxIterations <= 0 {
		maxIterations = 15
	}
	if absTolerance <= 0 {
		absTolerance = 1e-6
	}

	fLo := compute(lo) - limit
	fHi := compute(hi) - limit

	if sameSign(fLo, fHi) {
		foundValue, achieved := lo, fLo+limit
		if math.Abs(fHi) < math.Abs(fLo) {
			foundValue, achieved = hi, fHi+limit
		}
		return Result{FoundValue: foundValue, AchievedMetric: achieved, Converged: false, Iterations: 0, Tolerance: absTolerance}
	}

	for i := 1; i <= maxIterations; i++ {
		mid := 0.5 * (lo + hi)
		fMid := compute(mid) - limit

		if math.Abs(fMid) < absTolerance || (hi-lo) < absTolerance {
			return Result{FoundValue: mid, AchievedMetric: fMid + limit, Converged: true, Iterations: i, Tolerance: absTolerance}
		}

		if sameSign(fMid, fLo) {
			lo, fLo = mid, fMid
		} else {
			hi, fHi = mid, fMid
		}
	}

	mid := 0.5 * (lo + hi)
	return Result{FoundValue: mid, AchievedMetric: compute(mid), Converged: false, Iterations: maxIterations, Tolerance: absTolerance}
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

// MutateSpec returns a new LoanSpec with variable set to value;
// maturity is clamped to >= 0.25 years. The original LoanSpec is left
// unchanged.
func MutateSpec(spec LoanSpec, variable Variable, value float64) LoanSpec {
	mutated := spec
	switch variable {
	case VarNotional:
		mutated.Notional = value
	case VarRate:
		mutated.FixedRate = value
	case VarMaturity:
		if value < 0.25 {
			value = 0.25
		}
		mutated.TermYears = value
	case VarSpread:
		mutated.SpreadBps = value
	}
	return mutated
}
