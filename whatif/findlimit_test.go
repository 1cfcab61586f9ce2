package whatif

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolveLinearNotionalScalesProportionally(t *testing.T) {
	// f(x) = x * 0.01 (linear EVE-like sensitivity), base=0, limit=50.
	compute := func(x float64) float64 { return x * 0.01 }
	result := Solve(VarNotional, 1000, 0, 50, 0, 0, compute)
	assert.True(t, result.Converged)
	assert.InDelta(t, 5000, result.FoundValue, 1e-6)
	assert.InDelta(t, 50, result.AchievedMetric, 1e-6)
}

func TestSolveLinearNotionalClampsNegativeToZero(t *testing.T) {
	compute := func(x float64) float64 { return x * -0.01 }
	result := Solve(VarNotional, 1000, 0, -50, 0, 0, compute)
	// deltaRef = -10, nStar = 1000*(-50-0)/-10 = 5000, still positive; flip
	// sign of limit to force a negative nStar instead.
	result2 := Solve(VarNotional, 1000, 0, 50, 0, 0, compute)
	assert.True(t, result.Converged)
	assert.GreaterOrEqual(t, result2.FoundValue, 0.0)
}

func TestSolveLinearNotionalNoSensitivityReturnsNotConverged(t *testing.T) {
	compute := func(x float64) float64 { return 42 }
	result := Solve(VarNotional, 1000, 42, 50, 0, 0, compute)
	assert.False(t, result.Converged)
}

func TestSolveBisectionFindsRoot(t *testing.T) {
	// f(x) = x, limit = 0.1, should bisect to ~0.1 within [0, 0.2].
	compute := func(x float64) float64 { return x }
	result := Solve(VarRate, 0, 0, 0.1, 50, 1e-8, compute)
	assert.True(t, result.Converged)
	assert.InDelta(t, 0.1, result.FoundValue, 1e-4)
}

func TestBisectReturnsNonConvergedWhenLimitNotBracketed(t *testing.T) {
	compute := func(x float64) float64 { return x } // range [0, 0.20]
	result := Solve(VarRate, 0, 0, 5.0, 20, 1e-6, compute)
	assert.False(t, result.Converged)
}

func TestMutateSpecSetsRequestedVariable(t *testing.T) {
	spec := baseSpec()
	m := MutateSpec(spec, VarRate, 0.07)
	assert.InDelta(t, 0.07, m.FixedRate, 1e-12)
	assert.Equal(t, spec.Notional, m.Notional) // original untouched field preserved
}

func TestMutateSpecClampsMaturityFloor(t *testing.T) {
	spec := baseSpec()
	m := MutateSpec(spec, VarMaturity, 0.01)
	assert.Equal(t, 0.25, m.TermYears)
}

func TestMutateSpecDoesNotModifyOriginal(t *testing.T) {
	spec := baseSpec()
	_ = MutateSpec(spec, VarNotional, 999)
	assert.Equal(t, 100000.0, spec.Notional)
}
