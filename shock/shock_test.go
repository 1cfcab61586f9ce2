package shock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScenarioSetEVE(t *testing.T) {
	ids, err := BuildScenarioSet("eve", false)
	require.NoError(t, err)
	assert.Equal(t, EVEScenarios, ids)
}

func TestBuildScenarioSetNIIWithExtensions(t *testing.T) {
	ids, err := BuildScenarioSet("nii", true)
	require.NoError(t, err)
	assert.Equal(t, append(append([]ScenarioID{}, NIIScenarios...), LongUp, LongDown), ids)
}

func TestBuildScenarioSetInvalidPurpose(t *testing.T) {
	_, err := BuildScenarioSet("vol", false)
	assert.Error(t, err)
}

func TestParametersForCurrencyConvertsBpsToDecimal(t *testing.T) {
	p, err := ParametersForCurrency("eur")
	require.NoError(t, err)
	assert.InDelta(t, 0.02, p.Parallel, 1e-12)
	assert.InDelta(t, 0.025, p.Short, 1e-12)
	assert.InDelta(t, 0.01, p.Long, 1e-12)
}

func TestParametersForCurrencyMissing(t *testing.T) {
	_, err := ParametersForCurrency("XXX")
	require.Error(t, err)
	var target *MissingCurrencyShockError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "XXX", target.Currency)
}

func TestDeltaParallel(t *testing.T) {
	p := Parameters{Parallel: 0.02, Short: 0.025, Long: 0.01}
	up, err := Delta(5, ParallelUp, p)
	require.NoError(t, err)
	assert.InDelta(t, 0.02, up, 1e-12)

	down, err := Delta(5, ParallelDown, p)
	require.NoError(t, err)
	assert.InDelta(t, -0.02, down, 1e-12)
}

func TestDeltaShortDecaysWithMaturity(t *testing.T) {
	p := Parameters{Parallel: 0.02, Short: 0.025, Long: 0.01}
	near, _ := Delta(0, ShortUp, p)
	far, _ := Delta(20, ShortUp, p)
	assert.InDelta(t, p.Short, near, 1e-12)
	assert.Less(t, far, near)
	assert.Greater(t, far, 0.0)
}

func TestDeltaUnsupportedScenario(t *testing.T) {
	_, err := Delta(1, ScenarioID("bogus"), Parameters{})
	require.Error(t, err)
	var target *UnsupportedScenarioError
	assert.ErrorAs(t, err, &target)
}

func TestMaturityPostShockFloorCapsAtMaxFloor(t *testing.T) {
	fp := DefaultFloorParameters
	assert.InDelta(t, fp.ImmediateFloor, MaturityPostShockFloor(0, fp), 1e-12)
	// At large t, immediateFloor + annualStep*t exceeds 0, so the floor caps at 0.
	assert.InDelta(t, 0.0, MaturityPostShockFloor(1000, fp), 1e-12)
}

func TestApplyToRiskFreeRateObservedLowerRateCarveOut(t *testing.T) {
	p := Parameters{Parallel: 0.02, Short: 0.025, Long: 0.01}
	fp := DefaultFloorParameters

	// Base rate already below the regulatory floor curve: the carve-out
	// means the effective floor tracks the (lower) base rate, not the
	// regulatory curve, so a large downward shock is not dragged back up
	// above the base rate.
	baseRate := -0.02
	shocked, err := ApplyToRiskFreeRate(baseRate, 1, ParallelDown, p, fp)
	require.NoError(t, err)
	assert.LessOrEqual(t, shocked, baseRate+1e-12)
}

func TestApplyToRiskFreeRateFloorsNormalRate(t *testing.T) {
	p := Parameters{Parallel: 0.02, Short: 0.025, Long: 0.01}
	fp := DefaultFloorParameters

	baseRate := 0.001
	shocked, err := ApplyToRiskFreeRate(baseRate, 1, ParallelDown, p, fp)
	require.NoError(t, err)
	floorCurve := MaturityPostShockFloor(1, fp)
	effectiveFloor := floorCurve
	if baseRate < effectiveFloor {
		effectiveFloor = baseRate
	}
	assert.GreaterOrEqual(t, shocked, effectiveFloor-1e-12)
}

func TestApplyToBasisRateHasNoFloor(t *testing.T) {
	p := Parameters{Parallel: 0.02, Short: 0.025, Long: 0.01}
	shocked, err := ApplyToBasisRate(-0.5, 1, ParallelDown, p)
	require.NoError(t, err)
	assert.InDelta(t, -0.52, shocked, 1e-12)
}
