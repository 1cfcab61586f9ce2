package shock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almready/irrbb/curve"
	"github.com/almready/irrbb/daycount"
)

func baseSet() *curve.Set {
	return &curve.Set{
		AnalysisDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Base:         daycount.Act365,
		Curves: map[string]*curve.ForwardCurve{
			"OIS":         curve.New([]curve.Sample{{TYears: 0.25, Rate: 0.02}, {TYears: 10, Rate: 0.025}}),
			"EURIBOR_3M":  curve.New([]curve.Sample{{TYears: 0.25, Rate: 0.021}, {TYears: 10, Rate: 0.026}}),
		},
	}
}

func TestBuildScenarioCurveSetShocksRiskFreeIndex(t *testing.T) {
	base := baseSet()
	p := Parameters{Parallel: 0.02, Short: 0.025, Long: 0.01}

	shocked, err := BuildScenarioCurveSet(base, ParallelUp, "OIS", p, DefaultFloorParameters)
	require.NoError(t, err)

	assert.Equal(t, base.AnalysisDate, shocked.AnalysisDate)
	assert.InDelta(t, base.Curves["OIS"].Rate(1)+0.02, shocked.Curves["OIS"].Rate(1), 1e-6)
}

func TestBuildScenarioCurveSetShiftsBasisIndexSameDelta(t *testing.T) {
	base := baseSet()
	p := Parameters{Parallel: 0.02, Short: 0.025, Long: 0.01}

	shocked, err := BuildScenarioCurveSet(base, ParallelUp, "OIS", p, DefaultFloorParameters)
	require.NoError(t, err)

	oisDelta := shocked.Curves["OIS"].Rate(1) - base.Curves["OIS"].Rate(1)
	basisDelta := shocked.Curves["EURIBOR_3M"].Rate(1) - base.Curves["EURIBOR_3M"].Rate(1)
	assert.InDelta(t, oisDelta, basisDelta, 1e-6)
}

func TestBuildAllScenarioCurveSetsCoversEveryID(t *testing.T) {
	base := baseSet()
	p := Parameters{Parallel: 0.02, Short: 0.025, Long: 0.01}

	sets, err := BuildAllScenarioCurveSets(base, EVEScenarios, "OIS", p, DefaultFloorParameters)
	require.NoError(t, err)
	assert.Len(t, sets, len(EVEScenarios))
	for _, id := range EVEScenarios {
		assert.Contains(t, sets, id)
	}
}
