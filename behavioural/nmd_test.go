package behavioural

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almready/irrbb/canonical"
)

func TestExpandFixedNMDRequiresParameters(t *testing.T) {
	c := &canonical.Contract{ContractID: "N1"}
	_, err := ExpandFixedNMD(c, time.Now())
	require.Error(t, err)
	var target *MissingNMDParametersError
	assert.ErrorAs(t, err, &target)
}

func TestExpandFixedNMDSplitsCoreAndNonCore(t *testing.T) {
	analysisDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &canonical.Contract{
		ContractID:         "N1",
		Side:               canonical.Liability,
		SourceContractType: canonical.FixedNonMaturity,
		Notional:           decimal.NewFromInt(1000),
		NMD: &canonical.NMDParameters{
			CoreProportion: 80,
			Distribution: map[canonical.EBABucket]float64{
				"1Y_1.5Y": 80,
			},
		},
	}

	rows, err := ExpandFixedNMD(c, analysisDate)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// non-core row: 1000 * (1 - 0.8) = 200, signed by Liability (-1)
	nonCore := rows[0]
	assert.Equal(t, analysisDate.AddDate(0, 0, 1), nonCore.FlowDate)
	got, _ := nonCore.PrincipalAmount.Float64()
	assert.InDelta(t, -200, got, 0.01)

	// core row: 1000 * 80% = 800, signed by Liability (-1)
	core := rows[1]
	coreAmt, _ := core.PrincipalAmount.Float64()
	assert.InDelta(t, -800, coreAmt, 0.01)
}

func TestExpandFixedNMDSkipsZeroBuckets(t *testing.T) {
	analysisDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &canonical.Contract{
		ContractID:         "N2",
		Side:               canonical.Asset,
		SourceContractType: canonical.FixedNonMaturity,
		Notional:           decimal.NewFromInt(500),
		NMD: &canonical.NMDParameters{
			CoreProportion: 100,
			Distribution:   map[canonical.EBABucket]float64{},
		},
	}
	rows, err := ExpandFixedNMD(c, analysisDate)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestNMDBetaCorrectionFloorsAtZeroClientRate(t *testing.T) {
	// client rate 0.01, beta 0.5, a large negative delta should floor the
	// adjusted rate at 0, not go negative.
	got := NMDBetaCorrection(1000, 0.01, 0.5, -1.0, 1.0)
	assert.InDelta(t, 1000*(0-0.01)*1.0, got, 1e-9)
}

func TestNMDBetaCorrectionPositiveDelta(t *testing.T) {
	got := NMDBetaCorrection(1000, 0.01, 0.5, 0.02, 1.0)
	adjusted := 0.01 + 0.5*0.02
	assert.InDelta(t, 1000*(adjusted-0.01)*1.0, got, 1e-9)
}

func TestRewriteVariableNMDSetsSyntheticMaturity(t *testing.T) {
	analysisDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := canonical.Contract{
		ContractID:         "N3",
		SourceContractType: canonical.VariableNonMaturity,
	}
	rewritten := RewriteVariableNMD(c, analysisDate)
	assert.Equal(t, canonical.VariableBullet, rewritten.SourceContractType)
	assert.Equal(t, analysisDate, rewritten.StartDate)
	assert.Equal(t, analysisDate.AddDate(30, 0, 0), rewritten.MaturityDate)
}

func TestRewriteVariableNMDKeepsExistingStartDate(t *testing.T) {
	analysisDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	c := canonical.Contract{
		ContractID:         "N4",
		SourceContractType: canonical.VariableNonMaturity,
		StartDate:          start,
	}
	rewritten := RewriteVariableNMD(c, analysisDate)
	assert.Equal(t, start, rewritten.StartDate)
}
