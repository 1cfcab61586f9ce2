package whatif

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almready/irrbb/canonical"
)

func baseSpec() LoanSpec {
	return LoanSpec{
		Notional:     100000,
		TermYears:    5,
		Side:         canonical.Asset,
		Currency:     "EUR",
		RateType:     RateFixed,
		FixedRate:    0.04,
		Amortization: AmortBullet,
		Daycount:     "ACT/360",
		PaymentFreq:  "1Y",
		AnalysisDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDecomposeLoanFixedBulletSingleRow(t *testing.T) {
	rows, err := DecomposeLoan(baseSpec())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, canonical.SourceContractType("fixed_bullet"), rows[0].SourceContractType)
	assert.Equal(t, canonical.Fixed, rows[0].RateType)
}

func TestDecomposeLoanVariableRequiresIndex(t *testing.T) {
	spec := baseSpec()
	spec.RateType = RateVariable
	spec.VariableIndex = ""
	_, err := DecomposeLoan(spec)
	require.Error(t, err)
	var target *DecompositionError
	assert.ErrorAs(t, err, &target)
}

func TestDecomposeLoanVariableBulletUsesIndex(t *testing.T) {
	spec := baseSpec()
	spec.RateType = RateVariable
	spec.VariableIndex = "EURIBOR_3M"
	spec.SpreadBps = 150
	rows, err := DecomposeLoan(spec)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, canonical.Float, rows[0].RateType)
	assert.Equal(t, "EURIBOR_3M", rows[0].IndexName)
	assert.InDelta(t, 0.015, rows[0].Spread, 1e-9)
}

func TestDecomposeLoanMixedRequiresFixedYears(t *testing.T) {
	spec := baseSpec()
	spec.RateType = RateMixed
	spec.MixedFixedYears = nil
	_, err := DecomposeLoan(spec)
	require.Error(t, err)
}

func TestDecomposeLoanMixedBulletEmitsThreeLegs(t *testing.T) {
	spec := baseSpec()
	spec.RateType = RateMixed
	fixedYears := 2.0
	spec.MixedFixedYears = &fixedYears
	spec.VariableIndex = "EURIBOR_3M"
	spec.SpreadBps = 100

	rows, err := DecomposeLoan(spec)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, canonical.FixedBullet, rows[0].SourceContractType)
	assert.Equal(t, canonical.VariableBullet, rows[1].SourceContractType)
}

func TestDecomposeLoanGraceAddsOffsetAndAmortLegs(t *testing.T) {
	spec := baseSpec()
	spec.Amortization = AmortLinear
	spec.GraceYears = 1

	rows, err := DecomposeLoan(spec)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "whatif_grace", rows[0].ContractID)
	assert.Equal(t, "whatif_amort", rows[1].ContractID)
	assert.Equal(t, "whatif_offset", rows[2].ContractID)
	// offset row nets out the grace principal on the opposite side.
	assert.NotEqual(t, rows[0].Side, rows[2].Side)
}

func TestDecomposeLoanCustomIDPrefix(t *testing.T) {
	spec := baseSpec()
	spec.IDPrefix = "loanA"
	rows, err := DecomposeLoan(spec)
	require.NoError(t, err)
	assert.Equal(t, "loanA_main", rows[0].ContractID)
}
